// Package tui renders the live transcript: an append-only history of
// finalized turns with their translations, the in-progress turn, and
// the session status.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"glossa/lang"
	"glossa/session"
	"glossa/translate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	originalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	translationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("114"))
	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("167"))
)

// Controller is the slice of the session controller the UI drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Snapshot() session.Snapshot
}

type model struct {
	ctrl      Controller
	snapshots chan session.Snapshot
	snap      session.Snapshot
	viewport  viewport.Model
	ready     bool
}

func newModel(
	ctrl Controller,
	snapshots chan session.Snapshot,
) model {
	return model{
		ctrl:      ctrl,
		snapshots: snapshots,
		snap:      ctrl.Snapshot(),
	}
}

func waitForSnapshot(snapshots chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return <-snapshots
	}
}

type startResult struct{ err error }

func (m model) Init() tea.Cmd {
	return waitForSnapshot(m.snapshots)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.ctrl.Stop()
			return m, tea.Quit
		case "s":
			switch m.snap.Status {
			case session.StatusIdle, session.StatusError:
				ctrl := m.ctrl
				cmds = append(cmds, func() tea.Msg {
					return startResult{err: ctrl.Start(context.Background())}
				})
			default:
				m.ctrl.Stop()
			}
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(
				msg.Width,
				msg.Height-verticalMarginHeight,
			)
			m.viewport.YPosition = headerHeight
			m.viewport.SetContent(m.contentView())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}

	case startResult:
		// Failures surface through the error status; nothing to do.

	case session.Snapshot:
		m.snap = msg
		if m.ready {
			m.viewport.SetContent(m.contentView())
			m.viewport.GotoBottom()
		}
		cmds = append(cmds, waitForSnapshot(m.snapshots))
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "\n  loading..."
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m model) headerView() string {
	title := titleStyle.Render("glossa")
	pair := statusStyle.Render(fmt.Sprintf(
		"%s → %s",
		lang.Name(m.snap.SourceLang),
		lang.Name(m.snap.TargetLang),
	))
	status := statusStyle.Render(string(m.snap.Status))
	if m.snap.Status == session.StatusError {
		status = errorStyle.Render(
			fmt.Sprintf("%s: %s", m.snap.Status, m.snap.Err),
		)
	}
	return fmt.Sprintf("%s  %s  [%s]", title, pair, status)
}

func (m model) footerView() string {
	return statusStyle.Render("s: start/stop  q: quit")
}

// contentView renders the transcript: one block per finalized turn,
// then the in-progress turn in gray.
func (m model) contentView() string {
	var b strings.Builder
	for _, entry := range m.snap.History {
		b.WriteString(originalStyle.Render(entry.Original))
		b.WriteString("\n")
		switch entry.Translated {
		case "":
			b.WriteString(pendingStyle.Render("…"))
		case translate.Failed:
			b.WriteString(failedStyle.Render(entry.Translated))
		default:
			b.WriteString(translationStyle.Render(entry.Translated))
		}
		b.WriteString("\n\n")
	}
	if m.snap.Current != nil {
		b.WriteString(pendingStyle.Render(m.snap.Current.Original))
		b.WriteString("\n")
	}
	return b.String()
}

// Notifier returns a snapshot callback suitable for session.New. It
// never blocks the controller: when the UI is behind, the stale
// snapshot is dropped in favor of the next one.
func Notifier(snapshots chan session.Snapshot) func(session.Snapshot) {
	return func(snap session.Snapshot) {
		for {
			select {
			case snapshots <- snap:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	}
}

// Run blocks until the user quits.
func Run(ctrl Controller, snapshots chan session.Snapshot) error {
	p := tea.NewProgram(
		newModel(ctrl, snapshots),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
