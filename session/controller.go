// Package session orchestrates one live transcription session at a
// time: microphone capture, the transcription stream, turn
// segmentation, and asynchronous translation of finalized turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"glossa/lang"
	"glossa/mic"
	"glossa/stt"
	"glossa/translate"
	"glossa/turn"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusListening  Status = "listening"
	StatusError      Status = "error"
)

// ErrBusy is returned when Start is invoked while a session is already
// connecting or listening.
var ErrBusy = errors.New("a capture session is already active")

// Snapshot is what the presentation layer sees: current status, the
// in-progress turn if any, and the ordered transcript history.
type Snapshot struct {
	Status     Status
	Err        string
	SourceLang string
	TargetLang string
	Current    *turn.Turn
	History    []turn.Turn
}

// Controller supervises the session lifecycle and fans transcript
// snapshots out to the presentation layer. At most one capture session
// is active at a time; late callbacks from a superseded session are
// suppressed by comparing their captured identity token against the
// controller's current one.
type Controller struct {
	mic        mic.Capture
	transport  stt.Transport
	translator translate.Translator
	logger     *log.Logger

	// notify is invoked under the controller lock; it must not call
	// back into the controller.
	notify func(Snapshot)

	mu         sync.Mutex
	status     Status
	errMsg     string
	token      string
	capture    *capture
	acc        *turn.Accumulator
	dispatcher *translate.Dispatcher
	sourceLang string
	targetLang string
	loopDone   chan struct{}
}

func New(
	m mic.Capture,
	transport stt.Transport,
	translator translate.Translator,
	logger *log.Logger,
	notify func(Snapshot),
) *Controller {
	return &Controller{
		mic:        m,
		transport:  transport,
		translator: translator,
		logger:     logger,
		notify:     notify,
		status:     StatusIdle,
		sourceLang: "es",
		targetLang: "en",
	}
}

// SetLanguages changes the language pair. Only accepted while idle.
func (c *Controller) SetLanguages(source, target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusIdle {
		return ErrBusy
	}
	if !lang.Supported(source) {
		return fmt.Errorf("unknown source language %q", source)
	}
	if !lang.Supported(target) {
		return fmt.Errorf("unknown target language %q", target)
	}
	c.sourceLang = source
	c.targetLang = target
	c.notifyLocked()
	return nil
}

// Start begins a new session. It is rejected while one is already
// connecting or listening. Starting from the error state clears the
// error and any partial history.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusConnecting || c.status == StatusListening {
		c.mu.Unlock()
		return ErrBusy
	}

	token := uuid.NewString()
	c.token = token
	c.errMsg = ""
	c.acc = turn.NewAccumulator()
	c.dispatcher = translate.NewDispatcher(
		c.translator,
		c.sourceLang,
		c.targetLang,
		c.resolveFor(token),
		c.logger,
	)
	cs := newCapture(c.mic, c.transport, c.logger)
	c.capture = cs
	c.setStatusLocked(StatusConnecting)
	language := c.sourceLang
	c.mu.Unlock()

	c.logger.Info("start", "language", language)

	if err := cs.start(ctx, language); err != nil {
		cs.stop()
		if errors.Is(err, errStopped) {
			// The user stopped while we were connecting; not an error.
			return nil
		}
		c.mu.Lock()
		if c.token == token {
			c.token = ""
			c.errMsg = err.Error()
			c.setStatusLocked(StatusError)
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.token != token {
		// Stopped between acquisition and here.
		c.mu.Unlock()
		cs.stop()
		return nil
	}
	c.setStatusLocked(StatusListening)
	done := make(chan struct{})
	c.loopDone = done
	c.mu.Unlock()

	go c.eventLoop(token, cs, done)

	return nil
}

// Stop ends the active session, finalizing any in-progress turn so no
// transcribed speech is dropped. Idempotent; a no-op while idle.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.status == StatusIdle {
		c.mu.Unlock()
		return nil
	}

	cs := c.capture
	c.token = ""
	c.errMsg = ""

	var finalized *turn.Turn
	var dispatcher *translate.Dispatcher
	if c.acc != nil {
		if t, ok := c.acc.ForcedStop(); ok {
			finalized = t
			dispatcher = c.dispatcher
		}
	}
	c.setStatusLocked(StatusIdle)
	c.mu.Unlock()

	c.logger.Info("stop")

	if finalized != nil {
		dispatcher.Dispatch(*finalized)
	}
	if cs != nil {
		return cs.stop()
	}
	return nil
}

// Close is the external-shutdown path; it takes the same teardown
// route as an explicit stop.
func (c *Controller) Close() error {
	return c.Stop()
}

// Snapshot returns the current presentation state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:     c.status,
		Err:        c.errMsg,
		SourceLang: c.sourceLang,
		TargetLang: c.targetLang,
	}
	if c.acc != nil {
		snap.History = c.acc.History()
		if current, ok := c.acc.Current(); ok {
			snap.Current = &current
		}
	}
	return snap
}

func (c *Controller) setStatusLocked(status Status) {
	c.status = status
	c.logger.Debug("status", "status", status)
	c.notifyLocked()
}

func (c *Controller) notifyLocked() {
	if c.notify != nil {
		c.notify(c.snapshotLocked())
	}
}

// resolveFor builds the dispatcher's completion callback for one
// session. The captured token keeps a superseded session's late
// translation results from touching a newer session's history.
func (c *Controller) resolveFor(token string) func(id, translated string) {
	return func(id, translated string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.token != token {
			return
		}
		if c.acc.Resolve(id, translated) {
			c.notifyLocked()
		}
	}
}

func (c *Controller) eventLoop(
	token string,
	cs *capture,
	done chan struct{},
) {
	defer close(done)
	for event := range cs.events() {
		if !c.handleEvent(token, cs, event) {
			return
		}
	}
	c.handleStreamClosed(token, cs)
}

// handleEvent processes one stream event. Returns false once the
// session is finished with the stream.
func (c *Controller) handleEvent(
	token string,
	cs *capture,
	event stt.Event,
) bool {
	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return false
	}

	switch event.Kind {
	case stt.Fragment:
		c.acc.Fragment(event.Text)
		c.notifyLocked()
		c.mu.Unlock()
		return true

	case stt.TurnComplete:
		finalized, ok := c.acc.Complete()
		dispatcher := c.dispatcher
		c.notifyLocked()
		c.mu.Unlock()
		if ok {
			dispatcher.Dispatch(*finalized)
		}
		return true

	case stt.TransportError:
		c.failLocked(cs, event.Err.Error())
		return false
	}

	c.mu.Unlock()
	return true
}

// handleStreamClosed treats an unexpected end of the event stream as a
// transport error. A close observed after stop or a prior error is a
// no-op because the token no longer matches.
func (c *Controller) handleStreamClosed(token string, cs *capture) {
	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return
	}
	c.failLocked(cs, "transcription stream closed unexpectedly")
}

// failLocked finalizes any in-progress turn, tears the session down,
// and enters the error state. Called with the lock held; releases it.
func (c *Controller) failLocked(cs *capture, msg string) {
	finalized, ok := c.acc.ForcedStop()
	dispatcher := c.dispatcher
	c.token = ""
	c.errMsg = msg
	c.setStatusLocked(StatusError)
	c.mu.Unlock()

	c.logger.Error("session failed", "error", msg)

	if ok {
		dispatcher.Dispatch(*finalized)
	}
	cs.stop()
}
