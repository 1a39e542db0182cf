// Package turn segments a stream of transcription fragments into
// discrete turns and keeps the append-only transcript history.
package turn

import (
	"github.com/google/uuid"
)

// Turn is one contiguous utterance: its accumulated source text plus,
// once the dispatcher resolves it, a translation.
type Turn struct {
	ID         string
	Original   string
	Translated string
	IsFinal    bool
}

// Accumulator holds at most one in-progress turn and the ordered
// history of finalized turns. It is not safe for concurrent use; the
// session controller serializes all calls.
type Accumulator struct {
	current *Turn
	history []*Turn
	byID    map[string]*Turn
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		byID: make(map[string]*Turn),
	}
}

// Fragment appends text to the current turn, creating one if none is
// in progress. Fragments always append, never replace.
func (a *Accumulator) Fragment(text string) {
	if a.current == nil {
		a.current = &Turn{
			ID:       uuid.NewString(),
			Original: text,
		}
		return
	}
	a.current.Original += text
}

// Complete finalizes the current turn and appends it to history. A
// boundary event with no current turn, or with an empty one, is a
// no-op so spurious boundaries never produce empty history entries.
func (a *Accumulator) Complete() (*Turn, bool) {
	if a.current == nil || a.current.Original == "" {
		return nil, false
	}
	t := a.current
	t.IsFinal = true
	a.history = append(a.history, t)
	a.byID[t.ID] = t
	a.current = nil
	return t, true
}

// ForcedStop finalizes the in-progress turn when the session ends
// mid-utterance, so transcribed speech is never silently dropped. An
// empty current turn is discarded instead.
func (a *Accumulator) ForcedStop() (*Turn, bool) {
	t, ok := a.Complete()
	a.current = nil
	return t, ok
}

// Resolve writes a translation result into the history entry with the
// given id. Position in history never changes; completion order across
// turns is irrelevant.
func (a *Accumulator) Resolve(id, translated string) bool {
	t, ok := a.byID[id]
	if !ok {
		return false
	}
	t.Translated = translated
	return true
}

// Current returns a snapshot of the in-progress turn, or false when
// none exists.
func (a *Accumulator) Current() (Turn, bool) {
	if a.current == nil {
		return Turn{}, false
	}
	return *a.current, true
}

// History returns a snapshot of the finalized turns in boundary-event
// order.
func (a *Accumulator) History() []Turn {
	out := make([]Turn, len(a.history))
	for i, t := range a.history {
		out[i] = *t
	}
	return out
}

// Len reports the number of finalized turns.
func (a *Accumulator) Len() int {
	return len(a.history)
}
