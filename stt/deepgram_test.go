package stt

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"glossa/turn"
)

func newTestDeepgramStream() *deepgramStream {
	return &deepgramStream{
		logger:      log.New(io.Discard),
		events:      make(chan Event, 16),
		audioBuffer: make(chan []byte, 4),
	}
}

func drainInto(t *testing.T, s *deepgramStream, acc *turn.Accumulator) {
	t.Helper()
	for {
		select {
		case event := <-s.events:
			switch event.Kind {
			case Fragment:
				acc.Fragment(event.Text)
			case TurnComplete:
				acc.Complete()
			}
		default:
			return
		}
	}
}

func TestDeepgramFragmentSeparators(t *testing.T) {
	t.Run("Multi Segment Utterance", func(t *testing.T) {
		s := newTestDeepgramStream()
		s.emit(Event{Kind: Fragment, Text: "Hola mundo."})
		s.emit(Event{Kind: Fragment, Text: "Segunda frase."})
		s.emit(Event{Kind: TurnComplete})

		acc := turn.NewAccumulator()
		drainInto(t, s, acc)

		history := acc.History()
		if len(history) != 1 {
			t.Fatalf("history has %d entries, want 1", len(history))
		}
		want := "Hola mundo. Segunda frase."
		if history[0].Original != want {
			t.Errorf("Original = %q, want %q", history[0].Original, want)
		}
	})

	t.Run("No Leading Space After Boundary", func(t *testing.T) {
		s := newTestDeepgramStream()
		s.emit(Event{Kind: Fragment, Text: "Primera."})
		s.emit(Event{Kind: TurnComplete})
		s.emit(Event{Kind: Fragment, Text: "Nueva."})

		acc := turn.NewAccumulator()
		drainInto(t, s, acc)

		current, ok := acc.Current()
		if !ok {
			t.Fatal("no current turn after post-boundary fragment")
		}
		if current.Original != "Nueva." {
			t.Errorf("Original = %q, want %q", current.Original, "Nueva.")
		}
	})

	t.Run("Single Segment Unchanged", func(t *testing.T) {
		s := newTestDeepgramStream()
		s.emit(Event{Kind: Fragment, Text: "Solo."})
		s.emit(Event{Kind: TurnComplete})

		acc := turn.NewAccumulator()
		drainInto(t, s, acc)

		history := acc.History()
		if len(history) != 1 || history[0].Original != "Solo." {
			t.Errorf("history = %+v, want one entry %q", history, "Solo.")
		}
	})
}
