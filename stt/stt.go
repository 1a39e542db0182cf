// Package stt streams captured audio to a speech recognition service
// and delivers transcription activity as a serialized event stream.
package stt

import (
	"context"
)

type EventKind int

const (
	// Fragment carries an incremental piece of transcribed text for
	// the current utterance.
	Fragment EventKind = iota
	// TurnComplete signals the end of the current utterance.
	TurnComplete
	// TransportError is fatal to the stream.
	TransportError
)

type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Stream is one open transcription connection. Events is closed once
// the stream shuts down; no event is delivered after Close returns.
type Stream interface {
	Send(audioPayload string) error
	Events() <-chan Event
	Close() error
}

// Transport opens transcription streams for a given source language.
type Transport interface {
	Open(ctx context.Context, language string) (Stream, error)
}
