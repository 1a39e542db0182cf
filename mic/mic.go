// Package mic abstracts microphone capture. A Source delivers
// fixed-size blocks of normalized mono samples at the rate the
// transcription gateway expects.
package mic

import (
	"context"
	"errors"
)

var (
	ErrPermissionDenied = errors.New("microphone access denied")
	ErrNoDevice         = errors.New("no audio input device available")
)

// Source is one open capture stream. Blocks is closed after Close
// returns; no block is delivered afterwards.
type Source interface {
	Blocks() <-chan []float32
	Close() error
}

// Capture opens microphone sources.
type Capture interface {
	Open(ctx context.Context, sampleRate, blockSize int) (Source, error)
}
