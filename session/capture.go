package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"glossa/mic"
	"glossa/pcm"
	"glossa/stt"
)

// defaultBlockSize is the number of samples per captured block, about
// a quarter second at 16 kHz.
const defaultBlockSize = 4096

// errStopped means stop was requested before start finished acquiring
// resources; everything acquired so far has been released.
var errStopped = errors.New("capture stopped during setup")

// capture owns one recording session's resources: the microphone
// source, the transcription stream, and the pump goroutine linking
// them. All three share a single lifetime.
type capture struct {
	mic       mic.Capture
	transport stt.Transport
	logger    *log.Logger

	mu      sync.Mutex
	source  mic.Source
	stream  stt.Stream
	stopped bool
	stopErr error
}

func newCapture(
	m mic.Capture,
	transport stt.Transport,
	logger *log.Logger,
) *capture {
	return &capture{
		mic:       m,
		transport: transport,
		logger:    logger,
	}
}

// start acquires the microphone and opens the transcription stream,
// then wires captured blocks into the stream. A failure at any step
// releases everything acquired before it, so on error no resource is
// left allocated. If stop won the race during acquisition, the fresh
// resources are released and errStopped is returned.
func (c *capture) start(ctx context.Context, language string) error {
	source, err := c.mic.Open(ctx, pcm.SampleRate, defaultBlockSize)
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	stream, err := c.transport.Open(ctx, language)
	if err != nil {
		source.Close()
		return fmt.Errorf("failed to open transcription stream: %w", err)
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		source.Close()
		stream.Close()
		return errStopped
	}
	c.source = source
	c.stream = stream
	c.mu.Unlock()

	go c.pump(source, stream)

	return nil
}

// pump encodes each captured block and pushes it onto the stream. It
// exits when the source closes.
func (c *capture) pump(source mic.Source, stream stt.Stream) {
	for block := range source.Blocks() {
		if err := stream.Send(pcm.Encode(block)); err != nil {
			c.logger.Debug("send", "error", err)
		}
	}
}

// events is only valid after a successful start; the controller wires
// the event loop once start has returned.
func (c *capture) events() <-chan stt.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream.Events()
}

// stop releases every resource. Each release step is attempted even if
// an earlier one fails; errors are joined. Safe to call repeatedly and
// safe to call before start has completed.
func (c *capture) stop() error {
	c.mu.Lock()
	if c.stopped {
		err := c.stopErr
		c.mu.Unlock()
		return err
	}
	c.stopped = true
	source, stream := c.source, c.stream
	c.mu.Unlock()

	var errs []error
	if source != nil {
		if err := source.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	c.mu.Lock()
	c.stopErr = err
	c.mu.Unlock()
	if err != nil {
		c.logger.Error("capture teardown", "error", err)
	}
	return err
}
