package mic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// PortAudio captures from the default system input device.
type PortAudio struct {
	logger *log.Logger
}

func NewPortAudio(logger *log.Logger) *PortAudio {
	return &PortAudio{logger: logger}
}

func (p *PortAudio) Open(
	ctx context.Context,
	sampleRate, blockSize int,
) (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}

	src := &portAudioSource{
		logger: p.logger,
		blocks: make(chan []float32, 16),
	}

	stream, err := portaudio.OpenDefaultStream(
		1, // input channels
		0, // output channels
		float64(sampleRate),
		blockSize,
		src.receive,
	)
	if err != nil {
		portaudio.Terminate()
		return nil, classifyOpenError(err)
	}
	src.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start capture stream: %w", err)
	}

	p.logger.Info("mic", "rate", sampleRate, "block", blockSize)

	return src, nil
}

func classifyOpenError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no device") ||
		strings.Contains(msg, "invalid device") {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if strings.Contains(msg, "denied") ||
		strings.Contains(msg, "unauthorized") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("failed to open input device: %w", err)
}

type portAudioSource struct {
	stream *portaudio.Stream
	logger *log.Logger
	blocks chan []float32

	mu     sync.Mutex
	closed bool
}

// receive runs on the audio callback thread. The buffer is reused by
// the driver, so each block is copied before it is handed off.
func (s *portAudioSource) receive(in []float32) {
	block := make([]float32, len(in))
	copy(block, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.blocks <- block:
	default:
		// Consumer fell behind; dropping a block beats blocking the
		// audio callback thread.
	}
}

func (s *portAudioSource) Blocks() <-chan []float32 {
	return s.blocks
}

func (s *portAudioSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if err := s.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop stream: %w", err))
	}
	if err := s.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close stream: %w", err))
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("failed to terminate audio: %w", err))
	}
	close(s.blocks)

	if len(errs) > 0 {
		s.logger.Error("mic teardown", "errors", errs)
		return errs[0]
	}
	return nil
}
