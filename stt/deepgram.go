package stt

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/listen"

	"glossa/pcm"
)

// DeepgramTransport is an alternative Transport backed by Deepgram's
// live transcription API instead of the gateway protocol.
type DeepgramTransport struct {
	token  string
	logger *log.Logger
}

func NewDeepgramTransport(
	token string,
	logger *log.Logger,
) *DeepgramTransport {
	return &DeepgramTransport{
		token:  token,
		logger: logger,
	}
}

func (t *DeepgramTransport) Open(
	ctx context.Context,
	language string,
) (Stream, error) {
	cOptions := &interfaces.ClientOptions{
		EnableKeepAlive: true,
	}
	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:          "nova-2",
		Language:       language,
		Punctuate:      true,
		Encoding:       "linear16",
		Channels:       pcm.Channels,
		SampleRate:     pcm.SampleRate,
		SmartFormat:    true,
		InterimResults: true,
		UtteranceEndMs: "1000",
		VadEvents:      true,
	}

	stream := &deepgramStream{
		logger:      t.logger,
		events:      make(chan Event, 16),
		audioBuffer: make(chan []byte, 100),
	}

	client, err := listen.NewWebSocket(
		ctx,
		t.token,
		cOptions,
		tOptions,
		&deepgramCallbacks{stream: stream},
	)
	if err != nil {
		return nil, fmt.Errorf(
			"error creating live transcription connection: %w",
			err,
		)
	}

	stream.client = client

	go stream.client.Connect()

	return stream, nil
}

type deepgramStream struct {
	client      *listen.LiveClient
	logger      *log.Logger
	events      chan Event
	audioBuffer chan []byte

	mu      sync.Mutex
	stopped bool
	midTurn bool
}

func (s *deepgramStream) Send(audioPayload string) error {
	data, err := base64.StdEncoding.DecodeString(audioPayload)
	if err != nil {
		return fmt.Errorf("invalid audio payload: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("stream is closed")
	}
	select {
	case s.audioBuffer <- data:
		return nil
	default:
		return fmt.Errorf("audio buffer full")
	}
}

func (s *deepgramStream) Events() <-chan Event {
	return s.events
}

// Close is idempotent. Both channels are closed under the mutex that
// guards every send, so late SDK callbacks cannot panic.
func (s *deepgramStream) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.audioBuffer)
	close(s.events)
	s.mu.Unlock()

	s.client.Stop()
	return nil
}

// emit delivers one event, inserting the separator Deepgram's
// trimmed final results drop: when an utterance spans several final
// results, every fragment after the first gets a leading space so the
// accumulator's verbatim appends reconstruct the sentence boundary.
func (s *deepgramStream) emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	switch event.Kind {
	case Fragment:
		if s.midTurn {
			event.Text = " " + event.Text
		}
		s.midTurn = true
	case TurnComplete:
		s.midTurn = false
	}
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event buffer full", "kind", event.Kind)
	}
}

// deepgramCallbacks adapts the SDK's callback interface onto the
// stream's event channel.
type deepgramCallbacks struct {
	stream *deepgramStream
}

// Open is the SDK's connection acknowledgment; it starts the audio
// pump.
func (c *deepgramCallbacks) Open(ocr *api.OpenResponse) error {
	s := c.stream
	s.logger.Info("open", "kind", "deepgram")
	go func() {
		for data := range s.audioBuffer {
			if err := s.client.WriteBinary(data); err != nil {
				s.logger.Error("failed to write audio data", "error", err)
			}
		}
	}()
	return nil
}

func (c *deepgramCallbacks) Message(mr *api.MessageResponse) error {
	s := c.stream
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}

	transcript := strings.TrimSpace(mr.Channel.Alternatives[0].Transcript)
	if len(transcript) == 0 {
		return nil
	}

	if !mr.IsFinal {
		s.logger.Debug("hear", "tmp", transcript)
		return nil
	}

	s.logger.Info("hear", "txt", transcript)
	s.emit(Event{Kind: Fragment, Text: transcript})
	return nil
}

func (c *deepgramCallbacks) UtteranceEnd(ur *api.UtteranceEndResponse) error {
	c.stream.logger.Debug("utterance end", "timestamp", ur.LastWordEnd)
	c.stream.emit(Event{Kind: TurnComplete})
	return nil
}

func (c *deepgramCallbacks) Error(er *api.ErrorResponse) error {
	c.stream.emit(Event{
		Kind: TransportError,
		Err:  fmt.Errorf("%s: %s", er.Type, er.Description),
	})
	return nil
}

func (c *deepgramCallbacks) Close(ocr *api.CloseResponse) error {
	c.stream.logger.Info("closed", "reason", ocr.Type)
	return nil
}

func (c *deepgramCallbacks) Metadata(md *api.MetadataResponse) error {
	c.stream.logger.Debug("metadata", "metadata", md)
	return nil
}

func (c *deepgramCallbacks) SpeechStarted(
	ssr *api.SpeechStartedResponse,
) error {
	c.stream.logger.Debug("speech start", "timestamp", ssr.Timestamp)
	return nil
}

func (c *deepgramCallbacks) UnhandledEvent(byData []byte) error {
	c.stream.logger.Warn("unhandled event", "data", string(byData))
	return nil
}
