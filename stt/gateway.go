package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"glossa/pcm"
)

const writeTimeout = 10 * time.Second

// GatewayTransport speaks the transcription gateway's websocket
// protocol: outbound base64 PCM16 audio messages, inbound fragment and
// turn-complete messages.
type GatewayTransport struct {
	URL    string
	APIKey string
	logger *log.Logger
}

func NewGatewayTransport(
	rawURL, apiKey string,
	logger *log.Logger,
) *GatewayTransport {
	return &GatewayTransport{
		URL:    rawURL,
		APIKey: apiKey,
		logger: logger,
	}
}

func (t *GatewayTransport) Open(
	ctx context.Context,
	language string,
) (Stream, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	q := u.Query()
	q.Set("language", language)
	u.RawQuery = q.Encode()

	header := make(map[string][]string)
	if t.APIKey != "" {
		header["Authorization"] = []string{"Bearer " + t.APIKey}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(
		ctx,
		u.String(),
		header,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway: %w", err)
	}

	s := &gatewayStream{
		conn:   conn,
		logger: t.logger,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()

	t.logger.Info("open", "kind", "gateway", "language", language)

	return s, nil
}

type gatewayStream struct {
	conn   *websocket.Conn
	logger *log.Logger
	events chan Event
	done   chan struct{}

	writeMu sync.Mutex
	mu      sync.Mutex
	closed  bool
}

// audioMessage is the outbound wire shape.
type audioMessage struct {
	AudioPayload string `json:"audioPayload"`
	Format       string `json:"format"`
}

// gatewayMessage is the inbound wire shape; exactly one field is set.
type gatewayMessage struct {
	Fragment     string `json:"fragment,omitempty"`
	TurnComplete bool   `json:"turnComplete,omitempty"`
	Error        string `json:"error,omitempty"`
}

// decodeEvent maps an inbound gateway message to a stream event.
// Messages with no recognized field are skipped.
func decodeEvent(data []byte) (Event, bool) {
	var msg gatewayMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Event{}, false
	}
	switch {
	case msg.Error != "":
		return Event{
			Kind: TransportError,
			Err:  fmt.Errorf("gateway error: %s", msg.Error),
		}, true
	case msg.TurnComplete:
		return Event{Kind: TurnComplete}, true
	case msg.Fragment != "":
		return Event{Kind: Fragment, Text: msg.Fragment}, true
	}
	return Event{}, false
}

func (s *gatewayStream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isClosed() {
				s.deliver(Event{
					Kind: TransportError,
					Err:  fmt.Errorf("gateway connection lost: %w", err),
				})
			}
			return
		}
		event, ok := decodeEvent(data)
		if !ok {
			s.logger.Debug("skip", "data", string(data))
			continue
		}
		if !s.deliver(event) || event.Kind == TransportError {
			return
		}
	}
}

// deliver hands an event to the consumer, giving up once Close is
// requested so an abandoned stream never wedges the read loop on a
// full buffer.
func (s *gatewayStream) deliver(event Event) bool {
	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	}
}

func (s *gatewayStream) Send(audioPayload string) error {
	if s.isClosed() {
		return fmt.Errorf("stream is closed")
	}
	msg := audioMessage{
		AudioPayload: audioPayload,
		Format:       pcm.Format,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode audio message: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

func (s *gatewayStream) Events() <-chan Event {
	return s.events
}

func (s *gatewayStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	s.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	s.writeMu.Unlock()

	return s.conn.Close()
}

func (s *gatewayStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
