package audio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Config describes one live session.
type Config struct {
	URL               string
	APIKey            string
	Model             string
	SystemInstruction string
}

// Session is a handle to an active duplex audio stream.
type Session interface {
	SendAudioFrame(frame []byte) error
	Close() error
}

// Dialer opens live sessions. The dispatcher only depends on this interface
// so tests can substitute a fake.
type Dialer interface {
	Dial(ctx context.Context, cfg Config, cb Callbacks) (Session, error)
}

// wire shapes for the realtime websocket protocol.
type clientEvent struct {
	Type    string         `json:"type"`
	Audio   string         `json:"audio,omitempty"`
	Session *sessionUpdate `json:"session,omitempty"`
}

type sessionUpdate struct {
	Model        string `json:"model,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type serverEvent struct {
	Type      string `json:"type"`
	Delta     string `json:"delta,omitempty"`
	Direction string `json:"direction,omitempty"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// WebSocketDialer connects to a realtime speech endpoint over a websocket.
type WebSocketDialer struct {
	logger *zap.Logger
}

func NewWebSocketDialer(logger *zap.Logger) *WebSocketDialer {
	return &WebSocketDialer{logger: logger}
}

func (d *WebSocketDialer) Dial(ctx context.Context, cfg Config, cb Callbacks) (Session, error) {
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	conn, _, err := websocket.Dial(ctx, cfg.URL, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial live session: %w", err)
	}

	s := &wsSession{
		conn:   conn,
		cb:     cb,
		logger: d.logger,
	}

	// Configure the session before any audio flows.
	if err := s.writeJSON(clientEvent{
		Type: "session.update",
		Session: &sessionUpdate{
			Model:        cfg.Model,
			Instructions: cfg.SystemInstruction,
		},
	}); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "session setup failed")
		return nil, fmt.Errorf("failed to configure live session: %w", err)
	}

	go s.readLoop()

	return s, nil
}

type wsSession struct {
	conn   *websocket.Conn
	cb     Callbacks
	logger *zap.Logger

	writeMu sync.Mutex
	once    sync.Once
}

// SendAudioFrame forwards one opaque microphone frame to the server.
func (s *wsSession) SendAudioFrame(frame []byte) error {
	return s.writeJSON(clientEvent{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(frame),
	})
}

// Close ends the session. Explicit stop, a read error, and a server-initiated
// close all converge on teardown: the websocket is closed and OnClose fires
// exactly once.
func (s *wsSession) Close() error {
	s.teardown(nil)
	return nil
}

func (s *wsSession) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.Write(context.Background(), websocket.MessageText, data)
}

func (s *wsSession) readLoop() {
	for {
		_, data, err := s.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				s.logger.Debug("Live session closed by server")
				s.teardown(nil)
			} else {
				s.logger.Warn("Live session read error", zap.Error(err))
				s.teardown(err)
			}
			return
		}

		var ev serverEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warn("Unparseable live session event", zap.Error(err))
			continue
		}

		s.deliver(ev)
	}
}

func (s *wsSession) deliver(ev serverEvent) {
	if s.cb.OnMessage == nil {
		return
	}

	switch ev.Type {
	case "response.audio.delta":
		audio, err := base64.StdEncoding.DecodeString(ev.Delta)
		if err != nil {
			s.logger.Warn("Bad audio delta encoding", zap.Error(err))
			return
		}
		s.cb.OnMessage(ServerEvent{Kind: EventAudioDelta, Audio: audio})
	case "response.audio_transcript.delta":
		s.cb.OnMessage(ServerEvent{Kind: EventTranscriptDelta, Text: ev.Delta, Direction: DirectionOutput})
	case "conversation.item.input_audio_transcription.delta":
		s.cb.OnMessage(ServerEvent{Kind: EventTranscriptDelta, Text: ev.Delta, Direction: DirectionInput})
	case "response.done":
		s.cb.OnMessage(ServerEvent{Kind: EventTurnComplete})
	case "input_audio_buffer.speech_started":
		s.cb.OnMessage(ServerEvent{Kind: EventInterrupted})
	case "error":
		s.teardown(fmt.Errorf("live session error: %s", ev.Error.Message))
	default:
		s.logger.Debug("Ignoring live session event", zap.String("type", ev.Type))
	}
}

// teardown releases the connection and fires OnError (when err != nil) then
// OnClose, exactly once no matter which path got here first.
func (s *wsSession) teardown(err error) {
	s.once.Do(func() {
		if closeErr := s.conn.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			s.logger.Debug("Failed to close live session socket", zap.Error(closeErr))
		}
		if err != nil && s.cb.OnError != nil {
			s.cb.OnError(err)
		}
		if s.cb.OnClose != nil {
			s.cb.OnClose()
		}
	})
}
