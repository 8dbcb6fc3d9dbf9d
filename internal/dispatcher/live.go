package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/davrell/codecity/internal/audio"
	"github.com/davrell/codecity/internal/models"
)

// liveState buffers the in-flight turn of a live session: queued playback
// audio and the partial transcripts of both sides. Flushed to the transcript
// log on turn completion, dropped on interruption.
type liveState struct {
	playback      []byte
	inTranscript  strings.Builder
	outTranscript strings.Builder
}

func (d *Dispatcher) handleStartLiveSession(ctx context.Context) {
	if d.dialer == nil {
		d.appendError("No live audio collaborator configured.")
		if d.requestCredential != nil {
			d.requestCredential()
		}
		return
	}

	d.mu.Lock()
	alreadyActive := d.session != nil
	d.mu.Unlock()
	if alreadyActive {
		// Idempotent guard: never double-start the underlying session.
		d.appendError("Live session is already active.")
		return
	}

	cfg := d.audioCfg
	cfg.SystemInstruction = personaInstruction(d.Profile(), "")

	session, err := d.dialer.Dial(ctx, cfg, audio.Callbacks{
		OnMessage: d.onLiveEvent,
		OnError:   d.onLiveError,
		OnClose:   d.onLiveClose,
	})
	if err != nil {
		d.reportLLMError(fmt.Errorf("could not open live session: %w", err))
		return
	}

	d.mu.Lock()
	d.session = session
	d.live = liveState{}
	d.mu.Unlock()

	d.appendSystem("Live voice link open. Speak when ready.")
}

func (d *Dispatcher) handleStopLiveSession() {
	d.mu.Lock()
	session := d.session
	d.mu.Unlock()

	if session == nil {
		// Idempotent guard: stopping an inactive session is a reported no-op.
		d.appendError("No live session is active.")
		return
	}

	if err := session.Close(); err != nil {
		d.logger.Warn("Error closing live session", zap.Error(err))
	}
	// State reset happens in onLiveClose, the shared cleanup path for
	// explicit stop, runtime error, and server-initiated close.
}

// SendAudioFrame forwards one microphone frame to the active session, if any.
// Frames arriving while no session is active are dropped silently.
func (d *Dispatcher) SendAudioFrame(frame []byte) error {
	d.mu.Lock()
	session := d.session
	d.mu.Unlock()

	if session == nil {
		return nil
	}
	return session.SendAudioFrame(frame)
}

func (d *Dispatcher) onLiveEvent(ev audio.ServerEvent) {
	switch ev.Kind {
	case audio.EventAudioDelta:
		d.mu.Lock()
		d.live.playback = append(d.live.playback, ev.Audio...)
		d.mu.Unlock()
	case audio.EventTranscriptDelta:
		d.mu.Lock()
		if ev.Direction == audio.DirectionInput {
			d.live.inTranscript.WriteString(ev.Text)
		} else {
			d.live.outTranscript.WriteString(ev.Text)
		}
		d.mu.Unlock()
	case audio.EventTurnComplete:
		d.flushLiveTurn()
	case audio.EventInterrupted:
		// Abort queued playback; the user spoke over the model.
		d.mu.Lock()
		d.live.playback = nil
		d.live.outTranscript.Reset()
		d.mu.Unlock()
	}
}

// flushLiveTurn moves the buffered transcripts into the transcript log and
// resets the turn buffers.
func (d *Dispatcher) flushLiveTurn() {
	d.mu.Lock()
	userText := strings.TrimSpace(d.live.inTranscript.String())
	aiText := strings.TrimSpace(d.live.outTranscript.String())
	d.live = liveState{}
	d.mu.Unlock()

	if userText != "" {
		d.log.Append(models.NewMessage(models.SenderUser, userText, models.CategoryCommand))
	}
	if aiText != "" {
		d.log.Append(models.NewMessage(models.SenderAI, aiText, models.CategoryAIResponse))
	}
}

func (d *Dispatcher) onLiveError(err error) {
	d.appendError(fmt.Sprintf("Live session error: %v", err))
}

func (d *Dispatcher) onLiveClose() {
	d.mu.Lock()
	wasActive := d.session != nil
	d.session = nil
	d.live = liveState{}
	d.mu.Unlock()

	if wasActive {
		d.appendSystem("Live voice link closed.")
	}
}
