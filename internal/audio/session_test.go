package audio

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collectingSession() (*wsSession, *[]ServerEvent) {
	var events []ServerEvent
	s := &wsSession{
		cb: Callbacks{
			OnMessage: func(ev ServerEvent) {
				events = append(events, ev)
			},
		},
		logger: zap.NewNop(),
	}
	return s, &events
}

func TestDeliverAudioDelta(t *testing.T) {
	s, events := collectingSession()

	s.deliver(serverEvent{
		Type:  "response.audio.delta",
		Delta: base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03}),
	})

	require.Len(t, *events, 1)
	assert.Equal(t, EventAudioDelta, (*events)[0].Kind)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, (*events)[0].Audio)
}

func TestDeliverBadAudioEncodingDropped(t *testing.T) {
	s, events := collectingSession()

	s.deliver(serverEvent{Type: "response.audio.delta", Delta: "not base64!!!"})

	assert.Empty(t, *events)
}

func TestDeliverTranscriptDirections(t *testing.T) {
	s, events := collectingSession()

	s.deliver(serverEvent{Type: "response.audio_transcript.delta", Delta: "city "})
	s.deliver(serverEvent{Type: "conversation.item.input_audio_transcription.delta", Delta: "hello"})

	require.Len(t, *events, 2)
	assert.Equal(t, EventTranscriptDelta, (*events)[0].Kind)
	assert.Equal(t, DirectionOutput, (*events)[0].Direction)
	assert.Equal(t, "city ", (*events)[0].Text)
	assert.Equal(t, DirectionInput, (*events)[1].Direction)
	assert.Equal(t, "hello", (*events)[1].Text)
}

func TestDeliverTurnCompleteAndInterrupted(t *testing.T) {
	s, events := collectingSession()

	s.deliver(serverEvent{Type: "response.done"})
	s.deliver(serverEvent{Type: "input_audio_buffer.speech_started"})

	require.Len(t, *events, 2)
	assert.Equal(t, EventTurnComplete, (*events)[0].Kind)
	assert.Equal(t, EventInterrupted, (*events)[1].Kind)
}

func TestDeliverUnknownTypeIgnored(t *testing.T) {
	s, events := collectingSession()

	s.deliver(serverEvent{Type: "session.updated"})

	assert.Empty(t, *events)
}
