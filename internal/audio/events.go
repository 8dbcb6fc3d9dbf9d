package audio

// EventKind is the decoded category of a server event on the live link.
type EventKind string

const (
	// EventAudioDelta carries a chunk of synthesized speech output.
	EventAudioDelta EventKind = "audio-delta"
	// EventTranscriptDelta carries a partial transcript; Direction says whose.
	EventTranscriptDelta EventKind = "transcript-delta"
	// EventTurnComplete signals the model finished its turn.
	EventTurnComplete EventKind = "turn-complete"
	// EventInterrupted signals the user spoke over the model; queued playback
	// should be dropped.
	EventInterrupted EventKind = "interrupted"
)

// Direction says which side of the conversation a transcript fragment
// belongs to.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// ServerEvent is one decoded message from the live session.
type ServerEvent struct {
	Kind      EventKind
	Audio     []byte
	Text      string
	Direction Direction
}

// Callbacks receive session events. OnError and OnClose fire at most once
// each; after either, no further OnMessage calls are made.
type Callbacks struct {
	OnMessage func(ServerEvent)
	OnError   func(error)
	OnClose   func()
}
