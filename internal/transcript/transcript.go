package transcript

import (
	"sync"

	"github.com/davrell/codecity/internal/models"
)

// ClearedText is the single synthetic message left behind by Clear.
const ClearedText = "Terminal cleared."

// Log is the append-only console transcript. Messages are never mutated or
// individually removed; Clear replaces the whole sequence with one synthetic
// system message. Ordering is insertion order.
type Log struct {
	mu       sync.RWMutex
	messages []models.Message
	notify   func(models.Message)
}

func NewLog() *Log {
	return &Log{}
}

// OnAppend registers a callback invoked for every appended message, including
// the synthetic one produced by Clear. Frontends use it to render live.
// Not safe to call after the log is in use.
func (l *Log) OnAppend(fn func(models.Message)) {
	l.notify = fn
}

// Append adds a message to the end of the transcript.
func (l *Log) Append(msg models.Message) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	if l.notify != nil {
		l.notify(msg)
	}
}

// Clear replaces the transcript with a single synthetic system message.
func (l *Log) Clear() {
	cleared := models.NewMessage(models.SenderSystem, ClearedText, models.CategorySystem)

	l.mu.Lock()
	l.messages = []models.Message{cleared}
	l.mu.Unlock()

	if l.notify != nil {
		l.notify(cleared)
	}
}

// Restore replaces the transcript contents wholesale, used when loading a
// snapshot. The slice is copied.
func (l *Log) Restore(messages []models.Message) {
	l.mu.Lock()
	l.messages = append([]models.Message(nil), messages...)
	l.mu.Unlock()
}

// Snapshot returns a defensive copy of the transcript for persistence
// collaborators.
func (l *Log) Snapshot() []models.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len reports the number of messages currently held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
