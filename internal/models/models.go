package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderUser   Sender = "USER"
	SenderSystem Sender = "SYSTEM"
	SenderAI     Sender = "AI"
	SenderGame   Sender = "GAME"
)

// Category classifies a transcript message for rendering purposes.
type Category string

const (
	CategoryCommand       Category = "command"
	CategoryAIResponse    Category = "ai-response"
	CategorySystem        Category = "system-message"
	CategoryError         Category = "error"
	CategoryGame          Category = "game"
	CategoryNLUStatus     Category = "nlu-status"
	CategoryClarification Category = "nlu-clarification"
)

// Message is a single entry in the console transcript.
type Message struct {
	ID        string   `json:"id"`
	Sender    Sender   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
	Category  Category `json:"category"`
}

// NewMessage stamps a fresh transcript message with a unique id and the
// current time.
func NewMessage(sender Sender, text string, category Category) Message {
	return Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().Format(time.RFC3339),
		Category:  category,
	}
}

// ClassificationResult is the validated outcome of classifying one raw user
// command. The model's JSON output is untrusted; a result only reaches the
// dispatcher after allow-list validation.
type ClassificationResult struct {
	Intent             string            `json:"intent"`
	Parameters         map[string]string `json:"parameters,omitempty"`
	Nuance             string            `json:"nuance,omitempty"`
	NeedsClarification bool              `json:"needs_clarification"`
	ClarificationText  string            `json:"clarification_text,omitempty"`
}

// Param returns a named parameter or "" when absent.
func (r ClassificationResult) Param(key string) string {
	if r.Parameters == nil {
		return ""
	}
	return r.Parameters[key]
}

// Intent names form a closed set. Anything outside it is coerced to
// IntentAskAI before dispatch.
const (
	IntentAskAI             = "ask_ai"
	IntentClear             = "clear"
	IntentHelp              = "help"
	IntentSwitchProfile     = "switch_profile"
	IntentShowProfile       = "show_profile"
	IntentListProfiles      = "list_profiles"
	IntentOpenPanel         = "open_panel"
	IntentConceptualBackend = "trigger_conceptual_backend"
	IntentSnapshotAction    = "trigger_snapshot_action"
	IntentListSnapshots     = "list_snapshots"
	IntentDeleteSnapshot    = "delete_snapshot"
	IntentStartLiveSession  = "start_live_session"
	IntentStopLiveSession   = "stop_live_session"
	IntentAnalyzeIdea       = "analyze_idea"
	IntentRefactor          = "refactor_suggestion"
	IntentPlayFoxHunt       = "play_fox_hunt"
	IntentSystemStatus      = "system_status"
)

// KnownIntents is the dispatchable set, used to reject hallucinated intent
// names coming back from the model.
var KnownIntents = map[string]bool{
	IntentAskAI:             true,
	IntentClear:             true,
	IntentHelp:              true,
	IntentSwitchProfile:     true,
	IntentShowProfile:       true,
	IntentListProfiles:      true,
	IntentOpenPanel:         true,
	IntentConceptualBackend: true,
	IntentSnapshotAction:    true,
	IntentListSnapshots:     true,
	IntentDeleteSnapshot:    true,
	IntentStartLiveSession:  true,
	IntentStopLiveSession:   true,
	IntentAnalyzeIdea:       true,
	IntentRefactor:          true,
	IntentPlayFoxHunt:       true,
	IntentSystemStatus:      true,
}

// ConceptualScripts is the allow-list for trigger_conceptual_backend. The
// scripts themselves are textual placeholders; the list exists to reject
// hallucinated names. Compared case-insensitively.
var ConceptualScripts = []string{
	"autoclean",
	"sovereign_brain",
	"loom_optimization",
	"swarm_analytics",
	"jailbreak_protocol",
	"chrono_sync",
	"ghost_walker",
	"deep_archive",
	"signal_tracer",
	"echo_chamber",
	"neural_forge",
}

// SnapshotActions is the allow-list for trigger_snapshot_action.
var SnapshotActions = []string{"save", "load"}

// AskAIFallback builds the substitute result used whenever classification
// cannot be trusted: the raw command is forwarded verbatim as a free-form
// query.
func AskAIFallback(rawText string) ClassificationResult {
	return ClassificationResult{
		Intent:     IntentAskAI,
		Parameters: map[string]string{"query": rawText},
		Nuance:     "general",
	}
}
