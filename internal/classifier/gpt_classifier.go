package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davrell/codecity/internal/llm"
	"github.com/davrell/codecity/internal/models"
	"go.uber.org/zap"
)

// classificationTemperature biases the model toward deterministic structured
// output.
const classificationTemperature = 0.1

const instructionPreamble = `You are the command interpreter for the Code City console.
Classify the user's command into exactly one intent and respond with a single JSON object, nothing else.

Intents and their parameters:
- "ask_ai": free-form question for the AI. parameters: {"query": "<the question>"}
- "clear": wipe the terminal. no parameters.
- "help": list available commands. no parameters.
- "switch_profile": change persona. parameters: {"profile_id": "<id>"} where id is one of: bleak, oracle, warden
- "show_profile": report the active persona. no parameters.
- "list_profiles": list all personas. no parameters.
- "open_panel": open a static content panel. parameters: {"panel_id": "<id>"} where id is one of: engines, systems, about
- "trigger_conceptual_backend": run a named city engine. parameters: {"script_name": "<name>"} where name is one of: autoclean, sovereign_brain, loom_optimization, swarm_analytics, jailbreak_protocol, chrono_sync, ghost_walker, deep_archive, signal_tracer, echo_chamber, neural_forge
- "trigger_snapshot_action": save or load a console snapshot. parameters: {"action": "save"|"load", "name": "<optional snapshot name or id>"}
- "list_snapshots": list saved snapshots. no parameters.
- "delete_snapshot": delete a snapshot. parameters: {"id": "<snapshot id>"}
- "start_live_session": start the live voice link. no parameters.
- "stop_live_session": stop the live voice link. no parameters.
- "analyze_idea": structured analysis of an idea. parameters: {"idea": "<the idea>"}
- "refactor_suggestion": suggest a rework of something the user describes. parameters: {"subject": "<what to refactor>"}
- "play_fox_hunt": the fox hunt mini-game. parameters: {"action": "start"|"guess"|"quit", "spot": "<guessed hiding spot, for guesses>"}
- "system_status": report console status. no parameters.

Response shape:
{"intent": "<intent>", "parameters": {...}, "nuance": "<one-word tone hint>", "needs_clarification": false, "clarification_text": ""}

If the command is ambiguous, set "needs_clarification" to true and put a short question in "clarification_text".
If nothing fits, use "ask_ai" with the whole command as the query.`

// GPTClassifier classifies commands by delegating entirely to the completion
// collaborator. Every call is independent: no retry, no backoff, no caching.
type GPTClassifier struct {
	client    llm.Client
	maxTokens int
	logger    *zap.Logger
}

func NewGPTClassifier(client llm.Client, maxTokens int, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:    client,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Classify sends the raw command to the model with a JSON-only directive,
// parses the reply, and validates it against the intent and parameter
// allow-lists. It never raises past its own boundary; on any failure the
// caller receives the ask_ai fallback with a clarification message embedding
// the error text.
func (c *GPTClassifier) Classify(ctx context.Context, rawText string) models.ClassificationResult {
	reply, err := c.client.Generate(ctx, llm.Request{
		Prompt:            fmt.Sprintf("Command: %s", rawText),
		SystemInstruction: instructionPreamble,
		Temperature:       classificationTemperature,
		MaxTokens:         c.maxTokens,
		JSONOnly:          true,
	})
	if err != nil {
		c.logger.Error("Classification call failed", zap.Error(err))
		return clarificationFallback(rawText, err.Error())
	}

	var res models.ClassificationResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &res); err != nil {
		c.logger.Error("Failed to parse classification response",
			zap.Error(err),
			zap.String("response", reply))
		return clarificationFallback(rawText, err.Error())
	}

	return Validate(res, rawText)
}

func clarificationFallback(rawText, errText string) models.ClassificationResult {
	res := models.AskAIFallback(rawText)
	res.NeedsClarification = true
	res.ClarificationText = fmt.Sprintf("I couldn't interpret that command (%s). Could you rephrase it?", errText)
	return res
}
