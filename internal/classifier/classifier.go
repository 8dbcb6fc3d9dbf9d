package classifier

import (
	"context"
	"strings"

	"github.com/davrell/codecity/internal/models"
)

// Classifier turns one raw user command into a validated
// ClassificationResult. Implementations never return an error: every failure
// mode folds into the ask_ai fallback so callers always receive a
// dispatchable result.
type Classifier interface {
	Classify(ctx context.Context, rawText string) models.ClassificationResult
}

// Validate coerces an untrusted classification into the closed intent set.
// Unknown intents, and allow-listed intents carrying a parameter outside
// their allow-list, discard the whole result in favor of the ask_ai fallback
// built from the original raw text. The dispatcher re-runs this at its entry
// point so re-entrant dispatches get the same treatment as direct user input.
func Validate(res models.ClassificationResult, rawText string) models.ClassificationResult {
	if res.NeedsClarification {
		return res
	}

	if !models.KnownIntents[res.Intent] {
		return models.AskAIFallback(rawText)
	}

	switch res.Intent {
	case models.IntentConceptualBackend:
		if !inAllowList(models.ConceptualScripts, res.Param("script_name")) {
			return models.AskAIFallback(rawText)
		}
	case models.IntentSnapshotAction:
		if !inAllowList(models.SnapshotActions, res.Param("action")) {
			return models.AskAIFallback(rawText)
		}
	}

	return res
}

func inAllowList(allowed []string, value string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}
