package main

import (
	"context"

	"github.com/davrell/codecity/internal/models"
)

// offlineClassifier stands in when no completion credential is configured.
// Every command becomes an ask_ai fallback, so the dispatcher's own
// missing-credential path reports the problem and requests a credential.
type offlineClassifier struct{}

func (offlineClassifier) Classify(_ context.Context, rawText string) models.ClassificationResult {
	return models.AskAIFallback(rawText)
}
