package llm

import "context"

// Request is a single completion call. SystemInstruction may be empty.
// JSONOnly asks the provider to constrain output to a JSON object.
type Request struct {
	Prompt            string
	SystemInstruction string
	Temperature       float32
	MaxTokens         int
	JSONOnly          bool
}

// Client is the completion collaborator. Implementations return the raw text
// of the model's reply; callers own any parsing.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
