package llm

import (
	"context"
)

// LLMClient is the single completion call the explainer needs.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
