package port

import "context"

// GenerateInput carries a single composed prompt to the model.
type GenerateInput struct {
	Prompt string
	// IncludeThoughts asks the provider to return reasoning summaries alongside the reply.
	// They are never part of the returned text.
	IncludeThoughts bool
}

// GenerateOutput contains the reply of one model call.
type GenerateOutput struct {
	Text      string
	ModelUsed string
}

// LLMClient abstracts a single-shot text generation call. One call is one attempt.
type LLMClient interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
