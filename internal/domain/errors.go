package domain

import "errors"

var (
	ErrPromptUnavailable   = errors.New("prompt file unavailable")
	ErrConversionFailed    = errors.New("pdf conversion failed")
	ErrNoReply             = errors.New("llm returned no usable reply")
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
	ErrEmptyAPIKey         = errors.New("llm api key is required")
	ErrUnknownStrategy     = errors.New("unknown pipeline strategy")
)
