package port

import "context"

// TextExtractor converts a document on disk into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
