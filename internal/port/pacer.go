package port

import "context"

// Pacer blocks between rate-limited operations.
type Pacer interface {
	Wait(ctx context.Context) error
}
