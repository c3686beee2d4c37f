package contract

import "context"

// GuestUsageRepository records the single analysis a guest client session
// may run.
type GuestUsageRepository interface {
	// Consume marks the key as used and reports whether it was still unused.
	// Must be atomic: of two concurrent calls for one key only one returns true.
	Consume(ctx context.Context, guestKey string) (bool, error)
}
