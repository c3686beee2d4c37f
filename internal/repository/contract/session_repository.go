package contract

import (
	"context"
	"errors"

	"symptom-checker-be/internal/entity"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionVersionConflict means the stored version moved past the one
	// the caller read; the update was not applied.
	ErrSessionVersionConflict = errors.New("session was modified concurrently")
)

// SessionRepository is the durable Session Store. Ownership is enforced by
// callers, never here.
type SessionRepository interface {
	// Create assigns Id, Version and both timestamps.
	Create(ctx context.Context, session *entity.Session) error
	// FindById returns nil, nil when nothing matches.
	FindById(ctx context.Context, id string) (*entity.Session, error)
	// Update replaces the mutable fields when session.Version still matches
	// the stored version, then bumps Version and UpdatedAt.
	Update(ctx context.Context, session *entity.Session) error
	// ListByUserId returns the owner's sessions, newest first by creation time.
	ListByUserId(ctx context.Context, userId string) ([]*entity.SessionSummary, error)
}
