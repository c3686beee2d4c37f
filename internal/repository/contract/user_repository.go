package contract

import (
	"context"

	"symptom-checker-be/internal/entity"
	"symptom-checker-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)

	// ResetDailyUsage zeroes the counter when its day key differs from day.
	ResetDailyUsage(ctx context.Context, id uuid.UUID, day string) error
	// TryIncrementDailyUsage atomically counts one request unless the counter
	// already reached limit. It reports whether the request was counted.
	TryIncrementDailyUsage(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	// DecrementDailyUsage returns one request to the counter, never below zero.
	DecrementDailyUsage(ctx context.Context, id uuid.UUID, day string) error
}
