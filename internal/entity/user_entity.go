package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Daily analysis quota. DailyUsageDay is the calendar day (YYYY-MM-DD,
	// server time) the counter belongs to.
	DailyUsage    int
	DailyUsageDay string
}
