package dto

import (
	"errors"
	"time"

	"symptom-checker-be/internal/pkg/apperror"
)

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily analysis limit exceeded"
}

// Is lets callers match it with errors.Is(err, apperror.ErrQuotaExceeded).
func (e *LimitExceededError) Is(target error) bool {
	return errors.Is(apperror.ErrQuotaExceeded, target)
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}
