package serverutils

import (
	"strings"

	"symptom-checker-be/internal/pkg/apperror"
)

const sessionIdLength = 24

// NormalizeSessionID drops every non-hex character and requires exactly 24
// hex digits to remain.
func NormalizeSessionID(raw string) (string, error) {
	var sb strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			sb.WriteRune(r)
		}
	}
	id := sb.String()
	if len(id) != sessionIdLength {
		return "", apperror.Validation("Invalid session id")
	}
	return id, nil
}
