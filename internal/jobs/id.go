// Package jobs holds helpers shared by run-oriented entry points: run ID
// generation and failure persistence.
package jobs

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID creates a new random run ID with the given prefix.
// The prefix should include a trailing dash, e.g. "run-".
func GenerateID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NormalizeID adds prefix to id unless it is already there, so callers may
// pass either the bare or the prefixed form.
func NormalizeID(id, prefix string) string {
	if id == "" || strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}
