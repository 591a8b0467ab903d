package utils

import "github.com/google/uuid"

// NewID returns a fresh opaque identifier for persisted records.
func NewID() string {
	return uuid.NewString()
}
