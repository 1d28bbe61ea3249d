package uuidutil

import (
	"github.com/google/uuid"
)

// New generates a new random UUID v4.
func New() uuid.UUID {
	return uuid.New()
}

// Parse safely parses a string into a UUID with error handling.
func Parse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a string into a UUID and panics on error.
// Use this only in tests or when you're certain the input is valid.
func MustParse(s string) uuid.UUID {
	return uuid.MustParse(s)
}

// IsValid checks if a string is a valid UUID format.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
