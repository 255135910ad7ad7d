// Package id provides the identifier strategy shared by every entity:
// opaque UUIDv7 values generated by the application.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier type of users, stores, banks, reports and balance lines.
type ID = uuid.UUID

// New generates a new UUIDv7. Values are time-ordered, which keeps
// primary key inserts append-only in B-tree indexes.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only in tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
