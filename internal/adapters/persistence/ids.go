// Package persistence holds the small infrastructure adapters the store relies on:
// identifier generation and the wall clock.
package persistence

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/workhub/internal/ports/secondary"
)

// UUIDGenerator implements secondary.IDGenerator with random (v4) UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns "<PREFIX>-<uuid>", or a bare uuid when prefix is empty.
func (g *UUIDGenerator) NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return strings.ToUpper(prefix) + "-" + id
}

// SystemClock implements secondary.Clock with the wall clock, in UTC.
type SystemClock struct{}

// NewSystemClock creates a new SystemClock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock that always returns the same instant until advanced.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c *FixedClock) Now() time.Time {
	return c.T
}

// Advance moves the fixed instant forward.
func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

var (
	_ secondary.IDGenerator = (*UUIDGenerator)(nil)
	_ secondary.Clock       = SystemClock{}
	_ secondary.Clock       = (*FixedClock)(nil)
)
