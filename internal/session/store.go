// Package session provides per-client key/value storage bound to a session
// cookie. It backs the pending-signup state between the signup and OTP
// verification requests.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("session: key not found")

// Store persists session values. A ttl of zero means the value does not
// expire on its own.
type Store interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte, ttl time.Duration) error
	// Take returns the value and removes it in one step.
	Take(ctx context.Context, sessionID, key string) ([]byte, error)
	Delete(ctx context.Context, sessionID, key string) error
}
