// Package session maps opaque session ids to user ids in a key-value cache.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned when an id has no live entry.
var ErrNoSession = errors.New("session not found")

// Store persists session id → user id entries.
type Store interface {
	Get(ctx context.Context, id string) (int64, error)
	Set(ctx context.Context, id string, userID int64, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
