package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Peek for an unknown session id.
var ErrNotFound = errors.New("session: not found")

// Store is the session repository. The store owns identity: an empty or
// unknown id always yields a freshly created session, never an error.
type Store interface {
	// GetOrCreate resolves the session for id, creating one (with a new id)
	// when id is empty or unknown. created reports whether a new session was
	// minted.
	GetOrCreate(ctx context.Context, id string) (sess *Session, created bool, err error)
	// Peek returns the session for id without creating or touching it.
	// Unknown ids yield ErrNotFound.
	Peek(ctx context.Context, id string) (*Session, error)
	// Save persists the session. Persistence is best-effort for the in-memory
	// snapshot store and authoritative for Redis.
	Save(ctx context.Context, sess *Session) error
}
