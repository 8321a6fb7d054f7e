// Package session implements server-side sessions.  A Manager issues signed
// tokens that address records in an injected Store; the Store never sees the
// token itself, only the session id inside it.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned when a token does not resolve to a live session.
var ErrNoSession = errors.New("no session")

// Session binds a session id to exactly one authenticated identity.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists sessions by id.  Load returns ErrNoSession for unknown or
// expired ids; Delete of an unknown id is not an error.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
