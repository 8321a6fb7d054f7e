// Package identity works out, on the client, which owner id favourites are
// filed under: the logged-in user's id, or a guest id kept on disk.
package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/weather-favourites/internal/model"
)

// GuestKey is the storage key of the guest identifier.
const GuestKey = "guestUserIdentifier"

type Kind string

const (
	KindUser  Kind = "user"
	KindGuest Kind = "guest"
)

type Identity struct {
	ID   string
	Kind Kind
}

// CurrentUser reports the authenticated user, failing when there is no
// session.  The API client implements it with GET /api/auth/me.
type CurrentUser interface {
	Me(ctx context.Context) (model.User, error)
}

type Resolver struct {
	users CurrentUser
	store Storage

	mu sync.Mutex
}

func NewResolver(users CurrentUser, store Storage) *Resolver {
	return &Resolver{users: users, store: store}
}

// Resolve returns the session user when there is one and the guest id
// otherwise.  The guest id is generated and persisted on first use.
func (r *Resolver) Resolve(ctx context.Context) (Identity, error) {
	if r.users != nil {
		if u, err := r.users.Me(ctx); err == nil && u.ID != "" {
			return Identity{ID: u.ID, Kind: KindUser}, nil
		}
	}
	id, err := r.Guest()
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: id, Kind: KindGuest}, nil
}

// Guest returns the persisted guest id, creating it if needed.
func (r *Resolver) Guest() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok, err := r.store.Get(GuestKey)
	if err != nil {
		return "", fmt.Errorf("read guest id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := r.store.Set(GuestKey, id); err != nil {
		return "", fmt.Errorf("save guest id: %w", err)
	}
	return id, nil
}

// Forget drops the guest id; the next Resolve mints a new one.
func (r *Resolver) Forget() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(GuestKey)
}
