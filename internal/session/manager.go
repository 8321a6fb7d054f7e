package session

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/weather-favourites/internal/config"
	"github.com/iliyamo/weather-favourites/internal/utils"
)

// Manager moves a client between the anonymous and authenticated states.
type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	if store == nil {
		panic("nil store passed to session.NewManager")
	}
	return &Manager{store: store, secret: cfg.Secret, ttl: cfg.TTL}
}

// TTL is the lifetime of new sessions and their cookies.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Start creates a session for the user and returns it with its signed token.
func (m *Manager) Start(ctx context.Context, userID, email string) (Session, utils.SessionToken, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return Session{}, utils.SessionToken{}, err
	}
	s := Session{ID: id, UserID: userID, Email: email, CreatedAt: time.Now().UTC()}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return Session{}, utils.SessionToken{}, err
	}
	tok, err := utils.SignSessionToken(m.secret, id, m.ttl)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return Session{}, utils.SessionToken{}, err
	}
	return s, tok, nil
}

// Resolve returns the live session addressed by token.  Bad signatures,
// expired tokens and missing records all yield ErrNoSession; store failures
// are returned as-is.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	id, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return Session{}, ErrNoSession
	}
	return m.store.Load(ctx, id)
}

// Destroy removes the session addressed by token.  Tokens that do not parse
// have nothing to destroy and return nil.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	id, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// DestroyID removes a session by id, for callers that already resolved it.
func (m *Manager) DestroyID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := m.store.Delete(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	return err
}
