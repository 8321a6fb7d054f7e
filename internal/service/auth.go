package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/queue"
	"github.com/iliyamo/weather-favourites/internal/repository"
	"github.com/iliyamo/weather-favourites/internal/session"
	"github.com/iliyamo/weather-favourites/internal/utils"
)

const minPasswordLen = 8

// UserRepository is the persistence contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// AuthService registers and authenticates users and manages their sessions.
type AuthService struct {
	users      UserRepository
	sessions   *session.Manager
	bcryptCost int
	events     Publisher
	log        logging.Logger
}

func NewAuthService(users UserRepository, sessions *session.Manager, bcryptCost int, events Publisher, log logging.Logger) *AuthService {
	if users == nil || sessions == nil || events == nil || log == nil {
		panic("nil dependency passed to NewAuthService")
	}
	return &AuthService{users: users, sessions: sessions, bcryptCost: bcryptCost, events: events, log: log}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"email,max=200"`
	Password string `json:"password"`
	FullName string `json:"fullName" validate:"max=120"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account, hashing the password before it reaches the
// repository, and starts a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, utils.SessionToken, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Email == "" || in.Password == "" {
		return model.User{}, utils.SessionToken{}, invalid("Email and password are required.")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return model.User{}, utils.SessionToken{}, invalid("Password must be at least 8 characters long.")
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return model.User{}, utils.SessionToken{}, invalid("Password must be at most 72 bytes long.")
	}
	if err := validate.Struct(in); err != nil {
		return model.User{}, utils.SessionToken{}, invalid(describe(err))
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, utils.SessionToken{}, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{Email: in.Email, PasswordHash: hash, FullName: in.FullName}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, utils.SessionToken{}, ErrDuplicateEmail
		}
		return model.User{}, utils.SessionToken{}, fmt.Errorf("create user: %w", err)
	}

	_, tok, err := s.sessions.Start(ctx, u.ID, u.Email)
	if err != nil {
		return model.User{}, utils.SessionToken{}, fmt.Errorf("start session: %w", err)
	}

	s.publish(ctx, queue.NewUserEvent(queue.EventUserRegistered, u.ID, u.Email))
	return u, tok, nil
}

// Login verifies credentials and starts a new session.  Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (model.User, utils.SessionToken, error) {
	email := repository.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return model.User{}, utils.SessionToken{}, invalid("Email and password are required.")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyMissing(in.Password)
			return model.User{}, utils.SessionToken{}, ErrInvalidCredentials
		}
		return model.User{}, utils.SessionToken{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return model.User{}, utils.SessionToken{}, ErrInvalidCredentials
	}

	_, tok, err := s.sessions.Start(ctx, u.ID, u.Email)
	if err != nil {
		return model.User{}, utils.SessionToken{}, fmt.Errorf("start session: %w", err)
	}
	return u, tok, nil
}

// Me returns the user behind sess.  A session whose user no longer exists is
// destroyed and reported as ErrNotAuthenticated.
func (s *AuthService) Me(ctx context.Context, sess *session.Session) (model.User, error) {
	if sess == nil || sess.UserID == "" {
		return model.User{}, ErrNotAuthenticated
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if derr := s.sessions.DestroyID(ctx, sess.ID); derr != nil {
				s.log.Warn(ctx, "destroy orphaned session failed", "err", derr)
			}
			return model.User{}, ErrSessionUserMissing
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// Logout destroys whatever session token addresses.  It never fails; store
// errors are logged.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.log.Warn(ctx, "destroy session failed", "err", err)
	}
}

func (s *AuthService) publish(ctx context.Context, ev queue.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "publish event failed", "type", ev.Type, "err", err)
	}
}
