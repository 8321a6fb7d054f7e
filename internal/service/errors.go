// Package service holds the business rules for accounts, sessions and
// favourites.  Handlers translate the errors below into HTTP responses.
package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/weather-favourites/internal/model"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrDuplicateEmail     = errors.New("email address is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateFavourite = errors.New("location is already in favourites")
)

// ErrSessionUserMissing means the session was valid but its user is gone.
// The session has been destroyed.  It matches ErrNotAuthenticated.
var ErrSessionUserMissing = fmt.Errorf("%w: user not found for current session", ErrNotAuthenticated)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// DuplicateFavouriteError is returned by Add when the owner already saved the
// coordinates.  Existing is the record that was kept.
type DuplicateFavouriteError struct {
	Existing model.FavouriteLocation
}

func (e *DuplicateFavouriteError) Error() string { return ErrDuplicateFavourite.Error() }

func (e *DuplicateFavouriteError) Is(target error) bool { return target == ErrDuplicateFavourite }

var validate = validator.New()

// describe turns the first validator failure into a sentence.
func describe(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "Invalid input."
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "email":
		return fe.Field() + " must be a valid email address."
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long."
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long."
	case "gte", "lte":
		return fe.Field() + " is out of range."
	}
	return fe.Field() + " is invalid."
}
