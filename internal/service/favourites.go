package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/weather-favourites/internal/logging"
	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/queue"
	"github.com/iliyamo/weather-favourites/internal/repository"
)

// FavouriteRepository is the persistence contract for favourites.  Insert
// must be atomic with respect to (owner, latitude, longitude).
type FavouriteRepository interface {
	Insert(ctx context.Context, f *model.FavouriteLocation) error
	FindByOwnerAndCoords(ctx context.Context, ownerID string, lat, lon float64) (model.FavouriteLocation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.FavouriteLocation, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}

// FavouriteService scopes every operation to a caller-supplied owner id.
// It never looks at the session: a guest id and a user id are the same kind
// of opaque string here.
type FavouriteService struct {
	repo   FavouriteRepository
	events Publisher
	log    logging.Logger
}

func NewFavouriteService(repo FavouriteRepository, events Publisher, log logging.Logger) *FavouriteService {
	if repo == nil || events == nil || log == nil {
		panic("nil dependency passed to NewFavouriteService")
	}
	return &FavouriteService{repo: repo, events: events, log: log}
}

// AddFavouriteInput uses pointers for coordinates so 0 stays a real value.
type AddFavouriteInput struct {
	OwnerID   string   `json:"userId" validate:"required,max=64"`
	CityName  string   `json:"cityName" validate:"required,max=200"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Country   string   `json:"country" validate:"max=100"`
}

// Add saves a favourite.  If the owner already saved these coordinates the
// stored record is returned inside a *DuplicateFavouriteError.
func (s *FavouriteService) Add(ctx context.Context, in AddFavouriteInput) (model.FavouriteLocation, error) {
	in.CityName = strings.TrimSpace(in.CityName)
	in.Country = strings.TrimSpace(in.Country)
	if in.OwnerID == "" || in.CityName == "" || in.Latitude == nil || in.Longitude == nil {
		return model.FavouriteLocation{}, invalid("Missing required parameters: userId, cityName, latitude, and longitude are required.")
	}
	if err := validate.Struct(in); err != nil {
		return model.FavouriteLocation{}, invalid(describe(err))
	}

	// The second attempt covers a concurrent remove between the rejected
	// insert and the read-back.
	for attempt := 0; attempt < 2; attempt++ {
		f := model.FavouriteLocation{
			OwnerID:   in.OwnerID,
			CityName:  in.CityName,
			Latitude:  *in.Latitude,
			Longitude: *in.Longitude,
			Country:   in.Country,
		}
		err := s.repo.Insert(ctx, &f)
		if err == nil {
			s.publish(ctx, queue.NewFavouriteEvent(queue.EventFavouriteAdded, f))
			return f, nil
		}
		if !errors.Is(err, repository.ErrDuplicateFavourite) {
			return model.FavouriteLocation{}, fmt.Errorf("insert favourite: %w", err)
		}
		existing, err := s.repo.FindByOwnerAndCoords(ctx, in.OwnerID, *in.Latitude, *in.Longitude)
		if err == nil {
			return existing, &DuplicateFavouriteError{Existing: existing}
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return model.FavouriteLocation{}, fmt.Errorf("load existing favourite: %w", err)
		}
	}
	return model.FavouriteLocation{}, ErrDuplicateFavourite
}

// List returns the owner's favourites; an owner with none gets an empty slice.
func (s *FavouriteService) List(ctx context.Context, ownerID string) ([]model.FavouriteLocation, error) {
	if ownerID == "" {
		return nil, invalid(`The "userId" query parameter is required.`)
	}
	out, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	if out == nil {
		out = []model.FavouriteLocation{}
	}
	return out, nil
}

// Remove deletes favouriteID if ownerID owns it.  Records that are missing
// and records owned by someone else both produce ErrNotFound.
func (s *FavouriteService) Remove(ctx context.Context, favouriteID, ownerID string) (string, error) {
	if favouriteID == "" {
		return "", invalid("Favourite ID (/:id) is required for deletion.")
	}
	if ownerID == "" {
		return "", invalid(`The "userId" query parameter is required for verification.`)
	}
	if err := s.repo.DeleteByIDAndOwner(ctx, favouriteID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("delete favourite: %w", err)
	}
	s.publish(ctx, queue.NewFavouriteEvent(queue.EventFavouriteRemoved,
		model.FavouriteLocation{ID: favouriteID, OwnerID: ownerID}))
	return favouriteID, nil
}

func (s *FavouriteService) publish(ctx context.Context, ev queue.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "publish event failed", "type", ev.Type, "err", err)
	}
}
