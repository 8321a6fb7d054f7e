package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/weather-favourites/internal/model"
	"github.com/iliyamo/weather-favourites/internal/queue"
	"github.com/iliyamo/weather-favourites/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]model.User
	failErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type coordKey struct {
	owner    string
	lat, lon float64
}

// fakeFavourites enforces the (owner, lat, lon) uniqueness the real table does.
type fakeFavourites struct {
	mu      sync.Mutex
	rows    []model.FavouriteLocation
	unique  map[coordKey]string
	failErr error
}

func newFakeFavourites() *fakeFavourites {
	return &fakeFavourites{unique: map[coordKey]string{}}
}

func (f *fakeFavourites) Insert(_ context.Context, fav *model.FavouriteLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	k := coordKey{fav.OwnerID, fav.Latitude, fav.Longitude}
	if _, dup := f.unique[k]; dup {
		return repository.ErrDuplicateFavourite
	}
	fav.ID = uuid.NewString()
	fav.CreatedAt = time.Now().UTC()
	f.unique[k] = fav.ID
	f.rows = append(f.rows, *fav)
	return nil
}

func (f *fakeFavourites) FindByOwnerAndCoords(_ context.Context, owner string, lat, lon float64) (model.FavouriteLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OwnerID == owner && r.Latitude == lat && r.Longitude == lon {
			return r, nil
		}
	}
	return model.FavouriteLocation{}, repository.ErrNotFound
}

func (f *fakeFavourites) ListByOwner(_ context.Context, owner string) ([]model.FavouriteLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	var out []model.FavouriteLocation
	for _, r := range f.rows {
		if r.OwnerID == owner {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFavourites) DeleteByIDAndOwner(_ context.Context, id, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id && r.OwnerID == owner {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			delete(f.unique, coordKey{r.OwnerID, r.Latitude, r.Longitude})
			return nil
		}
	}
	return repository.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
