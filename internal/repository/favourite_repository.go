package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/weather-favourites/internal/model"
)

// FavouriteRepo encapsulates all queries on favourite_locations.  Every
// read and delete is scoped by owner_id; there is no unscoped lookup.
type FavouriteRepo struct {
	db *sql.DB
}

func NewFavouriteRepo(db *sql.DB) *FavouriteRepo {
	return &FavouriteRepo{db: db}
}

const favouriteColumns = "id, owner_id, city_name, latitude, longitude, country, created_at"

// Insert writes a new favourite.  The unique key on (owner_id, latitude,
// longitude) makes this an atomic insert-if-absent: a duplicate returns
// ErrDuplicateFavourite and leaves the table unchanged.
func (r *FavouriteRepo) Insert(ctx context.Context, f *model.FavouriteLocation) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	const q = `INSERT INTO favourite_locations
	           (id, owner_id, city_name, latitude, longitude, country, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		f.ID, f.OwnerID, f.CityName, f.Latitude, f.Longitude, nullString(f.Country), f.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateFavourite
		}
		return err
	}
	return nil
}

// FindByOwnerAndCoords returns the owner's favourite at exactly the given
// coordinates, or ErrNotFound.
func (r *FavouriteRepo) FindByOwnerAndCoords(ctx context.Context, ownerID string, lat, lon float64) (model.FavouriteLocation, error) {
	const q = "SELECT " + favouriteColumns + ` FROM favourite_locations
	           WHERE owner_id = ? AND latitude = ? AND longitude = ? LIMIT 1`
	f, err := scanFavourite(r.db.QueryRowContext(ctx, q, ownerID, lat, lon))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FavouriteLocation{}, ErrNotFound
		}
		return model.FavouriteLocation{}, err
	}
	return f, nil
}

// ListByOwner returns all favourites of an owner, oldest first.  The result
// is an empty, non-nil slice when the owner has none.
func (r *FavouriteRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.FavouriteLocation, error) {
	const q = "SELECT " + favouriteColumns + ` FROM favourite_locations
	           WHERE owner_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FavouriteLocation{}
	for rows.Next() {
		f, err := scanFavourite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndOwner removes a favourite only if it belongs to ownerID.
// A missing record and one owned by someone else both yield ErrNotFound.
func (r *FavouriteRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM favourite_locations WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFavourite(s rowScanner) (model.FavouriteLocation, error) {
	var (
		f       model.FavouriteLocation
		country sql.NullString
	)
	if err := s.Scan(&f.ID, &f.OwnerID, &f.CityName, &f.Latitude, &f.Longitude, &country, &f.CreatedAt); err != nil {
		return model.FavouriteLocation{}, err
	}
	f.Country = country.String
	return f, nil
}
