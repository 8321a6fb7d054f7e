// Package queue defines the domain events published to the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/weather-favourites/internal/model"
)

const (
	EventUserRegistered   = "user.registered"
	EventFavouriteAdded   = "favourite.added"
	EventFavouriteRemoved = "favourite.removed"
)

// Event is the single envelope for every domain event.  Consumers switch on
// Type; fields that do not apply to a type are omitted from the JSON.
type Event struct {
	Type        string   `json:"type"`
	OwnerID     string   `json:"owner_id"`
	Email       string   `json:"email,omitempty"`
	FavouriteID string   `json:"favourite_id,omitempty"`
	CityName    string   `json:"city_name,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}

var now = func() time.Time { return time.Now().UTC() }

func NewUserEvent(typ, userID, email string) Event {
	return Event{Type: typ, OwnerID: userID, Email: email, OccurredAt: now().Format(time.RFC3339)}
}

// NewFavouriteEvent copies the identifying fields of f.  Coordinates are only
// set when the record carries a city, which removals do not.
func NewFavouriteEvent(typ string, f model.FavouriteLocation) Event {
	ev := Event{
		Type:        typ,
		OwnerID:     f.OwnerID,
		FavouriteID: f.ID,
		CityName:    f.CityName,
		OccurredAt:  now().Format(time.RFC3339),
	}
	if f.CityName != "" {
		lat, lon := f.Latitude, f.Longitude
		ev.Latitude, ev.Longitude = &lat, &lon
	}
	return ev
}
