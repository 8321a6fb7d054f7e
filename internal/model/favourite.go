package model

import "time"

// FavouriteLocation is a saved place owned by one identity.  OwnerID is an
// opaque string: either a user id or a client-generated guest id.  The pair
// (Latitude, Longitude) is unique per owner.
type FavouriteLocation struct {
	ID        string    `json:"id"`                // favourite_locations.id
	OwnerID   string    `json:"userId"`            // favourite_locations.owner_id
	CityName  string    `json:"cityName"`          // favourite_locations.city_name
	Latitude  float64   `json:"latitude"`          // favourite_locations.latitude
	Longitude float64   `json:"longitude"`         // favourite_locations.longitude
	Country   string    `json:"country,omitempty"` // favourite_locations.country (nullable)
	CreatedAt time.Time `json:"createdAt"`         // favourite_locations.created_at
}
