// Package models defines core data structures for salons, search queries, and results.
package models

import (
	"math"
	"time"
)

// Service categories as used by salon listings.
const (
	CategoryFemme  = "femme"
	CategoryHomme  = "homme"
	CategoryEnfant = "enfant"
	CategoryAutre  = "autre"
)

// ValidCategory reports whether c is a known service category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryFemme, CategoryHomme, CategoryEnfant, CategoryAutre:
		return true
	}
	return false
}

// Coordinate is a geographic point. Immutable value type.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid reports whether both components are finite and within the
// declared ranges (latitude [-90,90], longitude [-180,180]).
func (c Coordinate) IsValid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Location describes where a salon is.
type Location struct {
	Address     string      `json:"address,omitempty"`
	Quarter     string      `json:"quarter"`
	City        string      `json:"city"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
}

// Contact holds salon contact channels.
type Contact struct {
	Phone    string `json:"phone,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Service is a single offering of a salon.
type Service struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"` // minutes
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
}

// Features are the salon's amenity flags.
type Features struct {
	HomeService     bool `json:"homeService"`
	MobilePayment   bool `json:"mobilePayment"`
	Parking         bool `json:"parking"`
	Wifi            bool `json:"wifi"`
	AirConditioning bool `json:"airConditioning"`
	Accessibility   bool `json:"accessibility"`
}

// Tags returns a human-readable tag for each enabled feature.
// The vocabulary is fixed; search text is built from these.
func (f Features) Tags() []string {
	var tags []string
	if f.HomeService {
		tags = append(tags, "home service")
	}
	if f.MobilePayment {
		tags = append(tags, "mobile payment")
	}
	if f.Parking {
		tags = append(tags, "parking")
	}
	if f.Wifi {
		tags = append(tags, "wifi")
	}
	if f.AirConditioning {
		tags = append(tags, "air conditioning")
	}
	if f.Accessibility {
		tags = append(tags, "accessibility")
	}
	return tags
}

// Rating summarizes client reviews.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Salon is a full salon record as stored in the catalog.
type Salon struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    Location  `json:"location"`
	Contact     Contact   `json:"contact"`
	Services    []Service `json:"services"`
	Features    Features  `json:"features"`
	Rating      Rating    `json:"rating"`
	Photos      []string  `json:"photos,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Published reports whether the salon may appear in search results.
// Inactive or unverified salons are never surfaced.
func (s *Salon) Published() bool {
	return s.IsActive && s.IsVerified
}

// CheapestPrice returns the lowest service price, or 0 when the salon
// has no services.
func (s *Salon) CheapestPrice() float64 {
	if len(s.Services) == 0 {
		return 0
	}
	min := s.Services[0].Price
	for _, svc := range s.Services[1:] {
		if svc.Price < min {
			min = svc.Price
		}
	}
	return min
}
