package domain

import (
	"strings"
	"time"
)

const (
	MinRadiusM = 1
	MaxRadiusM = 50000
)

// Location is a circular fence used to validate GPS check-ins.
type Location struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	RadiusM   int       `json:"radius_m"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidLat(lat float64) bool { return lat >= -90 && lat <= 90 }

func ValidLng(lng float64) bool { return lng >= -180 && lng <= 180 }

// Validate checks name and coordinate ranges. NaN fails every comparison.
func (l *Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return NewError(KindInvalidArgument, "location name is required")
	}
	if !ValidLat(l.Lat) {
		return NewError(KindInvalidLocation, "latitude must be between -90 and 90")
	}
	if !ValidLng(l.Lng) {
		return NewError(KindInvalidLocation, "longitude must be between -180 and 180")
	}
	if l.RadiusM < MinRadiusM || l.RadiusM > MaxRadiusM {
		return NewError(KindInvalidLocation, "radius must be between 1 and 50,000 meters")
	}
	return nil
}
