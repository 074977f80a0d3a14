package models

import (
	"math"
	"regexp"

	"github.com/paulmach/orb"
)

// AqiReading is one AirNow observation or forecast entry for a reporting area.
type AqiReading struct {
	AQI           int      `json:"AQI"`
	Category      Category `json:"Category"`
	ReportingArea string   `json:"ReportingArea"`
	StateCode     string   `json:"StateCode"`
}

type Category struct {
	Name   string `json:"Name"`
	Number int    `json:"Number"`
}

// CityState formats the reporting area the way the page shows it, e.g. "NYC, NY".
func (r *AqiReading) CityState() string {
	return r.ReportingArea + ", " + r.StateCode
}

var zipCodePattern = regexp.MustCompile(`^[0-9]{5}$`)

// IsZipCode reports whether s is a 5-digit US ZIP code.
func IsZipCode(s string) bool {
	return zipCodePattern.MatchString(s)
}

// GeoPoint bridges a geocoding result into a reverse lookup.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var worldBound = orb.Bound{
	Min: orb.Point{-180, -90},
	Max: orb.Point{180, 90},
}

// Point returns the point in orb's lon/lat order.
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Valid requires both coordinates to be finite, set and inside WGS84 range.
func (p GeoPoint) Valid() bool {
	if !finite(p.Latitude) || !finite(p.Longitude) {
		return false
	}
	if p.Latitude == 0 || p.Longitude == 0 {
		return false
	}
	return worldBound.Contains(p.Point())
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
