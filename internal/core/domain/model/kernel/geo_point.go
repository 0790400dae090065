package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in decimal degrees.
	LongitudeMax = 180.0

	// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
	EarthRadiusMiles = 3959.0

	// MetersPerMile converts statute miles to meters.
	MetersPerMile = 1609.344
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a geographic position in decimal degrees (WGS84).
// GeoPoint is an immutable value object; the zero value is invalid and fails
// validation - use the constructor to create instances.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(33.749, -84.388)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(p) // Output: GeoPoint(33.749000,-84.388000)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a new GeoPoint with the given latitude and longitude.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
//
// Parameters:
//   - lat: latitude in decimal degrees
//   - lng: longitude in decimal degrees
//
// Returns:
//   - GeoPoint: a valid geo point instance
//   - error: validation error if either coordinate is out of bounds
func NewGeoPoint(lat float64, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks if the GeoPoint was properly constructed via NewGeoPoint.
// The zero value of GeoPoint fails this validation.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String returns a human-readable representation in the format
// "GeoPoint(lat,lng)". Implements fmt.Stringer.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual compares two geo points for equality of coordinates.
// Both points must be properly constructed for the comparison to succeed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceMiles calculates the great-circle distance to another point using
// the Haversine formula with EarthRadiusMiles. The result is symmetric
// (d(A,B) == d(B,A)) and zero for identical coordinates.
// Both points must be properly constructed for the calculation to succeed.
//
// Example:
//
//	atlanta, _ := kernel.NewGeoPoint(33.749, -84.388)
//	athens, _ := kernel.NewGeoPoint(33.951, -83.357)
//	miles, _ := atlanta.DistanceMiles(athens) // ≈ 60
func (p GeoPoint) DistanceMiles(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := toRadians(p.lat)
	lat2 := toRadians(other.lat)
	dLat := toRadians(other.lat - p.lat)
	dLng := toRadians(other.lng - p.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c, nil
}

// DistanceMeters calculates the great-circle distance to another point in meters.
// See DistanceMiles for the underlying formula and validation rules.
func (p GeoPoint) DistanceMeters(other GeoPoint) (float64, error) {
	miles, err := p.DistanceMiles(other)
	if err != nil {
		return 0, err
	}
	return miles * MetersPerMile, nil
}

// setLat sets the latitude with validation.
// Note: We intentionally use a pointer receiver here while other methods use
// value receivers. The private setters enable self-encapsulated validation of
// business requirements during object construction.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	p.lat = lat
	return nil
}

// setLng sets the longitude with validation.
// Note: We intentionally use a pointer receiver here while other methods use
// value receivers. The private setters enable self-encapsulated validation of
// business requirements during object construction.
func (p *GeoPoint) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}

	p.lng = lng
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
