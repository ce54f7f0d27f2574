package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of the sphere used for great-circle distances.
const EarthRadiusKm = 6371.0

// metersPerDegreeLat is the length of one degree of latitude on the same sphere.
const metersPerDegreeLat = EarthRadiusKm * 1000 * math.Pi / 180

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies within the valid coordinate ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidCoordinates)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidCoordinates, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidCoordinates, p.Lng)
	}
	return nil
}

// String formats the point with 5 decimal places (about 1 m precision).
func (p Point) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

// DistanceKm returns the haversine great-circle distance between two coordinates.
// Callers are expected to validate the coordinates beforehand.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a slightly above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceMeters returns the great-circle distance between two points in meters.
func DistanceMeters(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng) * 1000
}

// Within reports whether b lies within radiusMeters of a.
func Within(a, b Point, radiusMeters float64) bool {
	return DistanceMeters(a, b) <= radiusMeters
}

// Offset returns the point reached by moving north and east of p by the given
// meters. Accurate for the short distances used in clustering.
func Offset(p Point, northMeters, eastMeters float64) Point {
	lat := p.Lat + northMeters/metersPerDegreeLat
	lng := p.Lng + eastMeters/(metersPerDegreeLat*math.Cos(toRadians(p.Lat)))

	return Point{Lat: lat, Lng: lng}
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundingBox returns a rectangle that contains every point within radiusMeters of center.
// It is meant as a cheap index prefilter; exact membership still needs DistanceMeters.
// Boxes that would cross a pole or the antimeridian are widened to the full range.
func BoundingBox(center Point, radiusMeters float64) Box {
	dLat := radiusMeters / metersPerDegreeLat

	box := Box{
		MinLat: center.Lat - dLat,
		MaxLat: center.Lat + dLat,
		MinLng: -180,
		MaxLng: 180,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		return box
	}

	// Longitude degrees shrink with latitude; use the widest latitude in the box
	maxAbsLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	dLng := dLat / math.Cos(toRadians(maxAbsLat))

	if center.Lng-dLng > -180 && center.Lng+dLng < 180 {
		box.MinLng = center.Lng - dLng
		box.MaxLng = center.Lng + dLng
	}

	return box
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
