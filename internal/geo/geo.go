// Package geo converts a center point plus angular expanse into the
// bounding box the NOMADS subregion filter expects. Latitudes clamp at
// the poles; longitudes normalize into [0, 360) like the GFS grid.
package geo

import (
	"math"

	"github.com/johnny111272/grib-getter/internal/model"
)

// ClampLatitude limits a latitude to the valid [-90, 90] range.
func ClampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// NormalizeLongitude maps any longitude onto [0, 360).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// LatitudeBounds returns the clamped min and max latitude of a window of
// the given total height centered on center.
func LatitudeBounds(center, height float64) (minLat, maxLat float64) {
	half := height / 2
	return ClampLatitude(center - half), ClampLatitude(center + half)
}

// LongitudeBounds returns the normalized min and max longitude of a window
// of the given total width centered on center. The pair can wrap the
// antimeridian, in which case min is numerically greater than max.
func LongitudeBounds(center, width float64) (minLon, maxLon float64) {
	half := width / 2
	return NormalizeLongitude(center - half), NormalizeLongitude(center + half)
}

// NewBoundingBox builds the subregion window for a location. Top maps to
// the maximum latitude, left to the minimum longitude.
func NewBoundingBox(ls model.LocationSettings) model.BoundingBox {
	minLat, maxLat := LatitudeBounds(ls.CenterLat, ls.HeightDegrees)
	minLon, maxLon := LongitudeBounds(ls.CenterLon, ls.WidthDegrees)
	return model.BoundingBox{
		TopLat:    maxLat,
		LeftLon:   minLon,
		RightLon:  maxLon,
		BottomLat: minLat,
	}
}
