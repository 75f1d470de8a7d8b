package geo_test

import (
	"math"
	"testing"

	"github.com/johnny111272/grib-getter/internal/geo"
	"github.com/johnny111272/grib-getter/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// approxEqual returns true if a and b are within tolerance.
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// box builds a bounding box from a center point and window size.
func box(lat, lon, height, width float64) model.BoundingBox {
	return geo.NewBoundingBox(model.LocationSettings{
		CenterLat:     lat,
		CenterLon:     lon,
		HeightDegrees: height,
		WidthDegrees:  width,
	})
}

// ─── ClampLatitude / NormalizeLongitude ──────────────────────────────────────

func TestClampLatitudeInRange(t *testing.T) {
	for _, v := range []float64{-90, -45.5, 0, 37.8, 90} {
		if got := geo.ClampLatitude(v); got != v {
			t.Errorf("ClampLatitude(%g): expected unchanged, got %g", v, got)
		}
	}
}

func TestClampLatitudeOutOfRange(t *testing.T) {
	if got := geo.ClampLatitude(95); got != 90 {
		t.Errorf("ClampLatitude(95): expected 90, got %g", got)
	}
	if got := geo.ClampLatitude(-120); got != -90 {
		t.Errorf("ClampLatitude(-120): expected -90, got %g", got)
	}
}

func TestNormalizeLongitudeNegative(t *testing.T) {
	// San Francisco in western-hemisphere convention.
	if got := geo.NormalizeLongitude(-122.5); !approxEqual(got, 237.5, 1e-9) {
		t.Errorf("NormalizeLongitude(-122.5): expected 237.5, got %g", got)
	}
}

func TestNormalizeLongitudeWraps(t *testing.T) {
	if got := geo.NormalizeLongitude(360); got != 0 {
		t.Errorf("NormalizeLongitude(360): expected 0, got %g", got)
	}
	if got := geo.NormalizeLongitude(725); !approxEqual(got, 5, 1e-9) {
		t.Errorf("NormalizeLongitude(725): expected 5, got %g", got)
	}
	if got := geo.NormalizeLongitude(-725); !approxEqual(got, 355, 1e-9) {
		t.Errorf("NormalizeLongitude(-725): expected 355, got %g", got)
	}
}

func TestNormalizeLongitudeHalfOpen(t *testing.T) {
	for _, v := range []float64{-1000, -360, -0.25, 0, 179.9, 360, 1000} {
		got := geo.NormalizeLongitude(v)
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeLongitude(%g) = %g, outside [0, 360)", v, got)
		}
	}
}

// ─── NewBoundingBox ──────────────────────────────────────────────────────────

func TestBoundingBoxSimple(t *testing.T) {
	b := box(38, 237, 10, 20)
	if !approxEqual(b.TopLat, 43, 1e-9) || !approxEqual(b.BottomLat, 33, 1e-9) {
		t.Errorf("latitude bounds: expected 33..43, got %g..%g", b.BottomLat, b.TopLat)
	}
	if !approxEqual(b.LeftLon, 227, 1e-9) || !approxEqual(b.RightLon, 247, 1e-9) {
		t.Errorf("longitude bounds: expected 227..247, got %g..%g", b.LeftLon, b.RightLon)
	}
}

func TestBoundingBoxClampsAtPole(t *testing.T) {
	b := box(85, 10, 20, 10)
	if b.TopLat != 90 {
		t.Errorf("top latitude: expected clamp to 90, got %g", b.TopLat)
	}
	if !approxEqual(b.BottomLat, 75, 1e-9) {
		t.Errorf("bottom latitude: expected 75, got %g", b.BottomLat)
	}
}

func TestBoundingBoxWrapsAntimeridian(t *testing.T) {
	// Window centered near the date line: left is numerically above right.
	b := box(0, 350, 10, 20)
	if !approxEqual(b.LeftLon, 340, 1e-9) {
		t.Errorf("left longitude: expected 340, got %g", b.LeftLon)
	}
	if !approxEqual(b.RightLon, 0, 1e-9) {
		t.Errorf("right longitude: expected 0, got %g", b.RightLon)
	}
}

func TestBoundingBoxWesternHemisphereInput(t *testing.T) {
	b := box(37.8, -122.5, 6, 8)
	if !approxEqual(b.LeftLon, 233.5, 1e-9) || !approxEqual(b.RightLon, 241.5, 1e-9) {
		t.Errorf("longitude bounds: expected 233.5..241.5, got %g..%g", b.LeftLon, b.RightLon)
	}
}
