// Package model defines the canonical data types used throughout grib-getter.
// These types are the single source of truth for query construction and for
// the fetch result envelope every command works with.
package model

import (
	"fmt"
	"time"
)

// ─── Query Input Types ────────────────────────────────────────────────────────

// LocationSettings is the caller-facing center+expanse form of a region.
// It is transient: commands convert it into a BoundingBox immediately.
type LocationSettings struct {
	CenterLat     float64 `json:"center_lat"`
	CenterLon     float64 `json:"center_lon"`
	HeightDegrees float64 `json:"height_degrees"`
	WidthDegrees  float64 `json:"width_degrees"`
}

// BoundingBox is the geographic window sent to the NOMADS subregion filter.
// Latitudes are in [-90, 90], longitudes normalized to [0, 360).
type BoundingBox struct {
	TopLat    float64 `json:"toplat"`
	LeftLon   float64 `json:"leftlon"`
	RightLon  float64 `json:"rightlon"`
	BottomLat float64 `json:"bottomlat"`
}

// ModelData lists every variable and level name known for a product, in the
// fixed order that defines mask bit positions. Bit i (counted from the
// most-significant end of the zero-padded mask) selects entry i.
type ModelData struct {
	Variables []string `json:"variables"`
	Levels    []string `json:"levels"`
}

// QueryMask is the compact selection encoding for one preset: two hex
// strings, one over ModelData.Variables and one over ModelData.Levels.
type QueryMask struct {
	Variables string `json:"variables"`
	Levels    string `json:"levels"`
}

// QueryModel is a product template. Dir and File contain {date_utc} and
// {cycle_hour_utc} placeholders substituted per forecast cycle; Filter is
// the NOMADS CGI script name substituted into the base URL.
type QueryModel struct {
	Name   string `json:"name"`
	Filter string `json:"filter"`
	File   string `json:"file"`
	Dir    string `json:"dir"`
}

// SelectedKeys binds a hex mask to the key list it selects from and the
// query-parameter prefix ("var_" or "lev_") used when rendering it.
type SelectedKeys struct {
	AllKeys []string `json:"all_keys"`
	HexMask string   `json:"hex_mask"`
	Prefix  string   `json:"prefix"`
}

// QueryTime identifies one forecast cycle.
type QueryTime struct {
	DateUTC      string `json:"date_utc"`       // YYYYMMDD
	CycleHourUTC string `json:"cycle_hour_utc"` // HH, a multiple of the forecast interval
}

// String returns the cycle in YYYYMMDD/HH form for logging.
func (qt QueryTime) String() string {
	return qt.DateUTC + "/" + qt.CycleHourUTC
}

// CoreSettings carries the resolved fetch parameters a QueryStructure needs.
type CoreSettings struct {
	GribURL               string `json:"grib_url"` // base URL template with a {filter} placeholder
	ForecastIntervalHours int    `json:"forecast_interval_hours"`
	MaxLookbackHours      int    `json:"max_lookback_hours"`
	ProcessingDelayHours  int    `json:"processing_delay_hours"`
}

// QueryStructure aggregates everything needed to build candidate URLs.
// Built once per invocation and treated as immutable afterwards.
type QueryStructure struct {
	BoundingBox BoundingBox
	Model       QueryModel
	Variables   SelectedKeys
	Levels      SelectedKeys
	CurrentTime time.Time
	Settings    CoreSettings
}

// Validate checks the structural invariants of a QueryStructure that do not
// require decoding the masks (the mask codec reports its own errors).
func (qs QueryStructure) Validate() error {
	s := qs.Settings
	if s.ForecastIntervalHours <= 0 || 24%s.ForecastIntervalHours != 0 {
		return fmt.Errorf("forecast interval %dh must divide 24", s.ForecastIntervalHours)
	}
	if s.MaxLookbackHours < 0 {
		return fmt.Errorf("max lookback must be non-negative, got %d", s.MaxLookbackHours)
	}
	if qs.BoundingBox.TopLat < qs.BoundingBox.BottomLat {
		return fmt.Errorf("bounding box top latitude %.2f below bottom %.2f",
			qs.BoundingBox.TopLat, qs.BoundingBox.BottomLat)
	}
	return nil
}

// ─── Fetch Telemetry Types ────────────────────────────────────────────────────

// Outcome classifies one fetch attempt.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeServerError  Outcome = "server_error"
	OutcomeClientError  Outcome = "client_error"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeUnknownError Outcome = "unknown_error"
)

// Retryable reports whether an outcome warrants retrying the same URL.
// NotFound means the cycle is not published yet, so retrying the same URL
// cannot help; ClientError means the request itself is malformed.
func (o Outcome) Retryable() bool {
	switch o {
	case OutcomeServerError, OutcomeTimeout, OutcomeNetworkError, OutcomeUnknownError:
		return true
	}
	return false
}

// FetchAttempt records a single HTTP try. StatusCode is 0 when no response
// was received at all.
type FetchAttempt struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
}

// FetchResult is the outcome of a whole fetch operation. Success implies
// Data is non-nil and Attempts is non-empty. An unfetched cycle is a value
// here, not an error: only configuration problems and deadline expiry
// surface as hard errors.
type FetchResult struct {
	Data     []byte         `json:"-"`
	Attempts []FetchAttempt `json:"attempts"`
	Success  bool           `json:"success"`
	Duration time.Duration  `json:"duration"`
}

// OutcomeCount is one row of an attempt summary.
type OutcomeCount struct {
	Outcome Outcome
	Count   int
}

// summaryOrder fixes the display order of outcome groups.
var summaryOrder = []Outcome{
	OutcomeSuccess,
	OutcomeNotFound,
	OutcomeServerError,
	OutcomeClientError,
	OutcomeTimeout,
	OutcomeNetworkError,
	OutcomeUnknownError,
}

// SummarizeAttempts groups attempts by outcome, omitting empty groups.
func SummarizeAttempts(attempts []FetchAttempt) []OutcomeCount {
	counts := make(map[Outcome]int, len(summaryOrder))
	for _, a := range attempts {
		counts[a.Outcome]++
	}
	var out []OutcomeCount
	for _, o := range summaryOrder {
		if counts[o] > 0 {
			out = append(out, OutcomeCount{Outcome: o, Count: counts[o]})
		}
	}
	return out
}
