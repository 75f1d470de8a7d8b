// Package cycle resolves which GFS forecast runs are worth asking NOMADS
// for. Model runs start every ForecastIntervalHours, but a run only
// appears on the server roughly ProcessingDelayHours after its start, so
// the most recent run is skipped when it is too fresh. Candidates are
// returned newest first back through MaxLookbackHours.
package cycle

import (
	"fmt"
	"time"

	"github.com/johnny111272/grib-getter/internal/model"
)

const dateLayout = "20060102"

// CropToHour truncates a time to the start of its hour.
func CropToHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// LatestRunStart returns the start of the most recent model run at or
// before t, given runs every intervalHours starting at 00 UTC.
func LatestRunStart(t time.Time, intervalHours int) time.Time {
	t = CropToHour(t.UTC())
	hour := t.Hour() - t.Hour()%intervalHours
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
}

// Candidates lists the forecast cycles to try, newest first. The newest
// run is included only once its publication delay has elapsed relative
// to now; otherwise the list starts one interval earlier.
func Candidates(referenceTime, now time.Time, s model.CoreSettings) ([]model.QueryTime, error) {
	if s.ForecastIntervalHours <= 0 || 24%s.ForecastIntervalHours != 0 {
		return nil, fmt.Errorf("forecast interval %dh must divide 24", s.ForecastIntervalHours)
	}

	anchor := LatestRunStart(referenceTime, s.ForecastIntervalHours)
	delay := time.Duration(s.ProcessingDelayHours) * time.Hour
	if anchor.Add(delay).After(now.UTC()) {
		anchor = anchor.Add(-time.Duration(s.ForecastIntervalHours) * time.Hour)
	}

	var out []model.QueryTime
	for off := 0; off <= s.MaxLookbackHours; off += s.ForecastIntervalHours {
		t := anchor.Add(-time.Duration(off) * time.Hour)
		out = append(out, model.QueryTime{
			DateUTC:      t.Format(dateLayout),
			CycleHourUTC: fmt.Sprintf("%02d", t.Hour()),
		})
	}
	return out, nil
}
