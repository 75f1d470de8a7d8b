// Package query renders a QueryStructure into the NOMADS filter URLs to
// try, one per candidate forecast cycle.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/johnny111272/grib-getter/internal/mask"
	"github.com/johnny111272/grib-getter/internal/model"
)

// Arguments holds the three pre-rendered query-string fragments shared by
// every candidate URL of one invocation.
type Arguments struct {
	Variables string
	Levels    string
	Subregion string
}

// expand substitutes the cycle placeholders in a product template.
func expand(template string, qt model.QueryTime) string {
	return strings.NewReplacer(
		"{date_utc}", qt.DateUTC,
		"{cycle_hour_utc}", qt.CycleHourUTC,
	).Replace(template)
}

// formatCoord renders a coordinate without trailing zeros, matching what
// the filter script echoes back.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// subregionFragment renders the bounding box the way the filter script
// expects: a bare subregion flag followed by the four edges.
func subregionFragment(b model.BoundingBox) string {
	return strings.Join([]string{
		"subregion=",
		"leftlon=" + formatCoord(b.LeftLon),
		"rightlon=" + formatCoord(b.RightLon),
		"toplat=" + formatCoord(b.TopLat),
		"bottomlat=" + formatCoord(b.BottomLat),
	}, "&")
}

// BuildArguments decodes both masks and renders the cycle-independent
// fragments once.
func BuildArguments(qs model.QueryStructure) (Arguments, error) {
	vars, err := mask.EncodeSelected(qs.Variables)
	if err != nil {
		return Arguments{}, fmt.Errorf("variable mask: %w", err)
	}
	levs, err := mask.EncodeSelected(qs.Levels)
	if err != nil {
		return Arguments{}, fmt.Errorf("level mask: %w", err)
	}
	return Arguments{
		Variables: vars,
		Levels:    levs,
		Subregion: subregionFragment(qs.BoundingBox),
	}, nil
}

// BuildURL assembles the full filter URL for one forecast cycle.
func BuildURL(qs model.QueryStructure, args Arguments, qt model.QueryTime) string {
	base := strings.Replace(qs.Settings.GribURL, "{filter}", qs.Model.Filter, 1)

	core := url.Values{}
	core.Set("dir", expand(qs.Model.Dir, qt))
	core.Set("file", expand(qs.Model.File, qt))

	fragments := []string{core.Encode()}
	for _, f := range []string{args.Variables, args.Levels, args.Subregion} {
		if f != "" {
			fragments = append(fragments, f)
		}
	}
	return base + "?" + strings.Join(fragments, "&")
}

// URLs validates the structure and renders one URL per candidate cycle,
// preserving cycle order.
func URLs(qs model.QueryStructure, cycles []model.QueryTime) ([]string, error) {
	if err := qs.Validate(); err != nil {
		return nil, err
	}
	args, err := BuildArguments(qs)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(cycles))
	for i, qt := range cycles {
		out[i] = BuildURL(qs, args, qt)
	}
	return out, nil
}
