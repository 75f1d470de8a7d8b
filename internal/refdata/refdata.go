// Package refdata holds the built-in GFS product catalog: the ordered
// variable and level lists that define mask bit positions, the product
// templates, and the named selection presets. List order is load-bearing
// and append-only; reordering or removing an entry silently changes the
// meaning of every stored mask.
package refdata

import (
	"fmt"
	"sort"

	"github.com/johnny111272/grib-getter/internal/mask"
	"github.com/johnny111272/grib-getter/internal/model"
)

// GFSVariables is the ordered variable list for the 0.25 degree GFS
// surface products.
var GFSVariables = []string{
	"APCP",
	"CAPE",
	"CFRZR",
	"CICEP",
	"CRAIN",
	"CSNOW",
	"DPT",
	"GUST",
	"HGT",
	"ICEC",
	"LFTX",
	"LTNG",
	"MAXREF",
	"PRATE",
	"PRES",
	"PRMSL",
	"PWAT",
	"REFC",
	"REFD",
	"RH",
	"SNOD",
	"TMP",
	"UGRD",
	"VGRD",
	"VIS",
	"WEASD",
	"WIND",
}

// GFSLevels is the ordered level list for the same products.
var GFSLevels = []string{
	"mean_sea_level",
	"surface",
	"2_m_above_ground",
	"10_m_above_ground",
	"850_mb",
	"700_mb",
	"500_mb",
	"300_mb",
	"entire_atmosphere",
	`entire_atmosphere_\(considered_as_a_single_layer\)`,
}

// GFSModelData bundles both lists.
func GFSModelData() model.ModelData {
	return model.ModelData{Variables: GFSVariables, Levels: GFSLevels}
}

// ─── Products ─────────────────────────────────────────────────────────────────

var products = map[string]model.QueryModel{
	"gfs_quarter_degree": {
		Name:   "gfs_quarter_degree",
		Filter: "filter_gfs_0p25.pl",
		File:   "gfs.t{cycle_hour_utc}z.pgrb2.0p25.f000",
		Dir:    "/gfs.{date_utc}/{cycle_hour_utc}/atmos",
	},
	"gfs_quarter_degree_hourly": {
		Name:   "gfs_quarter_degree_hourly",
		Filter: "filter_gfs_0p25_1hr.pl",
		File:   "gfs.t{cycle_hour_utc}z.pgrb2.0p25.f000",
		Dir:    "/gfs.{date_utc}/{cycle_hour_utc}/atmos",
	},
}

// DefaultProduct is used when no --product flag is given.
const DefaultProduct = "gfs_quarter_degree"

// Product looks up a product template by name.
func Product(name string) (model.QueryModel, error) {
	p, ok := products[name]
	if !ok {
		return model.QueryModel{}, fmt.Errorf("unknown product %q (available: %v)", name, ProductNames())
	}
	return p, nil
}

// ProductNames lists the known products, sorted.
func ProductNames() []string {
	names := make([]string, 0, len(products))
	for n := range products {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ─── Presets ──────────────────────────────────────────────────────────────────

// presetDef is the human-maintained form of a preset. Masks are derived
// from it at load time so a typo fails the first lookup instead of
// producing a wrong selection.
type presetDef struct {
	description string
	variables   []string
	levels      []string
}

var presetDefs = map[string]presetDef{
	"sailing_basic": {
		description: "Wind and pressure for coastal sailing",
		variables:   []string{"GUST", "PRES", "PRMSL", "UGRD", "VGRD", "WIND"},
		levels:      []string{"mean_sea_level", "surface", "10_m_above_ground"},
	},
	"sailing_extended": {
		description: "Sailing set plus temperature, rain, and visibility",
		variables: []string{
			"APCP", "GUST", "PRATE", "PRES", "PRMSL", "PWAT",
			"TMP", "UGRD", "VGRD", "VIS", "WIND",
		},
		levels: []string{"mean_sea_level", "surface", "2_m_above_ground", "10_m_above_ground"},
	},
	"aviation": {
		description: "Winds aloft, convection, and visibility",
		variables: []string{
			"CAPE", "GUST", "HGT", "LFTX", "REFC",
			"TMP", "UGRD", "VGRD", "VIS", "WIND",
		},
		levels: []string{
			"surface", "10_m_above_ground",
			"850_mb", "700_mb", "500_mb", "300_mb",
		},
	},
	"precipitation": {
		description: "Precipitation type, rate, and accumulation",
		variables: []string{
			"APCP", "CFRZR", "CICEP", "CRAIN", "CSNOW",
			"PRATE", "PWAT", "REFC", "SNOD", "WEASD",
		},
		levels: []string{"surface", "entire_atmosphere"},
	},
}

// DefaultPreset is used when no --preset flag is given.
const DefaultPreset = "sailing_basic"

// Preset resolves a named preset into its mask pair.
func Preset(name string) (model.QueryMask, error) {
	def, ok := presetDefs[name]
	if !ok {
		return model.QueryMask{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	vars, err := mask.Encode(GFSVariables, def.variables)
	if err != nil {
		return model.QueryMask{}, fmt.Errorf("preset %s variables: %w", name, err)
	}
	levs, err := mask.Encode(GFSLevels, def.levels)
	if err != nil {
		return model.QueryMask{}, fmt.Errorf("preset %s levels: %w", name, err)
	}
	return model.QueryMask{Variables: vars, Levels: levs}, nil
}

// PresetNames lists the known presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presetDefs))
	for n := range presetDefs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PresetDescription returns the one-line summary shown in listings.
func PresetDescription(name string) string {
	return presetDefs[name].description
}
