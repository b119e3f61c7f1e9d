// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package stats

import "github.com/relplan/optcore/pkg/settings"

var defaultJoinScaleFactor = settings.RegisterFloatSetting(
	"sql.opt.stats.default_join_scale_factor",
	"scale factor applied to the cartesian product of a join when its histograms "+
		"cannot be combined",
	100,
	settings.PositiveFloat,
)

var dampingFactorJoin = settings.RegisterFloatSetting(
	"sql.opt.stats.damping_factor.join",
	"exponent base by which the scale factors of additional join predicates are damped",
	0.01,
	settings.FloatInRange(0, 1),
)

var dampingFactorFilter = settings.RegisterFloatSetting(
	"sql.opt.stats.damping_factor.filter",
	"exponent base by which the selectivities of additional filter predicates are damped",
	0.75,
	settings.FloatInRange(0, 1),
)

var ndvScalePropagation = settings.RegisterBoolSetting(
	"sql.opt.stats.ndv_scale_propagation.enabled",
	"if set, histograms whose distinct counts were scaled by a join keep them across "+
		"further joins",
	true,
)

var minRows = settings.RegisterFloatSetting(
	"sql.opt.stats.min_rows",
	"smallest row count estimated for a relation that is not provably empty",
	1,
	settings.NonNegativeFloat,
)

// Config holds the knobs consumed by statistics derivation. It is passed
// explicitly to every derivation.
type Config struct {
	// DefaultJoinScaleFactor is used for a join predicate whose histograms
	// cannot be combined.
	DefaultJoinScaleFactor float64

	// DampingFactorJoin reduces the combined effect of several join
	// predicates, which are frequently correlated.
	DampingFactorJoin float64

	// DampingFactorFilter does the same for the filters applied to a scan.
	DampingFactorFilter float64

	// EnableNDVScalePropagation controls whether the scaled NDV flag of a
	// histogram is honored across joins.
	EnableNDVScalePropagation bool

	// MinRows is the floor of the row count of a relation that is not known
	// to be empty.
	MinRows float64
}

// DefaultConfig returns the configuration made of the default value of every
// setting.
func DefaultConfig() Config {
	return MakeConfig(nil)
}

// MakeConfig reads the configuration from the given setting values. A nil
// sv yields the defaults.
func MakeConfig(sv *settings.Values) Config {
	return Config{
		DefaultJoinScaleFactor:    defaultJoinScaleFactor.Get(sv),
		DampingFactorJoin:         dampingFactorJoin.Get(sv),
		DampingFactorFilter:       dampingFactorFilter.Get(sv),
		EnableNDVScalePropagation: ndvScalePropagation.Get(sv),
		MinRows:                   minRows.Get(sv),
	}
}
