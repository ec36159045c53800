package catalog

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/model"
)

// Record is one decoded NORAD element set. Angles are in degrees and mean
// motion in revolutions per day, as printed in the catalog.
type Record struct {
	Name string

	SatelliteNumber int
	Classification  rune
	International   string
	EpochYear       int
	EpochDay        float64
	MeanMotionDot   float64
	MeanMotionDot2  float64
	Bstar           float64
	ElementNumber   int

	Inclination      float64
	RightAscension   float64
	Eccentricity     float64
	ArgOfPerigee     float64
	MeanAnomaly      float64
	MeanMotion       float64
	RevolutionNumber int

	// Line1 and Line2 are kept verbatim for the SGP4 propagator.
	Line1 string
	Line2 string
}

// Elements returns the orbital elements of the record tagged with degrees.
// Altitude and true anomaly are left zero; the catalog does not carry them.
func (r *Record) Elements() model.Elements {
	return model.Elements{
		Name:           r.Name,
		Eccentricity:   r.Eccentricity,
		Inclination:    r.Inclination,
		RightAscension: r.RightAscension,
		ArgOfPerigee:   r.ArgOfPerigee,
		Unit:           model.Degrees,
	}
}

// EpochTime returns the record epoch in UTC.
func (r *Record) EpochTime() time.Time {
	days := int(r.EpochDay)
	frac := r.EpochDay - float64(days)

	// Day 1 is January 1st 00:00.
	base := time.Date(r.EpochYear, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days-1)
	return base.Add(time.Duration(math.Round(frac * 86400 * 1e9)))
}

// EpochPosition propagates the record with SGP4 to its own epoch and
// returns the position in km.
func (r *Record) EpochPosition() (r3.Vec, error) {
	return core.NewSGP4Model(r.Line1, r.Line2).PositionAt(r.EpochTime())
}

var _ core.ElementSet = (*Record)(nil)
