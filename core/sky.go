package core

import (
	"math"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

// FrameGCRS labels the frame positions are reported in.
const FrameGCRS = "gcrs"

// SkyPosition converts a Cartesian vector into its spherical longitude
// (right ascension) and latitude (declination). The vector is only changed
// in representation, not frame.
func SkyPosition(v r3.Vec) coord.Equatorial {
	ra := unit.RAFromRad(math.Atan2(v.Y, v.X))
	if float64(ra) >= 2*math.Pi {
		ra = 0
	}
	return coord.Equatorial{
		RA:  ra,
		Dec: unit.Angle(math.Atan2(v.Z, math.Hypot(v.X, v.Y))),
	}
}

// raDegrees returns ra in [0, 360).
func raDegrees(ra unit.RA) float64 {
	d := float64(ra) * 180 / math.Pi
	if d >= 360 {
		return 0
	}
	return d
}
