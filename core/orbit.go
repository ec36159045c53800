package core

import (
	"math"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	kmToM = 1000.0

	// EarthRadiusKm is the mean Earth radius used by the propagation step
	// and for back-computing altitude from an epoch position.
	EarthRadiusKm = 6371.0
)

var (
	xAxis = r3.Vec{X: 1}
	zAxis = r3.Vec{Z: 1}
)

// KeplerOrbit is a two-body orbit around Earth. Distances are in metres.
type KeplerOrbit struct {
	SemiMajorAxisM float64
	Eccentricity   float64
	Inclination    unit.Angle
	ArgOfPerigee   unit.Angle
	RightAscension unit.Angle
	TrueAnomaly    unit.Angle
}

// OrbitWithAltitude returns an orbit whose semi-major axis lies altitudeM
// above the Earth's mean radius. The true anomaly is zero, so Position
// reports the satellite at perigee for the element epoch.
func OrbitWithAltitude(altitudeM, ecc float64, incl, argp, raan unit.Angle) KeplerOrbit {
	return KeplerOrbit{
		SemiMajorAxisM: altitudeM + EarthRadiusKm*kmToM,
		Eccentricity:   ecc,
		Inclination:    incl,
		ArgOfPerigee:   argp,
		RightAscension: raan,
	}
}

// SemiParameter returns a(1-e²) in metres.
func (o KeplerOrbit) SemiParameter() float64 {
	return o.SemiMajorAxisM * (1 - o.Eccentricity*o.Eccentricity)
}

// Position returns the position vector in metres in the Earth-centred
// inertial frame.
func (o KeplerOrbit) Position() r3.Vec {
	sinNu, cosNu := math.Sincos(o.TrueAnomaly.Rad())
	r := o.SemiParameter() / (1 + o.Eccentricity*cosNu)
	return perifocalToInertial(r3.Vec{X: r * cosNu, Y: r * sinNu}, o.Inclination, o.ArgOfPerigee, o.RightAscension)
}

// perifocalToInertial rotates a PQW vector by ω about Z, i about X, then Ω
// about Z.
func perifocalToInertial(v r3.Vec, incl, argp, raan unit.Angle) r3.Vec {
	v = r3.Rotate(v, argp.Rad(), zAxis)
	v = r3.Rotate(v, incl.Rad(), xAxis)
	return r3.Rotate(v, raan.Rad(), zAxis)
}
