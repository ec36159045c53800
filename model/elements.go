package model

import "github.com/soniakeys/unit"

// Elements is the input to a satellite descriptor. The four angles are all
// expressed in Unit.
type Elements struct {
	Name         string
	AltitudeKm   float64
	Eccentricity float64

	Inclination    float64
	RightAscension float64 // of the ascending node
	ArgOfPerigee   float64
	TrueAnomaly    float64
	Unit           AngleUnit

	FocusBody string // empty means DefaultBody
}

// OrbitAngles holds the four angular elements in a single representation.
type OrbitAngles struct {
	Inclination    unit.Angle
	RightAscension unit.Angle
	ArgOfPerigee   unit.Angle
	TrueAnomaly    unit.Angle
}

// Angles converts the angular elements once, according to e.Unit.
func (e Elements) Angles() OrbitAngles {
	return OrbitAngles{
		Inclination:    e.Unit.Angle(e.Inclination),
		RightAscension: e.Unit.Angle(e.RightAscension),
		ArgOfPerigee:   e.Unit.Angle(e.ArgOfPerigee),
		TrueAnomaly:    e.Unit.Angle(e.TrueAnomaly),
	}
}

// Body returns the focus body name, falling back to DefaultBody.
func (e Elements) Body() string {
	if e.FocusBody == "" {
		return DefaultBody
	}
	return e.FocusBody
}
