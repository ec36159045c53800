package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/polageo/model"
)

// ErrNonFinitePosition is returned when the elements produce a position
// that is NaN or infinite, for example a negative eccentricity or an
// altitude beyond float64 range once converted to metres.
var ErrNonFinitePosition = errors.New("orbital elements give a non-finite position")

// Satellite describes one satellite's orbital elements and the position
// derived from them. Every derived field is computed once by the
// constructor; a Satellite is never mutated afterwards and is safe to share.
type Satellite struct {
	name      string
	altitude  float64 // km
	focusBody string
	ecc       float64
	angles    model.OrbitAngles
	epoch     time.Time

	trueAltitude float64 // km
	sky          coord.Equatorial
	xyz          r3.Vec // km
}

// NewSatellite builds a descriptor from explicit orbital elements. It fails
// with a model.ErrUnknownBody error when the focus body is not tabulated.
func NewSatellite(el model.Elements) (*Satellite, error) {
	return newSatellite(el, time.Time{})
}

func newSatellite(el model.Elements, epoch time.Time) (*Satellite, error) {
	body := el.Body()
	radius, err := model.BodyRadiusKm(body)
	if err != nil {
		return nil, err
	}

	s := &Satellite{
		name:         el.Name,
		altitude:     el.AltitudeKm,
		focusBody:    body,
		ecc:          el.Eccentricity,
		angles:       el.Angles(),
		epoch:        epoch,
		trueAltitude: el.AltitudeKm + radius,
	}
	s.locate()
	if !s.finite() {
		return nil, fmt.Errorf("%w: %s (altitude %g km, e %g)", ErrNonFinitePosition, el.Name, el.AltitudeKm, el.Eccentricity)
	}
	return s, nil
}

// locate propagates about Earth whatever the focus body is.
func (s *Satellite) locate() {
	orbit := OrbitWithAltitude(
		s.altitude*kmToM,
		s.ecc,
		s.angles.Inclination,
		s.angles.ArgOfPerigee,
		s.angles.RightAscension,
	)
	s.xyz = r3.Scale(1/kmToM, orbit.Position())
	s.sky = SkyPosition(s.xyz)
}

func (s *Satellite) finite() bool {
	for _, v := range []float64{s.trueAltitude, s.xyz.X, s.xyz.Y, s.xyz.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Name is the satellite name as given, or sanitized for catalog records.
func (s *Satellite) Name() string { return s.name }

// Altitude is the height above the focus body's mean radius, in km.
func (s *Satellite) Altitude() float64 { return s.altitude }

// FocusBody is the lookup name of the body the altitude refers to.
func (s *Satellite) FocusBody() string { return s.focusBody }

// Eccentricity is the orbit eccentricity.
func (s *Satellite) Eccentricity() float64 { return s.ecc }

// Inclination is the orbit inclination.
func (s *Satellite) Inclination() unit.Angle { return s.angles.Inclination }

// RightAscension is the right ascension of the ascending node.
func (s *Satellite) RightAscension() unit.Angle { return s.angles.RightAscension }

// ArgOfPerigee is the argument of perigee.
func (s *Satellite) ArgOfPerigee() unit.Angle { return s.angles.ArgOfPerigee }

// TrueAnomaly is the true anomaly as given; it does not move the position.
func (s *Satellite) TrueAnomaly() unit.Angle { return s.angles.TrueAnomaly }

// TrueAltitude is the altitude plus the focus body's mean radius, in km.
func (s *Satellite) TrueAltitude() float64 { return s.trueAltitude }

// RA returns the right ascension in degrees, in [0, 360).
func (s *Satellite) RA() float64 { return raDegrees(s.sky.RA) }

// Dec returns the declination in degrees.
func (s *Satellite) Dec() float64 { return s.sky.Dec.Deg() }

// Sky returns the sky position as typed angles.
func (s *Satellite) Sky() coord.Equatorial { return s.sky }

// XYZ returns the Cartesian position in km, in the propagation frame.
func (s *Satellite) XYZ() r3.Vec { return s.xyz }

// Epoch is the element-set epoch for catalog-derived descriptors and the
// zero time otherwise.
func (s *Satellite) Epoch() time.Time { return s.epoch }

// Dump returns the comma-joined input fields, angles in degrees.
func (s *Satellite) Dump() string {
	return fmt.Sprintf("%s, %g, %g, %.10g, %.10g, %.10g, %.10g",
		s.name,
		s.altitude,
		s.ecc,
		s.angles.Inclination.Deg(),
		s.angles.RightAscension.Deg(),
		s.angles.ArgOfPerigee.Deg(),
		s.angles.TrueAnomaly.Deg(),
	)
}

func (s *Satellite) String() string {
	return fmt.Sprintf("Satellite Name: %s, Alt: %g, e: %g, Inclination: %.10g, RA: %.10g, Periapsis: %.10g, Anomaly: %.10g",
		s.name,
		s.altitude,
		s.ecc,
		s.angles.Inclination.Deg(),
		s.angles.RightAscension.Deg(),
		s.angles.ArgOfPerigee.Deg(),
		s.angles.TrueAnomaly.Deg(),
	)
}
