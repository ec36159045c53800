package core

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/polageo/model"
)

func issElements() model.Elements {
	return model.Elements{
		Name:           "ISS",
		AltitudeKm:     400,
		Eccentricity:   0.0003,
		Inclination:    51.6,
		RightAscension: 0,
		ArgOfPerigee:   0,
		TrueAnomaly:    0,
		Unit:           model.Degrees,
	}
}

func TestNewSatelliteCircularOrbitMagnitude(t *testing.T) {
	sat, err := NewSatellite(issElements())
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	if got, want := sat.TrueAltitude(), 6771.0; got != want {
		t.Fatalf("TrueAltitude() = %v, want %v", got, want)
	}

	a := sat.TrueAltitude()
	if r := r3.Norm(sat.XYZ()); !scalar.EqualWithinAbs(r, a, 2*a*sat.Eccentricity()) {
		t.Fatalf("|xyz| = %v km, want within %v of %v", r, 2*a*sat.Eccentricity(), a)
	}

	ra, dec := sat.RA(), sat.Dec()
	if math.IsNaN(ra) || math.IsInf(ra, 0) || ra < 0 || ra >= 360 {
		t.Fatalf("RA() = %v, want finite in [0,360)", ra)
	}
	if math.IsNaN(dec) || dec < -90 || dec > 90 {
		t.Fatalf("Dec() = %v, want finite in [-90,90]", dec)
	}
}

func TestNewSatelliteDegreesAndRadiansAgree(t *testing.T) {
	deg := model.Elements{
		Name:           "SAT",
		AltitudeKm:     550,
		Eccentricity:   0.01,
		Inclination:    53,
		RightAscension: 210.5,
		ArgOfPerigee:   33.3,
		TrueAnomaly:    12,
		Unit:           model.Degrees,
	}
	rad := deg
	rad.Unit = model.Radians
	rad.Inclination *= math.Pi / 180
	rad.RightAscension *= math.Pi / 180
	rad.ArgOfPerigee *= math.Pi / 180
	rad.TrueAnomaly *= math.Pi / 180

	fromDeg, err := NewSatellite(deg)
	if err != nil {
		t.Fatalf("NewSatellite(deg): %v", err)
	}
	fromRad, err := NewSatellite(rad)
	if err != nil {
		t.Fatalf("NewSatellite(rad): %v", err)
	}

	if !scalar.EqualWithinAbs(fromDeg.RA(), fromRad.RA(), 1e-9) {
		t.Fatalf("RA deg=%v rad=%v", fromDeg.RA(), fromRad.RA())
	}
	if !scalar.EqualWithinAbs(fromDeg.Dec(), fromRad.Dec(), 1e-9) {
		t.Fatalf("Dec deg=%v rad=%v", fromDeg.Dec(), fromRad.Dec())
	}
	if d := r3.Norm(r3.Sub(fromDeg.XYZ(), fromRad.XYZ())); d > 1e-6 {
		t.Fatalf("xyz differ by %v km", d)
	}
	if !scalar.EqualWithinAbs(fromRad.Inclination().Deg(), 53, 1e-9) {
		t.Fatalf("Inclination().Deg() = %v, want 53", fromRad.Inclination().Deg())
	}
	if !scalar.EqualWithinAbs(fromDeg.TrueAnomaly().Rad(), 12*math.Pi/180, 1e-12) {
		t.Fatalf("TrueAnomaly().Rad() = %v", fromDeg.TrueAnomaly().Rad())
	}
}

func TestNewSatelliteTrueAltitudePerBody(t *testing.T) {
	ref, err := NewSatellite(issElements())
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	for _, b := range model.Bodies() {
		el := issElements()
		el.FocusBody = b.Name
		sat, err := NewSatellite(el)
		if err != nil {
			t.Fatalf("NewSatellite(%s): %v", b.Name, err)
		}
		if got, want := sat.TrueAltitude(), el.AltitudeKm+b.RadiusKm; got != want {
			t.Fatalf("%s: TrueAltitude() = %v, want %v", b.Name, got, want)
		}
		if sat.XYZ() != ref.XYZ() {
			t.Fatalf("%s: position should not depend on focus body, got %+v want %+v", b.Name, sat.XYZ(), ref.XYZ())
		}
	}
}

func TestNewSatelliteUnknownBody(t *testing.T) {
	el := issElements()
	el.FocusBody = "Gallifrey"
	sat, err := NewSatellite(el)
	if !errors.Is(err, model.ErrUnknownBody) {
		t.Fatalf("NewSatellite error = %v, want ErrUnknownBody", err)
	}
	if sat != nil {
		t.Fatalf("expected nil satellite on failure, got %v", sat)
	}
}

func TestNewSatelliteNonFinitePosition(t *testing.T) {
	for _, tc := range []struct {
		name string
		alt  float64
		ecc  float64
	}{
		{"negative eccentricity", 400, -1},
		{"altitude overflow", 1e306, 0},
	} {
		el := issElements()
		el.AltitudeKm, el.Eccentricity = tc.alt, tc.ecc
		sat, err := NewSatellite(el)
		if !errors.Is(err, ErrNonFinitePosition) {
			t.Fatalf("%s: NewSatellite error = %v, want ErrNonFinitePosition", tc.name, err)
		}
		if sat != nil {
			t.Fatalf("%s: expected nil satellite, got %v", tc.name, sat)
		}
	}
}

func TestNewSatelliteFocusBodyCaseInsensitive(t *testing.T) {
	el := issElements()
	el.FocusBody = "Jupiter"
	sat, err := NewSatellite(el)
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	if sat.FocusBody() != "Jupiter" {
		t.Fatalf("FocusBody() = %q, want Jupiter", sat.FocusBody())
	}
	if sat.TrueAltitude() != 400+69911 {
		t.Fatalf("TrueAltitude() = %v", sat.TrueAltitude())
	}
}

func TestNewSatelliteKnownGeometry(t *testing.T) {
	el := model.Elements{
		Name:           "EQ",
		AltitudeKm:     1000,
		RightAscension: 90,
		Unit:           model.Degrees,
	}
	sat, err := NewSatellite(el)
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	if !scalar.EqualWithinAbs(sat.RA(), 90, 1e-9) || !scalar.EqualWithinAbs(sat.Dec(), 0, 1e-9) {
		t.Fatalf("(ra, dec) = (%v, %v), want (90, 0)", sat.RA(), sat.Dec())
	}

	el = model.Elements{
		Name:         "POLAR",
		AltitudeKm:   800,
		Inclination:  math.Pi / 2,
		ArgOfPerigee: math.Pi / 2,
	}
	sat, err = NewSatellite(el)
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	if !scalar.EqualWithinAbs(sat.Dec(), 90, 1e-9) {
		t.Fatalf("Dec() = %v, want 90", sat.Dec())
	}
	if !scalar.EqualWithinAbs(sat.XYZ().Z, 7171, 1e-6) {
		t.Fatalf("XYZ().Z = %v, want 7171", sat.XYZ().Z)
	}
}

func TestSatelliteStringForms(t *testing.T) {
	sat, err := NewSatellite(issElements())
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	if got, want := sat.Dump(), "ISS, 400, 0.0003, 51.6, 0, 0, 0"; got != want {
		t.Fatalf("Dump() = %q, want %q", got, want)
	}
	want := "Satellite Name: ISS, Alt: 400, e: 0.0003, Inclination: 51.6, RA: 0, Periapsis: 0, Anomaly: 0"
	if got := sat.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestSatelliteEpochZeroForExplicitElements(t *testing.T) {
	sat, err := NewSatellite(issElements())
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	if !sat.Epoch().IsZero() {
		t.Fatalf("Epoch() = %v, want zero", sat.Epoch())
	}
}
