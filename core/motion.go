package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrPropagationFailed is returned when SGP4 produces no usable position,
// typically for a decayed orbit or a corrupt element set.
var ErrPropagationFailed = errors.New("SGP4 propagation failed")

// SGP4Model propagates a TLE with SGP4.
type SGP4Model struct {
	sat satellite.Satellite
}

// NewSGP4Model constructs a model from TLE lines 1 and 2. The lines must
// already be validated; go-satellite does not report decode errors.
func NewSGP4Model(line1, line2 string) *SGP4Model {
	return &SGP4Model{sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72)}
}

// PositionAt returns the TEME position in kilometres at t, resolved to
// the nearest second.
func (m *SGP4Model) PositionAt(t time.Time) (r3.Vec, error) {
	t = t.UTC().Round(time.Second)
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) {
		return r3.Vec{}, fmt.Errorf("%w: position at %s contains NaN", ErrPropagationFailed, t.Format(time.RFC3339))
	}
	return r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z}, nil
}
