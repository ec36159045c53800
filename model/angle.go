package model

import (
	"fmt"
	"strings"

	"github.com/soniakeys/unit"
)

// AngleUnit tags which unit a set of input angles is expressed in.
type AngleUnit int

const (
	Radians AngleUnit = iota // default
	Degrees
)

func (u AngleUnit) String() string {
	switch u {
	case Radians:
		return "rad"
	case Degrees:
		return "deg"
	default:
		return fmt.Sprintf("AngleUnit(%d)", int(u))
	}
}

// ParseAngleUnit accepts "rad", "radians", "deg" and "degrees". An empty
// string selects Radians.
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rad", "radian", "radians":
		return Radians, nil
	case "deg", "degree", "degrees":
		return Degrees, nil
	default:
		return Radians, fmt.Errorf("unsupported angle unit %q", s)
	}
}

// Angle converts v, expressed in u, to a unit.Angle.
func (u AngleUnit) Angle(v float64) unit.Angle {
	if u == Degrees {
		return unit.AngleFromDeg(v)
	}
	return unit.Angle(v)
}
