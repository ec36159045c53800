package model

import (
	"errors"
	"testing"
)

func TestBodyRadiusKmKnownBodies(t *testing.T) {
	cases := map[string]float64{
		"earth":   6371,
		"Luna":    1737,
		"MARS":    3390,
		"venus":   6052,
		"mercury": 2440,
		"Sol":     695700,
		"jupiter": 69911,
		"saturn":  58232,
		"uranus":  25362,
		"neptune": 24622,
		"pluto":   1188,
	}
	for name, want := range cases {
		got, err := BodyRadiusKm(name)
		if err != nil {
			t.Fatalf("BodyRadiusKm(%q) error: %v", name, err)
		}
		if got != want {
			t.Fatalf("BodyRadiusKm(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBodyRadiusKmUnknown(t *testing.T) {
	_, err := BodyRadiusKm("vulcan")
	if err == nil {
		t.Fatalf("expected error for unknown body")
	}
	if !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("error %v does not match ErrUnknownBody", err)
	}
	var ube *UnknownBodyError
	if !errors.As(err, &ube) || ube.Name != "vulcan" {
		t.Fatalf("errors.As = %#v, want UnknownBodyError{vulcan}", ube)
	}
}

func TestBodiesSortedSnapshot(t *testing.T) {
	bodies := Bodies()
	if len(bodies) != 11 {
		t.Fatalf("len(Bodies()) = %d, want 11", len(bodies))
	}
	for i := 1; i < len(bodies); i++ {
		if bodies[i-1].Name >= bodies[i].Name {
			t.Fatalf("Bodies not sorted at %d: %q >= %q", i, bodies[i-1].Name, bodies[i].Name)
		}
	}

	bodies[0].RadiusKm = -1
	if r, _ := BodyRadiusKm(bodies[0].Name); r == -1 {
		t.Fatalf("mutating the snapshot changed the table")
	}
}
