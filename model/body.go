package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultBody is the focus body used when none is given.
const DefaultBody = "earth"

// ErrUnknownBody is matched by errors returned for names missing from the
// radius table.
var ErrUnknownBody = errors.New("unknown focus body")

// bodyRadiiKm holds mean radii in kilometres.
var bodyRadiiKm = map[string]float64{
	"earth":   6371,
	"luna":    1737,
	"mars":    3390,
	"venus":   6052,
	"mercury": 2440,
	"sol":     695700,
	"jupiter": 69911,
	"saturn":  58232,
	"uranus":  25362,
	"neptune": 24622,
	"pluto":   1188,
}

// UnknownBodyError reports a focus body that is not in the radius table.
type UnknownBodyError struct {
	Name string
}

func (e *UnknownBodyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownBody, e.Name)
}

// Is lets errors.Is(err, ErrUnknownBody) match.
func (e *UnknownBodyError) Is(target error) bool { return target == ErrUnknownBody }

// Body is one entry of the radius table.
type Body struct {
	Name     string
	RadiusKm float64
}

// BodyRadiusKm returns the mean radius of the named body. Lookup is
// case-insensitive.
func BodyRadiusKm(name string) (float64, error) {
	r, ok := bodyRadiiKm[strings.ToLower(name)]
	if !ok {
		return 0, &UnknownBodyError{Name: name}
	}
	return r, nil
}

// Bodies returns a snapshot of the radius table sorted by name.
func Bodies() []Body {
	res := make([]Body, 0, len(bodyRadiiKm))
	for name, r := range bodyRadiiKm {
		res = append(res, Body{Name: name, RadiusKm: r})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}
