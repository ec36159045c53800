// Package types holds the JSON views served by the HTTP API and their
// mappings to and from the domain types.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sexa "github.com/soniakeys/sexagesimal"

	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/model"
)

// ErrInvalidElements is wrapped by ElementsRequest.ToModel failures.
var ErrInvalidElements = errors.New("invalid elements")

// ElementsRequest is the body of POST /v1/satellites/position. Angles are
// read in Unit, which defaults to radians.
type ElementsRequest struct {
	Name           string  `json:"name"`
	AltitudeKm     float64 `json:"altitude_km"`
	Eccentricity   float64 `json:"eccentricity"`
	Inclination    float64 `json:"inclination"`
	RightAscension float64 `json:"right_ascension"`
	ArgOfPerigee   float64 `json:"arg_of_perigee"`
	TrueAnomaly    float64 `json:"true_anomaly"`
	Unit           string  `json:"unit,omitempty"`
	FocusBody      string  `json:"focus_body,omitempty"`
}

// ToModel converts the request into model.Elements. Only the name and the
// unit tag are checked; numeric values pass through unchanged.
func (r ElementsRequest) ToModel() (model.Elements, error) {
	if strings.TrimSpace(r.Name) == "" {
		return model.Elements{}, fmt.Errorf("%w: name is required", ErrInvalidElements)
	}
	u, err := model.ParseAngleUnit(r.Unit)
	if err != nil {
		return model.Elements{}, fmt.Errorf("%w: %v", ErrInvalidElements, err)
	}
	return model.Elements{
		Name:           r.Name,
		AltitudeKm:     r.AltitudeKm,
		Eccentricity:   r.Eccentricity,
		Inclination:    r.Inclination,
		RightAscension: r.RightAscension,
		ArgOfPerigee:   r.ArgOfPerigee,
		TrueAnomaly:    r.TrueAnomaly,
		Unit:           u,
		FocusBody:      r.FocusBody,
	}, nil
}

// SatelliteView is the JSON form of a satellite descriptor. Angles are in
// degrees; RAHMS and DecDMS render the sky position sexagesimally.
type SatelliteView struct {
	Name              string     `json:"name"`
	FocusBody         string     `json:"focus_body"`
	AltitudeKm        float64    `json:"altitude_km"`
	TrueAltitudeKm    float64    `json:"true_altitude_km"`
	Eccentricity      float64    `json:"eccentricity"`
	InclinationDeg    float64    `json:"inclination_deg"`
	RightAscensionDeg float64    `json:"right_ascension_deg"`
	ArgOfPerigeeDeg   float64    `json:"arg_of_perigee_deg"`
	TrueAnomalyDeg    float64    `json:"true_anomaly_deg"`
	RADeg             float64    `json:"ra_deg"`
	DecDeg            float64    `json:"dec_deg"`
	RAHMS             string     `json:"ra_hms"`
	DecDMS            string     `json:"dec_dms"`
	Frame             string     `json:"frame"`
	XYZKm             [3]float64 `json:"xyz_km"`
	Epoch             *time.Time `json:"epoch,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
	Summary           string     `json:"summary"`
}

// SatelliteToView maps a descriptor onto its JSON view.
func SatelliteToView(sat *core.Satellite) SatelliteView {
	eq := sat.Sky()
	xyz := sat.XYZ()
	v := SatelliteView{
		Name:              sat.Name(),
		FocusBody:         sat.FocusBody(),
		AltitudeKm:        sat.Altitude(),
		TrueAltitudeKm:    sat.TrueAltitude(),
		Eccentricity:      sat.Eccentricity(),
		InclinationDeg:    sat.Inclination().Deg(),
		RightAscensionDeg: sat.RightAscension().Deg(),
		ArgOfPerigeeDeg:   sat.ArgOfPerigee().Deg(),
		TrueAnomalyDeg:    sat.TrueAnomaly().Deg(),
		RADeg:             sat.RA(),
		DecDeg:            sat.Dec(),
		RAHMS:             fmt.Sprintf("%.2s", sexa.FmtRA(eq.RA)),
		DecDMS:            fmt.Sprintf("%.1s", sexa.FmtAngle(eq.Dec)),
		Frame:             core.FrameGCRS,
		XYZKm:             [3]float64{xyz.X, xyz.Y, xyz.Z},
		Summary:           sat.String(),
	}
	if epoch := sat.Epoch(); !epoch.IsZero() {
		v.Epoch = &epoch
	}
	return v
}

// SatelliteEntryToView is SatelliteToView plus the registry update time.
func SatelliteEntryToView(sat *core.Satellite, updatedAt time.Time) SatelliteView {
	v := SatelliteToView(sat)
	if !updatedAt.IsZero() {
		u := updatedAt.UTC()
		v.UpdatedAt = &u
	}
	return v
}

// BodyView is one row of the body radius table.
type BodyView struct {
	Name     string  `json:"name"`
	RadiusKm float64 `json:"radius_km"`
}

// BodiesToView maps the radius table onto its JSON view.
func BodiesToView(bodies []model.Body) []BodyView {
	out := make([]BodyView, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, BodyView{Name: b.Name, RadiusKm: b.RadiusKm})
	}
	return out
}
