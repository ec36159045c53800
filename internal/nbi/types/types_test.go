package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/model"
)

func TestElementsRequestToModel(t *testing.T) {
	req := ElementsRequest{
		Name:        "ISS",
		AltitudeKm:  400,
		Inclination: 51.6,
		Unit:        "deg",
		FocusBody:   "Mars",
	}
	el, err := req.ToModel()
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if el.Unit != model.Degrees || el.FocusBody != "Mars" || el.Inclination != 51.6 {
		t.Fatalf("ToModel() = %+v", el)
	}

	req.Unit = ""
	if el, _ = req.ToModel(); el.Unit != model.Radians {
		t.Fatalf("empty unit should default to radians, got %v", el.Unit)
	}
}

func TestElementsRequestToModelRejects(t *testing.T) {
	for _, req := range []ElementsRequest{
		{Name: " "},
		{Name: "ISS", Unit: "grad"},
	} {
		if _, err := req.ToModel(); !errors.Is(err, ErrInvalidElements) {
			t.Fatalf("ToModel(%+v) error = %v, want ErrInvalidElements", req, err)
		}
	}
}

func TestElementsRequestPassesPhysicallyOddValues(t *testing.T) {
	req := ElementsRequest{Name: "ODD", AltitudeKm: -100, Eccentricity: 1.5}
	if _, err := req.ToModel(); err != nil {
		t.Fatalf("ToModel should not range-check numbers: %v", err)
	}
}

func TestSatelliteToView(t *testing.T) {
	sat, err := core.NewSatellite(model.Elements{
		Name:           "EQ",
		AltitudeKm:     1000,
		RightAscension: 90,
		Unit:           model.Degrees,
	})
	if err != nil {
		t.Fatalf("NewSatellite: %v", err)
	}
	v := SatelliteToView(sat)
	if v.Name != "EQ" || v.FocusBody != model.DefaultBody || v.Frame != core.FrameGCRS {
		t.Fatalf("view identity = %+v", v)
	}
	if v.TrueAltitudeKm != 7371 {
		t.Fatalf("TrueAltitudeKm = %v, want 7371", v.TrueAltitudeKm)
	}
	if !scalar.EqualWithinAbs(v.RADeg, 90, 1e-9) || !scalar.EqualWithinAbs(v.XYZKm[1], 7371, 1e-6) {
		t.Fatalf("RADeg = %v XYZKm = %v", v.RADeg, v.XYZKm)
	}
	if v.RAHMS == "" || v.DecDMS == "" {
		t.Fatalf("sexagesimal renderings missing: %q %q", v.RAHMS, v.DecDMS)
	}
	if v.Epoch != nil || v.UpdatedAt != nil {
		t.Fatalf("explicit elements should carry no epoch or update time")
	}

	raw, err := json.Marshal(SatelliteEntryToView(sat, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"updated_at":"2025-01-01T00:00:00Z"`) || strings.Contains(string(raw), `"epoch"`) {
		t.Fatalf("unexpected JSON: %s", raw)
	}
}

func TestBodiesToView(t *testing.T) {
	views := BodiesToView(model.Bodies())
	if len(views) != 11 {
		t.Fatalf("len = %d, want 11", len(views))
	}
	for _, v := range views {
		if v.Name == "earth" && v.RadiusKm != 6371 {
			t.Fatalf("earth radius = %v", v.RadiusKm)
		}
	}
}
