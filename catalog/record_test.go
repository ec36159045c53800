package catalog

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/model"
)

func TestRecordEpochTime(t *testing.T) {
	iss := readStations(t)[0]
	want := time.Date(2008, 9, 20, 12, 25, 40, 104192000, time.UTC)
	if d := iss.EpochTime().Sub(want); d < -time.Millisecond || d > time.Millisecond {
		t.Fatalf("EpochTime() = %v, want %v", iss.EpochTime(), want)
	}

	tianhe := readStations(t)[1]
	if got, want := tianhe.EpochTime(), time.Date(2021, 10, 2, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("EpochTime() = %v, want %v", got, want)
	}
}

func TestRecordElements(t *testing.T) {
	iss := readStations(t)[0]
	el := iss.Elements()
	if el.Unit != model.Degrees {
		t.Fatalf("Unit = %v, want deg", el.Unit)
	}
	if el.Name != issName || el.Inclination != iss.Inclination || el.Eccentricity != iss.Eccentricity {
		t.Fatalf("Elements() = %+v", el)
	}
	if el.TrueAnomaly != 0 || el.AltitudeKm != 0 {
		t.Fatalf("catalog elements should leave altitude and true anomaly zero, got %+v", el)
	}
}

func TestRecordEpochPosition(t *testing.T) {
	for _, rec := range readStations(t) {
		pos, err := rec.EpochPosition()
		if err != nil {
			t.Fatalf("%s: EpochPosition: %v", rec.Name, err)
		}
		if r := r3.Norm(pos); r < 6500 || r > 7000 {
			t.Fatalf("%s: |pos| = %v km, want LEO radius", rec.Name, r)
		}
	}
}

func TestRecordBuildsSatellite(t *testing.T) {
	records := readStations(t)
	rec, ok := Lookup(records, "TIANHE")
	if !ok {
		t.Fatalf("TIANHE not in testdata")
	}
	sat, err := core.NewSatelliteFromElementSet(rec)
	if err != nil {
		t.Fatalf("NewSatelliteFromElementSet: %v", err)
	}
	if sat.Name() != "TIANHE" {
		t.Fatalf("Name() = %q", sat.Name())
	}
	if sat.Altitude() < 300 || sat.Altitude() > 500 {
		t.Fatalf("Altitude() = %v km, want a space-station altitude", sat.Altitude())
	}
	if !sat.Epoch().Equal(rec.EpochTime()) {
		t.Fatalf("Epoch() = %v, want %v", sat.Epoch(), rec.EpochTime())
	}
	if sat.Inclination().Deg() < 41.46 || sat.Inclination().Deg() > 41.48 {
		t.Fatalf("Inclination = %v", sat.Inclination().Deg())
	}
}
