package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/polageo/model"
)

const tracerName = "github.com/signalsfoundry/polageo/core"

// ElementSet is an element-set record, typically decoded from a TLE
// catalog. Elements supplies name, eccentricity and the angles; altitude
// and true anomaly are ignored.
type ElementSet interface {
	Elements() model.Elements
	EpochTime() time.Time
	// EpochPosition is the position at the record epoch, in km.
	EpochPosition() (r3.Vec, error)
}

// ElementSource returns the element set of the satellite it is configured
// to track.
type ElementSource interface {
	Lookup(ctx context.Context) (ElementSet, error)
}

// NewSatelliteFromElementSet builds a descriptor from a catalog record. The
// name is sanitized, the altitude is the epoch radius minus EarthRadiusKm,
// and the true anomaly is fixed to zero since TLE records carry none.
func NewSatelliteFromElementSet(es ElementSet) (*Satellite, error) {
	pos, err := es.EpochPosition()
	if err != nil {
		return nil, fmt.Errorf("epoch position: %w", err)
	}

	el := es.Elements()
	el.Name = SanitizeName(el.Name)
	el.AltitudeKm = r3.Norm(pos) - EarthRadiusKm
	el.TrueAnomaly = 0
	return newSatellite(el, es.EpochTime())
}

// CurrentSatellite looks up the current element set through src and
// builds a descriptor from it. Errors from src are returned wrapped.
func CurrentSatellite(ctx context.Context, src ElementSource) (*Satellite, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "core.CurrentSatellite")
	defer span.End()

	es, err := src.Lookup(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("lookup current element set: %w", err)
	}

	sat, err := NewSatelliteFromElementSet(es)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("satellite.name", sat.Name()),
		attribute.Float64("satellite.altitude_km", sat.Altitude()),
	)
	return sat, nil
}
