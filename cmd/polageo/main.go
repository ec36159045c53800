// Command polageo prints the sky position of one satellite, either from
// explicit orbital elements or from the current catalog element set.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	sexa "github.com/soniakeys/sexagesimal"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/internal/config"
	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/nbi/types"
	"github.com/signalsfoundry/polageo/model"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	elements types.ElementsRequest
	current  bool
	group    string
	target   string
	timeout  time.Duration
	config   string
	format   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("polageo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.elements.Name, "name", "", "satellite name")
	fs.Float64Var(&o.elements.AltitudeKm, "alt", 0, "altitude above the focus body, km")
	fs.Float64Var(&o.elements.Eccentricity, "ecc", 0, "eccentricity")
	fs.Float64Var(&o.elements.Inclination, "inc", 0, "inclination")
	fs.Float64Var(&o.elements.RightAscension, "raan", 0, "right ascension of the ascending node")
	fs.Float64Var(&o.elements.ArgOfPerigee, "argp", 0, "argument of perigee")
	fs.Float64Var(&o.elements.TrueAnomaly, "ta", 0, "true anomaly")
	fs.StringVar(&o.elements.Unit, "unit", "rad", "angle unit of -inc, -raan, -argp and -ta (rad|deg)")
	fs.StringVar(&o.elements.FocusBody, "body", model.DefaultBody, "focus body")

	fs.BoolVar(&o.current, "current", false, "use the current catalog element set instead of explicit elements")
	fs.StringVar(&o.group, "group", "", "catalog group (default from config)")
	fs.StringVar(&o.target, "target", "", "catalog satellite name (default from config)")
	fs.DurationVar(&o.timeout, "timeout", 0, "catalog request timeout (default from config)")
	fs.StringVar(&o.config, "config", "", "path to a YAML config file")
	fs.StringVar(&o.format, "format", "text", "output format (text|json)")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.format != "text" && o.format != "json" {
		return o, fmt.Errorf("-format must be text or json, got %q", o.format)
	}
	if !o.current && o.elements.Name == "" {
		return o, errors.New("-name is required unless -current is set")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "polageo: %v\n", err)
		return 2
	}

	sat, err := build(ctx, o, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "polageo: %v\n", err)
		return 1
	}

	if o.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(types.SatelliteToView(sat)); err != nil {
			fmt.Fprintf(stderr, "polageo: %v\n", err)
			return 1
		}
		return 0
	}
	printText(stdout, sat)
	return 0
}

func build(ctx context.Context, o options, stderr io.Writer) (*core.Satellite, error) {
	if !o.current {
		el, err := o.elements.ToModel()
		if err != nil {
			return nil, err
		}
		return core.NewSatellite(el)
	}

	cfg, err := config.Load(o.config)
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})
	if o.timeout > 0 {
		cfg.Catalog.Timeout = o.timeout
	}
	fetcher := catalog.NewFetcher(cfg.Catalog, catalog.WithLogger(log))
	return core.CurrentSatellite(ctx, fetcher.Source(o.group, o.target))
}

func printText(w io.Writer, sat *core.Satellite) {
	eq := sat.Sky()
	xyz := sat.XYZ()
	fmt.Fprintln(w, sat.String())
	fmt.Fprintf(w, "True altitude: %g km (%s)\n", sat.TrueAltitude(), sat.FocusBody())
	fmt.Fprintf(w, "RA: %.2s (%.6f deg)  Dec: %.1s (%.6f deg)\n",
		sexa.FmtRA(eq.RA), sat.RA(), sexa.FmtAngle(eq.Dec), sat.Dec())
	fmt.Fprintf(w, "XYZ: %.3f, %.3f, %.3f km (%s)\n", xyz.X, xyz.Y, xyz.Z, core.FrameGCRS)
	if epoch := sat.Epoch(); !epoch.IsZero() {
		fmt.Fprintf(w, "Epoch: %s\n", epoch.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Dump: %s\n", sat.Dump())
}
