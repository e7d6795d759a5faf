package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dpup/prefab/logging"

	"github.com/dpup/georef/internal/config"
	"github.com/dpup/georef/internal/export"
	"github.com/dpup/georef/internal/lib/geo"
	"github.com/dpup/georef/internal/lib/monitor"
	"github.com/dpup/georef/internal/lib/routing"
	"github.com/dpup/georef/internal/netfile"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logging.Errorw(ctx, "georef: command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "point-distance":
		return handlePointDistance(args, out)
	case "decode-polyline":
		return handleDecodePolyline(args, out)
	case "polyline-length":
		return handlePolylineLength(args, out)
	case "polyline-point":
		return handlePolylinePoint(args, out)
	case "polyline-subrange":
		return handlePolylineSubRange(args, out)
	case "polyline-shift":
		return handlePolylineShift(args, out)
	case "route":
		return handleRoute(args, out)
	case "successors":
		return handleSuccessors(args, out)
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return errors.Newf("unknown command %q", command)
	}
}

func handlePointDistance(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("point-distance", flag.ContinueOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")
	metric := fs.String("metric", "vincenty", "vincenty, haversine or planar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var distance geo.DistanceFunc
	switch *metric {
	case "vincenty":
		distance = geo.VincentyDistanceMeters
	case "haversine":
		distance = geo.HaversineDistanceMeters
	case "planar":
		distance = geo.PlanarDistance
	default:
		return errors.Newf("unknown metric %q", *metric)
	}

	p1 := geo.LatLng(*lat1, *lng1)
	p2 := geo.LatLng(*lat2, *lng2)
	d, err := distance(p1, p2)
	if err != nil {
		return errors.Wrap(err, "calculating distance")
	}

	fmt.Fprintf(out, "Distance between points (%s):\n", *metric)
	fmt.Fprintf(out, "  Point 1: (%.6f, %.6f)\n", p1.Lat, p1.Lon)
	fmt.Fprintf(out, "  Point 2: (%.6f, %.6f)\n", p2.Lat, p2.Lon)
	fmt.Fprintf(out, "  Distance: %.2f meters (%.2f km, %.2f miles)\n", d, d/1000, d*0.000621371)
	return nil
}

// polylineFlag registers the shared --polyline flag.
func polylineFlag(fs *flag.FlagSet) *string {
	return fs.String("polyline", "", "Encoded polyline string")
}

func decode(encoded string) (*geo.Polyline, error) {
	if encoded == "" {
		return nil, errors.New("--polyline is required")
	}
	return geo.DecodePolyline(encoded)
}

func formatFlag(fs *flag.FlagSet) *string {
	return fs.String("format", string(export.FormatText), "Output format: text, encoded, kml or geojson")
}

func handleDecodePolyline(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode-polyline", flag.ContinueOnError)
	encoded := polylineFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := decode(*encoded)
	if err != nil {
		return err
	}
	cumulative := p.CumulativeLengths()
	fmt.Fprintf(out, "Decoded %d points:\n", p.NumPoints())
	for i, pt := range p.Points() {
		fmt.Fprintf(out, "  %3d: (%.5f, %.5f) at %.2f m\n", i, pt.Lat, pt.Lon, cumulative[i])
	}
	return nil
}

func handlePolylineLength(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyline-length", flag.ContinueOnError)
	encoded := polylineFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := decode(*encoded)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Length: %.2f meters over %d points\n", p.Length(), p.NumPoints())
	return nil
}

func handlePolylinePoint(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyline-point", flag.ContinueOnError)
	encoded := polylineFlag(fs)
	offset := fs.Float64("offset", 0, "Offset in meters from the first point")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := decode(*encoded)
	if err != nil {
		return err
	}
	pt, err := p.PointAt(*offset)
	if err != nil {
		return err
	}
	idx, err := p.IndexBeforeOffset(*offset)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Point at %.2f m: (%.6f, %.6f) after waypoint %d\n", *offset, pt.Lat, pt.Lon, idx)
	return nil
}

func handlePolylineSubRange(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyline-subrange", flag.ContinueOnError)
	encoded := polylineFlag(fs)
	start := fs.Float64("start", 0, "Start offset in meters")
	end := fs.Float64("end", 0, "End offset in meters")
	format := formatFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := decode(*encoded)
	if err != nil {
		return err
	}
	sub, err := p.SubRange(*start, *end)
	if err != nil {
		return err
	}
	return export.WritePolyline(out, f, "subrange", sub)
}

func handlePolylineShift(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyline-shift", flag.ContinueOnError)
	encoded := polylineFlag(fs)
	distance := fs.Float64("distance", 0, "Meters to the right of travel, negative for left")
	format := formatFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := decode(*encoded)
	if err != nil {
		return err
	}
	return export.WritePolyline(out, f, "shifted", p.Shift(*distance))
}

// app holds what the network commands share.
type app struct {
	cfg       *config.Config
	monitor   *monitor.Monitor
	assembler *routing.Assembler
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	mon, err := monitor.New(cfg.Monitor.Options())
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		monitor:   mon,
		assembler: routing.NewAssembler(mon, cfg.Network.Tolerances()),
	}, nil
}

func (a *app) loadNetwork(path string) (*netfile.Network, error) {
	if path == "" {
		path = a.cfg.Network.File
	}
	if path == "" {
		return nil, errors.New("--network is required when network.file is not configured")
	}

	begin := time.Now()
	n, err := netfile.Load(path)
	if err != nil {
		return nil, err
	}
	a.monitor.Duration("network.load", time.Since(begin))
	a.monitor.Count("network.links", int64(n.Len()))
	return n, nil
}

func handleRoute(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file")
	networkPath := fs.String("network", "", "Path to a YAML network file")
	linkIDs := fs.String("links", "", "Comma separated link ids, in travel order")
	start := fs.Float64("start", 0, "Offset in meters on the first link")
	end := fs.Float64("end", -1, "Offset in meters on the last link, defaults to its end")
	format := formatFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	if *linkIDs == "" {
		return errors.New("--links is required")
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.monitor.Close()

	n, err := a.loadNetwork(*networkPath)
	if err != nil {
		return err
	}
	links, err := n.Links(strings.Split(*linkIDs, ",")...)
	if err != nil {
		return err
	}

	var r *routing.Route
	if *end < 0 {
		r, err = a.assembler.FromOffsets(links, *start, links[len(links)-1].Length())
	} else {
		r, err = a.assembler.FromOffsets(links, *start, *end)
	}
	if err != nil {
		a.monitor.Alarm("route rejected: " + err.Error())
		return err
	}
	a.monitor.Mon(fmt.Sprintf("built route over %d links", len(links)))

	return export.WriteRoute(out, f, *linkIDs, r)
}

func handleSuccessors(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("successors", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file")
	networkPath := fs.String("network", "", "Path to a YAML network file")
	link := fs.String("link", "", "Link id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.monitor.Close()

	n, err := a.loadNetwork(*networkPath)
	if err != nil {
		return err
	}
	next, err := n.Successors(*link)
	if err != nil {
		return err
	}
	for _, id := range next {
		fmt.Fprintln(out, id)
	}
	return nil
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `georef - linear referencing over road networks

USAGE:
    georef <command> [options]

COMMANDS:
    point-distance      Distance between two WGS84 points
    decode-polyline     Decode a Google polyline with cumulative lengths
    polyline-length     Length of an encoded polyline
    polyline-point      Point at an offset along an encoded polyline
    polyline-subrange   Part of an encoded polyline between two offsets
    polyline-shift      Parallel copy of an encoded polyline
    route               Build a route over links from a network file
    successors          Links leaving the end of a link
    help                Show this help message

EXAMPLES:
    # Distance between Angels Camp and Murphys
    georef point-distance --lat1 38.0675 --lng1 -120.5436 --lat2 38.1391 --lng2 -120.4561

    # Highway 4 shifted 5 meters to the right, as KML
    georef polyline-shift --polyline "_p~iF~ps|U_ulLnnqC_mqNvxq`+"`"+`@" --distance 5 --format kml

    # Route from 1km into the first link to the end of the second
    georef route --network hwy4.yaml --links hwy4-angels-mid,hwy4-mid-murphys --start 1000 --format geojson
`)
}
