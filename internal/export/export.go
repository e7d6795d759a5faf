// Package export renders polylines and routes as KML or GeoJSON for viewing
// in map tools.
package export

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	kml "github.com/twpayne/go-kml"

	"github.com/dpup/georef/internal/lib/geo"
	"github.com/dpup/georef/internal/lib/routing"
)

// Format names an output encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatEncoded Format = "encoded"
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatEncoded, FormatKML, FormatGeoJSON:
		return f, nil
	default:
		return "", errors.Newf("unknown format %q, want text, encoded, kml or geojson", s)
	}
}

func requireWGS84(p *geo.Polyline) error {
	if p.System() != geo.WGS84 {
		return errors.Wrapf(geo.ErrUnsupportedSystem, "maps need WGS84 coordinates, got %s", p.System())
	}
	return nil
}

func kmlCoordinates(p *geo.Polyline) []kml.Coordinate {
	coords := make([]kml.Coordinate, p.NumPoints())
	for i, pt := range p.Points() {
		coords[i] = kml.Coordinate{Lon: pt.Lon, Lat: pt.Lat}
	}
	return coords
}

// PolylineKML writes a KML document with a single placemark for p.
func PolylineKML(w io.Writer, name string, p *geo.Polyline) error {
	if err := requireWGS84(p); err != nil {
		return err
	}
	doc := kml.KML(
		kml.Document(
			kml.Placemark(
				kml.Name(name),
				kml.Description(fmt.Sprintf("%.1f m", p.Length())),
				kml.LineString(kml.Tessellate(true), kml.Coordinates(kmlCoordinates(p)...)),
			),
		),
	)
	return doc.WriteIndent(w, "", "  ")
}

// RouteKML writes a KML document with the route geometry and one point
// placemark per spot.
func RouteKML(w io.Writer, name string, r *routing.Route) error {
	g, err := r.Geometry()
	if err != nil {
		return err
	}
	if err := requireWGS84(g); err != nil {
		return err
	}

	elements := []kml.Element{
		kml.Name(name),
		kml.Placemark(
			kml.Name(name),
			kml.Description(fmt.Sprintf("%.1f m over %d links", r.Length(), len(r.Links()))),
			kml.LineString(kml.Tessellate(true), kml.Coordinates(kmlCoordinates(g)...)),
		),
	}
	for i, s := range r.Spots() {
		pt, err := s.Coordinate()
		if err != nil {
			return errors.Wrapf(err, "spot %d", i)
		}
		elements = append(elements, kml.Placemark(
			kml.Name(fmt.Sprintf("spot %d", i)),
			kml.Description(s.String()),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: pt.Lon, Lat: pt.Lat})),
		))
	}

	return kml.KML(kml.Document(elements...)).WriteIndent(w, "", "  ")
}

// PolylineFeature converts p to a GeoJSON line feature carrying its length.
func PolylineFeature(p *geo.Polyline) (*geojson.Feature, error) {
	if err := requireWGS84(p); err != nil {
		return nil, err
	}
	f := geojson.NewFeature(p.LineString())
	f.Properties["length_m"] = p.Length()
	return f, nil
}

// RouteFeatures returns the route line followed by one point feature per
// spot.
func RouteFeatures(r *routing.Route) (*geojson.FeatureCollection, error) {
	g, err := r.Geometry()
	if err != nil {
		return nil, err
	}
	line, err := PolylineFeature(g)
	if err != nil {
		return nil, err
	}
	line.Properties["kind"] = "route"
	line.Properties["length_m"] = r.Length()
	line.Properties["links"] = len(r.Links())

	fc := geojson.NewFeatureCollection()
	fc.Append(line)

	for i, s := range r.Spots() {
		pt, err := s.Coordinate()
		if err != nil {
			return nil, errors.Wrapf(err, "spot %d", i)
		}
		f := geojson.NewFeature(orb.Point{pt.Lon, pt.Lat})
		f.Properties["kind"] = "spot"
		f.Properties["link"] = fmt.Sprint(s.Link())
		f.Properties["offset_m"] = s.Offset()
		f.Properties["lane"] = s.Lane()
		fc.Append(f)
	}
	return fc, nil
}

// WritePolyline renders p in the given format.
func WritePolyline(w io.Writer, format Format, name string, p *geo.Polyline) error {
	switch format {
	case FormatEncoded:
		return writeEncoded(w, p)
	case FormatKML:
		return PolylineKML(w, name, p)
	case FormatGeoJSON:
		f, err := PolylineFeature(p)
		if err != nil {
			return err
		}
		return writeJSON(w, f)
	default:
		_, err := fmt.Fprintln(w, p.String())
		return err
	}
}

// WriteRoute renders r in the given format.
func WriteRoute(w io.Writer, format Format, name string, r *routing.Route) error {
	switch format {
	case FormatEncoded:
		g, err := r.Geometry()
		if err != nil {
			return err
		}
		return writeEncoded(w, g)
	case FormatKML:
		return RouteKML(w, name, r)
	case FormatGeoJSON:
		fc, err := RouteFeatures(r)
		if err != nil {
			return err
		}
		return writeJSON(w, fc)
	default:
		if _, err := fmt.Fprintf(w, "%s\nLength: %.2f m\n", r, r.Length()); err != nil {
			return err
		}
		g, err := r.Geometry()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, g.String())
		return err
	}
}

func writeEncoded(w io.Writer, p *geo.Polyline) error {
	enc, err := p.Encode()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, enc)
	return err
}

func writeJSON(w io.Writer, v interface{ MarshalJSON() ([]byte, error) }) error {
	b, err := v.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode geojson")
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
