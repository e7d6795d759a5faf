package routing

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/dpup/georef/internal/lib/geo"
)

// StaticLink is an in-memory Link backed by a fixed polyline and a constant
// lane count.
type StaticLink struct {
	id       string
	start    NodeID
	end      NodeID
	geometry *geo.Polyline
	lanes    int16
}

// NewStaticLink creates a link from start to end following geometry.
func NewStaticLink(id string, start, end NodeID, geometry *geo.Polyline, lanes int16) (*StaticLink, error) {
	if geometry == nil {
		return nil, errors.Newf("link %s: geometry is required", id)
	}
	if lanes < 0 {
		return nil, errors.Newf("link %s: lane count must not be negative, got %d", id, lanes)
	}
	return &StaticLink{
		id:       id,
		start:    start,
		end:      end,
		geometry: geometry,
		lanes:    lanes,
	}, nil
}

// ID returns the link identifier.
func (l *StaticLink) ID() string { return l.id }

// Length returns the length of the link geometry in meters.
func (l *StaticLink) Length() float64 { return l.geometry.Length() }

// StartNode returns the node the link leaves from.
func (l *StaticLink) StartNode() NodeID { return l.start }

// EndNode returns the node the link arrives at.
func (l *StaticLink) EndNode() NodeID { return l.end }

// NumLanesAtOffset returns the constant lane count, failing for offsets
// outside the link.
func (l *StaticLink) NumLanesAtOffset(offset float64) (int16, error) {
	if _, err := l.clamp(offset); err != nil {
		return 0, err
	}
	return l.lanes, nil
}

// Geometry returns the full link polyline.
func (l *StaticLink) Geometry() (*geo.Polyline, error) {
	return l.geometry, nil
}

// PartialGeometry accepts offsets up to LengthPrecision outside the link and
// clamps them to its ends.
func (l *StaticLink) PartialGeometry(start, end float64) (*geo.Polyline, error) {
	s, err := l.clamp(start)
	if err != nil {
		return nil, err
	}
	e, err := l.clamp(end)
	if err != nil {
		return nil, err
	}
	return l.geometry.SubRange(s, e)
}

func (l *StaticLink) clamp(offset float64) (float64, error) {
	length := l.Length()
	if math.IsNaN(offset) || offset < -LengthPrecision || offset > length+LengthPrecision {
		return 0, errors.Wrapf(ErrInvalidOffset, "link %s: offset %v outside [0, %v]", l.id, offset, length)
	}
	return math.Min(math.Max(offset, 0), length), nil
}

// String returns "Link(id)".
func (l *StaticLink) String() string {
	return fmt.Sprintf("Link(%s)", l.id)
}
