// Package routing places locations and paths on a road network. A Spot is a
// position along a Link; a Route is a validated traversal of adjacent links.
// Links are supplied by the caller and never modified here.
package routing

import "github.com/dpup/georef/internal/lib/geo"

// LengthPrecision is the slack, in meters, allowed when checking an offset
// against a link's length.
const LengthPrecision = 0.1

// NodeID identifies the node where links meet.
type NodeID string

// Link is a directed road segment. Implementations are compared with ==, so
// they must be comparable (typically pointers) and their identity must be
// stable for the lifetime of any Spot or Route that refers to them.
type Link interface {
	// Length returns the link length in meters.
	Length() float64

	// NumLanesAtOffset returns the lane count at offset meters from the start.
	// It fails when offset is outside the link.
	NumLanesAtOffset(offset float64) (int16, error)

	StartNode() NodeID
	EndNode() NodeID

	// Geometry returns the full link polyline.
	Geometry() (*geo.Polyline, error)

	// PartialGeometry returns the polyline between two offsets.
	PartialGeometry(start, end float64) (*geo.Polyline, error)
}
