package routing

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/dpup/georef/internal/lib/monitor"
)

// Tolerances bound how strictly offsets and geometry are checked.
type Tolerances struct {
	// LengthPrecision is the slack allowed on spot offsets.
	LengthPrecision float64
	// OffsetTolerance is the slack allowed on route start and end offsets
	// before they are clamped onto the link.
	OffsetTolerance float64
	// StitchTolerance is the largest gap, in meters, bridged when joining link
	// geometries into a route geometry.
	StitchTolerance float64
}

// DefaultTolerances returns the tolerances used by the package-level factories.
func DefaultTolerances() Tolerances {
	return Tolerances{
		LengthPrecision: LengthPrecision,
		OffsetTolerance: 1e-3,
		StitchTolerance: 2.0,
	}
}

// Assembler validates and builds spots and routes. Rejections are reported to
// its sink before being returned. An Assembler holds no mutable state and can
// be shared between goroutines.
type Assembler struct {
	sink       monitor.Sink
	tolerances Tolerances
}

// NewAssembler creates an Assembler reporting to sink. A nil sink discards
// reports.
func NewAssembler(sink monitor.Sink, tolerances Tolerances) *Assembler {
	if sink == nil {
		sink = monitor.Nop
	}
	return &Assembler{sink: sink, tolerances: tolerances}
}

var defaultAssembler = NewAssembler(monitor.Nop, DefaultTolerances())

// NewSpot validates and creates a spot with the default tolerances.
func NewSpot(link Link, offset float64, lane int16) (Spot, error) {
	return defaultAssembler.Spot(link, offset, lane)
}

// FromLinks builds a route covering links end to end with the default tolerances.
func FromLinks(links []Link) (*Route, error) {
	return defaultAssembler.FromLinks(links)
}

// FromOffsets builds a route over links between two offsets with the default
// tolerances.
func FromOffsets(links []Link, start, end float64) (*Route, error) {
	return defaultAssembler.FromOffsets(links, start, end)
}

// FromSpots builds a route through spots with the default tolerances.
func FromSpots(spots []Spot) (*Route, error) {
	return defaultAssembler.FromSpots(spots)
}

// Tolerances returns the tolerances the Assembler checks against.
func (a *Assembler) Tolerances() Tolerances { return a.tolerances }

func (a *Assembler) reject(err error) error {
	a.sink.Report("routing: " + err.Error())
	return err
}

// Spot validates offset against the link length and lane against the lane
// count at that offset. Lanes -1 (all) and 0 (unknown) are always valid.
func (a *Assembler) Spot(link Link, offset float64, lane int16) (Spot, error) {
	if link == nil {
		return Spot{}, a.reject(errors.Wrap(ErrMissingLink, "spot"))
	}

	tol := a.tolerances.LengthPrecision
	if math.IsNaN(offset) || offset < -tol || offset > link.Length()+tol {
		return Spot{}, a.reject(errors.Wrapf(ErrInvalidOffset,
			"offset %v outside %v of length %v", offset, link, link.Length()))
	}

	if lane < LaneAll {
		return Spot{}, a.reject(errors.Wrapf(ErrInvalidLane, "lane %d on %v", lane, link))
	}
	if lane > LaneUnknown {
		lanes, err := link.NumLanesAtOffset(offset)
		if err != nil {
			return Spot{}, a.reject(errors.Wrapf(err, "lanes of %v at %v", link, offset))
		}
		if lane > lanes {
			return Spot{}, a.reject(errors.Wrapf(ErrInvalidLane,
				"lane %d on %v which has %d lanes at %v", lane, link, lanes, offset))
		}
	}

	return Spot{link: link, offset: offset, lane: lane}, nil
}

// FromLinks builds a route from the start of the first link to the end of
// the last, with one spot per link.
func (a *Assembler) FromLinks(links []Link) (*Route, error) {
	if len(links) == 0 {
		return nil, a.reject(ErrEmptyRoute)
	}
	last := links[len(links)-1]
	if last == nil {
		return nil, a.reject(errors.Wrapf(ErrMissingLink, "link %d", len(links)-1))
	}
	return a.FromOffsets(links, 0, last.Length())
}

// FromOffsets builds a route over links starting at start meters on the
// first link and ending at end meters on the last. Offsets slightly past a
// link end are clamped onto it. Interior links get a spot at their midpoint.
func (a *Assembler) FromOffsets(links []Link, start, end float64) (*Route, error) {
	if len(links) == 0 {
		return nil, a.reject(ErrEmptyRoute)
	}
	for i, l := range links {
		if l == nil {
			return nil, a.reject(errors.Wrapf(ErrMissingLink, "link %d", i))
		}
	}

	first, last := links[0], links[len(links)-1]
	tol := a.tolerances.OffsetTolerance

	if math.IsNaN(start) || start < 0 || start > first.Length()+tol {
		return nil, a.reject(errors.Wrapf(ErrOffsetOutOfRange,
			"start offset %v outside first link %v of length %v", start, first, first.Length()))
	}
	start = math.Min(start, first.Length())

	if len(links) == 1 && start > end {
		return nil, a.reject(errors.Wrapf(ErrUnorderedSpots,
			"start %v after end %v on %v", start, end, first))
	}

	if math.IsNaN(end) || end < 0 || end > last.Length()+tol {
		return nil, a.reject(errors.Wrapf(ErrOffsetOutOfRange,
			"end offset %v outside last link %v of length %v", end, last, last.Length()))
	}
	end = math.Min(end, last.Length())

	if err := checkAdjacent(links); err != nil {
		return nil, a.reject(err)
	}

	spots := make([]Spot, 0, len(links)+1)
	startSpot, err := a.Spot(first, start, LaneAll)
	if err != nil {
		return nil, err
	}
	spots = append(spots, startSpot)
	if len(links) > 2 {
		for _, l := range links[1 : len(links)-1] {
			mid, err := a.Spot(l, 0.5*l.Length(), LaneAll)
			if err != nil {
				return nil, err
			}
			spots = append(spots, mid)
		}
	}
	endSpot, err := a.Spot(last, end, LaneAll)
	if err != nil {
		return nil, err
	}
	spots = append(spots, endSpot)

	return a.build(spots, append([]Link(nil), links...))
}

// FromSpots builds a route passing through spots in order. Consecutive spots
// on the same link share one route link.
func (a *Assembler) FromSpots(spots []Spot) (*Route, error) {
	if len(spots) == 0 {
		return nil, a.reject(errors.Wrap(ErrEmptyRoute, "no spots"))
	}

	links := make([]Link, 0, len(spots))
	for i, s := range spots {
		if s.link == nil {
			return nil, a.reject(errors.Wrapf(ErrMissingLink, "spot %d", i))
		}
		if len(links) == 0 || links[len(links)-1] != s.link {
			links = append(links, s.link)
		}
	}

	if err := checkAdjacent(links); err != nil {
		return nil, a.reject(err)
	}
	return a.build(append([]Spot(nil), spots...), links)
}

// build runs the ordering and uniqueness checks shared by every factory.
func (a *Assembler) build(spots []Spot, links []Link) (*Route, error) {
	for i := 1; i < len(spots); i++ {
		prev, cur := spots[i-1], spots[i]
		if prev.link == cur.link && prev.offset > cur.offset {
			return nil, a.reject(errors.Wrapf(ErrUnorderedSpots, "%v followed by %v", prev, cur))
		}
	}

	seen := make(map[Link]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l]; ok {
			return nil, a.reject(errors.Wrapf(ErrDuplicateLink, "%v", l))
		}
		seen[l] = struct{}{}
	}

	return &Route{
		spots:           spots,
		links:           links,
		stitchTolerance: a.tolerances.StitchTolerance,
	}, nil
}

func checkAdjacent(links []Link) error {
	for i := 1; i < len(links); i++ {
		if links[i].StartNode() != links[i-1].EndNode() {
			return errors.Wrapf(ErrNonAdjacentLinks, "%v ends at %q but %v starts at %q",
				links[i-1], links[i-1].EndNode(), links[i], links[i].StartNode())
		}
	}
	return nil
}
