// Package netfile reads small road networks described in YAML, with link
// geometry given as encoded polylines.
package netfile

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/dpup/georef/internal/lib/geo"
	"github.com/dpup/georef/internal/lib/routing"
)

// ErrUnknownLink is returned when a link id is not in the network.
var ErrUnknownLink = errors.New("unknown link")

// File is the YAML layout of a network file.
type File struct {
	Links []LinkSpec `yaml:"links"`
}

// LinkSpec describes one directed link.
type LinkSpec struct {
	ID       string `yaml:"id"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Lanes    int16  `yaml:"lanes"`
	Polyline string `yaml:"polyline"`
}

// Network is a thread-safe registry of links keyed by id.
type Network struct {
	links map[string]*routing.StaticLink
	mutex sync.RWMutex
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{links: make(map[string]*routing.StaticLink)}
}

// Add registers a link. Ids must be unique.
func (n *Network) Add(link *routing.StaticLink) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if _, exists := n.links[link.ID()]; exists {
		return errors.Newf("duplicate link id %q", link.ID())
	}
	n.links[link.ID()] = link
	return nil
}

// Link returns the link with the given id.
func (n *Network) Link(id string) (*routing.StaticLink, bool) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	l, ok := n.links[id]
	return l, ok
}

// Links resolves ids in order, for handing to the route factories.
func (n *Network) Links(ids ...string) ([]routing.Link, error) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	out := make([]routing.Link, 0, len(ids))
	for _, id := range ids {
		l, ok := n.links[id]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownLink, "%q", id)
		}
		out = append(out, l)
	}
	return out, nil
}

// IDs returns all link ids, sorted.
func (n *Network) IDs() []string {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	ids := make([]string, 0, len(n.links))
	for id := range n.links {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of links.
func (n *Network) Len() int {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return len(n.links)
}

// Successors returns the ids of links starting where the given link ends.
func (n *Network) Successors(id string) ([]string, error) {
	link, ok := n.Link(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLink, "%q", id)
	}

	var out []string
	for _, other := range n.IDs() {
		l, _ := n.Link(other)
		if l.StartNode() == link.EndNode() {
			out = append(out, other)
		}
	}
	return out, nil
}

// Parse reads a network from YAML.
func Parse(r io.Reader) (*Network, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return NewNetwork(), nil
		}
		return nil, errors.Wrap(err, "failed to parse network")
	}

	n := NewNetwork()
	for i, ls := range f.Links {
		link, err := ls.build()
		if err != nil {
			return nil, errors.Wrapf(err, "link %d", i)
		}
		if err := n.Add(link); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Load reads a network file from disk.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open network file")
	}
	defer f.Close()
	return Parse(f)
}

func (s LinkSpec) build() (*routing.StaticLink, error) {
	if s.ID == "" {
		return nil, errors.New("id is required")
	}
	if s.Start == "" || s.End == "" {
		return nil, errors.Newf("%s: start and end nodes are required", s.ID)
	}
	g, err := geo.DecodePolyline(s.Polyline)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: geometry", s.ID)
	}
	return routing.NewStaticLink(s.ID, routing.NodeID(s.Start), routing.NodeID(s.End), g, s.Lanes)
}
