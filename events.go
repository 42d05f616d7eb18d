package cafplot

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

type Particle struct {
	PDG       int32
	Start     r3.Vec
	End       r3.Vec
	Contained bool
	Primary   bool
}

// Span locates the particles of one event in the particle arena, and
// remembers which spill and interaction the event came from.
type Span struct {
	Offset int
	Count  int
	Spill  int
	Index  int
}

// Events is the per-interaction view of a batch of spills.
// Particles of event i are Particles[Spans[i].Offset:][:Spans[i].Count].
type Events struct {
	Vertices  []r3.Vec
	Particles []Particle
	Spans     []Span
}

// Len returns the number of events.
func (evts *Events) Len() int { return len(evts.Spans) }

// Event returns the vertex and particles of event i.
// The returned slice shares storage with the arena.
func (evts *Events) Event(i int) (r3.Vec, []Particle) {
	return evts.Vertices[i], evts.Parts(i)
}

// Parts returns the particles of event i.
func (evts *Events) Parts(i int) []Particle {
	s := evts.Spans[i]
	return evts.Particles[s.Offset : s.Offset+s.Count : s.Offset+s.Count]
}

// Validate checks that every event has a vertex and that the spans
// tile the particle arena in order.
func (evts *Events) Validate() error {
	if len(evts.Vertices) != len(evts.Spans) {
		return fmt.Errorf("%w: %d vertices for %d events", ErrShape, len(evts.Vertices), len(evts.Spans))
	}
	next := 0
	for i, s := range evts.Spans {
		if s.Offset != next || s.Count < 0 {
			return fmt.Errorf("%w: event %d spans [%d, +%d), expected offset %d", ErrShape, i, s.Offset, s.Count, next)
		}
		next += s.Count
	}
	if next != len(evts.Particles) {
		return fmt.Errorf("%w: spans cover %d particles, arena holds %d", ErrShape, next, len(evts.Particles))
	}
	return nil
}

// NewEvents regroups per-spill tables into per-interaction events.
//
// vtx holds the x, y and z vertex columns, in that order, with one row per
// spill and one value per interaction. npart holds a single column with one
// particle count per interaction. part holds the particle fields, all the
// particles of a spill in one row, in interaction order.
func NewEvents(vtx, npart, part *Table) (*Events, error) {
	if len(vtx.Fields) != 3 {
		return nil, fmt.Errorf("%w: vertex table has %d columns, want x, y and z", ErrLeaf, len(vtx.Fields))
	}
	if len(npart.Fields) != 1 {
		return nil, fmt.Errorf("%w: count table has %d columns, want 1", ErrLeaf, len(npart.Fields))
	}
	var (
		vx   = vtx.Columns[vtx.Fields[0]]
		vy   = vtx.Columns[vtx.Fields[1]]
		vz   = vtx.Columns[vtx.Fields[2]]
		ndlp = npart.Columns[npart.Fields[0]]
	)

	cols := make(map[string]*Column)
	for _, name := range []string{
		"pdg",
		"start_x", "start_y", "start_z",
		"end_x", "end_y", "end_z",
		"contained", "primary",
	} {
		c, err := part.Column(name)
		if err != nil {
			return nil, err
		}
		cols[name] = c
	}

	nspills := vx.Rows()
	if vy.Rows() != nspills || vz.Rows() != nspills || ndlp.Rows() != nspills {
		return nil, fmt.Errorf("%w: vertex and count tables hold %d, %d, %d and %d spills",
			ErrShape, vx.Rows(), vy.Rows(), vz.Rows(), ndlp.Rows())
	}
	for name, c := range cols {
		if c.Rows() != nspills {
			return nil, fmt.Errorf("%w: particle column %q holds %d spills, want %d", ErrShape, name, c.Rows(), nspills)
		}
		if len(c.Values) != len(cols["pdg"].Values) {
			return nil, fmt.Errorf("%w: particle column %q holds %d values, want %d", ErrShape, name, len(c.Values), len(cols["pdg"].Values))
		}
	}
	if len(vy.Values) != len(vx.Values) || len(vz.Values) != len(vx.Values) {
		return nil, fmt.Errorf("%w: vertex columns hold %d, %d and %d values",
			ErrShape, len(vx.Values), len(vy.Values), len(vz.Values))
	}

	evts := &Events{
		Vertices:  make([]r3.Vec, 0, len(vx.Values)),
		Particles: make([]Particle, 0, len(cols["pdg"].Values)),
		Spans:     make([]Span, 0, len(vx.Values)),
	}

	for ispill := 0; ispill < nspills; ispill++ {
		nixn := vx.RowLen(ispill)
		counts := ndlp.Row(ispill)
		if len(counts) != nixn || vy.RowLen(ispill) != nixn || vz.RowLen(ispill) != nixn {
			return nil, fmt.Errorf("%w: spill %d has %d vertices and %d particle counts", ErrShape, ispill, nixn, len(counts))
		}
		for name, c := range cols {
			if c.Offsets[ispill] != cols["pdg"].Offsets[ispill] || c.RowLen(ispill) != cols["pdg"].RowLen(ispill) {
				return nil, fmt.Errorf("%w: spill %d, particle column %q misaligned with pdg", ErrShape, ispill, name)
			}
		}
		total := 0
		for ixn, n := range counts {
			if n < 0 || n != float64(int(n)) {
				return nil, fmt.Errorf("%w: spill %d, interaction %d has particle count %v", ErrShape, ispill, ixn, n)
			}
			total += int(n)
		}
		if nparts := cols["pdg"].RowLen(ispill); total != nparts {
			return nil, fmt.Errorf("%w: spill %d counts %d particles, holds %d", ErrShape, ispill, total, nparts)
		}
		for ixn := 0; ixn < nixn; ixn++ {
			evts.Vertices = append(evts.Vertices, r3.Vec{
				X: vx.Row(ispill)[ixn],
				Y: vy.Row(ispill)[ixn],
				Z: vz.Row(ispill)[ixn],
			})
		}

		k := cols["pdg"].Offsets[ispill]
		for ixn, n := range counts {
			evts.Spans = append(evts.Spans, Span{
				Offset: len(evts.Particles),
				Count:  int(n),
				Spill:  ispill,
				Index:  ixn,
			})
			for end := k + int(n); k < end; k++ {
				evts.Particles = append(evts.Particles, Particle{
					PDG:       int32(cols["pdg"].Values[k]),
					Start:     r3.Vec{X: cols["start_x"].Values[k], Y: cols["start_y"].Values[k], Z: cols["start_z"].Values[k]},
					End:       r3.Vec{X: cols["end_x"].Values[k], Y: cols["end_y"].Values[k], Z: cols["end_z"].Values[k]},
					Contained: cols["contained"].Values[k] != 0,
					Primary:   cols["primary"].Values[k] != 0,
				})
			}
		}
	}

	if err := evts.Validate(); err != nil {
		return nil, err
	}
	return evts, nil
}
