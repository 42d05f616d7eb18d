package cafplot

import (
	"fmt"
)

// LoadEvents reads the vertex, particle count and particle leaves named by
// br from every file and regroups them into per-interaction events.
func LoadEvents(files []string, br Branches, opts ...ReadOption) (*Events, error) {
	opts = append([]ReadOption{WithTree(br.Tree)}, opts...)
	tables, err := ReadTables(files,
		[]TableSpec{
			{Prefix: br.VertexPrefix, Fields: br.VertexFields},
			{Prefix: br.CountPrefix, Fields: []string{br.CountField}},
			{Prefix: br.ParticlePrefix, Fields: br.ParticleFields},
		},
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("could not read input files: %w", err)
	}

	evts, err := NewEvents(tables[0], tables[1], tables[2])
	if err != nil {
		return nil, fmt.Errorf("could not build events: %w", err)
	}
	return evts, nil
}

// Result is the outcome of the track length analysis.
type Result struct {
	Cutflow    Cutflow
	AllLengths []float64
	MaxLengths []float64
}

// Analyze applies the selection and collects the track lengths of the
// selected events.
func Analyze(sel Selection, evts *Events) Result {
	cf := Apply(sel, evts)
	return Result{
		Cutflow:    cf,
		AllLengths: AllTrackLengths(evts, cf.Mask),
		MaxLengths: MaxTrackLengths(evts, cf.Mask),
	}
}
