package cafplot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestIsFiducial(t *testing.T) {
	var (
		sel    = DefaultConfig().Selection
		center = r3.Vec{X: 0, Y: -50, Z: 600}
		// lo+o and hi-o, computed the way a caller would
		xlo, xhi = sel.Detector.Lo.X + sel.FiducialOffset, sel.Detector.Hi.X - sel.FiducialOffset
		ylo, yhi = sel.Detector.Lo.Y + sel.FiducialOffset, sel.Detector.Hi.Y - sel.FiducialOffset
		zlo, zhi = sel.Detector.Lo.Z + sel.FiducialOffset, sel.Detector.Hi.Z - sel.FiducialOffset
	)
	require.InDelta(t, -321.9, xlo, 1e-9)
	require.InDelta(t, 56.7, yhi, 1e-9)

	for _, tc := range []struct {
		name string
		vtx  r3.Vec
		want bool
	}{
		{"center", center, true},
		{"x at lo+o", r3.Vec{X: xlo, Y: center.Y, Z: center.Z}, false},
		{"x just inside lo+o", r3.Vec{X: xlo + 0.001, Y: center.Y, Z: center.Z}, true},
		{"x at hi-o", r3.Vec{X: xhi, Y: center.Y, Z: center.Z}, false},
		{"x at detector edge", r3.Vec{X: -346.9, Y: center.Y, Z: center.Z}, false},
		{"y at lo+o", r3.Vec{X: center.X, Y: ylo, Z: center.Z}, false},
		{"y at hi-o", r3.Vec{X: center.X, Y: yhi, Z: center.Z}, false},
		{"y just inside hi-o", r3.Vec{X: center.X, Y: yhi - 0.001, Z: center.Z}, true},
		{"z at lo+o", r3.Vec{X: center.X, Y: center.Y, Z: zlo}, false},
		{"z at hi-o", r3.Vec{X: center.X, Y: center.Y, Z: zhi}, false},
		{"z outside", r3.Vec{X: center.X, Y: center.Y, Z: 1000}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsFiducial(sel, tc.vtx))
		})
	}
}

func TestIsFiducialCustomGeometry(t *testing.T) {
	sel := Selection{
		Detector:       Box{Lo: r3.Vec{X: -1, Y: -1, Z: -1}, Hi: r3.Vec{X: 1, Y: 1, Z: 1}},
		FiducialOffset: 0.5,
	}
	assert.True(t, IsFiducial(sel, r3.Vec{}))
	assert.False(t, IsFiducial(sel, r3.Vec{X: 0.5}))
	assert.True(t, IsFiducial(sel, r3.Vec{X: 0.49}))
}

func TestPrimaryContained(t *testing.T) {
	for _, tc := range []struct {
		name  string
		parts []Particle
		want  bool
	}{
		// a violation search over no particles finds nothing
		{"no particles", nil, true},
		{"no primaries", []Particle{{Primary: false, Contained: false}}, true},
		{"all primaries contained", []Particle{
			{Primary: true, Contained: true},
			{Primary: false, Contained: false},
			{Primary: true, Contained: true},
		}, true},
		{"one primary escapes", []Particle{
			{Primary: true, Contained: true},
			{Primary: true, Contained: false},
		}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PrimaryContained(tc.parts))
		})
	}
}

func TestTrackLength(t *testing.T) {
	assert.Equal(t, 5.0, TrackLength(Particle{End: r3.Vec{X: 3, Y: 4}}))
	assert.Equal(t, 0.0, TrackLength(Particle{}))
	assert.Equal(t, 0.0, TrackLength(Particle{End: r3.Vec{X: math.Inf(1)}}))
	assert.Equal(t, 0.0, TrackLength(Particle{Start: r3.Vec{X: math.Inf(1)}, End: r3.Vec{X: math.Inf(1)}}))
	assert.Equal(t, 0.0, TrackLength(Particle{End: r3.Vec{Z: math.NaN()}}))
}

func track(pdg int32, length float64) Particle {
	return Particle{PDG: pdg, End: r3.Vec{Z: length}}
}

func TestLongestTrack(t *testing.T) {
	var (
		inf = r3.Vec{X: math.Inf(1)}
		nan = r3.Vec{X: math.NaN()}
	)
	for _, tc := range []struct {
		name  string
		parts []Particle
		want  int
		ok    bool
	}{
		{"empty", nil, -1, false},
		{"single", []Particle{track(13, 1)}, 0, true},
		{"max in the middle", []Particle{track(11, 10), track(13, 30), track(211, 20)}, 1, true},
		{"tie goes to first", []Particle{track(11, 30), track(13, 30)}, 0, true},
		{"infinite is not longest", []Particle{{End: inf}, track(13, 2)}, 1, true},
		{"nan is not longest", []Particle{{End: nan}, track(13, 2)}, 1, true},
		{"non-finite loses zero tie", []Particle{{End: inf}, track(13, 0)}, 1, true},
		{"all non-finite", []Particle{{End: inf}, {End: nan}}, 0, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			idx, ok := LongestTrack(tc.parts)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, idx)
		})
	}
}

func TestLongestIsMuon(t *testing.T) {
	sel := DefaultConfig().Selection

	parts := []Particle{track(11, 10), track(13, 30), track(211, 20)}
	assert.True(t, LongestIsMuon(sel, parts))

	parts = []Particle{track(11, 10), track(13, 30), track(211, 40)}
	assert.False(t, LongestIsMuon(sel, parts))

	assert.False(t, LongestIsMuon(sel, nil))
	assert.True(t, LongestIsMuon(sel, []Particle{{PDG: 13, End: r3.Vec{X: math.Inf(1)}}}))

	sel.MuonPDG = 211
	assert.True(t, LongestIsMuon(sel, []Particle{track(11, 10), track(211, 40)}))
}

func TestApply(t *testing.T) {
	var (
		inside  = r3.Vec{X: 0, Y: -50, Z: 600}
		outside = r3.Vec{X: -346.9, Y: -50, Z: 600}
		good    = []Particle{
			muon(inside, r3.Add(inside, r3.Vec{Z: 50})),
			{PDG: 211, Start: inside, End: r3.Add(inside, r3.Vec{X: 10})},
		}
	)
	var parts []Particle
	parts = append(parts, good...)
	parts = append(parts, good...)
	parts = append(parts,
		Particle{PDG: 13, Start: inside, End: r3.Add(inside, r3.Vec{Z: 50}), Primary: true},
		Particle{PDG: 2212, Start: inside, End: r3.Add(inside, r3.Vec{Z: 50}), Primary: true, Contained: true},
	)
	evts := &Events{
		Vertices:  []r3.Vec{inside, outside, inside, inside, inside},
		Particles: parts,
		Spans: []Span{
			{Offset: 0, Count: 2},
			{Offset: 2, Count: 2},
			{Offset: 4, Count: 1},
			{Offset: 5, Count: 1},
			{Offset: 6, Count: 0},
		},
	}
	require.NoError(t, evts.Validate())

	cf := Apply(DefaultConfig().Selection, evts)
	assert.Equal(t, []bool{true, false, false, false, false}, cf.Mask)
	assert.Equal(t, Cutflow{
		Mask:             cf.Mask,
		Events:           5,
		Fiducial:         4,
		PrimaryContained: 4,
		LongestIsMuon:    3,
		Selected:         1,
	}, cf)
}
