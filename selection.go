package cafplot

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// IsFiducial reports whether the vertex lies strictly inside the detector
// volume shrunk by the fiducial offset.
func IsFiducial(sel Selection, vtx r3.Vec) bool {
	return sel.Fiducial().Contains(vtx)
}

// PrimaryContained reports whether every primary particle is contained.
// Non-primary particles are ignored.
//
// Empty-set policy: the search for a violation over zero particles finds
// none, so an event without particles (or without primaries) passes.
func PrimaryContained(parts []Particle) bool {
	for _, p := range parts {
		if p.Primary && !p.Contained {
			return false
		}
	}
	return true
}

// TrackLength returns the distance between the start and end of the
// particle. Non-finite lengths are reported as 0.
func TrackLength(p Particle) float64 {
	l := rawLength(p)
	if !finite(l) {
		return 0
	}
	return l
}

func rawLength(p Particle) float64 {
	return r3.Norm(r3.Sub(p.End, p.Start))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// LongestTrack returns the index of the particle with the largest track
// length. Ties go to the first particle, except that a track whose length
// was not finite never wins over a finite one of equal (zero) length.
// ok is false when parts is empty.
func LongestTrack(parts []Particle) (idx int, ok bool) {
	if len(parts) == 0 {
		return -1, false
	}
	var (
		best       = TrackLength(parts[0])
		bestFinite = finite(rawLength(parts[0]))
	)
	for i := 1; i < len(parts); i++ {
		l := TrackLength(parts[i])
		isFinite := finite(rawLength(parts[i]))
		if l > best || (l == best && isFinite && !bestFinite) {
			idx, best, bestFinite = i, l, isFinite
		}
	}
	return idx, true
}

// LongestIsMuon reports whether the longest track of the event is a muon.
// Events without particles have no longest track and are not muon-like.
func LongestIsMuon(sel Selection, parts []Particle) bool {
	i, ok := LongestTrack(parts)
	if !ok {
		return false
	}
	return parts[i].PDG == sel.MuonPDG
}

// Cutflow holds the per-event selection result and how many events
// passed each cut on its own and all of them together.
type Cutflow struct {
	Mask []bool

	Events           int
	Fiducial         int
	PrimaryContained int
	LongestIsMuon    int
	Selected         int
}

// Apply evaluates the selection on every event.
func Apply(sel Selection, evts *Events) Cutflow {
	cf := Cutflow{
		Mask:   make([]bool, evts.Len()),
		Events: evts.Len(),
	}
	fv := sel.Fiducial()
	for i := range cf.Mask {
		vtx, parts := evts.Event(i)
		var (
			isFV      = fv.Contains(vtx)
			contained = PrimaryContained(parts)
			muon      = LongestIsMuon(sel, parts)
		)
		if isFV {
			cf.Fiducial++
		}
		if contained {
			cf.PrimaryContained++
		}
		if muon {
			cf.LongestIsMuon++
		}
		cf.Mask[i] = isFV && contained && muon
		if cf.Mask[i] {
			cf.Selected++
		}
	}
	return cf
}
