package cafplot

import (
	"go-hep.org/x/hep/hbook"
)

// AllTrackLengths returns the track length of every particle of the
// selected events. Non-positive lengths are dropped.
func AllTrackLengths(evts *Events, mask []bool) []float64 {
	var out []float64
	for i, ok := range mask {
		if !ok {
			continue
		}
		for _, p := range evts.Parts(i) {
			if l := TrackLength(p); l > 0 {
				out = append(out, l)
			}
		}
	}
	return out
}

// MaxTrackLengths returns the longest track length of each selected event.
// Non-positive maxima, and events without particles, are dropped.
func MaxTrackLengths(evts *Events, mask []bool) []float64 {
	var out []float64
	for i, ok := range mask {
		if !ok {
			continue
		}
		parts := evts.Parts(i)
		j, ok := LongestTrack(parts)
		if !ok {
			continue
		}
		if l := TrackLength(parts[j]); l > 0 {
			out = append(out, l)
		}
	}
	return out
}

// NewHist fills a histogram with unit weights.
func NewHist(b Binning, values []float64) *hbook.H1D {
	h := hbook.NewH1D(b.Bins, b.Min, b.Max)
	for _, v := range values {
		h.Fill(v, 1)
	}
	return h
}
