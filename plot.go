package cafplot

import (
	"fmt"
	"sort"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

type PlotStyle struct {
	Title  string
	XLabel string
	YLabel string
	LogY   bool
}

// SaveHist draws the histogram and writes it to fname. The image format
// follows the file extension (png, pdf, svg, ...).
// A log y axis falls back to linear when no bin is filled.
func SaveHist(h *hbook.H1D, style PlotStyle, fname string) error {
	p := hplot.New()
	p.Title.Text = style.Title
	p.X.Label.Text = style.XLabel
	p.Y.Label.Text = style.YLabel
	p.X.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	logY := style.LogY && hasContent(h)
	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
	}

	hh := hplot.NewH1D(h, hplot.WithLogY(logY))
	hh.Infos.Style = hplot.HInfoSummary
	p.Add(hh)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return fmt.Errorf("could not save plot %q: %w", fname, err)
	}
	return nil
}

// hasContent reports whether some bin holds a positive weight, which a
// log axis needs.
func hasContent(h *hbook.H1D) bool {
	for i := 0; i < h.Len(); i++ {
		if h.Value(i) > 0 {
			return true
		}
	}
	return false
}

// WriteROOT stores the histograms as TH1D objects in a new ROOT file,
// one key per map entry.
func WriteROOT(fname string, hists map[string]*hbook.H1D) error {
	f, err := groot.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create ROOT file %q: %w", fname, err)
	}

	names := make([]string, 0, len(hists))
	for name := range hists {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h := hists[name]
		h.Annotation()["name"] = name
		if err := f.Put(name, rhist.NewH1DFrom(h)); err != nil {
			f.Close()
			return fmt.Errorf("could not write histogram %q to %q: %w", name, fname, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close ROOT file %q: %w", fname, err)
	}
	return nil
}
