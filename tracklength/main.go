// Command tracklength selects fiducial, contained, muon-like interactions
// from flat CAF files and histograms their track lengths.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/cafplot"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <flat-caf-files-or-dirs>...

ex:
 $> tracklength -o plots ./files_flat/

options:
`,
	)
	flag.PrintDefaults()
}

// loadConfig reads the configuration file, if any, and applies the
// -nbins and -range overrides on top of it.
func loadConfig(fname string, nBins int, hrange *cafplot.FloatArrayFlags) (cafplot.Config, error) {
	cfg := cafplot.DefaultConfig()
	if fname != "" {
		var err error
		cfg, err = cafplot.ReadConfig(fname)
		if err != nil {
			return cfg, err
		}
	}
	if nBins > 0 {
		cfg.Binning.Bins = nBins
	}
	if hrange.IsSet() {
		lo, hi, err := hrange.Range()
		if err != nil {
			return cfg, fmt.Errorf("invalid -range: %w", err)
		}
		cfg.Binning.Min, cfg.Binning.Max = lo, hi
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	var (
		hrange = cafplot.FloatArrayFlags{}

		cfgName  = flag.String("config", "", "YAML file overriding the default selection, binning and branches")
		maxFiles = flag.Int("m", 0, "maximum number of files to process (0: all)")
		nJobs    = flag.Int("j", 1, "number of files read concurrently")
		outDir   = flag.String("o", ".", "output directory for the plots")
		rootOut  = flag.String("root", "", "also write the histograms to this ROOT file")
		nBins    = flag.Int("nbins", 0, "number of bins (0: from config)")
		logY     = flag.Bool("logy", false, "log scale for the y axis")
		doProf   = flag.Bool("profile", false, "write a CPU profile")
		verbose  = flag.Bool("v", false, "enable debug output")
	)
	flag.Var(&hrange, "range", "histogram range, as -range lo -range hi or -range lo,hi")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		logrus.Fatal("Invalid arguments")
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("cmd", "tracklength")

	if *doProf {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*outDir), profile.Quiet).Stop()
	}

	cfg, err := loadConfig(*cfgName, *nBins, &hrange)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	files, err := cafplot.ListInputs(flag.Args(), *maxFiles)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no input files in %v", flag.Args())
	}
	log.Infof("input files: %d", len(files))

	evts, err := cafplot.LoadEvents(files, cfg.Branches, cafplot.WithJobs(*nJobs), cafplot.WithLogger(log))
	if err != nil {
		log.Fatalf("%+v", err)
	}
	log.Infof("events: %d, particles: %d", evts.Len(), len(evts.Particles))

	res := cafplot.Analyze(cfg.Selection, evts)
	cf := res.Cutflow
	log.WithFields(logrus.Fields{
		"fiducial":          cf.Fiducial,
		"primary_contained": cf.PrimaryContained,
		"longest_is_muon":   cf.LongestIsMuon,
	}).Infof("selected %d/%d events", cf.Selected, cf.Events)

	var (
		allHist = cafplot.NewHist(cfg.Binning, res.AllLengths)
		maxHist = cafplot.NewHist(cfg.Binning, res.MaxLengths)
	)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("could not create output directory: %+v", err)
	}
	for _, out := range []struct {
		name  string
		hist  *hbook.H1D
		style cafplot.PlotStyle
	}{
		{
			name:  "track_length_flat.png",
			hist:  allHist,
			style: cafplot.PlotStyle{XLabel: "Track Length (cm)", YLabel: "Counts", LogY: *logY},
		},
		{
			name:  "max_track_length_flat.png",
			hist:  maxHist,
			style: cafplot.PlotStyle{XLabel: "Max Track Length (cm)", YLabel: "Counts", LogY: *logY},
		},
	} {
		fname := filepath.Join(*outDir, out.name)
		if err := cafplot.SaveHist(out.hist, out.style, fname); err != nil {
			log.Fatalf("%+v", err)
		}
		log.Infof("wrote %s (%d entries)", fname, out.hist.Entries())
	}

	if *rootOut != "" {
		err := cafplot.WriteROOT(*rootOut, map[string]*hbook.H1D{
			"track_length":     allHist,
			"max_track_length": maxHist,
		})
		if err != nil {
			log.Fatalf("%+v", err)
		}
		log.Infof("wrote %s", *rootOut)
	}
}
