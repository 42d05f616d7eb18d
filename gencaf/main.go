// Command gencaf writes toy flat CAF files with the branch layout read by
// tracklength.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/decibelcooper/cafplot"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options]

ex:
 $> gencaf -n 1000 -files 4 -o ./files_flat

options:
`,
	)
	flag.PrintDefaults()
}

// generate writes nFiles toy files into dir, file i seeded with seed+i.
func generate(dir string, br cafplot.Branches, toy cafplot.ToyConfig, nFiles, nSpills int, seed uint64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}

	files := make([]string, 0, nFiles)
	for i := 0; i < nFiles; i++ {
		fname := filepath.Join(dir, fmt.Sprintf("toy_flat_%04d.root", i))
		spills := cafplot.GenerateSpills(toy, nSpills, seed+uint64(i))
		if err := cafplot.WriteCAF(fname, br, spills); err != nil {
			return files, err
		}
		files = append(files, fname)
	}
	return files, nil
}

func main() {
	var (
		nSpills = flag.Int("n", 100, "number of spills per file")
		nFiles  = flag.Int("files", 1, "number of files")
		seed    = flag.Uint64("seed", 1, "random seed of the first file")
		outDir  = flag.String("o", "files_flat", "output directory")
		cfgName = flag.String("config", "", "YAML file overriding the default branches")
		ixnRate = flag.Float64("ixn", 2, "mean number of interactions per spill")
		parRate = flag.Float64("parts", 3, "mean number of particles per interaction")
	)
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 0 || *nSpills < 0 || *nFiles < 1 {
		printUsage()
		logrus.Fatal("Invalid arguments")
	}
	log := logrus.WithField("cmd", "gencaf")

	cfg := cafplot.DefaultConfig()
	if *cfgName != "" {
		var err error
		cfg, err = cafplot.ReadConfig(*cfgName)
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}

	toy := cafplot.DefaultToyConfig()
	toy.Detector = cfg.Selection.Detector
	toy.InteractionRate = *ixnRate
	toy.ParticleRate = *parRate

	files, err := generate(*outDir, cfg.Branches, toy, *nFiles, *nSpills, *seed)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	log.Infof("wrote %d files (%d spills each) to %s", len(files), *nSpills, *outDir)
}
