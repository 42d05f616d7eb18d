package cafplot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Box is an axis-aligned volume given by its low and high corners.
type Box struct {
	Lo r3.Vec `yaml:"lo"`
	Hi r3.Vec `yaml:"hi"`
}

// Shrink moves every face of the box inward by o.
func (b Box) Shrink(o float64) Box {
	return Box{
		Lo: r3.Vec{X: b.Lo.X + o, Y: b.Lo.Y + o, Z: b.Lo.Z + o},
		Hi: r3.Vec{X: b.Hi.X - o, Y: b.Hi.Y - o, Z: b.Hi.Z - o},
	}
}

// Contains reports whether p lies strictly inside the box.
func (b Box) Contains(p r3.Vec) bool {
	return p.X > b.Lo.X && p.X < b.Hi.X &&
		p.Y > b.Lo.Y && p.Y < b.Hi.Y &&
		p.Z > b.Lo.Z && p.Z < b.Hi.Z
}

// NDLAr is the ND-LAr active volume in cm.
var NDLAr = Box{
	Lo: r3.Vec{X: -346.9, Y: -215.5, Z: 418.2},
	Hi: r3.Vec{X: 346.9, Y: 81.7, Z: 913.3},
}

type Selection struct {
	Detector       Box     `yaml:"detector"`
	FiducialOffset float64 `yaml:"fiducial_offset"`
	MuonPDG        int32   `yaml:"muon_pdg"`
}

// Fiducial returns the detector volume shrunk by the fiducial offset.
func (s Selection) Fiducial() Box {
	return s.Detector.Shrink(s.FiducialOffset)
}

type Binning struct {
	Bins int     `yaml:"bins"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

func (b Binning) validate() error {
	if b.Bins <= 0 {
		return fmt.Errorf("invalid number of bins %d", b.Bins)
	}
	if b.Max <= b.Min {
		return fmt.Errorf("invalid histogram range [%v, %v]", b.Min, b.Max)
	}
	return nil
}

// Branches names the flat CAF leaves the analysis reads.
type Branches struct {
	Tree           string   `yaml:"tree"`
	VertexPrefix   string   `yaml:"vertex_prefix"`
	VertexFields   []string `yaml:"vertex_fields"`
	CountPrefix    string   `yaml:"count_prefix"`
	CountField     string   `yaml:"count_field"`
	ParticlePrefix string   `yaml:"particle_prefix"`
	ParticleFields []string `yaml:"particle_fields"`
}

type Config struct {
	Selection Selection `yaml:"selection"`
	Binning   Binning   `yaml:"binning"`
	Branches  Branches  `yaml:"branches"`
}

func DefaultConfig() Config {
	return Config{
		Selection: Selection{
			Detector:       NDLAr,
			FiducialOffset: 25,
			MuonPDG:        13,
		},
		Binning: Binning{Bins: 50, Min: 0, Max: 500},
		Branches: Branches{
			Tree:           "cafTree",
			VertexPrefix:   "rec.common.ixn.dlp.vtx",
			VertexFields:   []string{"x", "y", "z"},
			CountPrefix:    "rec.common.ixn.dlp.part",
			CountField:     "ndlp",
			ParticlePrefix: "rec.common.ixn.dlp.part.dlp",
			ParticleFields: []string{
				"pdg",
				"start.x", "start.y", "start.z",
				"end.x", "end.y", "end.z",
				"contained", "primary",
			},
		},
	}
}

// Validate checks the configuration is usable by the analysis.
func (c Config) Validate() error {
	if err := c.Binning.validate(); err != nil {
		return err
	}
	fv := c.Selection.Fiducial()
	if fv.Lo.X >= fv.Hi.X || fv.Lo.Y >= fv.Hi.Y || fv.Lo.Z >= fv.Hi.Z {
		return fmt.Errorf("empty fiducial volume %+v", fv)
	}
	if c.Branches.Tree == "" {
		return fmt.Errorf("missing tree name")
	}
	if len(c.Branches.VertexFields) != 3 {
		return fmt.Errorf("need 3 vertex fields, got %d", len(c.Branches.VertexFields))
	}
	return nil
}

// ReadConfig decodes a YAML file on top of DefaultConfig.
// Keys absent from the file keep their default value.
func ReadConfig(fname string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(fname)
	if err != nil {
		return cfg, fmt.Errorf("could not read config %q: %w", fname, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("could not decode config %q: %w", fname, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", fname, err)
	}
	return cfg, nil
}
