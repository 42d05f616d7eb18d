package cafplot

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spill is one detector readout: a vertex per interaction and the
// particles of each interaction.
type Spill struct {
	Vertices  []r3.Vec
	Particles [][]Particle
}

// countLeaf names the length leaf of the collection holding prefix,
// e.g. rec.common.ixn.dlp..length for rec.common.ixn.dlp.vtx.
func countLeaf(collection string) string {
	return collection + "..length"
}

func parentOf(prefix string) string {
	if i := strings.LastIndex(prefix, "."); i > 0 {
		return prefix[:i]
	}
	return prefix
}

// WriteCAF writes the spills as a flat CAF tree with the branch layout
// described by br, one tree entry per spill.
func WriteCAF(fname string, br Branches, spills []Spill) error {
	f, err := groot.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", fname, err)
	}

	var (
		nixn   int32
		nparts int32
		vtx    [3][]float32
		ndlp   []int32
		pdg    []int32
		start  [3][]float32
		end    [3][]float32
		cont   []bool
		prim   []bool

		ixnLen  = countLeaf(parentOf(br.VertexPrefix))
		partLen = countLeaf(br.ParticlePrefix)
	)

	wvars := []rtree.WriteVar{{Name: ixnLen, Value: &nixn}}
	for i, field := range br.VertexFields {
		wvars = append(wvars, rtree.WriteVar{Name: br.VertexPrefix + "." + field, Value: &vtx[i], Count: ixnLen})
	}
	wvars = append(wvars,
		rtree.WriteVar{Name: br.CountPrefix + "." + br.CountField, Value: &ndlp, Count: ixnLen},
		rtree.WriteVar{Name: partLen, Value: &nparts},
	)
	fields := map[string]any{
		"pdg":       &pdg,
		"start.x":   &start[0],
		"start.y":   &start[1],
		"start.z":   &start[2],
		"end.x":     &end[0],
		"end.y":     &end[1],
		"end.z":     &end[2],
		"contained": &cont,
		"primary":   &prim,
	}
	for _, field := range br.ParticleFields {
		ptr, ok := fields[field]
		if !ok {
			f.Close()
			return fmt.Errorf("%w: no toy value for particle field %q", ErrLeaf, field)
		}
		wvars = append(wvars, rtree.WriteVar{Name: br.ParticlePrefix + "." + field, Value: ptr, Count: partLen})
	}

	w, err := rtree.NewWriter(f, br.Tree, wvars)
	if err != nil {
		f.Close()
		return fmt.Errorf("could not create tree %q in %q: %w", br.Tree, fname, err)
	}

	for i, spill := range spills {
		if len(spill.Particles) != len(spill.Vertices) {
			w.Close()
			f.Close()
			return fmt.Errorf("%w: spill %d has %d vertices and %d particle lists", ErrShape, i, len(spill.Vertices), len(spill.Particles))
		}

		nixn = int32(len(spill.Vertices))
		for k := range vtx {
			vtx[k] = vtx[k][:0]
			start[k] = start[k][:0]
			end[k] = end[k][:0]
		}
		ndlp, pdg, cont, prim = ndlp[:0], pdg[:0], cont[:0], prim[:0]

		for j, v := range spill.Vertices {
			vtx[0] = append(vtx[0], float32(v.X))
			vtx[1] = append(vtx[1], float32(v.Y))
			vtx[2] = append(vtx[2], float32(v.Z))
			ndlp = append(ndlp, int32(len(spill.Particles[j])))
			for _, p := range spill.Particles[j] {
				pdg = append(pdg, p.PDG)
				start[0] = append(start[0], float32(p.Start.X))
				start[1] = append(start[1], float32(p.Start.Y))
				start[2] = append(start[2], float32(p.Start.Z))
				end[0] = append(end[0], float32(p.End.X))
				end[1] = append(end[1], float32(p.End.Y))
				end[2] = append(end[2], float32(p.End.Z))
				cont = append(cont, p.Contained)
				prim = append(prim, p.Primary)
			}
		}
		nparts = int32(len(pdg))

		if _, err := w.Write(); err != nil {
			w.Close()
			f.Close()
			return fmt.Errorf("could not write spill %d to %q: %w", i, fname, err)
		}
	}

	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("could not close tree %q in %q: %w", br.Tree, fname, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", fname, err)
	}
	return nil
}

// ToyConfig drives the toy spill generator.
type ToyConfig struct {
	Detector        Box
	Margin          float64 // vertices are thrown this far outside the detector too
	InteractionRate float64 // mean interactions per spill
	ParticleRate    float64 // mean particles per interaction
	PrimaryFrac     float64
	MuonFrac        float64
	MuonLength      float64 // mean muon track length
	OtherLength     float64 // mean track length of other particles
}

func DefaultToyConfig() ToyConfig {
	return ToyConfig{
		Detector:        NDLAr,
		Margin:          50,
		InteractionRate: 2,
		ParticleRate:    3,
		PrimaryFrac:     0.7,
		MuonFrac:        0.3,
		MuonLength:      150,
		OtherLength:     30,
	}
}

var otherPDGs = []int32{211, -211, 2212, 11, 22}

// GenerateSpills throws n toy spills from a seeded source.
func GenerateSpills(cfg ToyConfig, n int, seed uint64) []Spill {
	var (
		rnd = rand.New(rand.NewPCG(seed, seed^0x5deece66d))
		box = cfg.Detector.Shrink(-cfg.Margin)
	)
	uniform := func(lo, hi float64) float64 { return lo + (hi-lo)*rnd.Float64() }
	direction := func() r3.Vec { return isotropic(uniform(-1, 1), uniform(0, 2*math.Pi)) }

	spills := make([]Spill, n)
	for i := range spills {
		k := poisson(rnd, cfg.InteractionRate)
		spill := Spill{
			Vertices:  make([]r3.Vec, k),
			Particles: make([][]Particle, k),
		}
		for j := 0; j < k; j++ {
			vtx := r3.Vec{
				X: uniform(box.Lo.X, box.Hi.X),
				Y: uniform(box.Lo.Y, box.Hi.Y),
				Z: uniform(box.Lo.Z, box.Hi.Z),
			}
			spill.Vertices[j] = vtx

			parts := make([]Particle, poisson(rnd, cfg.ParticleRate))
			for m := range parts {
				p := Particle{PDG: otherPDGs[rnd.IntN(len(otherPDGs))]}
				length := cfg.OtherLength * rnd.ExpFloat64()
				if rnd.Float64() < cfg.MuonFrac {
					p.PDG = 13
					length = cfg.MuonLength * rnd.ExpFloat64()
				}
				p.Primary = rnd.Float64() < cfg.PrimaryFrac
				p.Start = vtx
				if !p.Primary {
					p.Start = r3.Add(vtx, r3.Scale(cfg.OtherLength*rnd.ExpFloat64(), direction()))
				}
				p.End = r3.Add(p.Start, r3.Scale(length, direction()))
				p.Contained = cfg.Detector.Contains(p.Start) && cfg.Detector.Contains(p.End)
				parts[m] = p
			}
			spill.Particles[j] = parts
		}
		spills[i] = spill
	}
	return spills
}

// poisson draws from a Poisson distribution of mean lambda (Knuth).
func poisson(rnd *rand.Rand, lambda float64) int {
	var (
		l = math.Exp(-lambda)
		k = 0
		p = rnd.Float64()
	)
	for p > l {
		k++
		p *= rnd.Float64()
	}
	return k
}

func isotropic(cosTheta, phi float64) r3.Vec {
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	return r3.Vec{
		X: sinTheta * math.Cos(phi),
		Y: sinTheta * math.Sin(phi),
		Z: cosTheta,
	}
}
