package cafplot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSpills(t *testing.T) {
	cfg := DefaultToyConfig()
	spills := GenerateSpills(cfg, 200, 7)
	require.Len(t, spills, 200)

	var (
		nixn   = 0
		nmuons = 0
		box    = cfg.Detector.Shrink(-cfg.Margin)
	)
	for _, spill := range spills {
		require.Len(t, spill.Particles, len(spill.Vertices))
		for j, vtx := range spill.Vertices {
			assert.True(t, box.Contains(vtx), "vertex %+v", vtx)
			for _, p := range spill.Particles[j] {
				if p.Primary {
					assert.Equal(t, vtx, p.Start)
				}
				if p.Contained {
					assert.True(t, cfg.Detector.Contains(p.End))
				}
				if p.PDG == 13 {
					nmuons++
				}
			}
			nixn++
		}
	}
	assert.Greater(t, nixn, 200)
	assert.Greater(t, nmuons, 0)

	assert.Equal(t, spills, GenerateSpills(cfg, 200, 7), "same seed, same spills")
}

func TestWriteCAFMismatchedSpill(t *testing.T) {
	br := DefaultConfig().Branches
	spill := Spill{Vertices: testSpills[0].Vertices, Particles: testSpills[0].Particles[:1]}
	err := WriteCAF(filepath.Join(t.TempDir(), "bad.root"), br, []Spill{spill})
	assert.ErrorIs(t, err, ErrShape)
}

func TestWriteCAFUnknownField(t *testing.T) {
	br := DefaultConfig().Branches
	br.ParticleFields = append(br.ParticleFields, "momentum")
	err := WriteCAF(filepath.Join(t.TempDir(), "bad.root"), br, testSpills)
	assert.ErrorIs(t, err, ErrLeaf)
}

func TestWriteCAFReuseFile(t *testing.T) {
	br := DefaultConfig().Branches
	fname := filepath.Join(t.TempDir(), "caf.root")

	bad := Spill{Vertices: testSpills[0].Vertices, Particles: testSpills[0].Particles[:1]}
	require.ErrorIs(t, WriteCAF(fname, br, []Spill{bad}), ErrShape)

	for i := 0; i < 2; i++ {
		require.NoError(t, WriteCAF(fname, br, testSpills))
		vtx, err := ReadTable([]string{fname}, br.VertexPrefix, br.VertexFields)
		require.NoError(t, err)
		assert.Equal(t, len(testSpills), vtx.Entries)
	}
}
