package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/cafplot"
)

func TestGenerate(t *testing.T) {
	var (
		dir = filepath.Join(t.TempDir(), "files_flat")
		br  = cafplot.DefaultConfig().Branches
		toy = cafplot.DefaultToyConfig()
	)

	files, err := generate(dir, br, toy, 3, 10, 5)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "toy_flat_0000.root"),
		filepath.Join(dir, "toy_flat_0001.root"),
		filepath.Join(dir, "toy_flat_0002.root"),
	}, files)

	listed, err := cafplot.ListInputs([]string{dir}, 0)
	require.NoError(t, err)
	assert.Equal(t, files, listed)

	evts, err := cafplot.LoadEvents(files, br)
	require.NoError(t, err)

	nixn := 0
	for i := range files {
		for _, spill := range cafplot.GenerateSpills(toy, 10, 5+uint64(i)) {
			nixn += len(spill.Vertices)
		}
	}
	assert.Equal(t, nixn, evts.Len())
}

func TestGenerateUnknownField(t *testing.T) {
	br := cafplot.DefaultConfig().Branches
	br.ParticleFields = append(br.ParticleFields, "momentum")

	_, err := generate(t.TempDir(), br, cafplot.DefaultToyConfig(), 1, 1, 1)
	assert.ErrorIs(t, err, cafplot.ErrLeaf)
}
