package cafplot

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatArrayFlags(t *testing.T) {
	f := FloatArrayFlags{Array: []float64{0, 500}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&f, "range", "")

	assert.False(t, f.IsSet())
	require.NoError(t, fs.Parse([]string{"-range", "10", "-range", "20"}))
	assert.True(t, f.IsSet())
	assert.Equal(t, []float64{10, 20}, f.Array)
	assert.Equal(t, "[10 20]", f.String())

	lo, hi, err := f.Range()
	require.NoError(t, err)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 20.0, hi)
}

func TestFloatArrayFlagsCommaSeparated(t *testing.T) {
	var f FloatArrayFlags
	require.NoError(t, f.Set("0, 250.5"))
	assert.Equal(t, []float64{0, 250.5}, f.Array)

	assert.Error(t, f.Set("abc"))
}

func TestFloatArrayFlagsRangeErrors(t *testing.T) {
	for _, vals := range [][]float64{nil, {1}, {1, 2, 3}, {5, 5}, {5, 1}} {
		f := FloatArrayFlags{Array: vals}
		_, _, err := f.Range()
		assert.Error(t, err, "values %v", vals)
	}
}
