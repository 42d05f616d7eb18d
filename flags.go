package cafplot

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects float values from a flag given several times,
// or once with comma-separated values. The first Set drops the defaults.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

func (f *FloatArrayFlags) Set(valueStr string) error {
	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	for _, s := range strings.Split(valueStr, ",") {
		value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		f.Array = append(f.Array, value)
	}
	return nil
}

func (f *FloatArrayFlags) String() string {
	if f == nil {
		return "[]"
	}
	return fmt.Sprint(f.Array)
}

// IsSet reports whether the flag was given on the command line.
func (f *FloatArrayFlags) IsSet() bool { return f.beenSet }

// Range interprets the values as a [lo, hi) interval.
func (f *FloatArrayFlags) Range() (lo, hi float64, err error) {
	if len(f.Array) != 2 {
		return 0, 0, fmt.Errorf("need 2 values for a range, got %d", len(f.Array))
	}
	lo, hi = f.Array[0], f.Array[1]
	if hi <= lo {
		return 0, 0, fmt.Errorf("invalid range [%v, %v)", lo, hi)
	}
	return lo, hi, nil
}
