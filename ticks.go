package cafplot

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks places labelled major ticks on round values, aiming for
// NSuggestedTicks of them, with unlabelled minor ticks in between.
type PreciseTicks struct {
	NSuggestedTicks int
}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	n := t.NSuggestedTicks
	if n < 2 {
		n = 4
	}

	switch {
	case math.IsNaN(min) || math.IsNaN(max) || math.IsInf(max-min, 0):
		return nil
	case max <= min:
		return []plot.Tick{{Value: min, Label: strconv.FormatFloat(min, 'g', -1, 64)}}
	}

	mult, major := majorStep(max-min, n)

	var ticks []plot.Tick
	val := math.Floor(min/major) * major
	for ; val <= max; val += major {
		if val < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	last := math.Max(math.Abs(val), major)
	prec := int(math.Ceil(math.Log10(last)) - math.Floor(math.Log10(major)))
	for i := range ticks {
		v := round(ticks[i].Value, prec)
		ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'g', -1, 64)}
	}

	minor := major / 2
	switch mult {
	case 3, 6:
		minor = major / 3
	case 5:
		minor = major / 5
	}

	nmajor := len(ticks)
	for val := math.Floor(min/minor) * minor; val <= max; val += minor {
		if val < min || hasTick(ticks[:nmajor], val) {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	return ticks
}

// majorStep returns the spacing of major ticks for the given span as
// mult * 10^k, with mult avoiding 7 and 9.
func majorStep(span float64, n int) (mult int, step float64) {
	tens := math.Pow10(int(math.Floor(math.Log10(span))))
	steps := span / tens
	for steps < float64(n-1) {
		tens /= 10
		steps = span / tens
	}

	mult = int(steps / float64(n-1))
	switch mult {
	case 7:
		mult = 6
	case 9:
		mult = 8
	}
	return mult, float64(mult) * tens
}

func hasTick(ticks []plot.Tick, v float64) bool {
	for _, t := range ticks {
		if t.Value == v {
			return true
		}
	}
	return false
}

// round rounds x to prec decimal digits, half away from zero.
func round(x float64, prec int) float64 {
	if x == 0 {
		// no negative zero
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	intermed := x * pow
	if math.IsInf(intermed, 0) {
		return x
	}
	if x < 0 {
		x = math.Ceil(intermed - 0.5)
	} else {
		x = math.Floor(intermed + 0.5)
	}
	if x == 0 {
		return 0
	}
	return x / pow
}
