package bode

import (
	"math"
	"math/cmplx"
)

// epsilon floors |H| before the log so an exactly-zero response yields a
// large negative dB value instead of -Inf.
var epsilon = math.Nextafter(1, 2) - 1

// MagDB converts a complex response to magnitude in dB.
func MagDB(h []complex128) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = 20 * math.Log10(math.Max(cmplx.Abs(v), epsilon))
	}
	return out
}

// PhaseDeg converts a complex response to continuous phase in degrees,
// unwrapped once over the whole ordered grid.
func PhaseDeg(h []complex128) []float64 {
	rad := make([]float64, len(h))
	for i, v := range h {
		rad[i] = cmplx.Phase(v)
	}
	rad = Unwrap(rad)
	for i, r := range rad {
		rad[i] = r * 180 / math.Pi
	}
	return rad
}

// Unwrap removes artificial 2π jumps from a phase sequence in radians.
func Unwrap(rad []float64) []float64 {
	out := make([]float64, len(rad))
	copy(out, rad)
	offset := 0.0
	for i := 1; i < len(out); i++ {
		delta := rad[i] - rad[i-1]
		if delta > math.Pi {
			offset -= 2 * math.Pi
		} else if delta < -math.Pi {
			offset += 2 * math.Pi
		}
		out[i] = rad[i] + offset
	}
	return out
}

// Curves returns both Bode series for a composed response.
func Curves(h []complex128) (magDB, phaseDeg []float64) {
	return MagDB(h), PhaseDeg(h)
}

// Interp linearly interpolates ys over ascending xs at x. Outside the grid
// bounds it extrapolates flat; callers keep report frequencies inside the
// grid.
func Interp(x float64, xs, ys []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	lo, hi := 0, len(xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	t := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + t*(ys[hi]-ys[lo])
}
