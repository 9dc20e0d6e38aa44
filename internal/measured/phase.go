package measured

import (
	"math"

	"github.com/quintel/comptune/internal/bode"
)

// PhaseOptions selects the display-time phase conditioning. Raw stored phase
// is never modified.
type PhaseOptions struct {
	Unwrap bool
	Smooth bool
	Window int
}

// DefaultPhaseOptions matches the startup state of the tuner: unwrap on,
// smoothing off with a 41-sample window ready.
func DefaultPhaseOptions() PhaseOptions {
	return PhaseOptions{Unwrap: true, Smooth: false, Window: 41}
}

// EffectiveWindow normalizes the configured window against the data length:
// forced odd (incremented when even), clamped down to the data length (again
// forced odd). Windows below 5 disable smoothing.
func (o PhaseOptions) EffectiveWindow(length int) int {
	if !o.Smooth || length <= 0 {
		return 0
	}
	window := o.Window
	if window%2 == 0 {
		window++
	}
	if window > length {
		if length%2 == 1 {
			window = length
		} else {
			window = length - 1
		}
	}
	if window < 5 {
		return 0
	}
	return window
}

// ConditionPhase applies optional cumulative unwrap and optional
// Savitzky-Golay smoothing to a phase series in degrees, returning a new
// slice.
func ConditionPhase(phaseDeg []float64, opts PhaseOptions) []float64 {
	out := make([]float64, len(phaseDeg))
	copy(out, phaseDeg)

	if opts.Unwrap {
		rad := make([]float64, len(out))
		for i, p := range out {
			rad[i] = p * math.Pi / 180
		}
		rad = bode.Unwrap(rad)
		for i, r := range rad {
			out[i] = r * 180 / math.Pi
		}
	}

	if window := opts.EffectiveWindow(len(out)); window >= 5 {
		order := 2
		if window >= 7 {
			order = 3
		}
		out = savgol(out, window, order)
	}
	return out
}
