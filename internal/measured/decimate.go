package measured

import "math"

// DefaultPointBudget bounds how many points a display series carries after
// decimation.
const DefaultPointBudget = 4000

// DecimateLog partitions the frequency axis into bins geometrically spaced
// edges and aggregates each occupied bin: mean frequency, maximum magnitude
// (peak-preserving, so resonances survive), mean phase. Empty bins
// contribute nothing, so the output never exceeds bins points.
func DecimateLog(freq, magDB, phaseDeg []float64, bins int) (outFreq, outMag, outPhase []float64) {
	n := 0
	for _, f := range freq {
		if f > 0 {
			n++
		}
	}
	if n == 0 || bins < 1 {
		return nil, nil, nil
	}

	f := make([]float64, 0, n)
	mag := make([]float64, 0, n)
	phase := make([]float64, 0, n)
	for i, fi := range freq {
		if fi > 0 {
			f = append(f, fi)
			mag = append(mag, magDB[i])
			phase = append(phase, phaseDeg[i])
		}
	}

	fmin, fmax := f[0], f[0]
	for _, fi := range f {
		fmin = math.Min(fmin, fi)
		fmax = math.Max(fmax, fi)
	}
	if fmax <= fmin {
		return f, mag, phase
	}

	edges := geomspace(fmin, fmax, bins+1)
	idx := 0
	for i := 0; i < bins; i++ {
		left, right := edges[i], edges[i+1]
		for idx < len(f) && f[idx] < left {
			idx++
		}
		start := idx
		for idx < len(f) && f[idx] < right {
			idx++
		}
		if idx == start {
			continue
		}
		sumF, sumP := 0.0, 0.0
		maxM := math.Inf(-1)
		for j := start; j < idx; j++ {
			sumF += f[j]
			sumP += phase[j]
			maxM = math.Max(maxM, mag[j])
		}
		count := float64(idx - start)
		outFreq = append(outFreq, sumF/count)
		outMag = append(outMag, maxM)
		outPhase = append(outPhase, sumP/count)
	}
	return outFreq, outMag, outPhase
}

func geomspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	logLo := math.Log(lo)
	step := (math.Log(hi) - logLo) / float64(n-1)
	for i := range out {
		out[i] = math.Exp(logLo + float64(i)*step)
	}
	out[0] = lo
	out[n-1] = hi * (1 + 1e-12) // keep the last sample inside the final bin
	return out
}

// Thin subsamples paired series with a uniform stride when they exceed the
// point budget, keeping frequency/value index alignment.
func Thin(x, y []float64, budget int) ([]float64, []float64) {
	if budget < 1 || len(x) <= budget {
		return x, y
	}
	step := (len(x) + budget - 1) / budget
	outX := make([]float64, 0, budget)
	outY := make([]float64, 0, budget)
	for i := 0; i < len(x); i += step {
		outX = append(outX, x[i])
		outY = append(outY, y[i])
	}
	return outX, outY
}
