package measured

import (
	"math"
	"testing"
)

func rampSeries(n int) (freq, mag, phase []float64) {
	freq = make([]float64, n)
	mag = make([]float64, n)
	phase = make([]float64, n)
	for i := 0; i < n; i++ {
		freq[i] = 0.1 * math.Pow(10, 3*float64(i)/float64(n-1)) // 0.1 .. 100
		mag[i] = float64(i % 17)
		phase[i] = -float64(i) * 0.05
	}
	return freq, mag, phase
}

func TestDecimateLogBounded(t *testing.T) {
	freq, mag, phase := rampSeries(5000)
	for _, bins := range []int{10, 100, 500} {
		f, m, p := DecimateLog(freq, mag, phase, bins)
		if len(f) > bins {
			t.Errorf("bins=%d: output %d points exceeds bin count", bins, len(f))
		}
		if len(f) != len(m) || len(f) != len(p) {
			t.Errorf("bins=%d: series lengths diverge", bins)
		}
	}
}

func TestDecimateLogPreservesPeaks(t *testing.T) {
	// A single narrow resonance spike must survive aggressive decimation.
	freq, mag, phase := rampSeries(5000)
	mag[3000] = 80.0
	_, m, _ := DecimateLog(freq, mag, phase, 50)
	maxOut := math.Inf(-1)
	for _, v := range m {
		maxOut = math.Max(maxOut, v)
	}
	if maxOut < 80.0 {
		t.Errorf("peak of 80 dB lost: max output %v", maxOut)
	}
}

func TestDecimateLogPerBinMaximum(t *testing.T) {
	freq := []float64{1, 1.1, 1.2, 50, 55, 60}
	mag := []float64{1, 7, 3, -2, 4, 0}
	phase := []float64{10, 20, 30, 0, 0, 0}
	f, m, p := DecimateLog(freq, mag, phase, 2)
	if len(f) != 2 {
		t.Fatalf("expected 2 occupied bins, got %d", len(f))
	}
	if m[0] != 7 || m[1] != 4 {
		t.Errorf("per-bin maxima = %v, want [7 4]", m)
	}
	if math.Abs(p[0]-20) > 1e-12 {
		t.Errorf("per-bin mean phase = %v, want 20", p[0])
	}
	wantF := (1 + 1.1 + 1.2) / 3
	if math.Abs(f[0]-wantF) > 1e-12 {
		t.Errorf("per-bin mean freq = %v, want %v", f[0], wantF)
	}
}

func TestDecimateLogSkipsEmptyBins(t *testing.T) {
	// Two tight clusters at the extremes leave the middle bins empty.
	freq := []float64{0.1, 0.11, 99, 100}
	mag := []float64{0, 1, 2, 3}
	phase := []float64{0, 0, 0, 0}
	f, _, _ := DecimateLog(freq, mag, phase, 100)
	if len(f) > 4 {
		t.Errorf("expected at most 4 occupied bins, got %d", len(f))
	}
}

func TestDecimateLogDropsNonPositiveFreqs(t *testing.T) {
	freq := []float64{-1, 0, 1, 2}
	mag := []float64{99, 99, 1, 2}
	phase := []float64{0, 0, 0, 0}
	f, m, _ := DecimateLog(freq, mag, phase, 4)
	for i := range f {
		if f[i] <= 0 {
			t.Errorf("non-positive frequency survived: %v", f[i])
		}
		if m[i] == 99 {
			t.Error("value from dropped sample leaked into output")
		}
	}
}

func TestThin(t *testing.T) {
	x := make([]float64, 100)
	y := make([]float64, 100)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i) * 2
	}

	tx, ty := Thin(x, y, 40)
	if len(tx) > 40 {
		t.Errorf("thinned to %d points, budget 40", len(tx))
	}
	for i := range tx {
		if ty[i] != tx[i]*2 {
			t.Fatalf("pairing broken at %d: x=%v y=%v", i, tx[i], ty[i])
		}
	}

	// Under budget: untouched.
	tx, _ = Thin(x, y, 200)
	if len(tx) != 100 {
		t.Errorf("under-budget series was thinned to %d", len(tx))
	}
}
