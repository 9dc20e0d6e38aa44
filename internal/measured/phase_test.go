package measured

import (
	"math"
	"testing"
)

func TestConditionPhaseUnwrap(t *testing.T) {
	// A descending ramp wrapped into (-180, 180].
	n := 100
	truth := make([]float64, n)
	wrapped := make([]float64, n)
	for i := range truth {
		truth[i] = -8 * float64(i)
		w := math.Mod(truth[i]+180, 360)
		if w < 0 {
			w += 360
		}
		wrapped[i] = w - 180
	}

	out := ConditionPhase(wrapped, PhaseOptions{Unwrap: true})
	for i := range out {
		if math.Abs((out[i]-out[0])-(truth[i]-truth[0])) > 1e-9 {
			t.Fatalf("unwrap diverges at %d: %v vs %v", i, out[i]-out[0], truth[i]-truth[0])
		}
	}
}

func TestConditionPhaseNoOptionsCopies(t *testing.T) {
	in := []float64{1, 2, 3}
	out := ConditionPhase(in, PhaseOptions{})
	out[0] = 99
	if in[0] != 1 {
		t.Error("conditioning must not alias the input slice")
	}
}

func TestConditionPhaseDoesNotMutateInput(t *testing.T) {
	in := []float64{170, -170, 150, -150}
	saved := append([]float64(nil), in...)
	ConditionPhase(in, PhaseOptions{Unwrap: true, Smooth: true, Window: 5})
	for i := range in {
		if in[i] != saved[i] {
			t.Fatal("raw phase mutated by conditioning")
		}
	}
}

func TestEffectiveWindow(t *testing.T) {
	tests := []struct {
		name   string
		opts   PhaseOptions
		length int
		want   int
	}{
		{"smoothing off", PhaseOptions{Smooth: false, Window: 41}, 100, 0},
		{"even forced odd", PhaseOptions{Smooth: true, Window: 40}, 100, 41},
		{"clamped to odd length", PhaseOptions{Smooth: true, Window: 41}, 21, 21},
		{"clamped to even length", PhaseOptions{Smooth: true, Window: 41}, 20, 19},
		{"tiny window disables", PhaseOptions{Smooth: true, Window: 3}, 100, 0},
		{"clamp below five disables", PhaseOptions{Smooth: true, Window: 41}, 4, 0},
		{"empty data", PhaseOptions{Smooth: true, Window: 41}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.EffectiveWindow(tt.length); got != tt.want {
				t.Errorf("EffectiveWindow(%d) = %d, want %d", tt.length, got, tt.want)
			}
		})
	}
}

func TestSavgolPreservesPolynomial(t *testing.T) {
	// A cubic is reproduced exactly by an order-3 fit, interior and edges.
	n := 60
	data := make([]float64, n)
	for i := range data {
		x := float64(i)
		data[i] = 0.001*x*x*x - 0.2*x*x + 3*x - 7
	}
	out := savgol(data, 11, 3)
	for i := range out {
		if math.Abs(out[i]-data[i]) > 1e-6 {
			t.Fatalf("cubic distorted at %d: %v vs %v", i, out[i], data[i])
		}
	}
}

func TestSavgolSmoothsNoise(t *testing.T) {
	// Deterministic zig-zag noise on a line: smoothing must shrink the
	// deviation from the line in the interior.
	n := 200
	data := make([]float64, n)
	for i := range data {
		noise := 5.0
		if i%2 == 0 {
			noise = -5.0
		}
		data[i] = 0.5*float64(i) + noise
	}
	out := savgol(data, 21, 3)
	var before, after float64
	for i := 30; i < n-30; i++ {
		line := 0.5 * float64(i)
		before += math.Abs(data[i] - line)
		after += math.Abs(out[i] - line)
	}
	if after >= before/2 {
		t.Errorf("smoothing too weak: residual %v -> %v", before, after)
	}
}

func TestConditionPhaseSmoothKeepsLength(t *testing.T) {
	in := make([]float64, 33)
	for i := range in {
		in[i] = float64(i)
	}
	out := ConditionPhase(in, PhaseOptions{Smooth: true, Window: 7})
	if len(out) != len(in) {
		t.Errorf("length changed: %d -> %d", len(in), len(out))
	}
}

func TestDisplayPipeline(t *testing.T) {
	freq, mag, phase := rampSeries(3000)
	savedPhase := append([]float64(nil), phase...)
	d := &Dataset{
		Freq: freq, MagDBFwd: mag, PhaseDegFwd: phase,
		MagDBInv: mag, PhaseDegInv: phase,
	}
	fwd, inv := d.Display(200, 100, DefaultPhaseOptions())
	for _, s := range []Series{fwd, inv} {
		if len(s.Freq) == 0 || len(s.Freq) > 200 {
			t.Fatalf("display series length %d out of bounds", len(s.Freq))
		}
		if len(s.Freq) > 100 {
			t.Errorf("point budget exceeded: %d", len(s.Freq))
		}
		if len(s.MagDB) != len(s.Freq) || len(s.PhaseDeg) != len(s.Freq) {
			t.Error("display series misaligned")
		}
	}
	// Raw data untouched.
	for i := range savedPhase {
		if d.PhaseDegFwd[i] != savedPhase[i] {
			t.Fatal("display mutated the raw dataset")
		}
	}
}
