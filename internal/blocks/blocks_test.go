package blocks

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestBuiltinNames(t *testing.T) {
	r := Builtin()
	want := []string{"gain", "leadlag", "real_pole_zero", "sos"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("names[%d] = %q, want %q", i, got[i], name)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	r := Builtin()
	if _, ok := r.Lookup("notch"); ok {
		t.Error("expected lookup miss for unregistered type")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := Builtin()
	err := r.Register(&Descriptor{TypeName: "gain"})
	if err == nil {
		t.Error("expected error registering duplicate type name")
	}
}

func TestGainResponse(t *testing.T) {
	r := Builtin()
	d, _ := r.Lookup("gain")
	w := []float64{0.1, 1, 10, 100}
	h := d.Response(w, map[string]float64{"K": 2.5})
	for i, v := range h {
		if v != complex(2.5, 0) {
			t.Errorf("h[%d] = %v, want 2.5+0i", i, v)
		}
	}
}

func TestLeadLagDC(t *testing.T) {
	r := Builtin()
	d, _ := r.Lookup("leadlag")
	h := d.Response([]float64{0}, map[string]float64{"T": 0.01, "a": 5})
	if cmplx.Abs(h[0]-1) > 1e-12 {
		t.Errorf("lead/lag at w=0 = %v, want 1", h[0])
	}
}

func TestLeadLagHighFrequency(t *testing.T) {
	// As w -> inf the response approaches a.
	r := Builtin()
	d, _ := r.Lookup("leadlag")
	h := d.Response([]float64{1e9}, map[string]float64{"T": 0.01, "a": 5})
	if math.Abs(cmplx.Abs(h[0])-5) > 1e-3 {
		t.Errorf("|H| at high w = %v, want ~5", cmplx.Abs(h[0]))
	}
}

func TestSecondOrderSection(t *testing.T) {
	r := Builtin()
	d, _ := r.Lookup("sos")
	fn, zeta, k := 20.0, 0.55, 1.5
	params := map[string]float64{"fn": fn, "zeta": zeta, "K": k}

	h := d.Response([]float64{0}, params)
	if math.Abs(cmplx.Abs(h[0])-k) > 1e-12 {
		t.Errorf("|H(0)| = %v, want K=%v", cmplx.Abs(h[0]), k)
	}

	// At w = wn the magnitude is K/(2*zeta) and the phase is -90 degrees.
	wn := 2 * math.Pi * fn
	h = d.Response([]float64{wn}, params)
	if math.Abs(cmplx.Abs(h[0])-k/(2*zeta)) > 1e-9 {
		t.Errorf("|H(wn)| = %v, want %v", cmplx.Abs(h[0]), k/(2*zeta))
	}
	if math.Abs(cmplx.Phase(h[0])+math.Pi/2) > 1e-9 {
		t.Errorf("phase at wn = %v rad, want -pi/2", cmplx.Phase(h[0]))
	}
}

func TestRealPoleZeroDC(t *testing.T) {
	r := Builtin()
	d, _ := r.Lookup("real_pole_zero")
	params := map[string]float64{"fz": 1, "fp": 5, "K": 2}
	h := d.Response([]float64{0}, params)
	want := 2.0 * 1 / 5
	if math.Abs(cmplx.Abs(h[0])-want) > 1e-12 {
		t.Errorf("|H(0)| = %v, want %v", cmplx.Abs(h[0]), want)
	}
}

func TestMissingParamsFallBackToDefaults(t *testing.T) {
	r := Builtin()
	for _, name := range r.Names() {
		d, _ := r.Lookup(name)
		h := d.Response([]float64{1, 10}, map[string]float64{})
		if len(h) != 2 {
			t.Fatalf("%s: expected 2 samples, got %d", name, len(h))
		}
		for i, v := range h {
			if cmplx.IsNaN(v) || cmplx.IsInf(v) {
				t.Errorf("%s: h[%d] = %v with empty params", name, i, v)
			}
		}
	}
}

func TestDefaults(t *testing.T) {
	r := Builtin()
	d, _ := r.Lookup("sos")
	params := d.Defaults()
	if len(params) != 3 {
		t.Fatalf("expected 3 defaults, got %d", len(params))
	}
	if params["fn"] != 20.0 || params["zeta"] != 0.55 || params["K"] != 1.0 {
		t.Errorf("unexpected defaults: %v", params)
	}
}

func TestRatioRoundTrip(t *testing.T) {
	metas := []ParamMeta{
		{Min: 0.1, Max: 2.0, Scale: ScaleLinear},
		{Min: 0.01, Max: 100.0, Scale: ScaleLog},
	}
	for _, meta := range metas {
		mid := meta.FromRatio(0.5)
		for _, v := range []float64{meta.Min, mid, meta.Max} {
			got := meta.FromRatio(meta.Ratio(v))
			if math.Abs(got-v) > 1e-9*math.Max(1, math.Abs(v)) {
				t.Errorf("scale %v: round trip %v -> %v", meta.Scale, v, got)
			}
		}
	}
}

func TestRatioMonotone(t *testing.T) {
	meta := ParamMeta{Min: 0.01, Max: 100.0, Scale: ScaleLog}
	prev := math.Inf(-1)
	for ratio := 0.0; ratio <= 1.0; ratio += 0.05 {
		v := meta.FromRatio(ratio)
		if v <= prev {
			t.Fatalf("FromRatio not strictly increasing at ratio %v", ratio)
		}
		prev = v
	}
}

func TestRatioClampsOutOfRange(t *testing.T) {
	meta := ParamMeta{Min: 1, Max: 10, Scale: ScaleLinear}
	if got := meta.Ratio(-5); got != 0 {
		t.Errorf("Ratio below min = %v, want 0", got)
	}
	if got := meta.Ratio(50); got != 1 {
		t.Errorf("Ratio above max = %v, want 1", got)
	}
}

func TestSliderRoundTrip(t *testing.T) {
	meta := ParamMeta{Min: 1e-4, Max: 1.0, Scale: ScaleLog}
	for _, pos := range []int{0, 250, 500, 750, SliderSteps} {
		v := meta.FromSlider(pos)
		if got := meta.Slider(v); got != pos {
			t.Errorf("slider round trip %d -> %d", pos, got)
		}
	}
}
