package blocks

import "math"

// Builtin returns a registry populated with the four standard compensator
// primitives. Called once at startup.
func Builtin() *Registry {
	r := NewRegistry()
	for _, d := range []*Descriptor{gain(), leadLag(), secondOrder(), realPoleZero()} {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func gain() *Descriptor {
	return &Descriptor{
		TypeName:    "gain",
		DisplayName: "Gain",
		Formula:     "K",
		ParamOrder:  []string{"K"},
		Params: map[string]ParamMeta{
			"K": {Label: "K", Default: 1.0, Min: 0.01, Max: 100.0, Scale: ScaleLog},
		},
		Response: func(w []float64, params map[string]float64) []complex128 {
			k := param(params, "K", 1.0)
			h := make([]complex128, len(w))
			for i := range h {
				h[i] = complex(k, 0)
			}
			return h
		},
	}
}

func leadLag() *Descriptor {
	return &Descriptor{
		TypeName:    "leadlag",
		DisplayName: "Lead/Lag",
		Formula:     "(aTs+1)/(Ts+1)",
		ParamOrder:  []string{"T", "a"},
		Params: map[string]ParamMeta{
			"T": {Label: "T", Default: 0.004, Min: 1e-4, Max: 1.0, Scale: ScaleLog, Unit: "s"},
			"a": {Label: "a", Default: 1.7, Min: 0.1, Max: 10.0, Scale: ScaleLog},
		},
		Response: func(w []float64, params map[string]float64) []complex128 {
			t := param(params, "T", 0.004)
			a := param(params, "a", 1.7)
			h := make([]complex128, len(w))
			for i, wi := range w {
				s := complex(0, wi)
				h[i] = (complex(a*t, 0)*s + 1) / (complex(t, 0)*s + 1)
			}
			return h
		},
	}
}

func secondOrder() *Descriptor {
	return &Descriptor{
		TypeName:    "sos",
		DisplayName: "Second-Order Section",
		Formula:     "K·wn² / (s² + 2ζwn·s + wn²)",
		ParamOrder:  []string{"fn", "zeta", "K"},
		Params: map[string]ParamMeta{
			"fn":   {Label: "fn", Default: 20.0, Min: 0.1, Max: 100.0, Scale: ScaleLog, Unit: "Hz"},
			"zeta": {Label: "zeta", Default: 0.55, Min: 0.1, Max: 2.0, Scale: ScaleLinear},
			"K":    {Label: "K", Default: 1.0, Min: 0.1, Max: 10.0, Scale: ScaleLog},
		},
		Response: func(w []float64, params map[string]float64) []complex128 {
			fn := param(params, "fn", 20.0)
			zeta := param(params, "zeta", 0.55)
			k := param(params, "K", 1.0)
			wn := 2 * math.Pi * fn
			num := complex(k*wn*wn, 0)
			h := make([]complex128, len(w))
			for i, wi := range w {
				s := complex(0, wi)
				h[i] = num / (s*s + complex(2*zeta*wn, 0)*s + complex(wn*wn, 0))
			}
			return h
		},
	}
}

func realPoleZero() *Descriptor {
	return &Descriptor{
		TypeName:    "real_pole_zero",
		DisplayName: "Real Pole-Zero",
		Formula:     "K·(s+wz)/(s+wp)",
		ParamOrder:  []string{"fz", "fp", "K"},
		Params: map[string]ParamMeta{
			"fz": {Label: "fz", Default: 1.0, Min: 0.01, Max: 100.0, Scale: ScaleLog, Unit: "Hz"},
			"fp": {Label: "fp", Default: 5.0, Min: 0.01, Max: 100.0, Scale: ScaleLog, Unit: "Hz"},
			"K":  {Label: "K", Default: 1.0, Min: 0.1, Max: 10.0, Scale: ScaleLog},
		},
		Response: func(w []float64, params map[string]float64) []complex128 {
			wz := 2 * math.Pi * param(params, "fz", 1.0)
			wp := 2 * math.Pi * param(params, "fp", 5.0)
			k := complex(param(params, "K", 1.0), 0)
			h := make([]complex128, len(w))
			for i, wi := range w {
				s := complex(0, wi)
				h[i] = k * (s + complex(wz, 0)) / (s + complex(wp, 0))
			}
			return h
		},
	}
}

func param(params map[string]float64, name string, fallback float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return fallback
}
