package blocks

import "math"

// Scale selects how a parameter maps onto a bounded control.
type Scale int

const (
	ScaleLinear Scale = iota
	ScaleLog
)

// SliderSteps is the resolution of the integer control mapping.
const SliderSteps = 1000

// ParamMeta describes one block parameter. Min < Max always; for ScaleLog,
// Min > 0.
type ParamMeta struct {
	Label   string
	Default float64
	Min     float64
	Max     float64
	Scale   Scale
	Unit    string
}

// Clamp limits v to the parameter's valid range.
func (m ParamMeta) Clamp(v float64) float64 {
	return math.Min(m.Max, math.Max(m.Min, v))
}

// FromRatio maps ratio in [0,1] to a parameter value on the meta's scale.
func (m ParamMeta) FromRatio(ratio float64) float64 {
	ratio = math.Min(1, math.Max(0, ratio))
	if m.Scale == ScaleLog {
		return math.Exp(math.Log(m.Min) + ratio*(math.Log(m.Max)-math.Log(m.Min)))
	}
	return m.Min + ratio*(m.Max-m.Min)
}

// Ratio is the inverse of FromRatio. The value is clamped into [Min,Max]
// first so boundary round trips are stable.
func (m ParamMeta) Ratio(value float64) float64 {
	value = m.Clamp(value)
	var ratio float64
	if m.Scale == ScaleLog {
		ratio = (math.Log(value) - math.Log(m.Min)) / (math.Log(m.Max) - math.Log(m.Min))
	} else {
		ratio = (value - m.Min) / (m.Max - m.Min)
	}
	return math.Min(1, math.Max(0, ratio))
}

// FromSlider maps an integer control position in [0,SliderSteps] to a value.
func (m ParamMeta) FromSlider(pos int) float64 {
	return m.FromRatio(float64(pos) / SliderSteps)
}

// Slider maps a value to the nearest integer control position.
func (m ParamMeta) Slider(value float64) int {
	return int(math.Round(m.Ratio(value) * SliderSteps))
}
