// Package config holds the free-form tuning-session settings that the UI
// layer edits and persists: evaluation grid bounds, marker and report
// frequencies, measurement display knobs, phase conditioning defaults.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/quintel/comptune/internal/bode"
)

const (
	DefaultFreqMin      = 0.1
	DefaultFreqMax      = 100.0
	DefaultFreqPoints   = 2000
	DefaultMeasBins     = 500
	DefaultPointBudget  = 4000
	DefaultSmoothWindow = 41
)

type Settings struct {
	FreqMin     float64   `yaml:"freq_min"`
	FreqMax     float64   `yaml:"freq_max"`
	FreqPoints  int       `yaml:"freq_points"`
	LogX        bool      `yaml:"log_x"`
	FreqMarkers []float64 `yaml:"freq_markers"`
	FreqReport  []float64 `yaml:"freq_report"`
	MeasBins    int       `yaml:"meas_bins"`
	PointBudget int       `yaml:"point_budget"`

	PhaseUnwrap  bool `yaml:"phase_unwrap"`
	PhaseSmooth  bool `yaml:"phase_smooth"`
	SmoothWindow int  `yaml:"smooth_window"`
}

func Default() *Settings {
	return &Settings{
		FreqMin:      DefaultFreqMin,
		FreqMax:      DefaultFreqMax,
		FreqPoints:   DefaultFreqPoints,
		LogX:         true,
		FreqMarkers:  []float64{1.0, 3.0},
		FreqReport:   []float64{0.5, 1.0, 3.0, 10.0},
		MeasBins:     DefaultMeasBins,
		PointBudget:  DefaultPointBudget,
		PhaseUnwrap:  true,
		PhaseSmooth:  false,
		SmoothWindow: DefaultSmoothWindow,
	}
}

func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings the way user-editable input deserves: a
// result and a message to surface inline, never an unwound error.
func (s *Settings) Validate() (bool, string) {
	if s.FreqMin <= 0 || s.FreqMax <= s.FreqMin {
		return false, fmt.Sprintf("invalid frequency range %g..%g Hz", s.FreqMin, s.FreqMax)
	}
	if s.FreqPoints < bode.MinPoints {
		return false, fmt.Sprintf("grid needs at least %d points, have %d", bode.MinPoints, s.FreqPoints)
	}
	if s.MeasBins < 1 {
		return false, fmt.Sprintf("measurement bins must be positive, have %d", s.MeasBins)
	}
	if s.PointBudget < 1 {
		return false, fmt.Sprintf("point budget must be positive, have %d", s.PointBudget)
	}
	for _, f := range s.FreqReport {
		if f < s.FreqMin || f > s.FreqMax {
			return false, fmt.Sprintf("report frequency %g Hz outside grid range %g..%g", f, s.FreqMin, s.FreqMax)
		}
	}
	return true, ""
}

// Grid builds the evaluation grid for these settings.
func (s *Settings) Grid() (bode.Grid, error) {
	return bode.NewGrid(s.FreqMin, s.FreqMax, s.FreqPoints, s.LogX)
}

// PhaseWindow reports the smoothing window forced odd, the way the spin
// control does before handing it to the pipeline.
func (s *Settings) PhaseWindow() int {
	if s.SmoothWindow%2 == 0 {
		return s.SmoothWindow + 1
	}
	return s.SmoothWindow
}

var freqListSep = regexp.MustCompile(`[,\s]+`)

// ParseFreqList parses a comma/space separated frequency list. Unparseable
// and non-positive entries are skipped; if nothing survives, the fallback is
// returned. The result is sorted and de-duplicated.
func ParseFreqList(text string, fallback []float64) []float64 {
	seen := make(map[float64]bool)
	var values []float64
	for _, part := range freqListSep.Split(text, -1) {
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v <= 0 {
			continue
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	sort.Float64s(values)
	return values
}
