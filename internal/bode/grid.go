// Package bode builds frequency grids and converts complex responses into
// magnitude/phase curves for comparison and display.
package bode

import (
	"errors"
	"math"
)

// Grid validation errors.
var (
	ErrFreqRange  = errors.New("bode: freq_min must be > 0 and freq_max > freq_min")
	ErrFreqPoints = errors.New("bode: at least 10 grid points required")
)

// MinPoints is the smallest usable evaluation grid.
const MinPoints = 10

// Grid is an ascending frequency axis in Hz with the matching angular
// frequencies in rad/s.
type Grid struct {
	Freq  []float64
	Omega []float64
}

// NewGrid builds an evaluation grid: geometric spacing when logX, linear
// otherwise.
func NewGrid(freqMin, freqMax float64, points int, logX bool) (Grid, error) {
	if freqMin <= 0 || freqMax <= freqMin {
		return Grid{}, ErrFreqRange
	}
	if points < MinPoints {
		return Grid{}, ErrFreqPoints
	}

	g := Grid{Freq: make([]float64, points), Omega: make([]float64, points)}
	if logX {
		logMin := math.Log10(freqMin)
		step := (math.Log10(freqMax) - logMin) / float64(points-1)
		for i := range g.Freq {
			g.Freq[i] = math.Pow(10, logMin+float64(i)*step)
		}
	} else {
		step := (freqMax - freqMin) / float64(points-1)
		for i := range g.Freq {
			g.Freq[i] = freqMin + float64(i)*step
		}
	}
	// Pin the endpoints so round-off never shrinks the covered range.
	g.Freq[0] = freqMin
	g.Freq[points-1] = freqMax
	for i, f := range g.Freq {
		g.Omega[i] = 2 * math.Pi * f
	}
	return g, nil
}
