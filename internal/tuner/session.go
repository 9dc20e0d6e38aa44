// Package tuner wires the compensator model, reference, measured data and
// undo history into one editing session. UI layers submit mutation intents
// and read back display-ready curves; they never touch the core types'
// internals.
package tuner

import (
	"time"

	"github.com/quintel/comptune/internal/blocks"
	"github.com/quintel/comptune/internal/bode"
	"github.com/quintel/comptune/internal/compensator"
	"github.com/quintel/comptune/internal/config"
	"github.com/quintel/comptune/internal/history"
	"github.com/quintel/comptune/internal/measured"
)

// Curves is what a rendering consumer receives after every mutation: the
// frequency axis with the evaluated magnitude and phase.
type Curves struct {
	Freq     []float64
	MagDB    []float64
	PhaseDeg []float64
}

type Session struct {
	Registry *blocks.Registry
	Settings *config.Settings

	Model *compensator.Model
	Ref   *compensator.Model

	grid bode.Grid
	hist *history.Engine
	data *measured.Dataset
}

// NewSession builds a session around validated settings, starting from the
// default compensator for both the working model and the reference.
func NewSession(reg *blocks.Registry, s *config.Settings) (*Session, error) {
	grid, err := s.Grid()
	if err != nil {
		return nil, err
	}
	return &Session{
		Registry: reg,
		Settings: s,
		Model:    compensator.DefaultModel(reg),
		Ref:      compensator.DefaultModel(reg),
		grid:     grid,
		hist:     history.New(),
	}, nil
}

// Grid exposes the current evaluation grid.
func (s *Session) Grid() bode.Grid { return s.grid }

// AddBlock appends a block, snapshotting for undo first.
func (s *Session) AddBlock(typeName string) error {
	s.hist.Record(s.Model)
	return s.Model.AddBlock(typeName)
}

func (s *Session) RemoveBlock(index int) {
	s.hist.Record(s.Model)
	s.Model.RemoveBlock(index)
}

func (s *Session) MoveBlock(oldIndex, newIndex int) {
	s.hist.Record(s.Model)
	s.Model.MoveBlock(oldIndex, newIndex)
}

func (s *Session) SetParam(index int, name string, value float64) {
	s.hist.Record(s.Model)
	s.Model.SetParam(index, name, value)
}

func (s *Session) SetEnabled(index int, enabled bool) {
	s.hist.Record(s.Model)
	s.Model.SetEnabled(index, enabled)
}

// ApplyPreset replaces the working model from a preset, as one undo step.
func (s *Session) ApplyPreset(p compensator.Preset) error {
	m, err := compensator.FromPreset(s.Registry, p)
	if err != nil {
		return err
	}
	s.hist.Record(s.Model)
	s.Model = m
	return nil
}

// ApplyRefPreset replaces the reference model. Reference edits are not part
// of the undo history.
func (s *Session) ApplyRefPreset(p compensator.Preset) error {
	m, err := compensator.FromPreset(s.Registry, p)
	if err != nil {
		return err
	}
	s.Ref = m
	return nil
}

// CopyToReference makes the reference match the working model.
func (s *Session) CopyToReference() {
	s.Ref = s.Model.Clone()
}

func (s *Session) Undo() bool {
	m, ok := s.hist.Undo(s.Model)
	if ok {
		s.Model = m
	}
	return ok
}

func (s *Session) Redo() bool {
	m, ok := s.hist.Redo(s.Model)
	if ok {
		s.Model = m
	}
	return ok
}

func (s *Session) CanUndo() bool { return s.hist.CanUndo() }
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// ModelCurves evaluates the working model on the session grid.
func (s *Session) ModelCurves() Curves {
	return s.curves(s.Model)
}

// RefCurves evaluates the reference model on the session grid.
func (s *Session) RefCurves() Curves {
	return s.curves(s.Ref)
}

func (s *Session) curves(m *compensator.Model) Curves {
	h := m.Response(s.grid.Omega)
	mag, phase := bode.Curves(h)
	return Curves{Freq: s.grid.Freq, MagDB: mag, PhaseDeg: phase}
}

// Report builds the reference-vs-adjusted comparison table at the report
// frequencies.
func (s *Session) Report() []bode.DiffRow {
	ref := s.RefCurves()
	adj := s.ModelCurves()
	return bode.Compare(s.grid, ref.MagDB, ref.PhaseDeg, adj.MagDB, adj.PhaseDeg, s.Settings.FreqReport)
}

// LoadMeasured replaces the current dataset wholesale from a CSV file.
func (s *Session) LoadMeasured(path string) error {
	d, err := measured.Load(path)
	if err != nil {
		return err
	}
	s.data = d
	return nil
}

// Measured returns the display series for the current dataset, or false
// when none is loaded.
func (s *Session) Measured() (fwd, inv measured.Series, ok bool) {
	if s.data == nil {
		return measured.Series{}, measured.Series{}, false
	}
	opts := measured.PhaseOptions{
		Unwrap: s.Settings.PhaseUnwrap,
		Smooth: s.Settings.PhaseSmooth,
		Window: s.Settings.PhaseWindow(),
	}
	fwd, inv = s.data.Display(s.Settings.MeasBins, s.Settings.PointBudget, opts)
	return fwd, inv, true
}

// HasMeasured reports whether a dataset is loaded.
func (s *Session) HasMeasured() bool { return s.data != nil }

// ApplySettings validates and installs new settings, rebuilding the grid.
// Failures leave the session untouched and come back as an inline message.
func (s *Session) ApplySettings(next *config.Settings) (bool, string) {
	if ok, msg := next.Validate(); !ok {
		return false, msg
	}
	grid, err := next.Grid()
	if err != nil {
		return false, err.Error()
	}
	s.Settings = next
	s.grid = grid
	return true, ""
}

// Snapshot summarizes the current working model for the tuning log: phase
// at the 1 Hz and 3 Hz markers plus the block listing.
func (s *Session) Snapshot(note string, now time.Time) SnapshotSummary {
	adj := s.ModelCurves()
	return SnapshotSummary{
		Timestamp: now,
		Phase1Hz:  bode.Interp(1.0, adj.Freq, adj.PhaseDeg),
		Phase3Hz:  bode.Interp(3.0, adj.Freq, adj.PhaseDeg),
		Blocks:    s.Model.Summary(),
		Note:      note,
	}
}

// SnapshotSummary mirrors the tuning-log row.
type SnapshotSummary struct {
	Timestamp time.Time
	Phase1Hz  float64
	Phase3Hz  float64
	Blocks    string
	Note      string
}
