// Package history provides the undo/redo engine for interactive compensator
// editing. Bursts of parameter drags inside a quiet period coalesce into a
// single undo entry; structural edits separated by a pause each get their
// own.
package history

import (
	"time"

	"github.com/quintel/comptune/internal/compensator"
)

const (
	// DefaultLimit bounds the undo stack; the oldest entry is dropped first.
	DefaultLimit = 100

	// DefaultQuiet is the debounce quiet period for coalescing edits.
	DefaultQuiet = 350 * time.Millisecond
)

// Engine owns the undo and redo stacks. Snapshots are whole serialized
// presets, never diffs; the model is small enough that simplicity wins.
//
// Debouncing is a timestamp comparison against the clock rather than a
// timer callback: a mutation arriving later than the quiet period after the
// previous one starts a new entry, which is observably the same coalescing
// a single-shot timer gives without needing one.
type Engine struct {
	limit int
	quiet time.Duration
	now   func() time.Time

	undo []compensator.Preset
	redo []compensator.Preset

	pending   bool
	lastEdit  time.Time
	restoring bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimit overrides the undo stack bound.
func WithLimit(n int) Option {
	return func(e *Engine) { e.limit = n }
}

// WithQuiet overrides the debounce quiet period.
func WithQuiet(d time.Duration) Option {
	return func(e *Engine) { e.quiet = d }
}

// WithClock injects a clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) *Engine {
	e := &Engine{limit: DefaultLimit, quiet: DefaultQuiet, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Record is called before every mutation of the model. The first mutation of
// a burst pushes a snapshot and clears the redo stack; further mutations
// inside the quiet period ride on the same entry.
func (e *Engine) Record(m *compensator.Model) {
	if e.restoring {
		return
	}
	now := e.now()
	if e.pending && now.Sub(e.lastEdit) > e.quiet {
		e.pending = false
	}
	if !e.pending {
		e.push(&e.undo, m.Preset(), e.limit)
		e.redo = e.redo[:0]
		e.pending = true
	}
	e.lastEdit = now
}

// Undo restores the most recent snapshot, pushing the current state onto the
// redo stack. Returns the restored model and true, or nil and false when
// there is nothing to undo. The restore itself is never recorded.
func (e *Engine) Undo(current *compensator.Model) (*compensator.Model, bool) {
	if len(e.undo) == 0 {
		return nil, false
	}
	e.restoring = true
	defer func() { e.restoring = false }()

	e.push(&e.redo, current.Preset(), 0)
	snap := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.pending = false

	restored, err := compensator.FromPreset(current.Registry(), snap)
	if err != nil {
		// Snapshots were produced by this process; a decode failure means
		// the registry shrank underneath us. Drop the entry.
		return nil, false
	}
	return restored, true
}

// Redo is the symmetric inverse of Undo.
func (e *Engine) Redo(current *compensator.Model) (*compensator.Model, bool) {
	if len(e.redo) == 0 {
		return nil, false
	}
	e.restoring = true
	defer func() { e.restoring = false }()

	e.push(&e.undo, current.Preset(), e.limit)
	snap := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.pending = false

	restored, err := compensator.FromPreset(current.Registry(), snap)
	if err != nil {
		return nil, false
	}
	return restored, true
}

// CanUndo reports whether the undo stack is non-empty.
func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// push appends a snapshot, evicting the oldest entry past the limit.
// limit <= 0 means unbounded (the redo stack).
func (e *Engine) push(stack *[]compensator.Preset, p compensator.Preset, limit int) {
	*stack = append(*stack, p)
	if limit > 0 && len(*stack) > limit {
		copy(*stack, (*stack)[1:])
		*stack = (*stack)[:len(*stack)-1]
	}
}
