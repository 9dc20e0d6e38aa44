// Package compensator holds the ordered block list being tuned and composes
// the blocks' frequency responses multiplicatively over a shared grid.
package compensator

import (
	"fmt"
	"strings"

	"github.com/quintel/comptune/internal/blocks"
)

// Block is one compensator stage. Params always carries a value for every
// parameter the descriptor declares.
type Block struct {
	Type    string
	Params  map[string]float64
	Enabled bool
}

func (b *Block) clone() Block {
	params := make(map[string]float64, len(b.Params))
	for k, v := range b.Params {
		params[k] = v
	}
	return Block{Type: b.Type, Params: params, Enabled: b.Enabled}
}

// Model is an ordered, mutable list of block instances. Order matters for
// display and editing only; the composed response is a pointwise product and
// therefore order-independent.
type Model struct {
	reg    *blocks.Registry
	Blocks []Block
}

func New(reg *blocks.Registry) *Model {
	return &Model{reg: reg}
}

// Registry returns the registry this model resolves block types against.
func (m *Model) Registry() *blocks.Registry { return m.reg }

// AddBlock appends a new instance of the named type with default parameters.
func (m *Model) AddBlock(typeName string) error {
	d, ok := m.reg.Lookup(typeName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlockType, typeName)
	}
	m.Blocks = append(m.Blocks, Block{Type: typeName, Params: d.Defaults(), Enabled: true})
	return nil
}

// RemoveBlock removes the block at index. Out-of-range indices are a no-op.
func (m *Model) RemoveBlock(index int) {
	if index < 0 || index >= len(m.Blocks) {
		return
	}
	m.Blocks = append(m.Blocks[:index], m.Blocks[index+1:]...)
}

// MoveBlock moves a block from oldIndex to newIndex. An invalid oldIndex is
// a no-op; newIndex is clamped into the valid range.
func (m *Model) MoveBlock(oldIndex, newIndex int) {
	if oldIndex < 0 || oldIndex >= len(m.Blocks) {
		return
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(m.Blocks)-1 {
		newIndex = len(m.Blocks) - 1
	}
	if oldIndex == newIndex {
		return
	}
	blk := m.Blocks[oldIndex]
	m.Blocks = append(m.Blocks[:oldIndex], m.Blocks[oldIndex+1:]...)
	m.Blocks = append(m.Blocks[:newIndex], append([]Block{blk}, m.Blocks[newIndex:]...)...)
}

// SetParam sets one parameter on the block at index, clamped to the
// descriptor's range. Unknown indices and parameter names are a no-op.
func (m *Model) SetParam(index int, name string, value float64) {
	if index < 0 || index >= len(m.Blocks) {
		return
	}
	d, ok := m.reg.Lookup(m.Blocks[index].Type)
	if !ok {
		return
	}
	meta, ok := d.Params[name]
	if !ok {
		return
	}
	m.Blocks[index].Params[name] = meta.Clamp(value)
}

// SetEnabled toggles the block at index in and out of the composition.
func (m *Model) SetEnabled(index int, enabled bool) {
	if index < 0 || index >= len(m.Blocks) {
		return
	}
	m.Blocks[index].Enabled = enabled
}

// Response composes the enabled blocks' responses over the angular frequency
// grid. The empty (or all-disabled) model is the multiplicative identity.
// Blocks whose type is not registered are skipped, not rejected: presets from
// a newer schema stay loadable.
func (m *Model) Response(omega []float64) []complex128 {
	total := make([]complex128, len(omega))
	for i := range total {
		total[i] = 1
	}
	for _, blk := range m.Blocks {
		if !blk.Enabled {
			continue
		}
		d, ok := m.reg.Lookup(blk.Type)
		if !ok {
			continue
		}
		h := d.Response(omega, blk.Params)
		for i := range total {
			total[i] *= h[i]
		}
	}
	return total
}

// Clone returns a deep copy sharing only the registry.
func (m *Model) Clone() *Model {
	c := New(m.reg)
	c.Blocks = make([]Block, len(m.Blocks))
	for i := range m.Blocks {
		c.Blocks[i] = m.Blocks[i].clone()
	}
	return c
}

// Summary renders a human-readable block:params listing, parameters in
// descriptor order, for the snapshot log.
func (m *Model) Summary() string {
	var sb strings.Builder
	for i, blk := range m.Blocks {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(blk.Type)
		sb.WriteString(":{")
		if d, ok := m.reg.Lookup(blk.Type); ok {
			for j, name := range d.ParamOrder {
				if j > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "%s=%.4g", name, blk.Params[name])
			}
		}
		sb.WriteString("}")
		if !blk.Enabled {
			sb.WriteString(" (off)")
		}
	}
	return sb.String()
}

// DefaultModel is the startup compensator: unity gain, two lead/lag stages
// and two second-order sections.
func DefaultModel(reg *blocks.Registry) *Model {
	m := New(reg)
	stages := []struct {
		typeName string
		params   map[string]float64
	}{
		{"gain", map[string]float64{"K": 1.0}},
		{"leadlag", map[string]float64{"T": 0.004, "a": 1.7}},
		{"leadlag", map[string]float64{"T": 0.005, "a": 1.4}},
		{"sos", map[string]float64{"fn": 20.0, "zeta": 0.55, "K": 1.0}},
		{"sos", map[string]float64{"fn": 30.0, "zeta": 0.3, "K": 1.0}},
	}
	for _, st := range stages {
		if err := m.AddBlock(st.typeName); err != nil {
			panic(err)
		}
		idx := len(m.Blocks) - 1
		for name, v := range st.params {
			m.SetParam(idx, name, v)
		}
	}
	return m
}
