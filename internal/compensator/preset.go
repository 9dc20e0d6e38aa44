package compensator

import (
	"encoding/json"
	"fmt"

	"github.com/quintel/comptune/internal/blocks"
)

// PresetVersion is the current preset document version.
const PresetVersion = 1

// Preset is the serialized form of a Model.
type Preset struct {
	Version int           `json:"version"`
	Blocks  []BlockPreset `json:"blocks"`
}

// BlockPreset serializes one block. Unknown extra keys in the source
// document are ignored on decode.
type BlockPreset struct {
	Type    string             `json:"type"`
	Params  map[string]float64 `json:"params"`
	Enabled bool               `json:"enabled"`
}

// Preset captures the model as a version-tagged document.
func (m *Model) Preset() Preset {
	p := Preset{Version: PresetVersion, Blocks: make([]BlockPreset, len(m.Blocks))}
	for i, blk := range m.Blocks {
		params := make(map[string]float64, len(blk.Params))
		for k, v := range blk.Params {
			params[k] = v
		}
		p.Blocks[i] = BlockPreset{Type: blk.Type, Params: params, Enabled: blk.Enabled}
	}
	return p
}

// FromPreset rebuilds a model from a preset. Parameters are seeded from the
// type's defaults and overridden only by keys the descriptor declares;
// unknown extra parameter keys are dropped. An unregistered block type fails
// the whole load with ErrUnknownBlockType.
func FromPreset(reg *blocks.Registry, p Preset) (*Model, error) {
	m := New(reg)
	for _, bp := range p.Blocks {
		d, ok := reg.Lookup(bp.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, bp.Type)
		}
		params := d.Defaults()
		for name, v := range bp.Params {
			if _, known := d.Params[name]; known {
				params[name] = v
			}
		}
		m.Blocks = append(m.Blocks, Block{Type: bp.Type, Params: params, Enabled: bp.Enabled})
	}
	return m, nil
}

// DecodePreset parses a preset document. The top level must be a JSON object
// with a "blocks" key; anything else fails with ErrInvalidPreset.
func DecodePreset(data []byte) (Preset, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Preset{}, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if _, ok := raw["blocks"]; !ok {
		return Preset{}, fmt.Errorf("%w: missing \"blocks\" key", ErrInvalidPreset)
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	return p, nil
}

// EncodePreset renders a preset as indented JSON.
func EncodePreset(p Preset) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
