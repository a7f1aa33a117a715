package siteconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Preset is a (name, options) pair. It encodes as a two-element array,
// or as the bare name when there are no options.
type Preset struct {
	Name    string
	Options *PresetOptions
}

// Classic returns the classic preset options, or nil if the first preset is
// something else.
func (c *SiteConfig) Classic() *PresetOptions {
	if len(c.Presets) == 0 || c.Presets[0].Name != PresetClassic {
		return nil
	}
	return c.Presets[0].Options
}

func (p Preset) MarshalJSON() ([]byte, error) {
	if p.Options == nil {
		return json.Marshal(p.Name)
	}
	return json.Marshal([]any{p.Name, p.Options})
}

func (p *Preset) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*p = Preset{}
		return json.Unmarshal(data, &p.Name)
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("preset must be a name or a [name, options] pair: %w", err)
	}
	if len(parts) == 0 || len(parts) > 2 {
		return fmt.Errorf("preset must be a name or a [name, options] pair, got %d elements", len(parts))
	}

	var out Preset
	if err := json.Unmarshal(parts[0], &out.Name); err != nil {
		return fmt.Errorf("preset name: %w", err)
	}
	if len(parts) == 2 && !bytes.Equal(bytes.TrimSpace(parts[1]), []byte("null")) {
		out.Options = &PresetOptions{}
		dec := json.NewDecoder(bytes.NewReader(parts[1]))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out.Options); err != nil {
			return fmt.Errorf("preset %q options: %w", out.Name, err)
		}
	}
	*p = out
	return nil
}

func (p Preset) MarshalYAML() (any, error) {
	if p.Options == nil {
		return p.Name, nil
	}
	return []any{p.Name, p.Options}, nil
}

func (p *Preset) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = Preset{}
		return node.Decode(&p.Name)
	case yaml.SequenceNode:
		if len(node.Content) == 0 || len(node.Content) > 2 {
			return fmt.Errorf("line %d: preset must be a name or a [name, options] pair, got %d elements", node.Line, len(node.Content))
		}
		var out Preset
		if err := node.Content[0].Decode(&out.Name); err != nil {
			return fmt.Errorf("line %d: preset name: %w", node.Line, err)
		}
		if len(node.Content) == 2 && node.Content[1].Tag != "!!null" {
			out.Options = &PresetOptions{}
			if err := decodeKnownFields(node.Content[1], out.Options); err != nil {
				return fmt.Errorf("line %d: preset %q options: %w", node.Line, out.Name, err)
			}
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("line %d: preset must be a name or a [name, options] pair", node.Line)
	}
}

// decodeKnownFields decodes node rejecting unknown keys. Node.Decode does not
// inherit KnownFields from the outer decoder.
func decodeKnownFields(node *yaml.Node, out any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(out)
}
