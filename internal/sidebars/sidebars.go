// Package sidebars reads the sidebar definition file referenced by the docs
// preset and lists the docs it points at. It does not generate sidebars.
package sidebars

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
)

// ItemType is the kind of a sidebar entry.
type ItemType string

const (
	ItemDoc           ItemType = "doc"
	ItemCategory      ItemType = "category"
	ItemLink          ItemType = "link"
	ItemAutogenerated ItemType = "autogenerated"
)

// Item is one sidebar entry. A bare string in the file is a doc item.
type Item struct {
	Type    ItemType `yaml:"type" json:"type"`
	ID      string   `yaml:"id,omitempty" json:"id,omitempty"`
	Label   string   `yaml:"label,omitempty" json:"label,omitempty"`
	Href    string   `yaml:"href,omitempty" json:"href,omitempty"`
	DirName string   `yaml:"dirName,omitempty" json:"dirName,omitempty"`
	Items   []Item   `yaml:"items,omitempty" json:"items,omitempty"`
}

// itemFields breaks the recursion of the custom decoders.
type itemFields Item

// UnmarshalYAML accepts a doc id, an item object, or the shorthand category
// object whose single key is the label and whose value lists the items.
func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*it = Item{Type: ItemDoc}
		return node.Decode(&it.ID)
	}
	if node.Kind == yaml.MappingNode && !hasKey(node, "type") {
		items, err := itemsYAML(node)
		if err != nil {
			return err
		}
		return it.fromShorthand(items)
	}
	var f itemFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*it = Item(f)
	return it.check()
}

func (it *Item) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*it = Item{Type: ItemDoc}
		return json.Unmarshal(data, &it.ID)
	}
	var probe struct {
		Type *ItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Type == nil {
		items, err := itemsJSON(data)
		if err != nil {
			return err
		}
		return it.fromShorthand(items)
	}
	var f itemFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*it = Item(f)
	return it.check()
}

func (it *Item) fromShorthand(items []Item) error {
	if len(items) != 1 {
		return fmt.Errorf("shorthand category entry must have exactly one label, got %d; split it into separate entries", len(items))
	}
	*it = items[0]
	return nil
}

// UnmarshalYAML accepts each sidebar as an item list or as a shorthand object
// mapping category labels to items.
func (s *Sidebars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: sidebar file must map sidebar ids to items", node.Line)
	}
	out := make(Sidebars, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		items, err := itemsYAML(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("sidebar %q: %w", node.Content[i].Value, err)
		}
		out[node.Content[i].Value] = items
	}
	*s = out
	return nil
}

// UnmarshalJSON is the JSON form of UnmarshalYAML.
func (s *Sidebars) UnmarshalJSON(data []byte) error {
	keys, values, err := objectEntries(data)
	if err != nil {
		return fmt.Errorf("sidebar file must map sidebar ids to items: %w", err)
	}
	out := make(Sidebars, len(keys))
	for i, id := range keys {
		items, err := itemsJSON(values[i])
		if err != nil {
			return fmt.Errorf("sidebar %q: %w", id, err)
		}
		out[id] = items
	}
	*s = out
	return nil
}

func itemsYAML(node *yaml.Node) ([]Item, error) {
	if node.Kind != yaml.MappingNode {
		var items []Item
		err := node.Decode(&items)
		return items, err
	}
	items := make([]Item, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		sub, err := itemsYAML(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Type: ItemCategory, Label: node.Content[i].Value, Items: sub})
	}
	return items, nil
}

func itemsJSON(data []byte) ([]Item, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		var items []Item
		err := json.Unmarshal(data, &items)
		return items, err
	}
	labels, values, err := objectEntries(data)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(labels))
	for i, label := range labels {
		sub, err := itemsJSON(values[i])
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Type: ItemCategory, Label: label, Items: sub})
	}
	return items, nil
}

// objectEntries decodes a JSON object keeping its key order, which is the
// order the entries appear in the sidebar.
func objectEntries(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}
	var (
		keys   []string
		values []json.RawMessage
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func (it *Item) check() error {
	switch it.Type {
	case ItemDoc:
		if it.ID == "" {
			return errors.New("doc item needs an id")
		}
	case ItemCategory:
		if it.Label == "" {
			return errors.New("category item needs a label")
		}
	case ItemLink:
		if it.Href == "" {
			return errors.New("link item needs an href")
		}
	case ItemAutogenerated:
		if it.DirName == "" {
			return errors.New("autogenerated item needs a dirName")
		}
	default:
		return fmt.Errorf("unknown sidebar item type %q", it.Type)
	}
	return nil
}

// Sidebars maps a sidebar id to its items.
type Sidebars map[string][]Item

// DocRef is a doc reference found in a sidebar. Path is the chain of
// category labels leading to it.
type DocRef struct {
	Sidebar string
	DocID   string
	Path    []string
}

// AutogeneratedDir is a docs directory whose contents a sidebar pulls in.
type AutogeneratedDir struct {
	Sidebar string
	DirName string
}

// IDs returns the sidebar ids in sorted order.
func (s Sidebars) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a sidebar with the id exists.
func (s Sidebars) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// DocRefs lists every doc referenced by id, sidebar by sidebar in id order.
func (s Sidebars) DocRefs() []DocRef {
	var refs []DocRef
	for _, id := range s.IDs() {
		walk(s[id], nil, func(it Item, path []string) {
			if it.Type == ItemDoc {
				refs = append(refs, DocRef{Sidebar: id, DocID: it.ID, Path: path})
			}
		})
	}
	return refs
}

// AutogeneratedDirs lists directories pulled in by autogenerated items.
func (s Sidebars) AutogeneratedDirs() []AutogeneratedDir {
	var dirs []AutogeneratedDir
	for _, id := range s.IDs() {
		walk(s[id], nil, func(it Item, _ []string) {
			if it.Type == ItemAutogenerated {
				dirs = append(dirs, AutogeneratedDir{Sidebar: id, DirName: it.DirName})
			}
		})
	}
	return dirs
}

func walk(items []Item, path []string, fn func(Item, []string)) {
	for _, it := range items {
		fn(it, path)
		if it.Type == ItemCategory {
			walk(it.Items, append(append([]string(nil), path...), it.Label), fn)
		}
	}
}

// ErrUnsupportedFormat is returned for sidebar files that can only be
// evaluated by the external tool, such as JavaScript modules.
var ErrUnsupportedFormat = errors.New("sidebar file format cannot be read")

// Load reads a JSON or YAML sidebar file.
func Load(p string) (Sidebars, error) {
	ext := strings.ToLower(filepath.Ext(p))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		slog.Debug("Sidebar file is not data; only its existence is checked", logfields.Path(p))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- path comes from the site configuration.
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.NotFoundError("sidebar file not found").WithContext("path", p).Build()
		}
		return nil, derrors.FileSystemError("failed to read sidebar file").WithCause(err).
			WithContext("path", p).
			Build()
	}

	var sb Sidebars
	if ext == ".json" {
		err = json.Unmarshal(data, &sb)
	} else {
		err = yaml.Unmarshal(data, &sb)
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to decode sidebar file").
			Fatal().
			WithContext("path", p).
			Build()
	}
	if sb == nil {
		sb = Sidebars{}
	}
	return sb, nil
}
