// Package directory provides the manufacturer directory consulted by the
// registry and the verification engine. The directory is populated once at
// startup and is read-only afterwards.
package directory

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
	"gopkg.in/yaml.v3"
)

//go:embed manufacturers.yaml
var defaultTable []byte

// Directory resolves manufacturer keys to their metadata.
type Directory interface {
	Resolve(key string) (model.Manufacturer, bool)
}

// Static is an immutable in-memory Directory. It is safe for concurrent use
// because nothing mutates it after construction.
type Static struct {
	byKey map[string]model.Manufacturer
	order []string
}

// NewStatic builds a Static directory from the given entries.
// Entries with an empty key or a repeated key are rejected.
func NewStatic(entries ...model.Manufacturer) (*Static, error) {
	d := &Static{byKey: make(map[string]model.Manufacturer, len(entries))}
	for _, m := range entries {
		key := strings.TrimSpace(m.Key)
		if key == "" {
			return nil, fmt.Errorf("manufacturer %q has no key", m.Name)
		}
		if _, dup := d.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate manufacturer key %q", key)
		}
		m.Key = key
		d.byKey[key] = m
		d.order = append(d.order, key)
	}
	return d, nil
}

// Resolve implements Directory.
func (d *Static) Resolve(key string) (model.Manufacturer, bool) {
	m, ok := d.byKey[key]
	return m, ok
}

// List returns all manufacturers in the order they were declared.
func (d *Static) List() []model.Manufacturer {
	out := make([]model.Manufacturer, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.byKey[k])
	}
	return out
}

// Len returns the number of manufacturers.
func (d *Static) Len() int { return len(d.order) }

// yamlTable is the on-disk layout of a directory file.
type yamlTable struct {
	Manufacturers []model.Manufacturer `yaml:"manufacturers"`
}

// Parse decodes a YAML directory table.
func Parse(data []byte) (*Static, error) {
	var t yamlTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse manufacturer table: %w", err)
	}
	if len(t.Manufacturers) == 0 {
		return nil, fmt.Errorf("manufacturer table is empty")
	}
	return NewStatic(t.Manufacturers...)
}

// LoadYAML reads and parses a directory table from path.
func LoadYAML(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manufacturer table: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in manufacturer table.
func Default() *Static {
	d, err := Parse(defaultTable)
	if err != nil {
		panic("directory: embedded manufacturer table is invalid: " + err.Error())
	}
	return d
}
