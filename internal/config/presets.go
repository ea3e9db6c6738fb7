package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/lifesweeper/internal/mines"
)

//go:embed presets.yaml
var defaultPresets []byte

var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Name             string `json:"name" yaml:"name"`
	mines.GameParams `yaml:",inline"`
}

// Presets keeps the order in which the presets were declared.
type Presets []Preset

func (ps Presets) Lookup(name string) (Preset, error) {
	for _, p := range ps {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func (ps Presets) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func ParsePresets(data []byte) (Presets, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ps Presets
	if err := dec.Decode(&ps); err != nil {
		return nil, fmt.Errorf("unable to decode presets: %w", err)
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("no presets defined")
	}

	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if p.Name == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return ps, nil
}

// LoadPresets reads the file named by PRESETS_FILE, or the built-in presets
// when it is not set.
func LoadPresets() (Presets, error) {
	path, ok := os.LookupEnv("PRESETS_FILE")
	if !ok || path == "" {
		return ParsePresets(defaultPresets)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read presets file: %w", err)
	}
	return ParsePresets(data)
}

func DefaultPresets() Presets {
	ps, err := ParsePresets(defaultPresets)
	if err != nil {
		panic(err)
	}
	return ps
}
