// Package routefile reads route definitions written in YAML:
//
//	name: Perimeter
//	checkpoints:
//	  - name: Main gate
//	    code: GATE-01
//	  - name: Loading dock
//	    code: DOCK-01
//
// Checkpoints are ordered by position unless every entry sets order explicitly.
package routefile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Checkpoint is one checkpoint of a route definition.
type Checkpoint struct {
	Name  string `yaml:"name"`
	Code  string `yaml:"code"`
	Order int    `yaml:"order,omitempty"`
}

// Definition is a route read from a file.
type Definition struct {
	Name        string       `yaml:"name"`
	Checkpoints []Checkpoint `yaml:"checkpoints"`
}

// Load reads the definition at path.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition, fills in positional orders and checks that names and
// codes are present. Unknown keys are rejected.
func Parse(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty route file")
		}
		return nil, fmt.Errorf("failed to decode route file: %w", err)
	}

	if def.Name == "" {
		return nil, errors.New("route name is required")
	}
	if len(def.Checkpoints) == 0 {
		return nil, errors.New("route needs at least one checkpoint")
	}

	explicit := 0
	for i, cp := range def.Checkpoints {
		if cp.Name == "" || cp.Code == "" {
			return nil, fmt.Errorf("checkpoint %d needs a name and a code", i+1)
		}
		if cp.Order != 0 {
			explicit++
		}
	}

	switch explicit {
	case 0:
		for i := range def.Checkpoints {
			def.Checkpoints[i].Order = i + 1
		}
	case len(def.Checkpoints):
	default:
		return nil, errors.New("set order on every checkpoint or on none")
	}

	return &def, nil
}
