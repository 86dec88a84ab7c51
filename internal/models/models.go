package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition is a user-written coordinate system hierarchy
type Definition struct {
	Name          string            `yaml:"name"`
	Root          string            `yaml:"root"`
	TimeUnit      string            `yaml:"time_unit,omitempty"`
	ReferenceTime *time.Time        `yaml:"reference_time,omitempty"`
	Systems       []SystemDef       `yaml:"systems"`
	Subsystems    []SubsystemImport `yaml:"subsystems,omitempty"`
}

// SystemDef is one coordinate system defined in its parent
type SystemDef struct {
	Name        string    `yaml:"name"`
	Parent      string    `yaml:"parent"`
	Coordinates Series    `yaml:"coordinates,omitempty"`
	Euler       *EulerDef `yaml:"euler,omitempty"`
	// Orientation is a single 3x3 matrix given row by row
	Orientation [][]float64 `yaml:"orientation,omitempty"`
	Time        []float64   `yaml:"time,omitempty"`
}

// EulerDef describes an orientation as a sequence of axis rotations.
// Lowercase axes are extrinsic, uppercase axes intrinsic.
type EulerDef struct {
	Sequence string `yaml:"sequence"`
	Angles   Series `yaml:"angles"`
	Degrees  bool   `yaml:"degrees,omitempty"`
}

// SubsystemImport references another definition file that is merged into
// this one
type SubsystemImport struct {
	File string `yaml:"file"`
}

// Series is a list of value tuples, one per time step. A single flat list
// such as [1, 2, 3] is read as a series with one entry.
type Series [][]float64

// UnmarshalYAML accepts a flat or a nested sequence
func (s *Series) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list", value.Line)
	}
	if len(value.Content) > 0 && value.Content[0].Kind == yaml.SequenceNode {
		var nested [][]float64
		if err := value.Decode(&nested); err != nil {
			return err
		}
		*s = nested
		return nil
	}
	var flat []float64
	if err := value.Decode(&flat); err != nil {
		return err
	}
	*s = Series{flat}
	return nil
}
