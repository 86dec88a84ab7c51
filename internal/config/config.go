package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/models"
	"github.com/philipparndt/goweldx/internal/times"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and validating hierarchy definition files
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new definition loader. A nil logger disables diagnostics.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads and parses a YAML definition file
func (l *Loader) Load(configPath string) (*models.Definition, error) {
	// Read the definition file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	// Parse YAML
	var def models.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate the definition
	if err := l.Validate(&def, configPath); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	// Convert relative paths to absolute paths (relative to definition file)
	absConfigDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path of definition directory: %w", err)
	}
	for i := range def.Subsystems {
		sub := &def.Subsystems[i]
		if !filepath.IsAbs(sub.File) {
			sub.File = filepath.Join(absConfigDir, sub.File)
		}
	}

	return &def, nil
}

// Validate checks if the definition is valid
func (l *Loader) Validate(def *models.Definition, configPath string) error {
	if def.Root == "" {
		return fmt.Errorf("root system must be specified")
	}

	switch def.TimeUnit {
	case "", "s", "ms":
	default:
		return fmt.Errorf("time_unit must be s or ms, got %q", def.TimeUnit)
	}

	names := map[string]bool{def.Root: true}
	for i, sys := range def.Systems {
		if err := l.validateSystem(sys, i); err != nil {
			return err
		}
		if names[sys.Name] {
			return fmt.Errorf("system %s: name is already used", sys.Name)
		}
		names[sys.Name] = true
	}

	configDir := filepath.Dir(configPath)
	for i, sub := range def.Subsystems {
		if sub.File == "" {
			return fmt.Errorf("subsystem %d: file is required", i)
		}

		// Check if file exists (handle relative paths)
		filePath := sub.File
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(configDir, filePath)
		}
		if _, err := os.Stat(filePath); err != nil {
			return fmt.Errorf("subsystem %d: file not found: %s", i, sub.File)
		}
	}

	return nil
}

// validateSystem validates a single system definition
func (l *Loader) validateSystem(sys models.SystemDef, index int) error {
	if sys.Name == "" {
		return fmt.Errorf("system %d: name is required", index)
	}
	if sys.Parent == "" {
		return fmt.Errorf("system %s: parent is required", sys.Name)
	}
	if sys.Parent == sys.Name {
		return fmt.Errorf("system %s: cannot be its own parent", sys.Name)
	}

	if sys.Euler != nil && sys.Orientation != nil {
		return fmt.Errorf("system %s: use either euler or orientation, not both", sys.Name)
	}
	if sys.Orientation != nil {
		if len(sys.Orientation) != 3 {
			return fmt.Errorf("system %s: orientation must have 3 rows", sys.Name)
		}
		for _, row := range sys.Orientation {
			if len(row) != 3 {
				return fmt.Errorf("system %s: orientation rows must have 3 values", sys.Name)
			}
		}
	}
	if sys.Euler != nil {
		if sys.Euler.Sequence == "" {
			return fmt.Errorf("system %s: euler sequence is required", sys.Name)
		}
		if len(sys.Euler.Angles) == 0 {
			return fmt.Errorf("system %s: euler angles are required", sys.Name)
		}
		for _, angles := range sys.Euler.Angles {
			if len(angles) != len(sys.Euler.Sequence) {
				return fmt.Errorf("system %s: euler sequence %q needs %d angles, got %d",
					sys.Name, sys.Euler.Sequence, len(sys.Euler.Sequence), len(angles))
			}
		}
	}
	for _, c := range sys.Coordinates {
		if len(c) != 3 {
			return fmt.Errorf("system %s: coordinates must have 3 values", sys.Name)
		}
	}

	// Series longer than one entry vary over time
	steps := len(sys.Coordinates)
	if sys.Euler != nil && len(sys.Euler.Angles) > steps {
		steps = len(sys.Euler.Angles)
	}
	if steps > 1 && len(sys.Time) == 0 {
		return fmt.Errorf("system %s: time is required for %d coordinate or angle entries", sys.Name, steps)
	}

	return nil
}

// Build converts a validated definition into a manager. Systems may be listed
// in any order as long as every parent is defined somewhere.
func (l *Loader) Build(def *models.Definition) (*csm.Manager, error) {
	data := csm.HierarchyData{
		Name:           def.Name,
		RootSystemName: def.Root,
	}
	for _, sys := range def.Systems {
		transformation, err := l.transformation(def, sys)
		if err != nil {
			return nil, fmt.Errorf("system %s: %w", sys.Name, err)
		}
		data.CoordinateSystems = append(data.CoordinateSystems, csm.CoordinateTransformation{
			Name:            sys.Name,
			ReferenceSystem: sys.Parent,
			Transformation:  transformation,
		})
	}

	m, err := csm.Import(data, csm.WithLogger(l.logger))
	if err != nil {
		return nil, err
	}
	l.logger.Debug("definition built",
		zap.String("name", m.Name()),
		zap.Int("systems", m.NumberOfCoordinateSystems()))
	return m, nil
}

// LoadManager loads a definition file, builds its manager and merges all
// referenced subsystem files recursively
func (l *Loader) LoadManager(configPath string) (*csm.Manager, error) {
	return l.loadManager(configPath, map[string]bool{})
}

// BuildWithSubsystems builds a loaded definition and merges the subsystem
// files it references
func (l *Loader) BuildWithSubsystems(def *models.Definition) (*csm.Manager, error) {
	return l.buildWithSubsystems(def, map[string]bool{})
}

func (l *Loader) loadManager(configPath string, visiting map[string]bool) (*csm.Manager, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	if visiting[absPath] {
		return nil, fmt.Errorf("subsystem file %s includes itself", absPath)
	}
	visiting[absPath] = true
	defer delete(visiting, absPath)

	def, err := l.Load(absPath)
	if err != nil {
		return nil, err
	}
	m, err := l.buildWithSubsystems(def, visiting)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(absPath), err)
	}
	return m, nil
}

func (l *Loader) buildWithSubsystems(def *models.Definition, visiting map[string]bool) (*csm.Manager, error) {
	m, err := l.Build(def)
	if err != nil {
		return nil, err
	}

	for _, sub := range def.Subsystems {
		subsystem, err := l.loadManager(sub.File, visiting)
		if err != nil {
			return nil, fmt.Errorf("subsystem %s: %w", filepath.Base(sub.File), err)
		}
		if err := m.Merge(subsystem); err != nil {
			return nil, fmt.Errorf("subsystem %s: %w", filepath.Base(sub.File), err)
		}
	}
	return m, nil
}

// transformation builds the coordinate system of one definition entry
func (l *Loader) transformation(def *models.Definition, sys models.SystemDef) (*lcs.LocalCoordinateSystem, error) {
	orientations := []geometry.Mat3{geometry.Identity()}
	switch {
	case sys.Orientation != nil:
		var values []float64
		for _, row := range sys.Orientation {
			values = append(values, row...)
		}
		m, err := geometry.Mat3FromSlice(values)
		if err != nil {
			return nil, err
		}
		orientations = []geometry.Mat3{m}
	case sys.Euler != nil:
		orientations = orientations[:0]
		for _, angles := range sys.Euler.Angles {
			m, err := geometry.FromEuler(sys.Euler.Sequence, angles, sys.Euler.Degrees)
			if err != nil {
				return nil, err
			}
			orientations = append(orientations, m)
		}
	}

	coordinates := []r3.Vec{{}}
	if len(sys.Coordinates) > 0 {
		coordinates = coordinates[:0]
		for _, c := range sys.Coordinates {
			coordinates = append(coordinates, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
		}
	}

	var t times.Time
	if len(sys.Time) > 0 {
		scale := 1.0
		if def.TimeUnit == "ms" {
			scale = 1e-3
		}
		seconds := make([]float64, len(sys.Time))
		for i, v := range sys.Time {
			seconds[i] = v * scale
		}
		var err error
		if t, err = times.FromSeconds(seconds, def.ReferenceTime); err != nil {
			return nil, err
		}
	}

	return lcs.New(orientations, coordinates, t)
}
