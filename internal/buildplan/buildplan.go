package buildplan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goweldx/internal/codec"
	"github.com/philipparndt/goweldx/internal/config"
	"github.com/philipparndt/goweldx/internal/csm"
	"github.com/philipparndt/goweldx/internal/inspect"
	"github.com/philipparndt/goweldx/internal/models"
	"github.com/philipparndt/goweldx/internal/preconditions"
	"github.com/philipparndt/goweldx/internal/ui"
	"go.uber.org/zap"
)

// OutputSuffix replaces the extension of a definition file when no output
// path is given
const OutputSuffix = ".csm.yaml"

// BuildStep represents a single step in the build plan
type BuildStep interface {
	Name() string
	Execute(ctx *Context) error
}

// Context holds shared data between build steps
type Context struct {
	Loader     *config.Loader
	Registry   *codec.Registry
	Definition *models.Definition
	Manager    *csm.Manager
}

// BuildPlan contains all steps needed to turn a definition into a hierarchy file
type BuildPlan struct {
	Steps      []BuildStep
	InputFile  string
	OutputFile string
	Context    *Context
}

// Planner creates build plans based on input files
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a new build planner. A nil logger disables diagnostics.
func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{logger: logger}
}

// CreatePlan creates an execution plan for one definition file
func (p *Planner) CreatePlan(input, outputFile string) (*BuildPlan, error) {
	if !isDefinition(input) {
		return nil, fmt.Errorf("unknown file type: %s (expected .yaml or .yml)", input)
	}
	if outputFile == "" {
		outputFile = DefaultOutput(input)
	}
	if filepath.Clean(outputFile) == filepath.Clean(input) {
		return nil, fmt.Errorf("output file must differ from the definition %s", input)
	}

	plan := &BuildPlan{
		InputFile:  input,
		OutputFile: outputFile,
		Context: &Context{
			Loader:   config.NewLoader(p.logger),
			Registry: codec.DefaultRegistry(),
		},
	}

	// Step 1: Validate input and output paths
	plan.Steps = append(plan.Steps, &ValidatePathsStep{Input: input, Output: outputFile})

	// Step 2: Load the definition
	plan.Steps = append(plan.Steps, &LoadDefinitionStep{Path: input})

	// Step 3: Build the manager and merge subsystems
	plan.Steps = append(plan.Steps, &BuildManagerStep{})

	// Step 4: Encode and write
	plan.Steps = append(plan.Steps, &WriteFileStep{Path: outputFile})

	return plan, nil
}

// Execute runs all steps in the plan
func (p *BuildPlan) Execute() error {
	if ui.IsVerbose() {
		ui.PrintTitle("Build Plan Execution")
		ui.PrintInfo(fmt.Sprintf("Total steps: %d", len(p.Steps)))
		ui.PrintSeparator()
	}

	for i, step := range p.Steps {
		if ui.IsVerbose() {
			ui.PrintHeader(fmt.Sprintf("Step %d/%d: %s", i+1, len(p.Steps), step.Name()))
		}
		if err := step.Execute(p.Context); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(step.Name()), err)
		}
	}

	ui.PrintSeparator()
	ui.PrintSuccess("Build completed successfully!")
	if m := p.Context.Manager; m != nil {
		ui.PrintBox(Summary(m))
	}

	// Convert to relative path if possible
	relPath, err := filepath.Rel(".", p.OutputFile)
	if err != nil {
		relPath = p.OutputFile
	}
	ui.PrintKeyValue("Output file", relPath)
	return nil
}

// Summary describes a built manager in a few lines
func Summary(m *csm.Manager) string {
	n := m.NumberOfCoordinateSystems()
	lines := []string{
		m.Name(),
		fmt.Sprintf("Root: %s", m.RootSystemName()),
		fmt.Sprintf("%d coordinate system%s", n, pluralize(n)),
	}
	if names := m.SubsystemNames(); len(names) > 0 {
		lines = append(lines, fmt.Sprintf("Subsystems: %s", strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}

// DefaultOutput derives the output file of a definition: cell.yaml -> cell.csm.yaml
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + OutputSuffix
}

func isDefinition(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// pluralize returns "s" if count != 1, empty string otherwise
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

// ValidatePathsStep checks that the definition is readable and the output writable
type ValidatePathsStep struct {
	Input  string
	Output string
}

func (s *ValidatePathsStep) Name() string {
	return "Validate paths"
}

func (s *ValidatePathsStep) Execute(_ *Context) error {
	if err := preconditions.ValidateFiles([]string{s.Input}, preconditions.DefinitionExtensions...); err != nil {
		return err
	}
	if err := preconditions.ValidateOutputPath(s.Output); err != nil {
		return err
	}
	if ui.IsVerbose() {
		ui.PrintSuccess("✓ Input and output paths are valid")
	}
	return nil
}

// LoadDefinitionStep loads and validates the definition file
type LoadDefinitionStep struct {
	Path string
}

func (s *LoadDefinitionStep) Name() string {
	return "Load definition"
}

func (s *LoadDefinitionStep) Execute(ctx *Context) error {
	def, err := ctx.Loader.Load(s.Path)
	if err != nil {
		return fmt.Errorf("failed to load definition: %w", err)
	}
	ctx.Definition = def
	ui.PrintSuccess(fmt.Sprintf("Loaded definition with %d system%s", len(def.Systems), pluralize(len(def.Systems))))

	// Display definition summary only in verbose mode
	if ui.IsVerbose() {
		for _, sys := range def.Systems {
			ui.PrintItem(fmt.Sprintf("%s in %s", sys.Name, sys.Parent))
		}
		for _, sub := range def.Subsystems {
			ui.PrintItem(fmt.Sprintf("subsystem: %s", filepath.Base(sub.File)))
		}
	}
	return nil
}

// BuildManagerStep builds the coordinate system manager and merges all subsystems
type BuildManagerStep struct{}

func (s *BuildManagerStep) Name() string {
	return "Build coordinate system manager"
}

func (s *BuildManagerStep) Execute(ctx *Context) error {
	if ctx.Definition == nil {
		return fmt.Errorf("no definition loaded")
	}
	m, err := ctx.Loader.BuildWithSubsystems(ctx.Definition)
	if err != nil {
		return err
	}
	ctx.Manager = m

	n := m.NumberOfCoordinateSystems()
	ui.PrintSuccess(fmt.Sprintf("Built %s with %d coordinate system%s", m.Name(), n, pluralize(n)))
	if names := m.SubsystemNames(); len(names) > 0 && ui.IsVerbose() {
		ui.PrintItem(fmt.Sprintf("Subsystems: %s", strings.Join(names, ", ")))
	}
	return nil
}

// WriteFileStep encodes the manager into a tagged hierarchy file
type WriteFileStep struct {
	Path string
}

func (s *WriteFileStep) Name() string {
	return "Write hierarchy file"
}

func (s *WriteFileStep) Execute(ctx *Context) error {
	if ctx.Manager == nil {
		return fmt.Errorf("no manager built")
	}
	f := codec.File{Tree: map[string]any{
		inspect.TreeKey: ctx.Manager,
	}}
	if err := ctx.Registry.WriteFile(s.Path, f); err != nil {
		return err
	}
	ui.PrintSuccess("Hierarchy file written")

	// Show the hierarchy using the same printer as inspect
	ui.PrintHeader("Coordinate Systems")
	inspect.NewHierarchyPrinter().PrintTree(ctx.Manager)
	return nil
}
