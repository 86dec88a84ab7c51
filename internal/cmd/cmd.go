package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/philipparndt/goweldx/internal/buildplan"
	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/inspect"
	"github.com/philipparndt/goweldx/internal/ui"
	"github.com/philipparndt/goweldx/version"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

type CLI struct {
	Verbose bool `help:"Show detailed output and debug diagnostics" short:"v"`

	Build      *BuildCmd      `cmd:"" help:"Build a hierarchy file from a YAML definition"`
	Inspect    *InspectCmd    `cmd:"" help:"Inspect a hierarchy file and show its coordinate systems"`
	Transform  *TransformCmd  `cmd:"" help:"Transform points between two coordinate systems"`
	Version    *VersionCmd    `cmd:"" help:"Show version information"`
	Completion *CompletionCmd `cmd:"" help:"Generate shell completion script"`
}

type BuildCmd struct {
	Output     string `help:"Output file path (default: <definition>.csm.yaml)" short:"o"`
	Definition string `arg:"" help:"YAML definition of the coordinate systems"`
}

// Help adds additional help text with examples
func (c *BuildCmd) Help() string {
	return renderBuildHelp()
}

func (c *BuildCmd) Run(logger *zap.Logger) error {
	// Create build plan
	planner := buildplan.NewPlanner(logger)
	plan, err := planner.CreatePlan(c.Definition, c.Output)
	if err != nil {
		return fmt.Errorf("failed to create build plan: %w", err)
	}

	// Execute the plan
	return plan.Execute()
}

type InspectCmd struct {
	File string `arg:"" help:"Hierarchy file to inspect"`
}

func (c *InspectCmd) Run() error {
	inspector := inspect.NewInspector()
	return inspector.Inspect(c.File)
}

type TransformCmd struct {
	From   string   `help:"System the points are given in" required:""`
	To     string   `help:"System to express the points in" required:""`
	Key    string   `help:"Tree entry of the manager (default: the only manager in the file)"`
	File   string   `arg:"" help:"Hierarchy file"`
	Points []string `arg:"" help:"Points as x,y,z. Time-dependent transformations need one point per time step." sep:"none"`
}

// Help adds additional help text with examples
func (c *TransformCmd) Help() string {
	return renderTransformHelp()
}

func (c *TransformCmd) Run(logger *zap.Logger) error {
	points, err := parsePoints(c.Points)
	if err != nil {
		return err
	}

	m, err := inspect.NewInspector().LoadManager(c.File, c.Key)
	if err != nil {
		return err
	}
	out, err := m.TransformData(points, c.From, c.To)
	if err != nil {
		return err
	}
	logger.Debug("points transformed",
		zap.String("from", c.From),
		zap.String("to", c.To),
		zap.Int("points", len(points)))

	ui.PrintHeader(fmt.Sprintf("%s → %s", c.From, c.To))
	for i := range points {
		ui.PrintStep(fmt.Sprintf("%s → %s", geometry.FormatVector(points[i]), geometry.FormatVector(out[i])))
	}
	return nil
}

// parsePoints parses each argument as one vector
func parsePoints(args []string) ([]r3.Vec, error) {
	points := make([]r3.Vec, 0, len(args))
	for _, arg := range args {
		p, err := geometry.ParseVector(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", arg, err)
		}
		points = append(points, p)
	}
	return points, nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := version.Get()
	fmt.Println(info.String())
	return nil
}

// newLogger builds the diagnostics logger: development output when verbose,
// silent otherwise
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// Parse parses command line arguments and executes the appropriate command
func Parse() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("goweldx"),
		kong.Description("Coordinate system hierarchies for welding cells"),
		kong.UsageOnError(),
	)

	ui.SetVerbose(cli.Verbose)
	logger, err := newLogger(ui.IsVerbose())
	if err != nil {
		ui.PrintError("Failed to create logger: " + err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	if err := ctx.Run(logger); err != nil {
		ui.PrintError(err.Error())
		logger.Sync()
		os.Exit(1)
	}
}
