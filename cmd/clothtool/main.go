// clothtool is a CLI utility for inspecting meshes and running the
// simulation headless.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"github.com/Faultbox/clothsim/internal/assets"
	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/engine/cloth"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/pkg/formats"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	err := run(os.Args[1], os.Args[2:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, out)
	case "simulate", "sim":
		return cmdSimulate(args, out)
	case "export":
		return cmdExport(args, out)
	case "config":
		return cmdConfig(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %s", errUsage, command)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `clothtool - cloth mesh and simulation utility

Usage:
  clothtool <command> [options]

Commands:
  info <mesh>                      Show topology, pins and masses
  simulate <mesh> [steps]          Run headless and report constraint error
  export <mesh> <out.obj> [steps]  Simulate, then write the result as OBJ
  config <out.yaml>                Write the default configuration

A mesh is an OBJ path or grid:RxC.

Examples:
  clothtool info grid:20x20
  clothtool simulate -iterations 10 assets/cloth.obj 600
  clothtool export -v grid:16x16 hanging.obj 300`)
}

// commonFlags are shared by the mesh commands.
type commonFlags struct {
	configPath string
	iterations int
	spacing    float64
	pin        string
	verbose    bool
}

func newFlagSet(name string, cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cf.configPath, "config", "", "Config file to start from")
	fs.IntVar(&cf.iterations, "iterations", -1, "Solver iterations per step")
	fs.Float64Var(&cf.spacing, "spacing", 0, "Grid spacing for grid:RxC meshes")
	fs.StringVar(&cf.pin, "pin", "", "Pin mode: top_row, none or indices")
	fs.BoolVar(&cf.verbose, "v", false, "Log solver activity to stderr")
	return fs
}

// buildCloth applies flag overrides to the config and builds the cloth.
func buildCloth(cf *commonFlags, source string) (*cloth.Cloth, *assets.LoadedMesh, error) {
	cfg := config.Default()
	if cf.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(cf.configPath); err != nil {
			return nil, nil, err
		}
	}
	cfg.Mesh.Source = source
	if cf.iterations >= 0 {
		cfg.Simulation.Iterations = cf.iterations
	}
	if cf.spacing > 0 {
		cfg.Mesh.GridSpacing = float32(cf.spacing)
	}
	if cf.pin != "" {
		cfg.Mesh.Pin = cf.pin
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cf.verbose {
		lc := cfg.Logging.LoggerConfig()
		lc.Level = "debug"
		if err := logger.Init(lc); err != nil {
			return nil, nil, err
		}
	}

	return assets.NewManager(logger.Named("assets")).BuildCloth(cfg, logger.Named("cloth"))
}

func cmdInfo(args []string, out io.Writer) error {
	var cf commonFlags
	fs := newFlagSet("info", &cf)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: clothtool info <mesh>", errUsage)
	}

	c, lm, err := buildCloth(&cf, fs.Arg(0))
	if err != nil {
		return err
	}

	topo := c.Topology()
	degrees := lo.Times(c.VertexCount(), topo.Degree)
	free := lo.Filter(c.Masses(), func(_ float32, i int) bool { return !c.Pinned()[i] })
	restLo, restHi := c.Constraints().RestLengthRange()
	lo3, hi3 := cloth.Bounds(c.Positions())

	fmt.Fprintf(out, "Mesh:        %s\n", lm.Name)
	fmt.Fprintf(out, "Vertices:    %d\n", c.VertexCount())
	fmt.Fprintf(out, "Triangles:   %d\n", len(c.Triangles()))
	fmt.Fprintf(out, "Edges:       %d\n", len(topo.Edges))
	fmt.Fprintf(out, "Constraints: %d\n", c.Constraints().Len())
	fmt.Fprintf(out, "Pinned:      %d\n", cloth.PinnedCount(c.Pinned()))
	fmt.Fprintf(out, "Degree:      %d..%d\n", lo.Min(degrees), lo.Max(degrees))
	fmt.Fprintf(out, "Rest length: %.4g..%.4g\n", restLo, restHi)
	if len(free) > 0 {
		fmt.Fprintf(out, "Mass:        %.4g..%.4g (total %.4g)\n", lo.Min(free), lo.Max(free), lo.Sum(free))
	}
	fmt.Fprintf(out, "Bounds:      (%.3g, %.3g, %.3g)..(%.3g, %.3g, %.3g)\n",
		lo3.X, lo3.Y, lo3.Z, hi3.X, hi3.Y, hi3.Z)
	return nil
}

// simulateFlags adds the stepping options to the common flags.
type simulateFlags struct {
	commonFlags
	dt    float64
	every int
}

func newSimulateFlagSet(name string, sf *simulateFlags) *flag.FlagSet {
	fs := newFlagSet(name, &sf.commonFlags)
	fs.Float64Var(&sf.dt, "dt", 1.0/60.0, "Time step in seconds")
	fs.IntVar(&sf.every, "every", 0, "Report every N steps (0 = only the summary)")
	return fs
}

func parseSteps(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 0 {
		return 0, fmt.Errorf("%w: steps must be a non-negative integer, got %q", errUsage, s)
	}
	return n, nil
}

// simulate runs steps frames and prints periodic and summary statistics.
func simulate(c *cloth.Cloth, steps int, sf *simulateFlags, out io.Writer) {
	var rejected, clamped int
	for i := 1; i <= steps; i++ {
		stats := c.Step(cloth.Running, float32(sf.dt))
		rejected += stats.Rejected
		if stats.Clamped {
			clamped++
		}
		if sf.every > 0 && i%sf.every == 0 {
			fmt.Fprintf(out, "step %6d  mean violation %.6f\n", i, stats.MeanViolation)
		}
	}

	set := c.Constraints()
	lo3, hi3 := cloth.Bounds(c.Positions())
	fmt.Fprintf(out, "Steps:          %d\n", steps)
	fmt.Fprintf(out, "Mean violation: %.6f\n", set.MeanViolation(c.Positions()))
	fmt.Fprintf(out, "Max violation:  %.6f\n", set.MaxViolation(c.Positions()))
	fmt.Fprintf(out, "Clamped steps:  %d\n", clamped)
	fmt.Fprintf(out, "Rejected:       %d\n", rejected)
	fmt.Fprintf(out, "Bounds:         (%.3g, %.3g, %.3g)..(%.3g, %.3g, %.3g)\n",
		lo3.X, lo3.Y, lo3.Z, hi3.X, hi3.Y, hi3.Z)
}

func cmdSimulate(args []string, out io.Writer) error {
	var sf simulateFlags
	fs := newSimulateFlagSet("simulate", &sf)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: clothtool simulate <mesh> [steps]", errUsage)
	}
	steps, err := parseSteps(fs.Arg(1), 600)
	if err != nil {
		return err
	}

	c, _, err := buildCloth(&sf.commonFlags, fs.Arg(0))
	if err != nil {
		return err
	}
	simulate(c, steps, &sf, out)
	return nil
}

func cmdExport(args []string, out io.Writer) error {
	var sf simulateFlags
	fs := newSimulateFlagSet("export", &sf)
	noNormals := fs.Bool("no-normals", false, "Omit vertex normals")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: clothtool export <mesh> <out.obj> [steps]", errUsage)
	}
	steps, err := parseSteps(fs.Arg(2), 0)
	if err != nil {
		return err
	}

	c, _, err := buildCloth(&sf.commonFlags, fs.Arg(0))
	if err != nil {
		return err
	}
	if steps > 0 {
		simulate(c, steps, &sf, out)
	}

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	faces := lo.Map(c.Triangles(), func(t cloth.Triangle, _ int) [3]int32 { return t })
	normals := c.Normals()
	if *noNormals {
		normals = nil
	}
	if err := formats.WriteOBJ(f, c.Positions(), normals, faces); err != nil {
		return fmt.Errorf("writing %s: %w", fs.Arg(1), err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s (%d vertices, %d triangles)\n", fs.Arg(1), c.VertexCount(), len(faces))
	return nil
}

func cmdConfig(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: clothtool config <out.yaml>", errUsage)
	}
	if err := config.Default().SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", args[0])
	return nil
}
