// Package config handles simulator configuration loading and management.
package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/clothsim/internal/engine/cloth"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/pkg/math"
)

// Pin modes for MeshConfig.Pin.
const (
	PinTopRow  = "top_row"
	PinNone    = "none"
	PinIndices = "indices"
)

// Config holds all simulator settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Mesh       MeshConfig       `yaml:"mesh"`
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Stream     StreamConfig     `yaml:"stream"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds solver and integration settings.
type SimulationConfig struct {
	Iterations        int        `yaml:"iterations"`
	StretchStiffness  float32    `yaml:"stretch_stiffness"`
	CompressStiffness float32    `yaml:"compress_stiffness"`
	Gravity           [3]float32 `yaml:"gravity"`
	MaxTimeStep       float32    `yaml:"max_time_step"` // seconds, 0 disables clamping
	MassPolicy        string     `yaml:"mass_policy"`   // distance or uniform
	MassConstant      float32    `yaml:"mass_constant"`
	UniformMass       float32    `yaml:"uniform_mass"`
	StartRunning      bool       `yaml:"start_running"`
}

// MeshConfig selects the cloth mesh and its pinned vertices.
type MeshConfig struct {
	// Source is an OBJ path or "grid:RxC".
	Source      string   `yaml:"source"`
	SearchPaths []string `yaml:"search_paths"`
	GridSpacing float32  `yaml:"grid_spacing"`

	Pin          string  `yaml:"pin"` // top_row, none, indices
	PinIndices   []int32 `yaml:"pin_indices"`
	PinTolerance float32 `yaml:"pin_tolerance"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Wireframe  bool `yaml:"wireframe"`

	// Directional light, in degrees.
	LightAzimuth   float32 `yaml:"light_azimuth"`
	LightElevation float32 `yaml:"light_elevation"`

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// StreamConfig holds websocket frame streaming settings.
type StreamConfig struct {
	Addr         string        `yaml:"addr"`
	FrameRate    int           `yaml:"frame_rate"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Iterations:        5,
			StretchStiffness:  1,
			CompressStiffness: 0,
			Gravity:           [3]float32{0, -9.8, 0},
			MaxTimeStep:       cloth.DefaultMaxTimeStep,
			MassPolicy:        cloth.MassDistanceGraded.String(),
			MassConstant:      50,
			UniformMass:       1,
			StartRunning:      false,
		},
		Mesh: MeshConfig{
			Source:       "grid:20x20",
			GridSpacing:  0.1,
			Pin:          PinTopRow,
			PinTolerance: 1e-4,
		},
		Graphics: GraphicsConfig{
			Width:          1280,
			Height:         720,
			Fullscreen:     false,
			VSync:          true,
			Wireframe:      false,
			LightAzimuth:   45,
			LightElevation: 60,
			ScreenshotDir:  "screenshots",
		},
		Stream: StreamConfig{
			Addr:         "127.0.0.1:8420",
			FrameRate:    30,
			WriteTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	s := c.Simulation
	if s.Iterations < 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.iterations: %d is negative", s.Iterations))
	}
	if s.StretchStiffness < 0 || s.StretchStiffness > 1 {
		err = multierr.Append(err, fmt.Errorf("simulation.stretch_stiffness: %g outside [0, 1]", s.StretchStiffness))
	}
	if s.CompressStiffness < 0 || s.CompressStiffness > 1 {
		err = multierr.Append(err, fmt.Errorf("simulation.compress_stiffness: %g outside [0, 1]", s.CompressStiffness))
	}
	for i, g := range s.Gravity {
		if !math.IsFinite(g) {
			err = multierr.Append(err, fmt.Errorf("simulation.gravity[%d]: not finite", i))
		}
	}
	if s.MaxTimeStep < 0 || !math.IsFinite(s.MaxTimeStep) {
		err = multierr.Append(err, fmt.Errorf("simulation.max_time_step: %g is not a usable step", s.MaxTimeStep))
	}
	mode, perr := cloth.ParseMassMode(s.MassPolicy)
	if perr != nil {
		err = multierr.Append(err, fmt.Errorf("simulation.mass_policy: %w", perr))
	}
	if mode == cloth.MassDistanceGraded && !(s.MassConstant > 0) {
		err = multierr.Append(err, fmt.Errorf("simulation.mass_constant: %g must be positive", s.MassConstant))
	}
	if mode == cloth.MassUniform && !(s.UniformMass > 0) {
		err = multierr.Append(err, fmt.Errorf("simulation.uniform_mass: %g must be positive", s.UniformMass))
	}

	m := c.Mesh
	if m.Source == "" {
		err = multierr.Append(err, fmt.Errorf("mesh.source: empty"))
	}
	if !(m.GridSpacing > 0) {
		err = multierr.Append(err, fmt.Errorf("mesh.grid_spacing: %g must be positive", m.GridSpacing))
	}
	switch m.Pin {
	case PinTopRow, PinNone:
	case PinIndices:
		if len(m.PinIndices) == 0 {
			err = multierr.Append(err, fmt.Errorf("mesh.pin_indices: empty with pin mode %q", PinIndices))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("mesh.pin: unknown mode %q", m.Pin))
	}
	if m.PinTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("mesh.pin_tolerance: %g is negative", m.PinTolerance))
	}

	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("graphics: window size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}

	if c.Stream.FrameRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("stream.frame_rate: %d must be positive", c.Stream.FrameRate))
	}

	if _, lerr := logger.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}

	return err
}

// ClothOptions converts the simulation section into cloth options.
// Pins and the logger are left for the caller.
func (s SimulationConfig) ClothOptions() (cloth.Options, error) {
	mode, err := cloth.ParseMassMode(s.MassPolicy)
	if err != nil {
		return cloth.Options{}, err
	}

	opts := cloth.DefaultOptions()
	opts.Solver = cloth.Solver{
		Iterations:        s.Iterations,
		StretchStiffness:  s.StretchStiffness,
		CompressStiffness: s.CompressStiffness,
	}
	opts.Mass.Mode = mode
	opts.Mass.K = s.MassConstant
	opts.Mass.Mass = s.UniformMass
	opts.Gravity = math.Vec3{X: s.Gravity[0], Y: s.Gravity[1], Z: s.Gravity[2]}
	opts.MaxTimeStep = s.MaxTimeStep
	return opts, nil
}

// InitialState returns the run state the simulation starts in.
func (s SimulationConfig) InitialState() cloth.RunState {
	if s.StartRunning {
		return cloth.Running
	}
	return cloth.Stopped
}

// LoggerConfig converts the logging section for logger.Init.
func (l LoggingConfig) LoggerConfig() logger.Config {
	cfg := logger.Config{
		Level:   l.Level,
		Format:  l.Format,
		Console: true,
	}
	if l.LogFile != "" {
		cfg.File = logger.DefaultFileConfig(l.LogFile)
	}
	return cfg
}
