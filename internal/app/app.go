// Package app implements the interactive cloth viewer loop.
package app

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/assets"
	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/engine/camera"
	"github.com/Faultbox/clothsim/internal/engine/cloth"
	"github.com/Faultbox/clothsim/internal/engine/input"
	"github.com/Faultbox/clothsim/internal/engine/lighting"
	"github.com/Faultbox/clothsim/internal/engine/renderer"
	"github.com/Faultbox/clothsim/internal/engine/screenshot"
	"github.com/Faultbox/clothsim/internal/engine/window"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
)

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	title   string
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	session  *sim.Session
	shots    *screenshot.Capture

	events      []input.Event
	wantCapture bool
}

// New loads the configured mesh and opens the viewer window.
func New(cfg *config.Config, title string) (*App, error) {
	a := &App{
		cfg:   cfg,
		title: title,
		log:   logger.Named("app"),
		input: input.New(nil),
		shots: screenshot.New(cfg.Graphics.ScreenshotDir, "clothsim", logger.Named("screenshot")),
	}

	// Build the cloth first so a bad mesh fails before a window appears
	c, lm, err := assets.NewManager(logger.Named("assets")).BuildCloth(cfg, logger.Named("cloth"))
	if err != nil {
		return nil, err
	}
	a.session = sim.NewSession(c, cfg.Simulation.InitialState(), a.log)

	a.window, err = window.New(window.Config{
		Title:      fmt.Sprintf("%s - %s", title, lm.Name),
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the GL context owned by the window
	width, height := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:     width,
		Height:    height,
		Wireframe: cfg.Graphics.Wireframe,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if err := a.renderer.Load(c); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to upload cloth: %w", err)
	}

	a.camera = camera.NewOrbitCamera()
	lo, hi := cloth.Bounds(c.RestPositions())
	a.camera.FitToBounds(mgl32.Vec3{lo.X, lo.Y, lo.Z}, mgl32.Vec3{hi.X, hi.Y, hi.Z})

	a.log.Info("viewer initialized",
		zap.String("mesh", lm.Name),
		zap.Stringer("state", a.session.State()),
	)
	return a, nil
}

// Run starts the main loop and returns when the window closes.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting viewer loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		a.events = a.window.PollEvents(a.events[:0])
		a.handleInput(a.input.Process(a.events))
		if !a.running {
			break
		}

		stats := a.session.Update(dt)

		if err := a.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if a.wantCapture {
			a.capture()
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float32("dt_ms", dt*1000),
				zap.Bool("clamped", stats.Clamped),
				zap.Float32("mean_violation", stats.MeanViolation),
			)
			a.window.SetTitle(fmt.Sprintf("%s [%s] %d fps", a.title, a.session.State(), frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleInput(f *input.Frame) {
	if f.Quit {
		a.running = false
		return
	}
	if f.Resized {
		a.renderer.Resize(f.Width, f.Height)
	}

	for _, action := range f.Actions {
		switch action {
		case input.ActionToggleRun:
			a.session.Queue(sim.CommandToggle)
		case input.ActionReset:
			a.session.Queue(sim.CommandReset)
		case input.ActionToggleWireframe:
			a.renderer.SetWireframe(!a.renderer.Wireframe())
			a.log.Debug("wireframe toggled", zap.Bool("on", a.renderer.Wireframe()))
		case input.ActionScreenshot:
			a.wantCapture = true
		}
	}

	if f.OrbitX != 0 || f.OrbitY != 0 {
		a.camera.HandleDrag(f.OrbitX, f.OrbitY)
	}
	if f.Zoom != 0 {
		a.camera.HandleZoom(f.Zoom)
	}
}

func (a *App) render() error {
	if err := a.renderer.Upload(a.session.Cloth()); err != nil {
		return err
	}

	width, height := a.renderer.Size()
	viewProj := a.camera.ProjectionMatrix(width, height).Mul4(a.camera.ViewMatrix())

	a.renderer.Begin()
	a.renderer.Draw(renderer.View{
		ViewProj: viewProj,
		Camera:   a.camera.Position(),
		LightDir: lighting.SunDirection(a.cfg.Graphics.LightAzimuth, a.cfg.Graphics.LightElevation),
	})
	a.renderer.End()
	return nil
}

// capture saves the frame just rendered, before it is swapped out.
func (a *App) capture() {
	a.wantCapture = false
	pixels, w, h := a.renderer.ReadPixels()
	if _, err := a.shots.Save(pixels, w, h); err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
	}
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
