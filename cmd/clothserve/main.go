// Package main runs the simulation headless and streams frames over websocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/assets"
	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
	"github.com/Faultbox/clothsim/internal/stream"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("stream server error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("stream server stopped")
}

func run(cfg *config.Config) error {
	c, lm, err := assets.NewManager(logger.Named("assets")).BuildCloth(cfg, logger.Named("cloth"))
	if err != nil {
		return err
	}

	session := sim.NewSession(c, cfg.Simulation.InitialState(), logger.Named("sim"))
	srv, err := stream.New(session, lm.Name, stream.Config{
		FrameRate:    cfg.Stream.FrameRate,
		WriteTimeout: cfg.Stream.WriteTimeout,
	}, logger.Named("stream"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Stream.Addr)
}
