package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/simulation"
	"github.com/tochemey/goakt/v3/log"
)

func main() {
	var (
		configFile = flag.String("config", "", "JSON or TOML configuration file (built-in defaults when empty)")
		schemaFile = flag.String("schema", "configs/flocking.schema.json", "JSON schema used to validate a JSON configuration")
		ticks      = flag.Int("ticks", 0, "number of ticks to run, overrides the configuration when > 0")
		dt         = flag.Float64("dt", 0, "fixed step in seconds, overrides the configuration when > 0")
		wallClock  = flag.Bool("wallclock", false, "step with real elapsed time instead of a fixed dt")
		debug      = flag.Bool("debug", false, "log every tick")
	)
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		loaded, err := simulation.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			logger.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *ticks > 0 {
		cfg.Ticks = *ticks
	}
	if *dt > 0 {
		cfg.Dt = *dt
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var clock simulation.Clock = simulation.FixedClock(cfg.Dt)
	if *wallClock {
		clock = simulation.NewWallClock(cfg.Dt)
	}
	engine, err := simulation.NewEngine(ctx, cfg, simulation.WithLogger(logger), simulation.WithClock(clock))
	if err != nil {
		logger.Fatalf("Failed to start the simulation: %v", err)
	}
	defer func() {
		if err := engine.Stop(context.Background()); err != nil {
			logger.Errorf("Failed to stop the actor system: %v", err)
		}
	}()

	logger.Infof("Running %d ticks of %.4fs", cfg.Ticks, cfg.Dt)
	start := time.Now()
	snap, err := engine.Run(ctx, cfg.Ticks)
	if err != nil {
		logger.Errorf("Simulation stopped early: %v", err)
	}

	logger.Infof("Done: %d ticks, %.2fs simulated in %s (avg %s/tick)",
		snap.Tick, snap.Elapsed, time.Since(start).Round(time.Millisecond), engine.StepAverage())
	for _, p := range []simulation.PopulationSnapshot{snap.Boids, snap.Predators} {
		logger.Infof("%-9s agents: %4d | mean speed: %.2f | mean neighbours: %.2f | avoiding: %d | centroid: %v | spread: %.2f",
			p.Name, len(p.Agents), p.MeanSpeed, p.MeanPerceived, p.Report.Avoiding, p.Centroid, p.Spread)
	}
}
