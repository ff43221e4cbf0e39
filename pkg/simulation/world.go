package simulation

import (
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WorldActor owns the authoritative state of the simulation: both
// populations, the obstacle set and the probe table.
// It advances one tick per *durationpb.Duration message, replying with the
// tick number as a *wrapperspb.UInt64Value, and pushes a snapshot after each tick.
type WorldActor struct {
	cfg       *Config
	boids     *flock.Population
	predators *flock.Population

	tick    uint64
	elapsed float64
	reports map[*flock.Population]flock.StepReport

	// Communication with the host
	snapshotCh chan<- *WorldSnapshot

	// --- Benchmark Stats ---
	tickCount   int
	agentSteps  int
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		reports:     make(map[*flock.Population]flock.StepReport, 2),
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

// PreStart builds and spawns both populations. A bad configuration fails the spawn.
func (w *WorldActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	logger.Info("World is spawning the flock...")
	if err := w.populate(); err != nil {
		return err
	}
	logger.Infof("World ready: %d boids (%s), %d predators (%s), %d obstacles",
		w.boids.Len(), w.boids.Strategy(), w.predators.Len(), w.predators.Strategy(), len(w.cfg.Obstacles))
	return nil
}

func (w *WorldActor) populate() error {
	if err := w.cfg.Validate(); err != nil {
		return err
	}
	probes, err := flock.NewProbeTable(w.cfg.ProbeDirections)
	if err != nil {
		return err
	}
	obstacles, err := w.cfg.BuildObstacles()
	if err != nil {
		return err
	}

	spawner := NewSpawner(w.cfg.Seed)
	build := func(name string, pc PopulationConfig) (*flock.Population, error) {
		settings := pc.Settings
		opts := []flock.Option{}
		if pc.Parallel {
			opts = append(opts, flock.WithStrategy(flock.Parallel))
		}
		if pc.SpatialIndex {
			opts = append(opts, flock.WithSpatialIndex())
		}
		p, err := flock.NewPopulation(name, &settings, probes, obstacles, opts...)
		if err != nil {
			return nil, err
		}
		if err := spawner.Populate(p, pc); err != nil {
			return nil, err
		}
		return p, nil
	}

	if w.boids, err = build("boid", w.cfg.Boids); err != nil {
		return err
	}
	if w.predators, err = build("predator", w.cfg.Predators); err != nil {
		return err
	}
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World %s started", ctx.Self().Name())

	// The Main Simulation Step, driven by the Engine
	case *durationpb.Duration:
		if err := msg.CheckValid(); err != nil {
			ctx.Err(fmt.Errorf("invalid tick: %w", err))
			return
		}
		if err := w.step(ctx.Logger(), msg.AsDuration().Seconds()); err != nil {
			ctx.Err(err)
			return
		}
		w.logBenchmarks(ctx.Logger())
		w.pushSnapshot()
		ctx.Response(wrapperspb.UInt64(w.tick))

	// Tick number query
	case *wrapperspb.UInt64Value:
		ctx.Response(wrapperspb.UInt64(w.tick))

	default:
		ctx.Unhandled()
	}
}

// step advances boids then predators by dt seconds.
// A non positive dt leaves every agent where it is and only counts the tick.
func (w *WorldActor) step(logger log.Logger, dt float64) error {
	if !(dt > 0) {
		dt = 0
	}
	var last flock.StepReport
	for _, p := range w.populations() {
		report, err := p.Step(dt)
		if err != nil {
			return fmt.Errorf("tick %d: %w", w.tick+1, err)
		}
		if report.Corrected > 0 {
			logger.Warnf("tick %d: %d %s agent(s) had a malformed state repaired", report.Tick, report.Corrected, p.Name())
		}
		w.agentSteps += report.Agents
		w.reports[p] = report
		last = report
	}
	w.tick = last.Tick
	w.elapsed += dt
	w.tickCount++
	logger.Debugf("tick %d done, %.3fs simulated", w.tick, w.elapsed)
	return nil
}

func (w *WorldActor) logBenchmarks(logger log.Logger) {
	if time.Since(w.lastLogTime) >= time.Second {
		logger.Infof("📊 TICK RATE: %d/sec | agent updates: %d/sec | Boids: %d Predators: %d",
			w.tickCount, w.agentSteps, w.boids.Len(), w.predators.Len())
		w.tickCount = 0
		w.agentSteps = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.buildSnapshot():
	default:
		// host busy, skip frame
	}
}

func (w *WorldActor) buildSnapshot() *WorldSnapshot {
	return &WorldSnapshot{
		Tick:      w.tick,
		Elapsed:   w.elapsed,
		Boids:     newPopulationSnapshot(w.boids, w.reports[w.boids]),
		Predators: newPopulationSnapshot(w.predators, w.reports[w.predators]),
	}
}

// populations returns the populations in the order they are stepped.
func (w *WorldActor) populations() []*flock.Population {
	return []*flock.Population{w.boids, w.predators}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.tick)
	return nil
}
