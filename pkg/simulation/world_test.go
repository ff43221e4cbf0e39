package simulation

import (
	"context"
	"testing"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
)

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Ticks = 5
	cfg.ProbeDirections = 50
	cfg.Boids.Count = 40
	cfg.Predators.Count = 4
	return cfg
}

func TestWorldActor_populate(t *testing.T) {
	cfg := smallConfig()
	w := NewWorldActor(nil, cfg)
	if err := w.populate(); err != nil {
		t.Fatalf("populate() error = %v", err)
	}
	if w.boids.Len() != 40 || w.predators.Len() != 4 {
		t.Fatalf("populations = %d boids, %d predators", w.boids.Len(), w.predators.Len())
	}
	if w.boids.Settings() == w.predators.Settings() {
		t.Error("populations must not share a Settings value")
	}
	for _, a := range w.boids.Agents() {
		if d := a.Position.DistanceTo(cfg.Boids.SpawnCenter); d > cfg.Boids.SpawnRadius+1e-9 {
			t.Fatalf("boid %s spawned %.2f away from the centre", a.ID, d)
		}
	}
	for _, a := range w.predators.Agents() {
		if d := a.Position.DistanceTo(cfg.Predators.SpawnCenter); d > cfg.Predators.SpawnRadius+1e-9 {
			t.Fatalf("predator %s spawned %.2f away from the centre", a.ID, d)
		}
	}
}

func TestWorldActor_populateRejectsBadConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Boids.Settings.MaximumSpeed = 0
	if err := NewWorldActor(nil, cfg).populate(); err == nil {
		t.Fatal("populate() accepted an invalid config")
	}
}

func TestWorldActor_step(t *testing.T) {
	cfg := smallConfig()
	ch := make(chan *WorldSnapshot, 1)
	w := NewWorldActor(ch, cfg)
	if err := w.populate(); err != nil {
		t.Fatalf("populate() error = %v", err)
	}
	before := w.boids.Agents()[0].Position

	for i := 1; i <= 3; i++ {
		if err := w.step(log.DiscardLogger, cfg.Dt); err != nil {
			t.Fatalf("step() error = %v", err)
		}
		if w.tick != uint64(i) {
			t.Fatalf("tick = %d; want %d", w.tick, i)
		}
	}
	if w.boids.Agents()[0].Position == before {
		t.Error("boid did not move")
	}
	if want := 3 * cfg.Dt; w.elapsed != want {
		t.Errorf("elapsed = %v; want %v", w.elapsed, want)
	}

	w.pushSnapshot()
	w.pushSnapshot() // channel full: must not block
	snap := <-ch
	if snap.Tick != 3 || len(snap.Boids.Agents) != 40 || len(snap.Predators.Agents) != 4 {
		t.Fatalf("snapshot = tick %d, %d boids, %d predators", snap.Tick, len(snap.Boids.Agents), len(snap.Predators.Agents))
	}
	s := cfg.Boids.Settings
	if snap.Boids.MeanSpeed < s.MinimumSpeed || snap.Boids.MeanSpeed > s.MaximumSpeed {
		t.Errorf("mean boid speed %v outside [%v, %v]", snap.Boids.MeanSpeed, s.MinimumSpeed, s.MaximumSpeed)
	}
}

func TestWorldActor_stepNonPositiveDt(t *testing.T) {
	cfg := smallConfig()
	w := NewWorldActor(nil, cfg)
	if err := w.populate(); err != nil {
		t.Fatalf("populate() error = %v", err)
	}
	before := make([]geometry.Vector3D, w.boids.Len())
	for i, a := range w.boids.Agents() {
		before[i] = a.Position
	}
	if err := w.step(log.DiscardLogger, -1); err != nil {
		t.Fatalf("step() error = %v", err)
	}
	for i, a := range w.boids.Agents() {
		if a.Position != before[i] {
			t.Fatalf("boid %d moved with a negative dt", i)
		}
	}
	if w.tick != 1 {
		t.Errorf("tick = %d; want 1", w.tick)
	}
}

func TestWorldActor_sameSeedSameRun(t *testing.T) {
	run := func() *WorldSnapshot {
		w := NewWorldActor(nil, smallConfig())
		if err := w.populate(); err != nil {
			t.Fatalf("populate() error = %v", err)
		}
		for i := 0; i < 10; i++ {
			if err := w.step(log.DiscardLogger, 0.02); err != nil {
				t.Fatalf("step() error = %v", err)
			}
		}
		return w.buildSnapshot()
	}
	a, b := run(), run()
	for i := range a.Boids.Agents {
		if a.Boids.Agents[i] != b.Boids.Agents[i] {
			t.Fatalf("boid %d differs between runs: %+v vs %+v", i, a.Boids.Agents[i], b.Boids.Agents[i])
		}
	}
	for i := range a.Predators.Agents {
		if a.Predators.Agents[i] != b.Predators.Agents[i] {
			t.Fatalf("predator %d differs between runs", i)
		}
	}
}

func TestEngine_Run(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	e, err := NewEngine(ctx, cfg, WithLogger(log.DiscardLogger))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = e.Stop(ctx) }()

	snap, err := e.Run(ctx, cfg.Ticks)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if snap.Tick != uint64(cfg.Ticks) {
		t.Errorf("last snapshot tick = %d; want %d", snap.Tick, cfg.Ticks)
	}
	tick, err := e.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if tick != uint64(cfg.Ticks) {
		t.Errorf("Tick() = %d; want %d", tick, cfg.Ticks)
	}

	next, err := e.Step(ctx)
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if next != tick+1 {
		t.Errorf("Step() = %d; want %d", next, tick+1)
	}
}

func TestEngine_RunCancelled(t *testing.T) {
	cfg := smallConfig()
	e, err := NewEngine(context.Background(), cfg, WithLogger(log.DiscardLogger), WithClock(FixedClock(0.01)))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = e.Stop(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Run(ctx, 10); err == nil {
		t.Fatal("Run() on a cancelled context returned no error")
	}
}

func TestNewEngine_BadConfig(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	cfg.ProbeDirections = 0
	e, err := NewEngine(ctx, cfg, WithLogger(log.DiscardLogger))
	if err == nil {
		_ = e.Stop(ctx)
		t.Fatal("NewEngine() accepted an invalid config")
	}
}

func BenchmarkWorldActor_step(b *testing.B) {
	cfg := DefaultConfig()
	w := NewWorldActor(nil, cfg)
	if err := w.populate(); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.step(log.DiscardLogger, cfg.Dt); err != nil {
			b.Fatal(err)
		}
	}
}
