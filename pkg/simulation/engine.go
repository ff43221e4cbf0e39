package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultAskTimeout bounds the wait for one tick of the world actor.
const DefaultAskTimeout = 5 * time.Second

// Engine is the headless host: it owns the actor system, drives the world
// actor one tick at a time and keeps the latest snapshot.
type Engine struct {
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *WorldSnapshot
	lastState  *WorldSnapshot

	cfg        *Config
	clock      Clock
	askTimeout time.Duration
	logger     log.Logger

	// Timing instrumentation
	lastStepDuration time.Duration
	stepAvg          float64 // Rolling average in ms
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces the default FixedClock(cfg.Dt).
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the logger of the actor system.
func WithLogger(l log.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAskTimeout sets how long Step waits for the world actor.
func WithAskTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.askTimeout = d
		}
	}
}

// NewEngine starts an actor system and spawns the world actor for cfg.
func NewEngine(ctx context.Context, cfg *Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	e := &Engine{
		// Buffer to avoid blocking the world actor
		snapshotCh: make(chan *WorldSnapshot, 1),
		lastState:  &WorldSnapshot{},
		cfg:        cfg,
		clock:      FixedClock(cfg.Dt),
		askTimeout: DefaultAskTimeout,
		logger:     log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(e)
	}

	system, err := actor.NewActorSystem("FlockingWorld", actor.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	e.System = system

	e.worldPID, err = system.Spawn(ctx, "world", NewWorldActor(e.snapshotCh, cfg))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	return e, nil
}

// Step advances the world by one clock delta and returns the new tick number.
func (e *Engine) Step(ctx context.Context) (uint64, error) {
	start := time.Now()
	defer func() {
		e.lastStepDuration = time.Since(start)
		// Rolling average (exponential moving average)
		e.stepAvg = e.stepAvg*0.95 + float64(e.lastStepDuration.Microseconds())/1000.0*0.05
	}()

	dt := time.Duration(e.clock.Delta() * float64(time.Second))
	reply, err := actor.Ask(ctx, e.worldPID, durationpb.New(dt), e.askTimeout)
	if err != nil {
		return 0, fmt.Errorf("world tick failed: %w", err)
	}
	tick, ok := reply.(*wrapperspb.UInt64Value)
	if !ok {
		return 0, fmt.Errorf("unexpected world reply %T", reply)
	}

	// Retrieve Latest State (Non-blocking)
	select {
	case snap := <-e.snapshotCh:
		e.lastState = snap
	default:
	}
	return tick.GetValue(), nil
}

// Run executes ticks steps, stopping early when ctx is cancelled, and
// returns the last snapshot received from the world.
func (e *Engine) Run(ctx context.Context, ticks int) (*WorldSnapshot, error) {
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return e.lastState, err
		}
		if _, err := e.Step(ctx); err != nil {
			return e.lastState, err
		}
	}
	return e.lastState, nil
}

// Tick asks the world for its current tick number.
func (e *Engine) Tick(ctx context.Context) (uint64, error) {
	reply, err := actor.Ask(ctx, e.worldPID, &wrapperspb.UInt64Value{}, e.askTimeout)
	if err != nil {
		return 0, fmt.Errorf("world query failed: %w", err)
	}
	tick, ok := reply.(*wrapperspb.UInt64Value)
	if !ok {
		return 0, fmt.Errorf("unexpected world reply %T", reply)
	}
	return tick.GetValue(), nil
}

// LastState returns the latest snapshot, empty before the first step.
func (e *Engine) LastState() *WorldSnapshot { return e.lastState }

// StepAverage returns the rolling average duration of one step.
func (e *Engine) StepAverage() time.Duration {
	return time.Duration(e.stepAvg * float64(time.Millisecond))
}

// Stop shuts the actor system down.
func (e *Engine) Stop(ctx context.Context) error {
	return e.System.Stop(ctx)
}
