package flock

import (
	"fmt"
	"runtime"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
	"golang.org/x/sync/errgroup"
)

// Strategy selects how the per-agent phases of a tick are executed.
type Strategy int

const (
	// Sequential runs both phases in a single loop, agent by agent.
	Sequential Strategy = iota
	// Parallel splits both phases into chunks processed concurrently.
	// The snapshot is frozen during aggregation and every agent writes only
	// its own slot, so no locking is needed and results match Sequential.
	Parallel
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// preparer is implemented by aggregators that index the snapshot once per tick.
type preparer interface {
	Prepare(snapshot []Snapshot, s *Settings)
}

// StepReport summarises one tick of a population.
type StepReport struct {
	Tick      uint64
	Agents    int
	Perceived int // total neighbours perceived, summed over agents
	Avoiding  int // agents that had an obstacle ahead
	Corrected int // agents whose malformed state was repaired
}

// Population is a set of agents sharing one Settings value.
// Step advances every agent by one tick; a Population must not be stepped
// from several goroutines at once.
type Population struct {
	name       string
	settings   *Settings
	probes     ProbeTable
	obstacles  ObstacleQuery
	aggregator Aggregator
	strategy   Strategy
	workers    int

	agents []*Agent
	tick   uint64

	// per-tick buffers, reused across ticks
	snapshot  []Snapshot
	hoods     []Neighborhood
	corrected []bool
}

// Option configures a Population.
type Option func(*Population)

// WithStrategy selects sequential or parallel execution.
func WithStrategy(s Strategy) Option {
	return func(p *Population) { p.strategy = s }
}

// WithWorkers bounds the number of goroutines of the Parallel strategy.
func WithWorkers(n int) Option {
	return func(p *Population) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithAggregator replaces the default LinearScan neighbour search.
func WithAggregator(a Aggregator) Option {
	return func(p *Population) {
		if a != nil {
			p.aggregator = a
		}
	}
}

// WithSpatialIndex is shorthand for WithAggregator(NewGrid()).
func WithSpatialIndex() Option {
	return WithAggregator(NewGrid())
}

// NewPopulation validates settings and the probe table and returns an empty population.
// When settings.ObstacleMask is set and obstacles implements Masker, casts
// only consider the selected layers.
func NewPopulation(name string, settings *Settings, probes ProbeTable, obstacles ObstacleQuery, opts ...Option) (*Population, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("population %q: %w", name, err)
	}
	if err := probes.Validate(); err != nil {
		return nil, fmt.Errorf("population %q: %w", name, err)
	}
	if obstacles == nil {
		obstacles = NoObstacles
	}
	if m, ok := obstacles.(Masker); ok && settings.ObstacleMask != 0 {
		obstacles = m.Mask(settings.ObstacleMask)
	}
	p := &Population{
		name:       name,
		settings:   settings,
		probes:     probes,
		obstacles:  obstacles,
		aggregator: LinearScan{},
		strategy:   Sequential,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the population name.
func (p *Population) Name() string { return p.name }

// Settings returns the shared, read-only settings.
func (p *Population) Settings() *Settings { return p.settings }

// Strategy returns the execution strategy.
func (p *Population) Strategy() Strategy { return p.strategy }

// Agents returns the agents in their stable iteration order.
func (p *Population) Agents() []*Agent { return p.agents }

// Len returns the number of agents.
func (p *Population) Len() int { return len(p.agents) }

// Tick returns the number of completed steps.
func (p *Population) Tick() uint64 { return p.tick }

// Add appends agents to the population.
func (p *Population) Add(agents ...*Agent) {
	p.agents = append(p.agents, agents...)
}

// Spawn creates an agent with the population settings and adds it.
func (p *Population) Spawn(id string, position, forward geometry.Vector3D) *Agent {
	a := NewAgent(id, position, forward, p.settings)
	p.Add(a)
	return a
}

// Step advances the population by dt seconds.
//
// Every agent's position and heading is copied into a snapshot first, then
// all neighbourhoods are computed from that frozen snapshot into a side
// buffer. Only after the whole population has been aggregated are the
// agents integrated, so no agent ever reads a neighbour's current-tick state.
func (p *Population) Step(dt float64) (StepReport, error) {
	n := len(p.agents)
	p.snapshot = resize(p.snapshot, n)
	p.hoods = resize(p.hoods, n)
	p.corrected = resize(p.corrected, n)
	for i, a := range p.agents {
		p.snapshot[i] = a.Snapshot()
	}
	if pr, ok := p.aggregator.(preparer); ok {
		pr.Prepare(p.snapshot, p.settings)
	}

	// 1. Aggregation phase: read snapshot, write own slot in hoods
	if err := p.forEach(n, func(i int) {
		p.hoods[i] = p.aggregator.Aggregate(i, p.snapshot, p.settings)
	}); err != nil {
		return StepReport{}, fmt.Errorf("population %q aggregation: %w", p.name, err)
	}

	// 2. Integration phase: every agent touches only itself
	if err := p.forEach(n, func(i int) {
		a := p.agents[i]
		a.Neighborhood = p.hoods[i]
		p.corrected[i] = a.Move(dt, p.settings, p.probes, p.obstacles)
	}); err != nil {
		return StepReport{}, fmt.Errorf("population %q integration: %w", p.name, err)
	}

	p.tick++
	report := StepReport{Tick: p.tick, Agents: n}
	for i, a := range p.agents {
		report.Perceived += a.Count
		if a.Avoiding {
			report.Avoiding++
		}
		if p.corrected[i] {
			report.Corrected++
		}
	}
	return report, nil
}

// forEach runs fn for every index in [0, n), chunked over the workers when
// the strategy is Parallel. Each index is visited exactly once.
// A panic inside fn stops the chunk it happened in and is returned as an
// error naming the agent index; other chunks still run to completion.
func (p *Population) forEach(n int, fn func(i int)) error {
	if p.strategy != Parallel || p.workers < 2 || n < 2 {
		return runRange(0, n, fn)
	}

	chunkSize := max(1, (n+p.workers-1)/p.workers)
	var g errgroup.Group
	g.SetLimit(p.workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			return runRange(start, end, fn)
		})
	}
	return g.Wait()
}

// runRange calls fn for every index in [start, end), turning a panic into an error.
func runRange(start, end int, fn func(i int)) (err error) {
	i := start
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %d: %v", i, r)
		}
	}()
	for ; i < end; i++ {
		fn(i)
	}
	return nil
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
