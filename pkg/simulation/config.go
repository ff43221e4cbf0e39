package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/obstacle"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/multierr"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Obstacle kinds accepted in ObstacleConfig.Kind.
const (
	KindSphere = "sphere"
	KindBox    = "box"
)

type Config struct {
	// Integration step in seconds, used by the fixed clock
	Dt float64 `json:"dt" toml:"dt"`
	// Number of ticks the headless runner executes
	Ticks int `json:"ticks" toml:"ticks"`
	// Size of the obstacle probe table shared by both populations
	ProbeDirections int `json:"probeDirections" toml:"probeDirections"`
	// Seed of the spawner, same seed same run
	Seed uint64 `json:"seed" toml:"seed"`

	Boids     PopulationConfig `json:"boids" toml:"boids"`
	Predators PopulationConfig `json:"predators" toml:"predators"`

	Obstacles []ObstacleConfig `json:"obstacles" toml:"obstacles"`
}

// PopulationConfig describes how one population is spawned and stepped.
type PopulationConfig struct {
	Count        int               `json:"count" toml:"count"`
	SpawnRadius  float64           `json:"spawnRadius" toml:"spawnRadius"`
	SpawnCenter  geometry.Vector3D `json:"spawnCenter" toml:"spawnCenter"`
	Parallel     bool              `json:"parallel" toml:"parallel"`         // chunked parallel phases
	SpatialIndex bool              `json:"spatialIndex" toml:"spatialIndex"` // uniform grid instead of a linear scan
	Settings     flock.Settings    `json:"settings" toml:"settings"`
}

// ObstacleConfig is a static shape of the world.
// Spheres use Center and Radius, boxes use Min and Max.
type ObstacleConfig struct {
	Kind   string            `json:"kind" toml:"kind"`
	Center geometry.Vector3D `json:"center" toml:"center"`
	Radius float64           `json:"radius" toml:"radius"`
	Min    geometry.Vector3D `json:"min" toml:"min"`
	Max    geometry.Vector3D `json:"max" toml:"max"`
	Layer  uint32            `json:"layer" toml:"layer"`
}

func DefaultConfig() *Config {
	boids := flock.DefaultSettings()

	predators := flock.DefaultSettings()
	predators.MinimumSpeed = 3
	predators.MaximumSpeed = 7
	predators.MaxSteerForce = 4
	predators.PerceptionRadius = 4
	predators.AvoidanceRadius = 1.5
	predators.CohesionWeight = 0.5
	predators.SeparationWeight = 1.5

	return &Config{
		Dt:              1.0 / 60,
		Ticks:           600,
		ProbeDirections: flock.DefaultProbeDirections,
		Seed:            1,
		Boids: PopulationConfig{
			Count:       300,
			SpawnRadius: 10,
			Settings:    *boids,
		},
		Predators: PopulationConfig{
			Count:       10,
			SpawnRadius: 10,
			SpawnCenter: geometry.Vector3D{X: 25},
			Parallel:    true,
			Settings:    *predators,
		},
		Obstacles: []ObstacleConfig{
			{Kind: KindSphere, Center: geometry.Vector3D{X: 12}, Radius: 3},
		},
	}
}

// LoadConfig loads configuration from a JSON or TOML file.
// JSON files are validated against the schema in schemaFile first, unless
// schemaFile is empty. Fields missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Obstacles = nil

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".toml":
		if _, err := toml.DecodeFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
	default:
		b, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if schemaFile != "" {
			if err := validateAgainstSchema(b, schemaFile); err != nil {
				return nil, err
			}
		}
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateAgainstSchema(doc []byte, schemaFile string) error {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Validate checks the whole configuration and reports every fault at once.
func (c *Config) Validate() error {
	var err error
	if !(c.Dt > 0) {
		err = multierr.Append(err, fmt.Errorf("dt must be > 0, got %v", c.Dt))
	}
	if c.Ticks < 0 {
		err = multierr.Append(err, fmt.Errorf("ticks must be >= 0, got %d", c.Ticks))
	}
	if c.ProbeDirections < 1 {
		err = multierr.Append(err, fmt.Errorf("probeDirections must be >= 1, got %d", c.ProbeDirections))
	}
	err = multierr.Append(err, c.Boids.validate("boids"))
	err = multierr.Append(err, c.Predators.validate("predators"))
	for i, o := range c.Obstacles {
		err = multierr.Append(err, o.validate(i))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (p *PopulationConfig) validate(name string) error {
	var err error
	if p.Count < 0 {
		err = multierr.Append(err, fmt.Errorf("%s.count must be >= 0, got %d", name, p.Count))
	}
	if p.SpawnRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("%s.spawnRadius must be >= 0, got %v", name, p.SpawnRadius))
	}
	if !p.SpawnCenter.IsFinite() {
		err = multierr.Append(err, fmt.Errorf("%s.spawnCenter must be finite", name))
	}
	if sErr := p.Settings.Validate(); sErr != nil {
		err = multierr.Append(err, fmt.Errorf("%s.settings: %w", name, sErr))
	}
	return err
}

func (o ObstacleConfig) validate(i int) error {
	switch o.Kind {
	case KindSphere:
		if !(o.Radius > 0) {
			return fmt.Errorf("obstacles[%d]: sphere radius must be > 0, got %v", i, o.Radius)
		}
	case KindBox:
		if o.Min.X > o.Max.X || o.Min.Y > o.Max.Y || o.Min.Z > o.Max.Z {
			return fmt.Errorf("obstacles[%d]: box min %v must not exceed max %v", i, o.Min, o.Max)
		}
	default:
		return fmt.Errorf("obstacles[%d]: unknown kind %q", i, o.Kind)
	}
	return nil
}

// BuildObstacles turns the obstacle list into a queryable set.
func (c *Config) BuildObstacles() (*obstacle.Set, error) {
	shapes := make([]obstacle.Shape, 0, len(c.Obstacles))
	for i, o := range c.Obstacles {
		if err := o.validate(i); err != nil {
			return nil, err
		}
		switch o.Kind {
		case KindSphere:
			shapes = append(shapes, obstacle.Sphere{Center: o.Center, Radius: o.Radius, Layers: o.Layer})
		case KindBox:
			shapes = append(shapes, obstacle.Box{Min: o.Min, Max: o.Max, Layers: o.Layer})
		}
	}
	return obstacle.NewSet(shapes...), nil
}
