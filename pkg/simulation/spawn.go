package simulation

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// Spawner places new agents at random. Positions, headings and ids all come
// from one seeded stream, so the same seed always yields the same swarm.
type Spawner struct {
	src *rand.ChaCha8
	rng *rand.Rand
}

// NewSpawner returns a spawner seeded with seed.
func NewSpawner(seed uint64) *Spawner {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	return &Spawner{src: src, rng: rand.New(src)}
}

// Populate adds pc.Count agents to p, uniformly distributed inside the
// sphere of radius pc.SpawnRadius around pc.SpawnCenter, each one heading in
// a random direction at the middle of its speed range.
func (s *Spawner) Populate(p *flock.Population, pc PopulationConfig) error {
	for i := 0; i < pc.Count; i++ {
		id, err := uuid.NewRandomFromReader(s.src)
		if err != nil {
			return fmt.Errorf("spawning %s #%d: %w", p.Name(), i, err)
		}
		pos := pc.SpawnCenter.Add(s.InsideSphere(pc.SpawnRadius))
		p.Spawn(fmt.Sprintf("%s-%s", p.Name(), id), pos, s.UnitVector())
	}
	return nil
}

// UnitVector returns a direction uniformly distributed on the unit sphere.
func (s *Spawner) UnitVector() geometry.Vector3D {
	for {
		v := geometry.Vector3D{X: s.rng.NormFloat64(), Y: s.rng.NormFloat64(), Z: s.rng.NormFloat64()}
		if n := v.Normalize(); !n.IsZero() {
			return n
		}
	}
}

// InsideSphere returns a point uniformly distributed in the ball of the given radius.
func (s *Spawner) InsideSphere(radius float64) geometry.Vector3D {
	// volume grows with r³, hence the cube root
	r := radius * math.Cbrt(s.rng.Float64())
	return s.UnitVector().Mul(r)
}
