package dice

import "math/rand"

// Checkpoint is enough to put an RNG back where it was: the seed and the
// number of values drawn from the underlying source.
type Checkpoint struct {
	Seed  int64 `json:"seed"`
	Draws int64 `json:"draws"`
}

// countingSource counts every value pulled from the wrapped source.
// rand.Rand may draw more than once per Intn, so rolls alone cannot
// replay a stream.
type countingSource struct {
	src   rand.Source64
	draws int64
}

func (s *countingSource) Int63() int64 {
	s.draws++
	return s.src.Int63()
}

func (s *countingSource) Uint64() uint64 {
	s.draws++
	return s.src.Uint64()
}

func (s *countingSource) Seed(seed int64) {
	s.src.Seed(seed)
	s.draws = 0
}

// RNG is the seeded Roller used by live sessions.
type RNG struct {
	seed  int64
	src   *countingSource
	rnd   *rand.Rand
	rolls int64
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	r := &RNG{}
	r.reset(seed)
	return r
}

func (r *RNG) reset(seed int64) {
	r.seed = seed
	r.src = &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	r.rnd = rand.New(r.src)
	r.rolls = 0
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	r.rolls++
	return r.rnd.Intn(sides) + 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Rolls returns the number of dice rolled since creation or the last
// Restore.
func (r *RNG) Rolls() int64 { return r.rolls }

// Checkpoint captures the current stream position.
func (r *RNG) Checkpoint() Checkpoint {
	return Checkpoint{Seed: r.seed, Draws: r.src.draws}
}

// Restore rewinds or fast-forwards r in place to cp. Everything holding r
// as its Roller sees the restored stream.
func (r *RNG) Restore(cp Checkpoint) {
	r.reset(cp.Seed)
	for r.src.draws < cp.Draws {
		r.src.Int63()
	}
}
