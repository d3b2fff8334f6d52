package healthlink

import (
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// ValueSource supplies the randomness every builder consumes.
type ValueSource interface {
	// IntRange returns a uniformly distributed integer in [min, max].
	IntRange(min, max int) int
	// Float64 returns a uniformly distributed float in [0, 1).
	Float64() float64
	// DateBetween returns a uniformly chosen calendar day in [from, to].
	DateBetween(from, to time.Time) time.Time
}

// pick draws one element of a non-empty pool.
func pick[T any](src ValueSource, pool []T) T {
	return pool[src.IntRange(0, len(pool)-1)]
}

// RandSource is a ValueSource backed by a seeded gofakeit Faker. It is safe
// for concurrent use.
type RandSource struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewRandSource returns a source seeded for reproducibility. If seed is 0 a
// time-based seed is chosen.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{faker: gofakeit.New(uint64(seed))}
}

func (s *RandSource) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.Number(min, max)
}

func (s *RandSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.Float64()
}

func (s *RandSource) DateBetween(from, to time.Time) time.Time {
	from = truncateDay(from)
	to = truncateDay(to)
	if !to.After(from) {
		return from
	}
	days := int(to.Sub(from).Hours() / 24)
	return from.AddDate(0, 0, s.IntRange(0, days))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
