package healthlink

import (
	"sync"
	"testing"
	"time"
)

// scriptedSource returns queued ints in order and the range minimum once the
// queue is drained.
type scriptedSource struct {
	ints  []int
	float float64
}

func (s *scriptedSource) IntRange(min, max int) int {
	if len(s.ints) == 0 {
		return min
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *scriptedSource) Float64() float64 { return s.float }

func (s *scriptedSource) DateBetween(from, _ time.Time) time.Time { return truncateDay(from) }

func TestRandSource_IntRangeBounds(t *testing.T) {
	src := NewRandSource(42)
	for i := 0; i < 1000; i++ {
		v := src.IntRange(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("IntRange(3, 7) = %d, out of range", v)
		}
	}
	if got := src.IntRange(5, 5); got != 5 {
		t.Errorf("expected degenerate range to return 5, got %d", got)
	}
}

func TestRandSource_Deterministic(t *testing.T) {
	a := NewRandSource(7)
	b := NewRandSource(7)
	for i := 0; i < 50; i++ {
		if x, y := a.IntRange(0, 1000000), b.IntRange(0, 1000000); x != y {
			t.Fatalf("draw %d differs for equal seeds: %d vs %d", i, x, y)
		}
	}
}

func TestRandSource_DateBetween(t *testing.T) {
	src := NewRandSource(1)
	from := time.Date(2020, time.January, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2020, time.January, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		d := src.DateBetween(from, to)
		if d.Before(truncateDay(from)) || d.After(truncateDay(to)) {
			t.Fatalf("date %s outside [%s, %s]", d, from, to)
		}
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Fatalf("expected a calendar day, got %s", d)
		}
	}
	if got := src.DateBetween(to, from); !got.Equal(truncateDay(to)) {
		t.Errorf("expected inverted range to return from, got %s", got)
	}
}

func TestRandSource_Concurrent(t *testing.T) {
	src := NewRandSource(99)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				src.IntRange(0, 10)
				src.Float64()
			}
		}()
	}
	wg.Wait()
}
