package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/apfk88/heartglance/internal/domain"
)

// InMemoryStore holds the reading window in process memory, for
// single-instance deployments without Redis.
type InMemoryStore struct {
	mu       sync.Mutex
	readings []domain.Reading
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, r domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
	return nil
}

func (s *InMemoryStore) WindowStats(_ context.Context, now time.Time, window time.Duration) (domain.RollingStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now, window)

	var stats domain.RollingStats
	if len(s.readings) == 0 {
		return stats, nil
	}

	sum := 0
	stats.Maximum = s.readings[0].BPM
	stats.Minimum = s.readings[0].BPM
	for _, r := range s.readings {
		sum += r.BPM
		if r.BPM > stats.Maximum {
			stats.Maximum = r.BPM
		}
		if r.BPM < stats.Minimum {
			stats.Minimum = r.BPM
		}
	}
	stats.Count = len(s.readings)
	stats.Average = sum / stats.Count
	return stats, nil
}

func (s *InMemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = nil
	return nil
}

// prune drops readings older than the window. Caller holds the lock.
func (s *InMemoryStore) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	kept := s.readings[:0]
	for _, r := range s.readings {
		if !r.At.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	s.readings = kept
}
