package domain

import (
	"context"
	"time"
)

// Reading is one raw heart-rate measurement.
type Reading struct {
	BPM int
	At  time.Time
}

// RollingStats aggregates the readings inside the sliding window. Count of
// zero means the window is empty and the other fields are meaningless.
type RollingStats struct {
	Count   int
	Average int
	Maximum int
	Minimum int
}

// ReadingStore keeps the sliding reading window.
type ReadingStore interface {
	Append(ctx context.Context, r Reading) error
	// WindowStats aggregates readings newer than now minus window. Stores
	// may discard older readings as a side effect.
	WindowStats(ctx context.Context, now time.Time, window time.Duration) (RollingStats, error)
	Reset(ctx context.Context) error
}
