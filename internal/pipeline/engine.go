package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/apfk88/heartglance/internal/metrics"
	"github.com/jonboulle/clockwork"
)

const (
	// Physiological plausibility bounds. Sensor glitches outside this range
	// are rejected instead of being pushed to the display.
	minPlausibleBPM = 20
	maxPlausibleBPM = 250

	// minStatsReadings is the number of readings required before rolling
	// statistics are attached to a snapshot. A single reading has no
	// meaningful average.
	minStatsReadings = 2

	defaultWindow = 60 * time.Second
)

// Engine is the upstream producer feeding the activity controller.
type Engine struct {
	store  domain.ReadingStore
	driver domain.ActivityDriver
	clock  clockwork.Clock
	window time.Duration
}

// NewEngine creates a pipeline engine. window <= 0 selects the default
// sliding window.
func NewEngine(store domain.ReadingStore, driver domain.ActivityDriver, clock clockwork.Clock, window time.Duration) *Engine {
	if window <= 0 {
		window = defaultWindow
	}
	return &Engine{store: store, driver: driver, clock: clock, window: window}
}

// Record validates one reading, folds it into the rolling window and pushes
// a snapshot to the display session.
func (e *Engine) Record(ctx context.Context, bpm int, status domain.StreamStatus) error {
	if bpm < minPlausibleBPM || bpm > maxPlausibleBPM {
		metrics.ReadingsRejectedTotal.Inc()
		return fmt.Errorf("bpm %d: %w", bpm, domain.ErrImplausibleReading)
	}

	now := e.clock.Now()
	if err := e.store.Append(ctx, domain.Reading{BPM: bpm, At: now}); err != nil {
		return fmt.Errorf("failed to append reading: %w", err)
	}

	stats, err := e.store.WindowStats(ctx, now, e.window)
	if err != nil {
		return fmt.Errorf("failed to compute window stats: %w", err)
	}

	snapshot := domain.HeartRateSnapshot{
		BPM:       bpm,
		IsSharing: status.IsSharing,
		IsViewing: status.IsViewing,
		HasError:  status.HasError,
	}
	if stats.Count >= minStatsReadings {
		avg, max, min := stats.Average, stats.Maximum, stats.Minimum
		snapshot.Average = &avg
		snapshot.Maximum = &max
		snapshot.Minimum = &min
	}

	e.driver.UpdateActivity(ctx, snapshot)
	metrics.ReadingsIngestedTotal.Inc()
	return nil
}

// EndStream closes out the measurement stream: the rolling window is
// discarded and the display session is ended.
func (e *Engine) EndStream(ctx context.Context) error {
	e.driver.EndActivity(ctx)
	if err := e.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset reading store: %w", err)
	}
	return nil
}
