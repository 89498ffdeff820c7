package server

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestLimiter_GlobalLimit(t *testing.T) {
	l := newIngestLimiter(2, 100, 100)

	ok, _ := l.Acquire("10.0.0.1")
	require.True(t, ok)
	ok, _ = l.Acquire("10.0.0.2")
	require.True(t, ok)

	ok, reason := l.Acquire("10.0.0.3")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonGlobal, reason)

	l.Release()
	ok, _ = l.Acquire("10.0.0.3")
	assert.True(t, ok)
}

func TestIngestLimiter_RateLimit(t *testing.T) {
	l := newIngestLimiter(100, 1, 2)

	ok, _ := l.Acquire("10.0.0.1")
	require.True(t, ok)
	ok, _ = l.Acquire("10.0.0.1")
	require.True(t, ok)

	// Burst of 2 exhausted, third connection in the same instant is rejected.
	ok, reason := l.Acquire("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonRate, reason)
}

func TestIngestLimiter_RateLimitIsPerIP(t *testing.T) {
	l := newIngestLimiter(100, 1, 1)

	ok, _ := l.Acquire("10.0.0.1")
	require.True(t, ok)

	ok, _ = l.Acquire("10.0.0.2")
	assert.True(t, ok)
}

func TestIngestLimiter_ConcurrentAcquire(t *testing.T) {
	l := newIngestLimiter(10, 1000, 1000)

	var wg sync.WaitGroup
	results := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ok, _ := l.Acquire(fmt.Sprintf("10.0.0.%d", n))
			results <- ok
		}(i)
	}
	wg.Wait()
	close(results)

	granted := 0
	for ok := range results {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 10, granted)
	assert.Equal(t, int64(10), l.Current())
}
