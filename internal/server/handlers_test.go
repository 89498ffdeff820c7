package server

import (
	"context"
	"sync"
	"testing"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/apfk88/heartglance/internal/platform/config"
)

// fakeRecorder records ingest calls and lets tests inject errors.
type fakeRecorder struct {
	mu        sync.Mutex
	recordErr error
	endErr    error
	readings  []int
	statuses  []domain.StreamStatus
	endCalls  int
}

func (f *fakeRecorder) Record(_ context.Context, bpm int, status domain.StreamStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.readings = append(f.readings, bpm)
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeRecorder) EndStream(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCalls++
	return f.endErr
}

func (f *fakeRecorder) recorded() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.readings...)
}

type fakeProvider struct {
	content domain.ContentState
	live    bool
}

func (f *fakeProvider) CurrentContent(context.Context) (domain.ContentState, bool) {
	return f.content, f.live
}

type fakeGatewayHealth struct {
	err error
}

func (f *fakeGatewayHealth) HealthCheck(context.Context) error {
	return f.err
}

type serverOption func(*Server)

func withGatewayHealth(g gatewayHealthChecker) serverOption {
	return func(s *Server) { s.gateway = g }
}

func withRedisHealth(r redisHealthChecker) serverOption {
	return func(s *Server) { s.redisHealth = r }
}

func withPostgresHealth(p postgresHealthChecker) serverOption {
	return func(s *Server) { s.postgresHealth = p }
}

func newTestServer(t *testing.T, recorder readingRecorder, activity contentProvider, opts ...serverOption) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:                    "8080",
		MaxWebSocketConnections: 4,
	}
	srv := NewServer(cfg, recorder, activity, &fakeGatewayHealth{}, nil, nil)
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
