package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/apfk88/heartglance/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Wearable bridges connect from arbitrary origins
	},
}

// ingestFrame is one message on the streaming ingest socket. A frame with
// End set closes out the stream; its other fields are ignored.
type ingestFrame struct {
	BPM       int  `json:"bpm"`
	IsSharing bool `json:"isSharing"`
	IsViewing bool `json:"isViewing"`
	HasError  bool `json:"hasError"`
	End       bool `json:"end"`
}

func (s *Server) handleIngestSocket(c echo.Context) error {
	ip := c.RealIP()

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		slog.Warn("Ingest connection rejected", "ip", ip, "reason", reason)
		return echo.NewHTTPError(http.StatusTooManyRequests, "connection limit reached")
	}
	defer s.limits.Release()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	metrics.IngestClientsConnected.Inc()
	defer metrics.IngestClientsConnected.Dec()

	ctx := c.Request().Context()

	for {
		var frame ingestFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}

		if frame.End {
			if err := s.recorder.EndStream(ctx); err != nil {
				slog.Warn("Failed to end stream", "error", err)
			}
			continue
		}

		status := domain.StreamStatus{
			IsSharing: frame.IsSharing,
			IsViewing: frame.IsViewing,
			HasError:  frame.HasError,
		}
		if err := s.recorder.Record(ctx, frame.BPM, status); err != nil {
			if errors.Is(err, domain.ErrImplausibleReading) {
				slog.Debug("Dropping implausible reading", "bpm", frame.BPM)
				continue
			}
			slog.Error("Failed to record reading", "error", err)
		}
	}

	return nil
}
