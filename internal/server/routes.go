package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Reading ingest and activity read-side
	s.echo.POST("/api/readings", s.handleIngestReading)
	s.echo.POST("/api/stream/end", s.handleEndStream)
	s.echo.GET("/api/activity", s.handleCurrentActivity)

	// Streaming ingest for wearable bridges
	s.echo.GET("/ws/ingest", s.handleIngestSocket)
}
