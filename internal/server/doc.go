// Package server implements the HTTP server using Echo framework.
//
// Routes: ingest (REST and WebSocket), activity read-side, health, metrics, version.
// Handlers split by concern: handlers_api.go, handlers_ws.go, handlers_health.go.
package server
