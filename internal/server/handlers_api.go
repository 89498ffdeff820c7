package server

import (
	"errors"
	"fmt"

	"github.com/apfk88/heartglance/internal/domain"
	apperrors "github.com/apfk88/heartglance/internal/errors"
	"github.com/labstack/echo/v4"
)

type readingRequest struct {
	BPM       int  `json:"bpm"`
	IsSharing bool `json:"isSharing"`
	IsViewing bool `json:"isViewing"`
	HasError  bool `json:"hasError"`
}

func (s *Server) handleIngestReading(c echo.Context) error {
	var req readingRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	ctx := c.Request().Context()
	status := domain.StreamStatus{
		IsSharing: req.IsSharing,
		IsViewing: req.IsViewing,
		HasError:  req.HasError,
	}

	if err := s.recorder.Record(ctx, req.BPM, status); err != nil {
		if errors.Is(err, domain.ErrImplausibleReading) {
			return apperrors.ValidationError("bpm outside plausible range").WithField("bpm", req.BPM)
		}
		return apperrors.InternalError("failed to record reading", err)
	}

	if err := c.JSON(202, map[string]string{"status": "accepted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleEndStream(c echo.Context) error {
	if err := s.recorder.EndStream(c.Request().Context()); err != nil {
		return apperrors.InternalError("failed to end stream", err)
	}

	if err := c.JSON(200, map[string]string{"status": "ended"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCurrentActivity(c echo.Context) error {
	content, ok := s.activity.CurrentContent(c.Request().Context())
	if !ok {
		return apperrors.NotFoundError("no live activity session")
	}

	if err := c.JSON(200, content); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
