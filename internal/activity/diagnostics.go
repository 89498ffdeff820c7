package activity

import (
	"context"
	"log/slog"
)

// SlogDiagnostics routes one-way failure reports into the structured log.
type SlogDiagnostics struct{}

func (SlogDiagnostics) Error(ctx context.Context, msg string, err error) {
	slog.ErrorContext(ctx, msg, "error", err)
}
