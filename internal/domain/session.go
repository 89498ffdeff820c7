package domain

import (
	"context"

	"github.com/google/uuid"
)

// SessionHandle is the opaque reference identifying one live glance session.
// The gateway issues it on a successful session request; the activity
// controller is the only component that may hold one.
type SessionHandle uuid.UUID

func (h SessionHandle) String() string { return uuid.UUID(h).String() }

// IsZero reports whether the handle identifies no session.
func (h SessionHandle) IsZero() bool { return h == SessionHandle(uuid.Nil) }

// SessionAttributes is the immutable per-session metadata fixed when the
// session is requested. The gateway does not accept attribute updates.
type SessionAttributes struct {
	Title string `json:"title"`
}

// DismissalPolicy tells the glance surface how to disappear when a session
// ends.
type DismissalPolicy string

const (
	DismissImmediate DismissalPolicy = "immediate"
	DismissDefault   DismissalPolicy = "default"
)

// GlanceGateway is the external display surface: a host-managed service
// that owns authorization, rendering and persistence of the glance session.
// Request/replace/end are asynchronous from the caller's point of view and
// may fail independently of this process.
type GlanceGateway interface {
	// IsCapabilityAuthorized reports whether the host currently permits
	// glance sessions at all. False is not an error.
	IsCapabilityAuthorized(ctx context.Context) bool

	RequestSession(ctx context.Context, attrs SessionAttributes, content ContentState) (SessionHandle, error)
	ReplaceContent(ctx context.Context, handle SessionHandle, content ContentState) error
	EndSession(ctx context.Context, handle SessionHandle, finalContent ContentState, policy DismissalPolicy) error
}

// Diagnostics receives one-way failure reports from components whose public
// operations never return errors.
type Diagnostics interface {
	Error(ctx context.Context, msg string, err error)
}

// ActivityDriver is the controller surface the reading pipeline drives.
// Both operations are fire-and-forget: they enqueue work and never report
// failure to the caller.
type ActivityDriver interface {
	UpdateActivity(ctx context.Context, snapshot HeartRateSnapshot)
	EndActivity(ctx context.Context)
}

// SessionJournal persists an audit trail of glance sessions. Writes are
// best-effort; callers log and move on when they fail.
type SessionJournal interface {
	SessionStarted(ctx context.Context, handle SessionHandle, attrs SessionAttributes, content ContentState) error
	SessionEnded(ctx context.Context, handle SessionHandle, finalContent ContentState) error
}
