package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/apfk88/heartglance/internal/metrics"
	"github.com/jonboulle/clockwork"
)

const (
	// sessionTitle is fixed at request time; the gateway does not accept
	// attribute updates afterwards.
	sessionTitle = "Current BPM"

	commandBuffer  = 256
	gatewayTimeout = 5 * time.Second
	queryTimeout   = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// --- Command types ---

type controllerCmd interface{ controllerCmd() }

type updateCmd struct {
	snapshot domain.HeartRateSnapshot
}

func (updateCmd) controllerCmd() {}

type endCmd struct{}

func (endCmd) controllerCmd() {}

type currentContentCmd struct {
	replyCh chan *domain.ContentState
}

func (currentContentCmd) controllerCmd() {}

type stopCmd struct{}

func (stopCmd) controllerCmd() {}

// liveSession pairs the gateway handle with the last successfully applied
// content, which doubles as the final content when the session ends.
type liveSession struct {
	handle  domain.SessionHandle
	content domain.ContentState
}

// Controller maintains zero-or-one glance session. Construct it once at the
// composition root and keep it for the process lifetime.
type Controller struct {
	gateway domain.GlanceGateway
	diags   domain.Diagnostics
	journal domain.SessionJournal // nil when no journal is configured
	clock   clockwork.Clock
	policy  domain.DismissalPolicy

	cmdCh chan controllerCmd
	done  chan struct{}

	// current is owned by the run goroutine. Nil means Absent.
	current *liveSession
}

// NewController creates the controller and starts its actor goroutine.
// journal may be nil. An empty policy selects immediate dismissal.
func NewController(gateway domain.GlanceGateway, diags domain.Diagnostics, journal domain.SessionJournal, clock clockwork.Clock, policy domain.DismissalPolicy) *Controller {
	if policy == "" {
		policy = domain.DismissImmediate
	}
	c := &Controller{
		gateway: gateway,
		diags:   diags,
		journal: journal,
		clock:   clock,
		policy:  policy,
		cmdCh:   make(chan controllerCmd, commandBuffer),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

// UpdateActivity feeds a new snapshot to the display session. It enqueues
// and returns: the gateway call happens on the actor goroutine, in FIFO
// order with every other operation. It never reports failure to the caller.
func (c *Controller) UpdateActivity(ctx context.Context, snapshot domain.HeartRateSnapshot) {
	select {
	case c.cmdCh <- updateCmd{snapshot: snapshot}:
	case <-c.done:
	case <-ctx.Done():
	}
}

// EndActivity ends the live session, if any. Fire-and-forget like
// UpdateActivity; ending with no live session is a no-op.
func (c *Controller) EndActivity(ctx context.Context) {
	select {
	case c.cmdCh <- endCmd{}:
	case <-c.done:
	case <-ctx.Done():
	}
}

// CurrentContent returns the last successfully applied content state, or
// false when no session is live. Used by the read-side API, not by the
// update path.
func (c *Controller) CurrentContent(ctx context.Context) (domain.ContentState, bool) {
	replyCh := make(chan *domain.ContentState, 1)

	select {
	case c.cmdCh <- currentContentCmd{replyCh: replyCh}:
	case <-c.done:
		return domain.ContentState{}, false
	case <-ctx.Done():
		return domain.ContentState{}, false
	}

	timer := c.clock.NewTimer(queryTimeout)
	defer timer.Stop()

	select {
	case content := <-replyCh:
		if content == nil {
			return domain.ContentState{}, false
		}
		return *content, true
	case <-timer.Chan():
		slog.Warn("CurrentContent timed out", "timeout", queryTimeout)
		return domain.ContentState{}, false
	}
}

// Stop shuts the actor down. Queued commands are processed first; a live
// session stays live on the gateway (call EndActivity before Stop to
// dismiss the surface).
func (c *Controller) Stop() {
	select {
	case c.cmdCh <- stopCmd{}:
	case <-c.done:
		return
	}

	timer := c.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-c.done:
		slog.Info("Activity controller stopped")
	case <-timer.Chan():
		slog.Warn("Activity controller stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (c *Controller) run() {
	defer close(c.done)

	for cmd := range c.cmdCh {
		metrics.ActivityCommandQueueDepth.Set(float64(len(c.cmdCh)))

		switch cmd := cmd.(type) {
		case updateCmd:
			c.handleUpdate(cmd.snapshot)
		case endCmd:
			c.handleEnd()
		case currentContentCmd:
			if c.current == nil {
				cmd.replyCh <- nil
			} else {
				content := c.current.content
				cmd.replyCh <- &content
			}
		case stopCmd:
			return
		}
	}
}

func (c *Controller) handleUpdate(snapshot domain.HeartRateSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	if !c.gateway.IsCapabilityAuthorized(ctx) {
		metrics.ActivityUnauthorizedDropsTotal.Inc()
		return
	}

	content := domain.NewContentState(snapshot)

	if c.current != nil {
		// Best-effort replacement: on failure the surface keeps showing the
		// previous content and the session stays live.
		if err := c.gateway.ReplaceContent(ctx, c.current.handle, content); err != nil {
			slog.Debug("Content replacement failed", "handle", c.current.handle.String(), "error", err)
			return
		}
		c.current.content = content
		metrics.ActivityContentUpdatesTotal.Inc()
		return
	}

	attrs := domain.SessionAttributes{Title: sessionTitle}
	handle, err := c.gateway.RequestSession(ctx, attrs, content)
	if err != nil {
		// No retry: the handle stays absent and the next update attempts a
		// fresh request.
		c.diags.Error(ctx, "requesting glance session failed", err)
		metrics.ActivitySessionRequestFailuresTotal.Inc()
		return
	}

	c.current = &liveSession{handle: handle, content: content}
	metrics.ActivitySessionsStartedTotal.Inc()
	slog.Info("Glance session started", "handle", handle.String(), "bpm", content.BPM)

	if c.journal != nil {
		if err := c.journal.SessionStarted(ctx, handle, attrs, content); err != nil {
			slog.Warn("Session journal write failed", "handle", handle.String(), "error", err)
		}
	}
}

func (c *Controller) handleEnd() {
	if c.current == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
	defer cancel()

	handle := c.current.handle
	finalContent := c.current.content

	if err := c.gateway.EndSession(ctx, handle, finalContent, c.policy); err != nil {
		slog.Warn("Ending glance session failed", "handle", handle.String(), "error", err)
	}

	// The handle is cleared once the end call has completed, success or not.
	c.current = nil
	metrics.ActivitySessionsEndedTotal.Inc()
	slog.Info("Glance session ended", "handle", handle.String())

	if c.journal != nil {
		if err := c.journal.SessionEnded(ctx, handle, finalContent); err != nil {
			slog.Warn("Session journal write failed", "handle", handle.String(), "error", err)
		}
	}
}
