package glance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/apfk88/heartglance/internal/metrics"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	callTimeout          = 10 * time.Second
	defaultCapabilityTTL = 10 * time.Second
)

// Client talks to the glance push gateway. It implements
// domain.GlanceGateway.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	capability *capabilityCache
}

// NewClient creates a gateway client. capabilityTTL <= 0 selects the
// default.
func NewClient(baseURL, token string, capabilityTTL time.Duration, clock clockwork.Clock) *Client {
	if capabilityTTL <= 0 {
		capabilityTTL = defaultCapabilityTTL
	}
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: callTimeout},
	}
	c.capability = newCapabilityCache(capabilityTTL, clock, c.fetchCapability)
	return c
}

// --- Wire types ---

type capabilityResponse struct {
	Authorized bool `json:"authorized"`
}

type sessionRequest struct {
	Attributes domain.SessionAttributes `json:"attributes"`
	Content    domain.ContentState      `json:"content"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type contentRequest struct {
	Content domain.ContentState `json:"content"`
}

type endRequest struct {
	FinalContent    domain.ContentState    `json:"final_content"`
	DismissalPolicy domain.DismissalPolicy `json:"dismissal_policy"`
}

// --- domain.GlanceGateway ---

// IsCapabilityAuthorized answers from the TTL cache when possible. A gateway
// that cannot be reached counts as not authorized; that suppresses updates
// rather than failing them, matching the controller's no-op contract.
func (c *Client) IsCapabilityAuthorized(ctx context.Context) bool {
	return c.capability.authorized(ctx)
}

func (c *Client) fetchCapability(ctx context.Context) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.GatewayCallDuration.WithLabelValues("capability").Observe(time.Since(start).Seconds())
	}()

	var resp capabilityResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/capability", nil, http.StatusOK, &resp); err != nil {
		return false, err
	}
	return resp.Authorized, nil
}

func (c *Client) RequestSession(ctx context.Context, attrs domain.SessionAttributes, content domain.ContentState) (domain.SessionHandle, error) {
	start := time.Now()
	defer func() {
		metrics.GatewayCallDuration.WithLabelValues("request").Observe(time.Since(start).Seconds())
	}()

	body := sessionRequest{Attributes: attrs, Content: content}

	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", body, http.StatusCreated, &resp); err != nil {
		return domain.SessionHandle{}, err
	}

	id, err := uuid.Parse(resp.SessionID)
	if err != nil {
		return domain.SessionHandle{}, fmt.Errorf("gateway returned malformed session id %q: %w", resp.SessionID, err)
	}
	handle := domain.SessionHandle(id)
	if handle.IsZero() {
		return domain.SessionHandle{}, fmt.Errorf("gateway returned zero session id")
	}
	return handle, nil
}

func (c *Client) ReplaceContent(ctx context.Context, handle domain.SessionHandle, content domain.ContentState) error {
	start := time.Now()
	defer func() {
		metrics.GatewayCallDuration.WithLabelValues("replace").Observe(time.Since(start).Seconds())
	}()

	path := fmt.Sprintf("/v1/sessions/%s/content", handle.String())
	return c.doJSON(ctx, http.MethodPut, path, contentRequest{Content: content}, http.StatusNoContent, nil)
}

func (c *Client) EndSession(ctx context.Context, handle domain.SessionHandle, finalContent domain.ContentState, policy domain.DismissalPolicy) error {
	start := time.Now()
	defer func() {
		metrics.GatewayCallDuration.WithLabelValues("end").Observe(time.Since(start).Seconds())
	}()

	path := fmt.Sprintf("/v1/sessions/%s", handle.String())
	body := endRequest{FinalContent: finalContent, DismissalPolicy: policy}
	return c.doJSON(ctx, http.MethodDelete, path, body, http.StatusNoContent, nil)
}

// HealthCheck probes the capability endpoint without touching the cache.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.fetchCapability(ctx)
	return err
}

// doJSON issues one JSON request and decodes the response into out (when
// non-nil). A status other than wantStatus is mapped onto the domain error
// taxonomy.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		return c.statusError(method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}

func (c *Client) statusError(method, path string, status int) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrSessionThrottled)
	case http.StatusForbidden, http.StatusUnprocessableEntity, http.StatusConflict:
		return fmt.Errorf("%s %s: status %d: %w", method, path, status, domain.ErrSessionRejected)
	default:
		slog.Debug("Unexpected gateway status", "method", method, "path", path, "status", status)
		return fmt.Errorf("%s %s: unexpected status %d", method, path, status)
	}
}
