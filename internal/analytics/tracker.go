package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"

	"autocut/internal/logging"
)

// Tracker records named events with an arbitrary payload.
type Tracker interface {
	Track(event string, payload map[string]any)
}

// Noop discards all events. Used in tests and when telemetry is
// disabled.
type Noop struct{}

// Track implements Tracker by doing nothing.
func (Noop) Track(string, map[string]any) {}

// Event is the wire format accepted by the collector.
type Event struct {
	Event     string         `json:"event"`
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
	SessionID string         `json:"sessionId"`
	UserAgent string         `json:"userAgent"`
}

// Client posts events to a collector endpoint, fire-and-forget.
type Client struct {
	endpoint   string
	httpClient *http.Client
	sessionID  string
	userAgent  string
	retryDelay time.Duration
	// async controls whether Track spawns a goroutine per event. Tests
	// disable it for determinism.
	async bool
}

// NewClient creates a tracker posting to the given collector endpoint.
// The session identifier is generated once and reused for the lifetime
// of the process.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sessionID:  "sess_" + uuid.NewString(),
		userAgent:  fmt.Sprintf("autocut/1.0 (%s; %s)", runtime.GOOS, runtime.GOARCH),
		retryDelay: time.Second,
		async:      true,
	}
}

// SessionID returns the client's session identifier.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Track submits an event without blocking the caller. Failures are
// retried once and then dropped silently.
func (c *Client) Track(event string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}

	e := Event{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: c.sessionID,
		UserAgent: c.userAgent,
	}

	if c.async {
		go c.send(e)
	} else {
		c.send(e)
	}
}

func (c *Client) send(e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		logging.Debug("analytics: failed to encode event %q: %v", e.Event, err)
		return
	}

	if c.post(body) {
		return
	}

	time.Sleep(c.retryDelay)

	if !c.post(body) {
		logging.Debug("analytics: dropping event %q after retry", e.Event)
	}
}

func (c *Client) post(body []byte) bool {
	resp, err := c.httpClient.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
