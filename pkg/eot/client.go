package eot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/internal/metrics"
	"github.com/parleyvoice/parley/pkg/audio"
)

// ModelWindow is the longest audio span the classifier evaluates. Longer
// segments are truncated to the trailing window before upload; turn-ending
// cues are strongest near the end of speech.
const ModelWindow = 8 * time.Second

// DefaultTimeout bounds a single oracle request. It must stay well under
// the forced-flush timeout so the decision path never becomes the
// bottleneck.
const DefaultTimeout = 300 * time.Millisecond

// Client calls the remote EOT prediction service over HTTP.
type Client struct {
	endpoint   string
	threshold  float64
	enabled    bool
	httpClient *http.Client
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Disabled turns the oracle off: every segment evaluates as complete,
// degrading the controller to immediate-dispatch mode.
func Disabled() Option {
	return func(c *Client) { c.enabled = false }
}

// NewClient creates an oracle client for the given prediction endpoint.
func NewClient(endpoint string, threshold float64, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		threshold:  threshold,
		enabled:    true,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logging.Named("eot"),
		metrics:    metrics.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// predictResponse mirrors the EOT service's JSON response. The meta block
// is accepted but unused.
type predictResponse struct {
	Probability float64         `json:"eot_prob"`
	IsEOT       bool            `json:"is_eot"`
	Meta        json.RawMessage `json:"meta,omitempty"`
}

// Evaluate scores one segment. A single attempt, no retries: on any
// failure the fail-open verdict is returned so the session loop keeps
// moving. Evaluate never returns an error.
func (c *Client) Evaluate(ctx context.Context, seg audio.Segment) Verdict {
	if !c.enabled {
		return FailOpen
	}

	c.metrics.OracleRequests.Inc()
	start := time.Now()

	verdict, err := c.predict(ctx, seg)
	c.metrics.OracleLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.OracleFailures.WithLabelValues(failureReason(err)).Inc()
		c.log.Warnw("oracle unavailable, failing open", "error", err)
		return FailOpen
	}
	return verdict
}

func (c *Client) predict(ctx context.Context, seg audio.Segment) (Verdict, error) {
	body := audio.EncodeWAV(seg.TrailingWindow(ModelWindow).PCM, seg.SampleRate)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Verdict{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Verdict{}, fmt.Errorf("decode response: %w", err)
	}
	if pr.Probability < 0 || pr.Probability > 1 {
		return Verdict{}, fmt.Errorf("invalid probability: %f", pr.Probability)
	}

	// The decision is thresholded locally so one service deployment can
	// serve clients with different thresholds.
	return Verdict{
		Probability: pr.Probability,
		IsComplete:  pr.Probability >= c.threshold,
	}, nil
}

// Health probes the service's liveness endpoint, derived from the
// prediction endpoint by swapping the trailing path element.
func (c *Client) Health(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = "/health"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case isTimeout(err):
		return "timeout"
	default:
		return "error"
	}
}

func isTimeout(err error) bool {
	for e := err; e != nil; {
		if t, ok := e.(interface{ Timeout() bool }); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}
