package solana

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/brojonat/getblock-proxy/service/metrics"
)

// DefaultTimeout bounds a single upstream getBlock call.
const DefaultTimeout = 30 * time.Second

// Fetcher forwards a getBlock request to the upstream node and returns the
// decoded response envelope.
type Fetcher interface {
	FetchBlock(ctx context.Context, body []byte) (*Envelope, error)
}

// Client is the HTTP Fetcher used against the upstream JSON-RPC node.
// It never retries; every failure is returned as an *UpstreamError.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
	endpoint   string // upstream host, used as the metrics label
}

// NewClient creates a Client that posts to rpcURL.
// A zero timeout uses DefaultTimeout. If m is nil, no metrics are recorded.
func NewClient(rpcURL string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	endpoint := rpcURL
	if u, err := url.Parse(rpcURL); err == nil && u.Host != "" {
		endpoint = u.Host
	}
	return &Client{
		url:        rpcURL,
		httpClient: &http.Client{},
		timeout:    timeout,
		logger:     logger,
		metrics:    m,
		endpoint:   endpoint,
	}
}

// FetchBlock posts body to the upstream node exactly as received.
func (c *Client) FetchBlock(ctx context.Context, body []byte) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	respBody, err := c.post(ctx, body)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("getBlock", status, c.endpoint, duration.Seconds())
	}
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched block from upstream",
		"endpoint", c.endpoint,
		"duration", duration,
		"bytes", len(respBody),
	)

	return DecodeEnvelope(respBody)
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: "post", Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{
			Op:         "post",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %s", resp.Status),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: "read response", Timeout: isTimeout(err), Err: err}
	}
	return respBody, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
