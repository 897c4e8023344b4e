package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Block is the filtered getBlock response returned by the proxy. Header
// fields are left as raw JSON so callers see exactly what the node sent.
type Block struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC json.RawMessage `json:"jsonrpc"`
	Result  struct {
		BlockHeight       json.RawMessage   `json:"blockHeight"`
		BlockTime         json.RawMessage   `json:"blockTime"`
		Blockhash         json.RawMessage   `json:"blockhash"`
		ParentSlot        json.RawMessage   `json:"parentSlot"`
		PreviousBlockhash json.RawMessage   `json:"previousBlockhash"`
		Transactions      []json.RawMessage `json:"transactions"`
	} `json:"result"`
}

// Client is the HTTP client for a running getblock-proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new proxy client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetBlock sends a getBlock JSON-RPC request through the proxy. request is
// marshaled as JSON unless it is already a []byte or json.RawMessage.
func (c *Client) GetBlock(ctx context.Context, request any) (*Block, error) {
	var body []byte
	switch r := request.(type) {
	case []byte:
		body = r
	case json.RawMessage:
		body = r
	default:
		var err error
		body, err = json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var block Block
	if err := json.NewDecoder(resp.Body).Decode(&block); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("block received",
		"parent_slot", string(block.Result.ParentSlot),
		"transactions", len(block.Result.Transactions),
	)
	return &block, nil
}

// Health calls GET /health and returns the body on success.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned unhealthy status: %d", resp.StatusCode)
	}
	return string(body), nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errResp.Error)
}
