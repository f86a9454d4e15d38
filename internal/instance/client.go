// pattern: Imperative Shell
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is a thin HTTP client for communicating with a running loom
// instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient targets baseURL with the default request timeout.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, defaultTimeout)
}

// NewClientWithTimeout creates a Client with a custom timeout, for
// long-lived operations like following the frame stream.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the instance base URL the client was created with.
// Websocket endpoints are derived from it.
func (c *Client) BaseURL() string { return c.baseURL }

// Status fetches instance status from GET /api/status
// (version, open file count, terminal size, active path).
func (c *Client) Status() ([]byte, error) {
	return c.get("/api/status")
}

// Layout fetches the pane tree and current spans from GET /api/layout.
func (c *Client) Layout() ([]byte, error) {
	return c.get("/api/layout")
}

// Open asks the running editor to open a file.
func (c *Client) Open(path string) error {
	_, err := c.postJSON("/api/open", map[string]string{"path": path})
	return err
}

func (c *Client) get(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) postJSON(path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do runs the request and returns the body. A non-2xx response becomes
// an error carrying the server's own message when the body has one.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to loom: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loom returned status %d: %s", resp.StatusCode, serverError(body))
	}
	return body, nil
}

// serverError digs the "error" field out of a JSON body, falling back
// to the raw text.
func serverError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(body)
}
