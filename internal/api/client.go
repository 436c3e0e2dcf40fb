package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend defines the calls the console makes against the outreach backend.
// It is implemented by *Client and can be faked in tests.
type Backend interface {
	FetchStats(ctx context.Context) (Stats, error)
	FetchStatus(ctx context.Context) (Status, error)
	FetchConfig(ctx context.Context) (Config, error)
	UpdateConfig(ctx context.Context, cfg Config) (UpdateResult, error)
	StartAgent(ctx context.Context, name string) (AgentResult, error)
	FetchAuthors(ctx context.Context) ([]Author, error)
	SyncAuthors(ctx context.Context) (SyncResult, error)
	ExportAuthors(ctx context.Context, w io.Writer) (int64, error)
	FetchLogs(ctx context.Context) ([]string, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Agents lists the agent names the backend knows how to start.
var Agents = []string{"discovery", "profiling", "email", "validation", "outreach", "logging"}

// Client talks to the outreach backend's HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL   = "http://127.0.0.1:5000/api"
	defaultUserAgent = "scout/0.1"
	requestTimeout   = 10 * time.Second
	exportTimeout    = 2 * time.Minute
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Message extracts the backend's message from err when it carries one.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return ""
}

// NewClient builds a Client for the given API base URL (scheme optional,
// "/api" appended when no path is given).
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchStats retrieves the outreach counters.
func (c *Client) FetchStats(ctx context.Context) (Stats, error) {
	var payload Stats
	if err := c.do(ctx, http.MethodGet, "stats", nil, &payload); err != nil {
		return Stats{}, err
	}
	return payload, nil
}

// FetchStatus retrieves backend liveness and version.
func (c *Client) FetchStatus(ctx context.Context) (Status, error) {
	var payload Status
	if err := c.do(ctx, http.MethodGet, "status", nil, &payload); err != nil {
		return Status{}, err
	}
	return payload, nil
}

// FetchConfig retrieves the full agent configuration.
func (c *Client) FetchConfig(ctx context.Context) (Config, error) {
	var payload Config
	if err := c.do(ctx, http.MethodGet, "config", nil, &payload); err != nil {
		return Config{}, err
	}
	return payload, nil
}

// UpdateConfig writes the complete configuration document.
func (c *Client) UpdateConfig(ctx context.Context, cfg Config) (UpdateResult, error) {
	var payload UpdateResult
	if err := c.do(ctx, http.MethodPost, "config", cfg, &payload); err != nil {
		return UpdateResult{}, err
	}
	return payload, nil
}

// StartAgent asks the backend to launch the named agent.
func (c *Client) StartAgent(ctx context.Context, name string) (AgentResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AgentResult{}, fmt.Errorf("agent name required")
	}
	var payload AgentResult
	err := c.do(ctx, http.MethodPost, "agents/"+name+"/start", nil, &payload)
	if err != nil {
		return AgentResult{}, err
	}
	return payload, nil
}

// FetchAuthors retrieves every stored author.
func (c *Client) FetchAuthors(ctx context.Context) ([]Author, error) {
	var payload []Author
	if err := c.do(ctx, http.MethodGet, "authors", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SyncAuthors imports freshly profiled authors into the backend database.
func (c *Client) SyncAuthors(ctx context.Context) (SyncResult, error) {
	var payload SyncResult
	if err := c.do(ctx, http.MethodPost, "authors/sync", nil, &payload); err != nil {
		return SyncResult{}, err
	}
	return payload, nil
}

// FetchLogs retrieves the backend's recent log lines.
func (c *Client) FetchLogs(ctx context.Context) ([]string, error) {
	var payload LogsResponse
	if err := c.do(ctx, http.MethodGet, "logs", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" && len(payload.Logs) == 0 {
		return nil, fmt.Errorf("logs: %s", payload.Error)
	}
	return payload.Logs, nil
}

// ExportAuthors streams the CSV export into w and returns the bytes written.
func (c *Client) ExportAuthors(ctx context.Context, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	rel := "authors/export"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(rel).String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", c.userAgent)

	// The shared client's timeout would cut long downloads short.
	streaming := &http.Client{Transport: c.http.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return 0, statusError(rel, resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("copy export: %w", err)
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, method, rel string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(rel).String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return statusError(rel, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) resolve(rel string) *url.URL {
	return c.baseURL.JoinPath(rel)
}

func statusError(rel string, resp *http.Response) error {
	se := &StatusError{Path: "/" + rel, Code: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		se.Message = strings.TrimSpace(payload.Message)
		if se.Message == "" {
			se.Message = strings.TrimSpace(payload.Error)
		}
	}
	return se
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	if u.Path == "" {
		u.Path = "/api"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
