// Package remote mirrors committed local mutations to the project service.
// It has two halves: pure command builders (payload.go) and an effect
// executor that sends a command once and never reports back to the caller.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// Config holds the connection settings for the project service.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client talks to the project service.
type Client interface {
	// PatchProject sends a partial update addressed by project id.
	PatchProject(ctx context.Context, projectID string, body Body) error

	// FetchProject loads the full project tree.
	FetchProject(ctx context.Context, projectID string) (*domain.Project, error)
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a Client for the service at cfg.Endpoint.
func NewHTTPClient(cfg Config) Client {
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

func (c *httpClient) PatchProject(ctx context.Context, projectID string, body Body) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling patch: %w", err)
	}
	_, err = c.do(ctx, http.MethodPatch, projectID, data)
	return err
}

func (c *httpClient) FetchProject(ctx context.Context, projectID string) (*domain.Project, error) {
	respBody, err := c.do(ctx, http.MethodGet, projectID, nil)
	if err != nil {
		return nil, err
	}
	var p domain.Project
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	return &p, nil
}

func (c *httpClient) do(ctx context.Context, method, projectID string, payload []byte) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	u := strings.TrimRight(c.cfg.Endpoint, "/") + "/projects/" + url.PathEscape(projectID)
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		if isConnectionError(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

// ErrorCode maps an error from this package to a short label for logs and
// metrics.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
