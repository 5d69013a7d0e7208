package langgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

const (
	requestTimeout = 30 * time.Second
	healthTimeout  = 5 * time.Second
)

// Client talks to a LangGraph deployment over its REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Health verifies connectivity to the deployment. A 404 from the base URL
// still counts as reachable; some deployments have no /health route.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req, nil); err == nil {
		return nil
	}

	alt, err := c.newRequest(ctx, http.MethodGet, "", nil)
	if err != nil {
		return err
	}
	status, err := c.do(alt, nil)
	if err != nil && status != http.StatusNotFound {
		return cerr.NewError(cerr.Unavailable, "workflow API is unreachable", err)
	}
	return nil
}

// SearchInterrupted returns threads the API reports as interrupted. If the
// search endpoint fails it falls back to listing all threads and filtering
// locally by each thread's state, so non-interrupted threads never surface.
func (c *Client) SearchInterrupted(ctx context.Context, limit int) ([]ThreadInfo, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/threads/search", map[string]any{
		"status": "interrupted",
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}
	var threads []ThreadInfo
	_, err = c.do(req, &threads)
	if err == nil {
		return threads, nil
	}
	slog.Warn("thread search failed, falling back to listing all threads", "error", err)

	all, err := c.ListThreads(ctx)
	if err != nil {
		return nil, cerr.NewError(cerr.Unavailable, "could not list threads", err)
	}
	var interrupted []ThreadInfo
	for _, t := range all {
		state, err := c.GetThreadState(ctx, t.ThreadID)
		if err != nil {
			slog.Warn("skipping thread during fallback filter", "thread_id", t.ThreadID, "error", err)
			continue
		}
		if IsInterrupted(state) {
			interrupted = append(interrupted, t)
		}
	}
	return interrupted, nil
}

// ListThreads returns every thread known to the deployment.
func (c *Client) ListThreads(ctx context.Context) ([]ThreadInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/threads", nil)
	if err != nil {
		return nil, err
	}
	var threads []ThreadInfo
	if _, err := c.do(req, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// GetThreadState fetches the current state document of a thread.
func (c *Client) GetThreadState(ctx context.Context, threadID string) (*ThreadState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/threads/"+threadID+"/state", nil)
	if err != nil {
		return nil, err
	}
	var state ThreadState
	if _, err := c.do(req, &state); err != nil {
		return nil, cerr.NewFetchFailure(threadID, err)
	}
	return &state, nil
}

// GetThreadHistory fetches historical state documents, newest first.
func (c *Client) GetThreadHistory(ctx context.Context, threadID string) ([]ThreadState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/threads/"+threadID+"/history", nil)
	if err != nil {
		return nil, err
	}
	var history []ThreadState
	if _, err := c.do(req, &history); err != nil {
		return nil, cerr.NewFetchFailure(threadID, err)
	}
	return history, nil
}

// SubmitResume posts a resume payload to the thread's runs/wait endpoint.
// The payload shape is owned by the resume package; this method only reports
// whether the API accepted it.
func (c *Client) SubmitResume(ctx context.Context, threadID string, payload any) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/threads/"+threadID+"/runs/wait", payload)
	if err != nil {
		return err
	}
	status, err := c.do(req, nil)
	if err != nil {
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return cerr.NewError(cerr.Unauthenticated, "workflow API rejected credentials", err)
		case http.StatusNotFound:
			return cerr.NewError(cerr.NotFound, fmt.Sprintf("thread %s not found", threadID), err)
		default:
			return err
		}
	}
	return nil
}
