// Package fetch is the HTTP gateway to the Hacker News Firebase API.
//
// Every call is independently fallible and reports either a *NetworkError
// or a *ProtocolError. Requests share one rate limiter so a page of
// concurrent item fetches never bursts past the configured budget.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Firebase endpoint of the Hacker News API.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

// maxBodyBytes caps every response read. The top-story list is well under
// this; a larger answer is not a valid API response.
const maxBodyBytes = 4 << 20

const userAgent = "hnreader/1.0 (https://github.com/abelbrown/hnreader)"

// Client fetches story ids and items by id.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for baseURL with the given HTTP timeout.
// rps <= 0 disables rate limiting.
func NewClient(baseURL string, timeout time.Duration, rps float64, burst int) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// TopStoryIDs returns the current top story ids in ranking order.
func (c *Client) TopStoryIDs(ctx context.Context) ([]int64, error) {
	const op = "fetch top stories"

	var ids []int64
	if err := c.getJSON(ctx, op, "/topstories.json", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Story fetches one story-like item (story, job or poll) by id.
func (c *Client) Story(ctx context.Context, id int64) (*Story, error) {
	op := fmt.Sprintf("fetch story %d", id)

	var st Story
	if err := c.getJSON(ctx, op, itemPath(id), &st); err != nil {
		return nil, err
	}
	switch st.Type {
	case "", "story", "job", "poll":
	default:
		return nil, &ProtocolError{Op: op, StatusCode: http.StatusOK, Err: fmt.Errorf("%w: %q", ErrUnexpectedType, st.Type)}
	}
	return &st, nil
}

// Comment fetches one comment by id.
func (c *Client) Comment(ctx context.Context, id int64) (*Comment, error) {
	op := fmt.Sprintf("fetch comment %d", id)

	var cm Comment
	if err := c.getJSON(ctx, op, itemPath(id), &cm); err != nil {
		return nil, err
	}
	if cm.Type != "" && cm.Type != "comment" {
		return nil, &ProtocolError{Op: op, StatusCode: http.StatusOK, Err: fmt.Errorf("%w: %q", ErrUnexpectedType, cm.Type)}
	}
	return &cm, nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("/item/%d.json", id)
}

// getJSON performs a rate-limited GET of path and decodes the body into v.
// The function respects context cancellation.
func (c *Client) getJSON(ctx context.Context, op, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &ProtocolError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(op, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode, Err: ErrTooLarge}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode, Err: ErrNullItem}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
