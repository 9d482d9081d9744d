package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxConcurrent  = 4
)

// Client talks to the comment service.
type Client struct {
	http    *http.Client
	baseURL string
	pages   *pageCache
}

// NewClient creates a client for the service rooted at baseURL, e.g.
// http://localhost:8080/api. Prefetched pages are kept for prefetchTTL;
// zero disables prefetching.
func NewClient(baseURL string, timeout, prefetchTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		pages:   newPageCache(prefetchTTL),
	}
}

// do sends a request and unwraps the envelope into dst. dst may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst interface{}) error {
	op := method + " " + path

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", "commentbox/1.0")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &ServerError{Code: resp.StatusCode, Message: fmt.Sprintf("server error: %d", resp.StatusCode)}
		}
		return &NetworkError{Op: op, Err: fmt.Errorf("decoding envelope: %w", err)}
	}

	if env.Code != CodeOK {
		return &ServerError{Code: env.Code, Message: env.Msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Code: resp.StatusCode, Message: env.Msg}
	}

	if dst == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decoding payload: %w", err)}
	}
	return nil
}

// FetchPage fetches one page. size may be pager.Unbounded (-1).
func (c *Client) FetchPage(ctx context.Context, page, size int) (Page, error) {
	if p, ok := c.pages.get(page, size); ok {
		return p, nil
	}
	return c.fetchPage(ctx, page, size)
}

func (c *Client) fetchPage(ctx context.Context, page, size int) (Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var p Page
	if err := c.do(ctx, http.MethodGet, "/comment/get", q, nil, &p); err != nil {
		return Page{}, err
	}
	if p.Items == nil {
		p.Items = []Comment{}
	}
	return p, nil
}

// Create adds a comment and returns it with its assigned ID.
func (c *Client) Create(ctx context.Context, nc NewComment) (Comment, error) {
	var created Comment
	err := c.do(ctx, http.MethodPost, "/comment/add", nil, nc.Normalize(), &created)
	c.pages.clear()
	if err != nil {
		return Comment{}, err
	}
	return created, nil
}

// Delete removes a comment by ID.
func (c *Client) Delete(ctx context.Context, id uint64) error {
	q := url.Values{}
	q.Set("id", strconv.FormatUint(id, 10))
	err := c.do(ctx, http.MethodPost, "/comment/delete", q, nil, nil)
	c.pages.clear()
	return err
}
