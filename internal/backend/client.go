// Package backend reads published posts from the GW2Style posts service.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nzvengeance/gw2style/internal/models"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ErrNotFound is returned when the backend has no post with the given ID.
var ErrNotFound = errors.New("post not found")

// UpstreamError reports a network failure (Err set, StatusCode 0) or a
// non-success response from the posts backend.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("posts backend %s: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("posts backend %s (HTTP %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SearchQuery holds the backend search parameters. Tags are sent as one
// comma-joined value.
type SearchQuery struct {
	Query  string
	Author string
	Tags   []string
	Page   int
	Limit  int
}

func (q SearchQuery) values() url.Values {
	v := pageValues(q.Page, q.Limit)
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Author != "" {
		v.Set("author", q.Author)
	}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	return v
}

func pageValues(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

// ListPosts returns the newest published posts.
func (c *Client) ListPosts(ctx context.Context, page, limit int) (*models.PostPage, error) {
	return c.getPage(ctx, "/api/v1/posts", pageValues(page, limit))
}

// PopularPosts returns posts ordered by likes.
func (c *Client) PopularPosts(ctx context.Context, page, limit int) (*models.PostPage, error) {
	return c.getPage(ctx, "/api/v1/posts/popular", pageValues(page, limit))
}

func (c *Client) SearchPosts(ctx context.Context, q SearchQuery) (*models.PostPage, error) {
	return c.getPage(ctx, "/api/v1/posts/search", q.values())
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	path := "/api/v1/posts/" + url.PathEscape(id)
	body, err := c.doGet(ctx, path, nil)
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var resp struct {
		Success bool        `json:"success"`
		Data    models.Post `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing post %s: %w", id, err)
	}
	return &resp.Data, nil
}

func (c *Client) getPage(ctx context.Context, path string, query url.Values) (*models.PostPage, error) {
	body, err := c.doGet(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var page models.PostPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if page.Data == nil {
		page.Data = []models.Post{}
	}
	log.Debug().Str("path", path).Int("count", len(page.Data)).Int("total", page.Pagination.Total).Msg("fetched posts page")
	return &page, nil
}

// --- HTTP helpers ---

func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "GW2Style/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10)) // 1KB for error messages
		return nil, &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// errorMessage pulls the backend's {"error": "..."} text, else the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
