// Package github searches GitHub for candidate repositories.
package github

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

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// PerPage is the page size requested from the search API.
const PerPage = 100

// ErrRateLimited is returned when GitHub refuses a request for exceeding
// the rate limit.
var ErrRateLimited = errors.New("github rate limit exceeded")

// Repository is the subset of a search result the miner uses.
type Repository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	CloneURL string `json:"clone_url"`
	Stars    int    `json:"stargazers_count"`
	Fork     bool   `json:"fork"`
	Archived bool   `json:"archived"`
}

type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []Repository `json:"items"`
}

// Client calls the repository search API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	pages   int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRate limits outgoing requests to rps per second. rps <= 0 disables
// pacing.
func WithRate(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithPages sets how many result pages a search reads.
func WithPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pages = n
		}
	}
}

// WithHTTPClient replaces the transport. The token, if any, is not applied
// to a replaced client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a client. A non-empty token authenticates every request.
func New(ctx context.Context, token string, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		pages:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchRepositories returns repositories matching query ordered by stars
// descending.
func (c *Client) SearchRepositories(ctx context.Context, query string) ([]Repository, error) {
	var out []Repository
	for page := 1; page <= c.pages; page++ {
		items, err := c.searchPage(ctx, query, page)
		if err != nil {
			return out, err
		}
		out = append(out, items...)
		if len(items) < PerPage {
			break
		}
	}
	return out, nil
}

func (c *Client) searchPage(ctx context.Context, query string, page int) ([]Repository, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", strconv.Itoa(PerPage))
	q.Set("page", strconv.Itoa(page))
	endpoint := c.baseURL + "/search/repositories?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if isRateLimited(resp) {
		return nil, fmt.Errorf("search %q: %w", query, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search %q: unexpected status %d: %s", query, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Items, nil
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}
