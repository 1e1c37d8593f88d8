// Package client is a typed HTTP client for the market-intelligence API.
package client

import (
	"bytes"
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

	"github.com/zappabad/squawk/internal/comments"
	"github.com/zappabad/squawk/internal/graph"
	"github.com/zappabad/squawk/internal/market"
	"github.com/zappabad/squawk/internal/news"
	"github.com/zappabad/squawk/internal/portfolio"
)

// ErrEmptyInput is returned, before any request is made, for blank user input.
var ErrEmptyInput = errors.New("empty input")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Citation is a feed item the chat answer was drawn from.
type Citation struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Ticker   string `json:"ticker"`
}

// ChatAnswer is the response to a chat query.
type ChatAnswer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Client talks to one API base URL. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// LatestNews returns up to limit feed events, newest first.
func (c *Client) LatestNews(ctx context.Context, limit int) ([]news.Event, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []news.Event
	if err := c.do(ctx, http.MethodGet, "/latest-news", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Graph fetches the graph served at path, e.g. /butterfly-effect/graph.
func (c *Client) Graph(ctx context.Context, path string) (graph.Model, error) {
	var out graph.Model
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return graph.Model{}, err
	}
	return out, nil
}

// Shock asks for the impact of disrupting nodeID by magnitude.
func (c *Client) Shock(ctx context.Context, nodeID string, magnitude float64) (map[string]float64, error) {
	if strings.TrimSpace(nodeID) == "" {
		return nil, ErrEmptyInput
	}
	q := url.Values{}
	q.Set("node_id", nodeID)
	q.Set("magnitude", strconv.FormatFloat(magnitude, 'f', -1, 64))
	out := map[string]float64{}
	if err := c.do(ctx, http.MethodPost, "/butterfly-effect/shock", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Portfolio returns the simulated trader's account.
func (c *Client) Portfolio(ctx context.Context) (portfolio.Portfolio, error) {
	var out portfolio.Portfolio
	if err := c.do(ctx, http.MethodGet, "/portfolio", nil, nil, &out); err != nil {
		return portfolio.Portfolio{}, err
	}
	return out, nil
}

// Comments returns the thread of a feed event, newest first.
func (c *Client) Comments(ctx context.Context, id news.EventID) ([]comments.Comment, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrEmptyInput
	}
	var out []comments.Comment
	if err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(string(id)), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PostComment creates a comment. Blank content is rejected without a request.
func (c *Client) PostComment(ctx context.Context, nc comments.NewComment) (comments.Comment, error) {
	nc.Content = strings.TrimSpace(nc.Content)
	if nc.Content == "" || nc.NewsItemID == "" {
		return comments.Comment{}, ErrEmptyInput
	}
	var out comments.Comment
	if err := c.do(ctx, http.MethodPost, "/comments", nil, nc, &out); err != nil {
		return comments.Comment{}, err
	}
	return out, nil
}

// UpvoteComment adds one upvote to a comment.
func (c *Client) UpvoteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/comments/"+strconv.FormatInt(id, 10)+"/upvote", nil, nil, nil)
}

// MarketData returns the daily price series of ticker, oldest first.
func (c *Client) MarketData(ctx context.Context, ticker string) ([]market.PricePoint, error) {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrEmptyInput
	}
	var out []market.PricePoint
	if err := c.do(ctx, http.MethodGet, "/market-data/"+url.PathEscape(ticker), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat asks a free-form question about the feed.
func (c *Client) Chat(ctx context.Context, query string) (ChatAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ChatAnswer{}, ErrEmptyInput
	}
	var out ChatAnswer
	body := struct {
		Query string `json:"query"`
	}{query}
	if err := c.do(ctx, http.MethodPost, "/chat", nil, body, &out); err != nil {
		return ChatAnswer{}, err
	}
	return out, nil
}

// Simulate runs a what-if premise and returns the raw result document.
func (c *Client) Simulate(ctx context.Context, premise string) (json.RawMessage, error) {
	premise = strings.TrimSpace(premise)
	if premise == "" {
		return nil, ErrEmptyInput
	}
	q := url.Values{}
	q.Set("premise", premise)
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/multiverse/simulate", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one request. A nil in skips the body, a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
