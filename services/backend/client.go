// Package backend is a typed client for the classroom REST API.
package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tomnomnom/linkheader"
)

// maxPages bounds Link header pagination.
const maxPages = 100

var ErrNoToken = errors.New("not logged in")

// TokenSource provides the bearer token of the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Observer is told about every call: its route template, the response status (0 without a response) and duration.
type Observer func(method, route string, status int, elapsed time.Duration)

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Debug     bool
	Observer  Observer
	// Transport replaces the HTTP transport; tests use it to reach in-process servers.
	Transport http.RoundTripper
}

type Client struct {
	rc      *resty.Client
	tokens  TokenSource
	observe Observer
}

func New(opts Options) *Client {
	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetDebug(opts.Debug)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	observe := opts.Observer
	if observe == nil {
		observe = func(string, string, int, time.Duration) {}
	}
	return &Client{rc: rc, observe: observe}
}

// WithTokens returns a copy of the client that authenticates with `ts`.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) WithToken(token string) *Client {
	return c.WithTokens(StaticToken(token))
}

type call struct {
	method string
	route  string // template, used for metrics
	url    string // defaults to route
	auth   bool
	body   interface{}
	query  map[string]string
	path   map[string]string
}

// do performs one HTTP call. Transport errors are returned as is; non-2xx responses as *APIError.
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	req := c.rc.R().SetContext(ctx)
	if cl.auth {
		if c.tokens == nil {
			return nil, ErrNoToken
		}
		tkn, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "reading token")
		}
		if tkn == "" {
			return nil, ErrNoToken
		}
		req.SetAuthToken(tkn)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}
	if len(cl.path) > 0 {
		req.SetPathParams(cl.path)
	}

	url := cl.url
	if url == "" {
		url = cl.route
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, url)
	var status int
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	c.observe(cl.method, cl.route, status, time.Since(start))

	if err != nil {
		return nil, err
	}
	if resp.IsError() || status >= http.StatusMultipleChoices {
		return resp, newAPIError(resp.StatusCode(), resp.Body())
	}
	return resp, nil
}

// getList fetches every page of a list endpoint, following `Link: <...>; rel="next"` headers.
func getList[T any](ctx context.Context, c *Client, cl call, failMsg string) ([]T, error) {
	cl.method = http.MethodGet
	items := make([]T, 0)
	for page := 0; page < maxPages; page++ {
		resp, err := c.do(ctx, cl)
		if err != nil {
			return nil, err
		}

		var batch []T
		if err = decode(resp.Body(), &batch, failMsg); err != nil {
			return nil, err
		}
		items = append(items, batch...)

		next := linkheader.Parse(resp.Header().Get("Link")).FilterByRel("next")
		if len(next) == 0 || next[0].URL == "" {
			return items, nil
		}
		// the next link carries its own query
		cl.url, cl.query, cl.path = next[0].URL, nil, nil
	}
	return items, errors.Errorf("%s: more than %d pages", cl.route, maxPages)
}
