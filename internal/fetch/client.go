// Package fetch retrieves raw share-page content through the CORS proxy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Kind classifies a fetch failure.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindNetwork Kind = "network"
	KindHTTP    Kind = "http_error"
)

// Error is the terminal failure of a fetch, after retries are exhausted.
type Error struct {
	Kind   Kind
	Status int // set for KindHTTP
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("fetch: http %d", e.Status)
	default:
		return fmt.Sprintf("fetch: %s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// retryable reports whether another attempt could succeed. Client errors
// (invalid or private share link) never do.
func (e *Error) retryable() bool {
	if e.Kind == KindHTTP {
		return e.Status >= 500
	}
	return true
}

// Page is the raw content of a fetched share page.
type Page struct {
	Link      string
	Body      string
	FetchedAt time.Time
}

type Client struct {
	base     string // proxy base URL, no trailing slash
	attempts int
	backoff  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// NewClient builds a fetch client routed through the proxy at base.
// attempts is the total attempt count per link; timeout applies per attempt.
func NewClient(base string, attempts int, timeout time.Duration, logger *slog.Logger) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		attempts: attempts,
		backoff:  800 * time.Millisecond,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Fetch retrieves the page behind link via the proxy's /fetch endpoint.
// Timeouts, network errors and 5xx responses are retried with a growing
// pause; 4xx responses fail immediately.
func (c *Client) Fetch(ctx context.Context, link string) (*Page, error) {
	target := c.base + "/fetch?url=" + url.QueryEscape(link)

	var last *Error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		page, ferr := c.fetchOnce(ctx, target, link)
		if ferr == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		last = ferr
		if !ferr.retryable() || attempt == c.attempts {
			break
		}
		c.logger.Warn("fetch attempt failed, retrying",
			"link", link,
			"attempt", attempt,
			"kind", string(ferr.Kind),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
	return nil, last
}

func (c *Client) fetchOnce(ctx context.Context, target, link string) (*Page, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTP, Status: resp.StatusCode}
	}

	return &Page{Link: link, Body: string(body), FetchedAt: time.Now().UTC()}, nil
}

func classify(err error) *Error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
