package proxy

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Share pages answer 403 to the default Go user agent; present a browser.
var upstreamHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/127.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://chatgpt.com/",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// Upstream fetches share-page HTML from the chat service.
type Upstream struct {
	client  *http.Client
	retries int
	logger  *slog.Logger
}

func NewUpstream(retries int, timeout time.Duration, logger *slog.Logger) *Upstream {
	if retries < 1 {
		retries = 1
	}
	return &Upstream{
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		logger:  logger,
	}
}

// Fetch tries each candidate URL in turn, retrying per candidate. It moves
// to the next candidate only on 403, where the alternate host sometimes
// succeeds. Returns the final upstream status and body.
func (u *Upstream) Fetch(ctx context.Context, candidates []string) (int, string) {
	lastStatus, lastBody := http.StatusBadGateway, "upstream_fetch_failed"

	for i, candidate := range candidates {
		lastStatus, lastBody = u.fetchCandidate(ctx, candidate)
		if lastStatus >= 200 && lastStatus <= 299 {
			return http.StatusOK, lastBody
		}
		if lastStatus != http.StatusForbidden {
			return lastStatus, lastBody
		}
		if i < len(candidates)-1 {
			u.logger.Info("upstream 403, trying alternate host", "url", candidate)
		}
	}
	return lastStatus, lastBody
}

func (u *Upstream) fetchCandidate(ctx context.Context, target string) (int, string) {
	status, body := http.StatusBadGateway, "upstream_fetch_failed"
	for attempt := 0; attempt < u.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return http.StatusBadGateway, "upstream_fetch_failed: " + err.Error()
		}
		for k, v := range upstreamHeaders {
			req.Header.Set(k, v)
		}

		resp, err := u.client.Do(req)
		if err != nil {
			status, body = http.StatusBadGateway, "upstream_fetch_failed: "+err.Error()
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			status, body = http.StatusBadGateway, "upstream_fetch_failed: "+err.Error()
			continue
		}

		status, body = resp.StatusCode, string(data)
		if status >= 200 && status <= 299 {
			return status, body
		}
	}
	return status, body
}
