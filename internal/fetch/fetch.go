// Package fetch retrieves source archives and exposes their contained
// table as a lazy row stream.
//
// The fetcher knows nothing about the record schema: it hands back raw
// header-keyed rows and leaves interpretation to the normalizer. Retry
// policy belongs to callers; ingestion runs are idempotent, so a failed
// fetch is always safe to re-run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	propseekerrors "github.com/propseek/propseek/internal/errors"
)

// Client downloads archives from the upstream file server.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
}

// NewClient creates a fetch client. timeout bounds each download;
// fetchesPerMinute throttles requests against the upstream server
// (zero disables throttling).
func NewClient(baseURL string, timeout time.Duration, fetchesPerMinute int) *Client {
	var limiter *rate.Limiter
	if fetchesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(fetchesPerMinute)), 1)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Fetch downloads the archive at location (relative to the base URL) and
// returns its bytes. Transport failures, timeouts, and non-2xx responses
// surface as ERR_201_FETCH_FAILED.
func (c *Client) Fetch(ctx context.Context, location string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, propseekerrors.FetchFailed(
				fmt.Sprintf("rate limit wait aborted for %s", location), err)
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(location, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, propseekerrors.FetchFailed(
			fmt.Sprintf("invalid request for %s", url), err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, propseekerrors.FetchFailed(
			fmt.Sprintf("download failed for %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, propseekerrors.FetchFailed(
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url), nil)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, propseekerrors.FetchFailed(
			fmt.Sprintf("truncated download for %s", url), err)
	}
	return blob, nil
}
