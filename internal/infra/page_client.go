package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is a current desktop Chrome string. Several marketplaces
// serve a block page to empty or library user agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const maxPageBytes = 5 << 20

var ErrUpstreamStatus = errors.New("upstream returned non-success status")

type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

type PageClient struct {
	userAgent  string
	httpClient *http.Client
}

func NewPageClient(timeout time.Duration) *PageClient {
	return &PageClient{
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *PageClient) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}

	return &Page{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode, Body: body}, nil
}
