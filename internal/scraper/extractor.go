package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RedisClient is the part of *redis.Client used for the result cache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Extractor struct {
	fetcher     infra.PageFetcher
	stages      []stage
	redisClient RedisClient
	cacheTTL    time.Duration
	group       singleflight.Group
	logger      *zap.Logger
}

func NewExtractor(fetcher infra.PageFetcher, registry *Registry, logger *zap.Logger) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Extractor{
		fetcher: fetcher,
		stages: []stage{
			structuredDataStage,
			socialMetaStage,
			siteRuleStage(registry),
		},
		logger: logger,
	}
}

func (e *Extractor) SetRedisClient(client RedisClient, ttl time.Duration) {
	e.redisClient = client
	e.cacheTTL = ttl
}

// Extract fetches pageURL once and returns a complete record or an
// *ExtractionError. Concurrent calls for the same URL share one fetch.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*domain.ProductMetadata, error) {
	u, err := parsePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	key := u.String()

	if cached := e.cached(ctx, key); cached != nil {
		return cached, nil
	}

	// The shared fetch outlives any one caller; the page client bounds it.
	ch := e.group.DoChan(key, func() (interface{}, error) {
		return e.fetchAndExtract(context.WithoutCancel(ctx), u)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, &ExtractionError{Kind: ErrFetchFailed, URL: key, Err: ctx.Err()}
	}
	if res.Err != nil {
		return nil, res.Err
	}
	meta := *res.Val.(*domain.ProductMetadata)

	e.store(ctx, key, &meta)
	return &meta, nil
}

func (e *Extractor) fetchAndExtract(ctx context.Context, u *url.URL) (*domain.ProductMetadata, error) {
	page, err := e.fetcher.Fetch(ctx, u.String())
	if err != nil {
		e.logger.Warn("product page fetch failed", zap.String("url", u.String()), zap.Error(err))
		return nil, &ExtractionError{Kind: ErrFetchFailed, URL: u.String(), Err: err}
	}

	// Site rules follow redirects (short links), the platform does not.
	final := u
	if page.URL != "" {
		if pu, err := url.Parse(page.URL); err == nil && pu.Host != "" {
			final = pu
		}
	}
	return e.extractDocument(u, final, page.Body)
}

// ExtractHTML runs the extraction chain over an already fetched page.
func (e *Extractor) ExtractHTML(pageURL string, body []byte) (*domain.ProductMetadata, error) {
	u, err := parsePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	return e.extractDocument(u, u, body)
}

func (e *Extractor) extractDocument(requested, final *url.URL, body []byte) (*domain.ProductMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ExtractionError{Kind: ErrIncompleteData, URL: requested.String(), Missing: []string{"title", "price", "image"}, Err: err}
	}

	host := NormalizeHost(final.Hostname())
	f := fields{base: final}
	for _, run := range e.stages {
		run(doc, host, &f)
		if f.complete() {
			break
		}
	}

	if missing := f.missing(); len(missing) > 0 {
		e.logger.Info("product extraction incomplete",
			zap.String("url", requested.String()),
			zap.Strings("missing", missing))
		return nil, &ExtractionError{Kind: ErrIncompleteData, URL: requested.String(), Missing: missing}
	}

	return &domain.ProductMetadata{
		Title:    f.title,
		Price:    f.price,
		Image:    f.image,
		Platform: NormalizeHost(requested.Hostname()),
		URL:      requested.String(),
	}, nil
}

func (e *Extractor) cached(ctx context.Context, key string) *domain.ProductMetadata {
	if e.redisClient == nil {
		return nil
	}
	raw, err := e.redisClient.Get(ctx, cacheKey(key)).Result()
	if err != nil {
		return nil
	}
	var meta domain.ProductMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil
	}
	return &meta
}

func (e *Extractor) store(ctx context.Context, key string, meta *domain.ProductMetadata) {
	if e.redisClient == nil || e.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := e.redisClient.Set(ctx, cacheKey(key), data, e.cacheTTL).Err(); err != nil {
		e.logger.Warn("product cache write failed", zap.String("url", key), zap.Error(err))
	}
}

func cacheKey(u string) string {
	return "product-metadata:" + u
}

func parsePageURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ExtractionError{Kind: ErrInvalidURL, URL: raw, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, &ExtractionError{Kind: ErrInvalidURL, URL: raw}
	}
	u.Fragment = ""
	return u, nil
}

// NormalizeHost lower-cases host and strips a leading "www.".
func NormalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
