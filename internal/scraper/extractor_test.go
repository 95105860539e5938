package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

type countingFetcher struct {
	calls int32
	delay time.Duration
	page  *infra.Page
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, pageURL string) (*infra.Page, error) {
	atomic.AddInt32(&f.calls, 1)
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blocked":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			b, err := os.ReadFile("testdata" + r.URL.Path)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(b)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestExtractor() *Extractor {
	return NewExtractor(infra.NewPageClient(2*time.Second), nil, zap.NewNop())
}

func TestExtractor_Extract(t *testing.T) {
	srv := fixtureServer(t)
	e := newTestExtractor()

	tests := []struct {
		name        string
		path        string
		want        *domain.ProductMetadata
		wantKind    error
		wantMissing []string
	}{
		{
			name: "full json-ld wins over og tags",
			path: "/jsonld_full.html",
			want: &domain.ProductMetadata{
				Title:    "Prestige Electric Kettle 1.5L",
				Price:    decimal.RequireFromString("1299.50"),
				Image:    "https://cdn.example.com/kettle-1.jpg",
				Platform: "127.0.0.1",
			},
		},
		{
			name: "graph container with relative image and aggregate offer",
			path: "/graph.html",
			want: &domain.ProductMetadata{
				Title:    "Trail Running Shoes",
				Price:    decimal.RequireFromString("3499"),
				Image:    srv.URL + "/media/shoe.jpg",
				Platform: "127.0.0.1",
			},
		},
		{
			name:        "og title and image only",
			path:        "/og_only.html",
			wantKind:    ErrIncompleteData,
			wantMissing: []string{"price"},
		},
		{
			name:     "upstream failure",
			path:     "/blocked",
			wantKind: ErrFetchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), srv.URL+tt.path)

			if tt.wantKind != nil {
				assert.Nil(t, got)
				assert.ErrorIs(t, err, tt.wantKind)
				var xerr *ExtractionError
				require.True(t, errors.As(err, &xerr))
				assert.Equal(t, tt.wantMissing, xerr.Missing)
				assert.NotEmpty(t, xerr.UserMessage())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Title, got.Title)
			assert.True(t, tt.want.Price.Equal(got.Price), "price %s", got.Price)
			assert.Equal(t, tt.want.Image, got.Image)
			assert.Equal(t, tt.want.Platform, got.Platform)
		})
	}
}

func TestExtractor_InvalidURL(t *testing.T) {
	e := newTestExtractor()

	for _, raw := range []string{"", "not a url", "ftp://example.com/item", "https:///nohost"} {
		_, err := e.Extract(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestExtractor_SiteRulesFillOnlyMissingFields(t *testing.T) {
	e := newTestExtractor()

	got, err := e.ExtractHTML("https://www.amazon.in/dp/B0TEST?ref=x", fixture(t, "amazon.html"))
	require.NoError(t, err)

	assert.Equal(t, "boAt Rockerz 450 Bluetooth Headphones", got.Title, "og title is found before the site rule")
	assert.Equal(t, "1499", got.Price.String())
	assert.Equal(t, "https://m.media-amazon.com/images/I/rockerz.jpg", got.Image)
	assert.Equal(t, "amazon.in", got.Platform)
}

func TestExtractor_UnusableImageFallsThrough(t *testing.T) {
	e := newTestExtractor()

	got, err := e.ExtractHTML("https://shop.example.com/kettle", fixture(t, "jsonld_lazy_image.html"))
	require.NoError(t, err)

	assert.Equal(t, "Steel Electric Kettle", got.Title)
	assert.Equal(t, "1299", got.Price.String())
	assert.Equal(t, "https://cdn.example.com/kettle.jpg", got.Image, "og image replaces the lazy-load placeholder")
}

func TestAbsoluteImage(t *testing.T) {
	base, err := url.Parse("https://shop.example.com/p/kettle")
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "https://cdn.example.com/a.jpg", want: "https://cdn.example.com/a.jpg"},
		{raw: "  /img/a.jpg ", want: "https://shop.example.com/img/a.jpg"},
		{raw: "//cdn.example.com/a.jpg", want: "https://cdn.example.com/a.jpg"},
		{raw: "data:image/gif;base64,R0lGOD", want: ""},
		{raw: "javascript:void(0)", want: ""},
		{raw: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, absoluteImage(base, tt.raw), tt.raw)
	}
}

func TestExtractor_UnknownSiteStaysIncomplete(t *testing.T) {
	e := newTestExtractor()

	_, err := e.ExtractHTML("https://shop.example.org/p/1", fixture(t, "amazon.html"))
	var xerr *ExtractionError
	require.True(t, errors.As(err, &xerr))
	assert.ErrorIs(t, err, ErrIncompleteData)
	assert.Equal(t, []string{"price", "image"}, xerr.Missing)
}

func TestExtractor_CustomRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(SiteRule{
		Name:  "example",
		Hosts: []string{"example.org"},
		Title: []string{"h1.name"},
		Price: []string{".cost"},
		Image: []ImageRule{{Selector: "img.hero", Attrs: []string{"src"}}},
	})
	e := NewExtractor(infra.NewPageClient(time.Second), registry, zap.NewNop())

	html := `<html><body><h1 class="name">Desk Lamp</h1><span class="cost">INR 899</span><img class="hero" src="//img.example.org/lamp.png"></body></html>`
	got, err := e.ExtractHTML("https://shop.example.org/lamp", []byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Title)
	assert.Equal(t, "899", got.Price.String())
	assert.Equal(t, "https://img.example.org/lamp.png", got.Image)
	assert.Equal(t, "shop.example.org", got.Platform)
	assert.Equal(t, []string{"example"}, registry.Names())
}

func TestExtractor_CoalescesConcurrentRequests(t *testing.T) {
	f := &countingFetcher{
		delay: 100 * time.Millisecond,
		page:  &infra.Page{StatusCode: 200, Body: fixtureBytes("jsonld_full.html")},
	}
	e := NewExtractor(f, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Extract(context.Background(), "https://shop.example.com/kettle")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

type gatedFetcher struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
	page    *infra.Page
}

func (f *gatedFetcher) Fetch(ctx context.Context, pageURL string) (*infra.Page, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	f.ctxErr <- ctx.Err()
	return f.page, nil
}

func TestExtractor_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := &gatedFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 2),
		page:    &infra.Page{StatusCode: 200, Body: fixtureBytes("jsonld_full.html")},
	}
	e := NewExtractor(f, nil, zap.NewNop())
	const pageURL = "https://shop.example.com/kettle"

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := e.Extract(firstCtx, pageURL)
		firstErr <- err
	}()
	<-f.started

	second := make(chan error, 1)
	go func() {
		_, err := e.Extract(context.Background(), pageURL)
		second <- err
	}()

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)

	close(f.release)
	assert.NoError(t, <-f.ctxErr, "the shared fetch keeps running")
	assert.NoError(t, <-second)
}

func TestExtractor_Cache(t *testing.T) {
	f := &countingFetcher{page: &infra.Page{StatusCode: 200, Body: fixtureBytes("jsonld_full.html")}}
	rdb := new(MockRedisClient)
	e := NewExtractor(f, nil, zap.NewNop())
	e.SetRedisClient(rdb, time.Minute)

	key := "product-metadata:https://shop.example.com/kettle"
	rdb.On("Get", mock.Anything, key).Return(redis.NewStringResult("", redis.Nil)).Once()
	rdb.On("Set", mock.Anything, key, mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil)).Once()

	first, err := e.Extract(context.Background(), "https://shop.example.com/kettle")
	require.NoError(t, err)

	cached := `{"title":"Cached Kettle","price":"999","image":"https://cdn.example.com/c.jpg","platform":"shop.example.com"}`
	rdb.On("Get", mock.Anything, key).Return(redis.NewStringResult(cached, nil)).Once()

	second, err := e.Extract(context.Background(), "https://shop.example.com/kettle")
	require.NoError(t, err)

	assert.Equal(t, "Prestige Electric Kettle 1.5L", first.Title)
	assert.Equal(t, "Cached Kettle", second.Title)
	assert.Equal(t, "999", second.Price.String())
	assert.Equal(t, int32(1), f.calls)
	rdb.AssertExpectations(t)
}

func TestExtractor_FailuresAreNotCached(t *testing.T) {
	f := &countingFetcher{err: errors.New("connection reset")}
	rdb := new(MockRedisClient)
	e := NewExtractor(f, nil, zap.NewNop())
	e.SetRedisClient(rdb, time.Minute)

	rdb.On("Get", mock.Anything, mock.Anything).Return(redis.NewStringResult("", redis.Nil))

	_, err := e.Extract(context.Background(), "https://shop.example.com/kettle")
	assert.ErrorIs(t, err, ErrFetchFailed)
	rdb.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func fixtureBytes(name string) []byte {
	b, err := os.ReadFile("testdata/" + name)
	if err != nil {
		panic(err)
	}
	return b
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "flipkart.com", NormalizeHost("WWW.Flipkart.com"))
	assert.Equal(t, "m.flipkart.com", NormalizeHost("m.flipkart.com"))
}
