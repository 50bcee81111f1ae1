package pageretriever

import (
	"context"
	"errors"
	"time"

	"github.com/goforj/pageretriever/pagecache"
	"github.com/rs/zerolog"
)

// CachingPageRetriever wraps a PageRetriever with cache-aside reads keyed by the
// page name exactly as the caller passed it.
//
// Every inner result is cached, including "", unless the context was
// cancelled while the inner retriever ran. There is no locking: concurrent
// misses for the same page may each call the inner retriever and each write.
type CachingPageRetriever struct {
	inner    PageRetriever
	store    pagecache.Store
	ttl      time.Duration
	log      zerolog.Logger
	observer Observer
}

// CachingOption customises a CachingPageRetriever.
type CachingOption func(*CachingPageRetriever)

// WithTTL sets the lifetime of written entries. Zero uses the store default.
func WithTTL(ttl time.Duration) CachingOption {
	return func(c *CachingPageRetriever) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(log zerolog.Logger) CachingOption {
	return func(c *CachingPageRetriever) {
		c.log = log
	}
}

// WithObserver attaches an observer to receive fetch events.
func WithObserver(o Observer) CachingOption {
	return func(c *CachingPageRetriever) {
		c.observer = o
	}
}

// NewCachingPageRetriever returns inner wrapped with store. A nil store never
// caches and a nil inner retriever always yields "".
//
// Example:
//
//	ctx := context.Background()
//	inner := pageretriever.RetrieverFunc(func(context.Context, string) string { return "hello" })
//	r := pageretriever.NewCachingPageRetriever(inner, pagecache.NewMemoryStore(ctx))
//	fmt.Println(r.FetchPage(ctx, "Main Page")) // hello
func NewCachingPageRetriever(inner PageRetriever, store pagecache.Store, opts ...CachingOption) *CachingPageRetriever {
	if inner == nil {
		inner = RetrieverFunc(nil)
	}
	if store == nil {
		store = pagecache.NewNullStore(context.Background())
	}
	c := &CachingPageRetriever{
		inner: inner,
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage implements PageRetriever.
func (c *CachingPageRetriever) FetchPage(ctx context.Context, pageName string) string {
	start := time.Now()
	cached, ok, getErr := c.store.Get(ctx, pageName)
	if getErr != nil {
		notice(c.log).Err(getErr).Str("pageName", pageName).Msg("Page cache lookup failed")
	} else if ok {
		c.observe(ctx, pageName, true, nil, start)
		return string(cached)
	}

	content := c.inner.FetchPage(ctx, pageName)

	// A cancelled caller gets whatever the inner retriever produced, but that
	// result says nothing about the page and is not written back.
	if ctx.Err() != nil {
		c.observe(ctx, pageName, false, getErr, start)
		return content
	}
	setErr := c.store.Set(ctx, pageName, []byte(content), c.ttl)
	if setErr != nil {
		notice(c.log).Err(setErr).Str("pageName", pageName).Msg("Page cache write failed")
	}
	c.observe(ctx, pageName, false, errors.Join(getErr, setErr), start)
	return content
}

func (c *CachingPageRetriever) observe(ctx context.Context, pageName string, hit bool, err error, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.OnPageFetch(ctx, pageName, hit, err, time.Since(start), c.store.Driver())
}
