package pageretriever

import (
	"context"
	"time"

	"github.com/goforj/pageretriever/pagecache"
	"github.com/rs/zerolog"
)

// Observer receives one event per CachingPageRetriever.FetchPage call, after
// the call completes. err carries store failures only; the inner retriever
// never reports one.
type Observer interface {
	OnPageFetch(ctx context.Context, pageName string, hit bool, err error, dur time.Duration, driver pagecache.Driver)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, pageName string, hit bool, err error, dur time.Duration, driver pagecache.Driver)

// OnPageFetch implements Observer.
func (f ObserverFunc) OnPageFetch(ctx context.Context, pageName string, hit bool, err error, dur time.Duration, driver pagecache.Driver) {
	if f == nil {
		return
	}
	f(ctx, pageName, hit, err, dur, driver)
}

// LogObserver writes cache events to log at debug level.
func LogObserver(log zerolog.Logger) Observer {
	return ObserverFunc(func(_ context.Context, pageName string, hit bool, err error, dur time.Duration, driver pagecache.Driver) {
		log.Debug().
			Str("pageName", pageName).
			Bool("hit", hit).
			Err(err).
			Dur("duration", dur).
			Str("driver", string(driver)).
			Msg("page cache")
	})
}
