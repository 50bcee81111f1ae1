package pageretriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goforj/pageretriever/pagecache"
	"github.com/goforj/pageretriever/pagefake"
)

type observerSpy struct {
	events []observedFetch
}

type observedFetch struct {
	pageName string
	hit      bool
	err      error
	driver   pagecache.Driver
}

func (o *observerSpy) OnPageFetch(_ context.Context, pageName string, hit bool, err error, _ time.Duration, driver pagecache.Driver) {
	o.events = append(o.events, observedFetch{pageName: pageName, hit: hit, err: err, driver: driver})
}

func TestObserverSeesMissThenHit(t *testing.T) {
	obs := &observerSpy{}
	r := NewCachingPageRetriever(pagefake.NewRetriever(map[string]string{"Oracle Kai": "x"}), pagefake.NewStore(), WithObserver(obs))
	ctx := context.Background()

	r.FetchPage(ctx, "Oracle Kai")
	r.FetchPage(ctx, "Oracle Kai")

	if len(obs.events) != 2 {
		t.Fatalf("expected two events, got %d", len(obs.events))
	}
	if obs.events[0].hit || !obs.events[1].hit {
		t.Fatalf("expected miss then hit, got %+v", obs.events)
	}
	for _, e := range obs.events {
		if e.pageName != "Oracle Kai" || e.err != nil || e.driver != pagecache.DriverMemory {
			t.Fatalf("unexpected event %+v", e)
		}
	}
}

func TestObserverReceivesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	store := pagefake.NewStore()
	store.SetErr = boom
	var got error
	obs := ObserverFunc(func(_ context.Context, _ string, _ bool, err error, _ time.Duration, _ pagecache.Driver) {
		got = err
	})
	r := NewCachingPageRetriever(pagefake.NewRetriever(nil), store, WithObserver(obs))
	r.FetchPage(context.Background(), "Page")
	if !errors.Is(got, boom) {
		t.Fatalf("expected store error in event, got %v", got)
	}
}

func TestObserverFuncNilIsSafe(t *testing.T) {
	var f ObserverFunc
	f.OnPageFetch(context.Background(), "k", false, nil, 0, pagecache.DriverNull)
}

func TestLogObserverWritesDebugEntry(t *testing.T) {
	rec, log := newLogRecorder()
	r := NewCachingPageRetriever(pagefake.NewRetriever(nil), pagefake.NewStore(), WithObserver(LogObserver(log)))
	r.FetchPage(context.Background(), "Page")

	entries := rec.entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %v", rec.messages())
	}
	e := entries[0]
	if e.Get("level").String() != "debug" || e.Get("pageName").String() != "Page" || e.Get("hit").Bool() || e.Get("driver").String() != "memory" {
		t.Fatalf("unexpected entry %s", e.Raw)
	}
}
