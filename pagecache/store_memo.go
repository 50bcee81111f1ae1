package pagecache

import (
	"context"
	"sync"
	"time"
)

// memoPage is one remembered lookup. present=false memoizes a miss.
type memoPage struct {
	body    []byte
	present bool
	until   time.Time
}

// NewMemoStore puts a per-process read memo in front of store.
//
// A page read through the memo is answered locally until the entry expires.
// The expiry is the deadline of the last Set made through the memo for that
// page, so a page cached for a minute is never served from the memo for
// longer. Pages first seen via Get (written by another process, or before
// this process started) and memoized misses are kept for at most defaultTTL.
func NewMemoStore(store Store, defaultTTL time.Duration) Store {
	if defaultTTL <= 0 {
		defaultTTL = defaultCacheTTL
	}
	return &memoStore{
		store:      store,
		defaultTTL: defaultTTL,
		pages:      make(map[string]memoPage),
		deadlines:  make(map[string]time.Time),
		now:        time.Now,
	}
}

type memoStore struct {
	store      Store
	defaultTTL time.Duration
	now        func() time.Time

	mu        sync.Mutex
	pages     map[string]memoPage
	deadlines map[string]time.Time
}

func (s *memoStore) Driver() Driver {
	return s.store.Driver()
}

func (s *memoStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	now := s.now()
	s.mu.Lock()
	page, ok := s.pages[name]
	if ok && now.Before(page.until) {
		s.mu.Unlock()
		return cloneBytes(page.body), page.present, nil
	}
	delete(s.pages, name)
	s.mu.Unlock()

	body, present, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	until := now.Add(s.defaultTTL)
	if deadline, known := s.deadlines[name]; known {
		if deadline.After(now) && deadline.Before(until) {
			until = deadline
		} else if !deadline.After(now) {
			delete(s.deadlines, name)
		}
	}
	s.pages[name] = memoPage{body: cloneBytes(body), present: present, until: until}
	s.mu.Unlock()
	return cloneBytes(body), present, nil
}

func (s *memoStore) Set(ctx context.Context, name string, content []byte, ttl time.Duration) error {
	if err := s.store.Set(ctx, name, content, ttl); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.mu.Lock()
	delete(s.pages, name)
	s.deadlines[name] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *memoStore) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.pages, name)
	delete(s.deadlines, name)
	s.mu.Unlock()
	return nil
}

func (s *memoStore) Flush(ctx context.Context) error {
	if err := s.store.Flush(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.pages = make(map[string]memoPage)
	s.deadlines = make(map[string]time.Time)
	s.mu.Unlock()
	return nil
}
