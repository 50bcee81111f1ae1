// Package pagefake provides an in-memory page cache store and a scripted page
// retriever that record calls for assertions in tests.
package pagefake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goforj/pageretriever/pagecache"
)

// Op identifies a store operation for assertions.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpFlush  Op = "flush"
)

type counter struct {
	mu     sync.Mutex
	counts map[Op]map[string]int
}

func (c *counter) record(op Op, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[Op]map[string]int)
	}
	if c.counts[op] == nil {
		c.counts[op] = make(map[string]int)
	}
	c.counts[op][key]++
}

func (c *counter) count(op Op, key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[op][key]
}

func (c *counter) total(op Op) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum int
	for _, v := range c.counts[op] {
		sum += v
	}
	return sum
}

func (c *counter) reset() {
	c.mu.Lock()
	c.counts = nil
	c.mu.Unlock()
}

// Store is a map-backed pagecache.Store. It starts no goroutines, so it is safe
// to use under goroutine leak checks. GetErr and SetErr, when set, are returned
// by every Get or Set call.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
	calls  counter

	GetErr error
	SetErr error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Seed stores value under key without recording a call.
func (s *Store) Seed(key, value string) {
	s.mu.Lock()
	s.values[key] = []byte(value)
	s.mu.Unlock()
}

// Value returns the stored value for key without recording a call.
func (s *Store) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return string(v), ok
}

func (s *Store) Driver() pagecache.Driver { return pagecache.DriverMemory }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.calls.record(OpGet, key)
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.calls.record(OpSet, key)
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	s.values[key] = append([]byte{}, value...)
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.calls.record(OpDelete, key)
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Flush(context.Context) error {
	s.calls.record(OpFlush, "")
	s.mu.Lock()
	s.values = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}

// Reset clears recorded calls.
func (s *Store) Reset() { s.calls.reset() }

// Count returns calls for op+key.
func (s *Store) Count(op Op, key string) int { return s.calls.count(op, key) }

// Total returns total calls for op across keys.
func (s *Store) Total(op Op) int { return s.calls.total(op) }

// AssertCalled verifies key was touched by op the expected number of times.
func (s *Store) AssertCalled(t testing.TB, op Op, key string, times int) {
	t.Helper()
	if got := s.Count(op, key); got != times {
		t.Fatalf("expected %s %q called %d times, got %d", op, key, times, got)
	}
}

// AssertTotal ensures the total call count for op matches times.
func (s *Store) AssertTotal(t testing.TB, op Op, times int) {
	t.Helper()
	if got := s.Total(op); got != times {
		t.Fatalf("expected %s total=%d, got %d", op, times, got)
	}
}

// Retriever serves pages from a map and counts FetchPage calls per name.
// Unknown names yield "".
type Retriever struct {
	mu    sync.Mutex
	pages map[string]string
	calls counter
}

// NewRetriever returns a Retriever serving a copy of pages.
func NewRetriever(pages map[string]string) *Retriever {
	r := &Retriever{pages: make(map[string]string, len(pages))}
	for k, v := range pages {
		r.pages[k] = v
	}
	return r
}

// FetchPage returns the scripted content for pageName.
func (r *Retriever) FetchPage(_ context.Context, pageName string) string {
	r.calls.record("fetch", pageName)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages[pageName]
}

// SetPage replaces the content served for pageName.
func (r *Retriever) SetPage(pageName, content string) {
	r.mu.Lock()
	r.pages[pageName] = content
	r.mu.Unlock()
}

// Calls returns the number of FetchPage calls for pageName.
func (r *Retriever) Calls(pageName string) int { return r.calls.count("fetch", pageName) }

// Total returns the number of FetchPage calls across all names.
func (r *Retriever) Total() int { return r.calls.total("fetch") }

// AssertCalled verifies pageName was fetched the expected number of times.
func (r *Retriever) AssertCalled(t testing.TB, pageName string, times int) {
	t.Helper()
	if got := r.Calls(pageName); got != times {
		t.Fatalf("expected FetchPage(%q) called %d times, got %d", pageName, times, got)
	}
}

// AssertNotCalled ensures no page was fetched.
func (r *Retriever) AssertNotCalled(t testing.TB) {
	t.Helper()
	if got := r.Total(); got != 0 {
		t.Fatalf("expected no FetchPage calls, got %d", got)
	}
}
