package filefetcher

import (
	"context"
	"os"
	"sync"
)

// InMemoryFetcher serves files from a map. Missing names fail with os.ErrNotExist.
type InMemoryFetcher struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewInMemoryFetcher copies files into a new fetcher.
func NewInMemoryFetcher(files map[string]string) *InMemoryFetcher {
	f := &InMemoryFetcher{files: make(map[string]string, len(files))}
	for k, v := range files {
		f.files[k] = v
	}
	return f
}

// Put adds or replaces a file.
func (f *InMemoryFetcher) Put(name, content string) {
	f.mu.Lock()
	f.files[name] = content
	f.mu.Unlock()
}

func (f *InMemoryFetcher) FetchFile(_ context.Context, name string) (string, error) {
	f.mu.RLock()
	content, ok := f.files[name]
	f.mu.RUnlock()
	if !ok {
		return "", fetchErr(name, os.ErrNotExist)
	}
	return content, nil
}
