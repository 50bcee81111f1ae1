package pagecache

import (
	"context"
	"fmt"
	"time"
)

// PageTooLargeError reports a page whose stored body would exceed the
// configured limit. Size is measured after compression.
type PageTooLargeError struct {
	Page  string
	Size  int
	Limit int
}

func (e *PageTooLargeError) Error() string {
	return fmt.Sprintf("pagecache: page %q is %d bytes, limit %d", e.Page, e.Size, e.Limit)
}

// Is matches ErrValueTooLarge.
func (e *PageTooLargeError) Is(target error) bool {
	return target == ErrValueTooLarge
}

// pageBodyStore compresses page bodies on their way to the driver and
// enforces the size limit. A body that no longer decodes is removed so the
// next lookup misses and the page is fetched again.
type pageBodyStore struct {
	inner Store
	codec CompressionCodec
	limit int
}

func newPageBodyStore(inner Store, codec CompressionCodec, limit int) Store {
	if (codec == CompressionNone || codec == "") && limit <= 0 {
		return inner
	}
	return &pageBodyStore{inner: inner, codec: codec, limit: limit}
}

func (s *pageBodyStore) Driver() Driver { return s.inner.Driver() }

func (s *pageBodyStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	stored, ok, err := s.inner.Get(ctx, name)
	if err != nil || !ok {
		return stored, ok, err
	}
	content, err := decodeValue(stored)
	if err != nil {
		_ = s.inner.Delete(ctx, name)
		return nil, false, fmt.Errorf("pagecache: page %q: %w", name, err)
	}
	return content, true, nil
}

func (s *pageBodyStore) Set(ctx context.Context, name string, content []byte, ttl time.Duration) error {
	stored, err := encodeValue(s.codec, content)
	if err != nil {
		return err
	}
	if s.limit > 0 && len(stored) > s.limit {
		return &PageTooLargeError{Page: name, Size: len(stored), Limit: s.limit}
	}
	return s.inner.Set(ctx, name, stored, ttl)
}

func (s *pageBodyStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *pageBodyStore) Flush(ctx context.Context) error {
	return s.inner.Flush(ctx)
}
