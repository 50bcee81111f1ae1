package pagecache

import (
	"context"
	"time"
)

// inertStore retains no pages. With a nil err it backs the null driver, where
// caching is switched off and every lookup misses. With a non-nil err it
// stands in for a driver that could not be opened: the driver name is kept
// for logs and observers and every call reports err.
type inertStore struct {
	driver Driver
	err    error
}

func newNullStore() Store { return &inertStore{driver: DriverNull} }

func (s *inertStore) Driver() Driver { return s.driver }

func (s *inertStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, s.err
}

func (s *inertStore) Set(context.Context, string, []byte, time.Duration) error { return s.err }

func (s *inertStore) Delete(context.Context, string) error { return s.err }

func (s *inertStore) Flush(context.Context) error { return s.err }

// Err returns the error that kept store's driver from opening, if any.
func Err(store Store) error {
	if s, ok := store.(*inertStore); ok {
		return s.err
	}
	return nil
}
