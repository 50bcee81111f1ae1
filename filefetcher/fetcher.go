// Package filefetcher loads the contents of named files from disk, a directory
// root, HTTP(S) URLs or memory.
package filefetcher

import (
	"context"
	"fmt"
)

// Fetcher returns the full contents of the file called name.
type Fetcher interface {
	FetchFile(ctx context.Context, name string) (string, error)
}

// FetchError wraps the cause of a failed fetch with the requested name.
type FetchError struct {
	Name string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch file %q: %v", e.Name, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(name string, err error) error {
	return &FetchError{Name: name, Err: err}
}
