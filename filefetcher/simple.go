package filefetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxFileBytes       = 8 << 20
)

// ErrTooLarge is returned for files bigger than the fetch limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// SimpleFetcher reads local paths, or http/https URLs with a GET request.
type SimpleFetcher struct {
	// HTTPClient defaults to a client with a 15 second timeout.
	HTTPClient *http.Client
}

// NewSimpleFetcher returns a SimpleFetcher using client, or a default client when nil.
func NewSimpleFetcher(client *http.Client) *SimpleFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &SimpleFetcher{HTTPClient: client}
}

func (f *SimpleFetcher) FetchFile(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fetchErr(name, err)
	}
	if isURL(name) {
		return f.fetchURL(ctx, name)
	}
	return readLocal(name)
}

func (f *SimpleFetcher) fetchURL(ctx context.Context, name string) (string, error) {
	client := f.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, name, nil)
	if err != nil {
		return "", fetchErr(name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fetchErr(name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fetchErr(name, fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return "", fetchErr(name, err)
	}
	if len(body) > maxFileBytes {
		return "", fetchErr(name, ErrTooLarge)
	}
	return string(body), nil
}

func readLocal(name string) (string, error) {
	info, err := os.Stat(name)
	if err != nil {
		return "", fetchErr(name, err)
	}
	if info.IsDir() {
		return "", fetchErr(name, errors.New("is a directory"))
	}
	if info.Size() > maxFileBytes {
		return "", fetchErr(name, ErrTooLarge)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fetchErr(name, err)
	}
	return string(data), nil
}

func isURL(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
