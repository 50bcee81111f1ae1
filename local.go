package pageretriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/goforj/pageretriever/filefetcher"
	"github.com/rs/zerolog"
)

// LocalFilePageRetriever reads pages through a filefetcher.Fetcher. The page
// name is handed to the fetcher unchanged.
type LocalFilePageRetriever struct {
	fetcher filefetcher.Fetcher
	log     zerolog.Logger
}

// NewLocalFilePageRetriever returns a retriever reading through fetcher.
func NewLocalFilePageRetriever(fetcher filefetcher.Fetcher, log zerolog.Logger) *LocalFilePageRetriever {
	return &LocalFilePageRetriever{fetcher: fetcher, log: log}
}

// FetchPage implements PageRetriever.
func (r *LocalFilePageRetriever) FetchPage(ctx context.Context, pageName string) string {
	content, err := r.fetchFile(ctx, pageName)
	if err != nil {
		notice(r.log).
			Str("pageName", pageName).
			Str("exception", err.Error()).
			Msg("Failed fetching local page")
		return ""
	}
	return content
}

// Fetch returns the file content or an error wrapping ErrPageUnavailable.
func (r *LocalFilePageRetriever) Fetch(ctx context.Context, pageName string) (string, error) {
	content, err := r.fetchFile(ctx, pageName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPageUnavailable, err)
	}
	return content, nil
}

func (r *LocalFilePageRetriever) fetchFile(ctx context.Context, pageName string) (string, error) {
	r.log.Info().Str("pageName", pageName).Msg("Fetching local page")
	if r.fetcher == nil {
		return "", errNoFetcher
	}
	return r.fetcher.FetchFile(ctx, pageName)
}

var errNoFetcher = errors.New("no file fetcher configured")
