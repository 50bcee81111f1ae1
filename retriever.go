package pageretriever

import "context"

// PageRetriever returns the content of a page, or "" when the page is unknown
// or could not be fetched.
type PageRetriever interface {
	FetchPage(ctx context.Context, pageName string) string
}

// ContentFetcher is the explicit-error form of PageRetriever.
type ContentFetcher interface {
	Fetch(ctx context.Context, pageName string) (string, error)
}

// RetrieverFunc adapts a function to the PageRetriever interface.
type RetrieverFunc func(ctx context.Context, pageName string) string

// FetchPage implements PageRetriever.
func (f RetrieverFunc) FetchPage(ctx context.Context, pageName string) string {
	if f == nil {
		return ""
	}
	return f(ctx, pageName)
}
