package pageretriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/goforj/pageretriever/mwapi"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// WikiAPI is the session and transport the API retriever talks through.
// *mwapi.Client satisfies it.
type WikiAPI interface {
	IsLoggedIn() bool
	Login(ctx context.Context, user mwapi.User) error
	PostRequest(ctx context.Context, req mwapi.Request) (mwapi.Response, error)
}

var _ WikiAPI = (*mwapi.Client)(nil)

// APIConfig configures an APIPageRetriever.
type APIConfig struct {
	API  WikiAPI
	User mwapi.User

	Logger zerolog.Logger

	// PageTitlePrefix is prepended to every page name before normalisation,
	// e.g. "Web:Spendenseite/".
	PageTitlePrefix string

	// Mode defaults to ModeRendered.
	Mode Mode

	// Sanitize runs rendered HTML through a user-content policy after cleanup.
	// Raw wikitext is never sanitised.
	Sanitize bool
}

// APIPageRetriever fetches pages from a MediaWiki action API, logging in
// lazily whenever the session reports it is not authenticated.
type APIPageRetriever struct {
	api       WikiAPI
	user      mwapi.User
	log       zerolog.Logger
	prefix    string
	mode      Mode
	sanitizer *htmlSanitizer
	retrieve  func(ctx context.Context, title string) (string, error)
}

// NewAPIPageRetriever validates cfg and returns a retriever. An unknown mode or
// a nil API is rejected with ErrInvalidConfiguration before any request is made.
func NewAPIPageRetriever(cfg APIConfig) (*APIPageRetriever, error) {
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	if cfg.API == nil {
		return nil, fmt.Errorf("%w: wiki API is required", ErrInvalidConfiguration)
	}
	r := &APIPageRetriever{
		api:    cfg.API,
		user:   cfg.User,
		log:    cfg.Logger,
		prefix: cfg.PageTitlePrefix,
		mode:   mode,
	}
	switch mode {
	case ModeRaw:
		r.retrieve = r.retrieveWikiText
	case ModeRendered:
		r.retrieve = r.retrieveRenderedPage
		if cfg.Sanitize {
			r.sanitizer = newHTMLSanitizer()
		}
	}
	return r, nil
}

// Mode reports the retrieval mode fixed at construction.
func (r *APIPageRetriever) Mode() Mode {
	return r.mode
}

// FetchPage implements PageRetriever. Failures are logged and reported as "".
func (r *APIPageRetriever) FetchPage(ctx context.Context, pageName string) string {
	title := r.normalizedTitle(pageName)
	content, err := r.fetch(ctx, title)
	if err == nil {
		return content
	}
	if errors.Is(err, ErrLogin) {
		r.log.Error().Err(err).Str("normalizedPageName", title).Msg("Login to MW API failed")
		return ""
	}
	notice(r.log).Err(err).Str("normalizedPageName", title).Msg("Failed fetching page via MW API")
	return ""
}

// Fetch returns the page content or an error wrapping ErrLogin or
// ErrPageUnavailable. It does not log failures.
func (r *APIPageRetriever) Fetch(ctx context.Context, pageName string) (string, error) {
	return r.fetch(ctx, r.normalizedTitle(pageName))
}

func (r *APIPageRetriever) normalizedTitle(pageName string) string {
	return NormalizePageName(r.prefix + pageName)
}

func (r *APIPageRetriever) fetch(ctx context.Context, title string) (string, error) {
	r.log.Info().Str("normalizedPageName", title).Msg("Fetching page via MW API")

	if !r.api.IsLoggedIn() {
		if err := r.api.Login(ctx, r.user); err != nil {
			return "", fmt.Errorf("%w: %w", ErrLogin, err)
		}
	}

	content, err := r.retrieve(ctx, title)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrPageUnavailable, title, err)
	}
	return content, nil
}

func (r *APIPageRetriever) retrieveRenderedPage(ctx context.Context, title string) (string, error) {
	resp, err := r.api.PostRequest(ctx, mwapi.NewRequest("parse", map[string]string{
		"page": title,
		"prop": "text",
	}))
	if err != nil {
		return "", err
	}

	text := resp.Get(`parse.text.\*`)
	if text.Type != gjson.String || text.Str == "" {
		return "", fmt.Errorf("%w: no parse.text in response", mwapi.ErrMalformedResponse)
	}
	html := CleanupWikiHTML(text.Str)
	if r.sanitizer != nil {
		html = r.sanitizer.Sanitize(html)
	}
	return html, nil
}

func (r *APIPageRetriever) retrieveWikiText(ctx context.Context, title string) (string, error) {
	resp, err := r.api.PostRequest(ctx, mwapi.NewRequest("query", map[string]string{
		"titles": title,
		"prop":   "revisions",
		"rvprop": "content",
	}))
	if err != nil {
		return "", err
	}

	pages := resp.Get("query.pages")
	if !pages.IsObject() {
		return "", fmt.Errorf("%w: query.pages is not an object", mwapi.ErrMalformedResponse)
	}
	var (
		page  gjson.Result
		found bool
	)
	pages.ForEach(func(_, value gjson.Result) bool {
		page, found = value, true
		return false
	})
	if !found {
		return "", fmt.Errorf("%w: query.pages is empty", mwapi.ErrMalformedResponse)
	}

	content := page.Get(`revisions.0.\*`)
	if content.Type != gjson.String {
		return "", fmt.Errorf("%w: page has no revision content", mwapi.ErrMalformedResponse)
	}
	return content.Str, nil
}
