package mwapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "pageretriever/1.0 (+https://github.com/goforj/pageretriever)"
	// 8 MiB comfortably exceeds the largest rendered article bodies.
	maxResponseBytes = 8 << 20
)

// Config controls how a Client talks to the wiki.
type Config struct {
	// Endpoint is the full URL of api.php.
	Endpoint string

	// HTTPClient is used as-is when set; its Jar must be non-nil for login to
	// persist across requests.
	HTTPClient *http.Client

	UserAgent string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Client is a session against one wiki. It is safe for concurrent use.
type Client struct {
	endpoint  string
	http      *http.Client
	userAgent string
	log       zerolog.Logger
	loggedIn  atomic.Bool
}

// NewClient validates cfg and returns a client with an empty session.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("mwapi: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("mwapi: endpoint must use http or https, got %q", cfg.Endpoint)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Timeout: cfg.Timeout, Jar: jar}
	}
	return &Client{
		endpoint:  u.String(),
		http:      httpClient,
		userAgent: cfg.UserAgent,
		log:       cfg.Logger.With().Str("component", "mwapi").Logger(),
	}, nil
}

// IsLoggedIn reports whether Login has succeeded for this session.
func (c *Client) IsLoggedIn() bool {
	return c.loggedIn.Load()
}

// Login authenticates the session. An anonymous user marks the session as
// logged in without contacting the wiki.
func (c *Client) Login(ctx context.Context, user User) error {
	if user.Anonymous() {
		c.loggedIn.Store(true)
		return nil
	}

	tokenResp, err := c.PostRequest(ctx, NewRequest("query", map[string]string{
		"meta": "tokens",
		"type": "login",
	}))
	if err != nil {
		return fmt.Errorf("mwapi: fetch login token: %w", err)
	}
	token := tokenResp.Get("query.tokens.logintoken").String()
	if token == "" {
		return &LoginError{Result: "NoToken", Reason: "wiki did not return a login token"}
	}

	resp, err := c.PostRequest(ctx, NewRequest("login", map[string]string{
		"lgname":     user.Name,
		"lgpassword": user.Password,
		"lgtoken":    token,
	}))
	if err != nil {
		return fmt.Errorf("mwapi: login: %w", err)
	}
	result := resp.Get("login.result").String()
	if result != "Success" {
		return &LoginError{Result: result, Reason: resp.Get("login.reason").String()}
	}
	c.loggedIn.Store(true)
	c.log.Debug().Str("user", user.Name).Msg("Logged in to wiki")
	return nil
}

// PostRequest sends req as a form POST and returns the decoded reply.
func (c *Client) PostRequest(ctx context.Context, req Request) (Response, error) {
	if req.Action == "" {
		return Response{}, errors.New("mwapi: request has no action")
	}
	form := url.Values{}
	for k, v := range req.Params {
		form.Set(k, v)
	}
	form.Set("action", req.Action)
	form.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("mwapi: reading response body: %w", err)
	}
	c.log.Debug().
		Str("action", req.Action).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	out := NewResponse(body)
	if !out.Valid() {
		return Response{}, ErrMalformedResponse
	}
	if apiErr := out.Get("error"); apiErr.IsObject() {
		return Response{}, &UsageError{
			Code: apiErr.Get("code").String(),
			Info: apiErr.Get("info").String(),
		}
	}
	return out, nil
}
