// Package githubapi talks to the GitHub REST API for the crawl: an
// authenticated Caller that honours the rate limit headers, and a Resolver
// that lists a user's Java repositories and their recursive file trees.

package githubapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/limiter"
	"github.com/thep200/github-classnames/pkg/log"
	"golang.org/x/oauth2"
)

// Fetcher is the single operation the crawl needs from the transport.
type Fetcher interface {
	Fetch(ctx context.Context, method, url string) (string, error)
}

type Caller struct {
	Logger   log.Logger
	Config   *cfg.Config
	client   *http.Client
	waiter   *limiter.ResetWaiter
	throttle *limiter.RateLimiter
	verbose  atomic.Bool
	calls    atomic.Int64
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	if config.GithubApi.AccessToken == "" {
		return nil, errors.New("cannot create caller without an access token")
	}

	timeout := time.Duration(config.GithubApi.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// The token source adds "Authorization: token <value>" to every request.
	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: config.GithubApi.AccessToken,
		TokenType:   "token",
	}))
	client.Timeout = timeout

	c := &Caller{
		Logger:   logger,
		Config:   config,
		client:   client,
		waiter:   limiter.NewResetWaiter(time.Duration(config.GithubApi.RateLimitResetMin) * time.Minute),
		throttle: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
	}
	c.verbose.Store(config.Crawl.Verbose)
	return c, nil
}

// SetWaiter replaces the reset waiter, mainly so tests can fake the clock.
func (c *Caller) SetWaiter(w *limiter.ResetWaiter) {
	c.waiter = w
}

func (c *Caller) SetVerbose(verbose bool) {
	c.verbose.Store(verbose)
}

// Calls returns how many requests were sent.
func (c *Caller) Calls() int64 {
	return c.calls.Load()
}

// Fetch sends one request and returns the body of a 200 response. When the
// response reports an exhausted quota, Fetch waits for the reset window
// before returning.
func (c *Caller) Fetch(ctx context.Context, method, url string) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return "", fmt.Errorf("cannot build request %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	c.calls.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", &AuthenticationError{URL: url}
	case http.StatusNotFound:
		return "", fmt.Errorf("%s %s: %w", method, url, ErrResourceAbsent)
	default:
		// Rate limit headers are only honoured on 200; a 403 for an
		// exhausted quota is fatal like any other status.
		return "", &TransportError{Method: method, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	state := limiter.ParseState(resp.Header)
	if c.verbose.Load() {
		c.Logger.Info(ctx, "%s: %s, %s API calls left", method, url, state.RemainingString())
	}

	if state.Exhausted() {
		c.Logger.Warn(ctx, "Depleted API limit, waiting %v until %s",
			c.waiter.Duration(state), state.Reset.Format(time.RFC3339))
		if _, err := c.waiter.Wait(ctx, state); err != nil {
			return "", err
		}
	}

	return string(body), nil
}
