package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/export"
	githubapi "github.com/thep200/github-classnames/internal/github_api"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/log"
)

type response struct {
	status int
	body   string
}

// fakeGithub answers by path and query; anything unknown is a 404.
type fakeGithub struct {
	mu        sync.Mutex
	responses map[string]response
	requested []string
}

func (g *fakeGithub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	g.mu.Lock()
	g.requested = append(g.requested, key)
	resp, ok := g.responses[key]
	g.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if resp.status != 0 && resp.status != http.StatusOK {
		w.WriteHeader(resp.status)
		return
	}
	_, _ = w.Write([]byte(resp.body))
}

func (g *fakeGithub) wasRequested(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range g.requested {
		if k == key {
			return true
		}
	}
	return false
}

type recordingSink struct {
	calls int
	all   []export.Entry
	top   []export.Entry
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(ctx context.Context, all, top []export.Entry) error {
	s.calls++
	s.all = all
	s.top = top
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []model.RepoScannedMessage
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg, ok := value.(model.RepoScannedMessage); ok {
		p.messages = append(p.messages, msg)
	}
	return p.err
}

func counts(entries []export.Entry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Count
	}
	return out
}

type harness struct {
	github *fakeGithub
	config *cfg.Config
	sink   *recordingSink
	crawl  *Orchestrator
}

func newHarness(t *testing.T, responses map[string]response, tune func(*cfg.Config)) *harness {
	t.Helper()

	github := &fakeGithub{responses: responses}
	server := httptest.NewServer(github)
	t.Cleanup(server.Close)

	loader, err := cfg.NewMockLoader()
	require.NoError(t, err)
	config, err := loader.Load()
	require.NoError(t, err)
	config.GithubApi.ApiUrl = server.URL
	config.Crawl.EndID = 1000
	config.Crawl.MostUsed = 2
	if tune != nil {
		tune(config)
	}

	logger, err := log.NewCslLoggerTo(io.Discard, false)
	require.NoError(t, err)

	caller, err := githubapi.NewCaller(logger, config)
	require.NoError(t, err)
	resolver := githubapi.NewResolver(logger, config, caller)
	sink := &recordingSink{}
	exporter := export.NewExporter(logger, config.Crawl.MostUsed, sink)

	crawl, err := NewOrchestrator(logger, config, caller, resolver, exporter)
	require.NoError(t, err)

	return &harness{github: github, config: config, sink: sink, crawl: crawl}
}

const (
	usersPage1 = "/users?since=0&per_page=100"
	usersPage2 = "/users?since=9&per_page=100"
	reposOfA   = "/users/a/repos?per_page=100&page=1"
	reposOfB   = "/users/b/repos?per_page=100&page=1"
	treeOfLib  = "/repos/a/lib/git/trees/master?recursive=true"
)

func scenario() map[string]response {
	return map[string]response{
		usersPage1: {body: `[{"id":5,"login":"a"},{"id":9,"login":"b"}]`},
		usersPage2: {body: `[]`},
		reposOfA:   {body: `[{"name":"lib","language":"Java"},{"name":"site","language":"JavaScript"}]`},
		reposOfB:   {body: `[{"name":"notes","language":null}]`},
		treeOfLib: {body: `{"sha":"abc","tree":[
			{"path":"Foo.java","type":"blob"},
			{"path":"util","type":"tree"},
			{"path":"util/Bar.java","type":"blob"},
			{"path":"package-info.java","type":"blob"}
		],"truncated":false}`},
	}
}

func TestCrawlEndToEnd(t *testing.T) {
	h := newHarness(t, scenario(), nil)

	result, err := h.crawl.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Foo": 1, "Bar": 1}, counts(h.sink.all))
	assert.Equal(t, int64(9), result.Cursor)
	assert.Equal(t, int64(2), result.Users)
	assert.Equal(t, int64(1), result.JavaRepos)
	assert.Equal(t, int64(2), result.Files)
	assert.Equal(t, 2, result.ClassNames)
	assert.True(t, h.github.wasRequested(usersPage2))
	assert.False(t, h.github.wasRequested("/repos/a/site/git/trees/master?recursive=true"))
	assert.Equal(t, 1, h.sink.calls)
	assert.Equal(t, StateDone, h.crawl.State())
}

func TestCrawlSkipsMissingBranch(t *testing.T) {
	responses := scenario()
	responses[reposOfA] = response{body: `[{"name":"gone","language":"Java"},{"name":"lib","language":"Java"}]`}
	h := newHarness(t, responses, nil)

	result, err := h.crawl.Crawl(context.Background())
	require.NoError(t, err)

	assert.True(t, h.github.wasRequested("/repos/a/gone/git/trees/master?recursive=true"))
	assert.Equal(t, int64(1), result.SkippedRepos)
	assert.Equal(t, map[string]int{"Foo": 1, "Bar": 1}, counts(h.sink.all))
}

func TestCrawlUsesConfiguredBranch(t *testing.T) {
	responses := scenario()
	responses["/repos/a/lib/git/trees/main?recursive=true"] = responses[treeOfLib]
	delete(responses, treeOfLib)
	h := newHarness(t, responses, func(c *cfg.Config) { c.GithubApi.DefaultBranch = "main" })

	_, err := h.crawl.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Foo": 1, "Bar": 1}, counts(h.sink.all))
}

func TestCrawlExportsPartialTableOnFatalError(t *testing.T) {
	t.Run("server error", func(tt *testing.T) {
		responses := scenario()
		responses[reposOfB] = response{status: http.StatusInternalServerError}
		h := newHarness(tt, responses, nil)

		result, err := h.crawl.Crawl(context.Background())
		require.Error(tt, err)

		var transportErr *githubapi.TransportError
		require.ErrorAs(tt, err, &transportErr)
		assert.Equal(tt, http.StatusInternalServerError, transportErr.StatusCode)
		assert.Equal(tt, 1, h.sink.calls)
		assert.Equal(tt, map[string]int{"Foo": 1, "Bar": 1}, counts(h.sink.all))
		assert.NotNil(tt, result.Report)
		assert.False(tt, h.github.wasRequested(usersPage2))
		assert.Equal(tt, StateDone, h.crawl.State())
	})

	t.Run("unauthorized", func(tt *testing.T) {
		responses := scenario()
		responses[usersPage1] = response{status: http.StatusUnauthorized}
		h := newHarness(tt, responses, nil)

		_, err := h.crawl.Crawl(context.Background())

		var authErr *githubapi.AuthenticationError
		require.ErrorAs(tt, err, &authErr)
		assert.Equal(tt, 1, h.sink.calls)
		assert.Empty(tt, h.sink.all)
	})

	t.Run("missing user repos is fatal", func(tt *testing.T) {
		responses := scenario()
		delete(responses, reposOfB)
		h := newHarness(tt, responses, nil)

		_, err := h.crawl.Crawl(context.Background())
		assert.ErrorIs(tt, err, githubapi.ErrResourceAbsent)
		assert.Equal(tt, 1, h.sink.calls)
	})

	t.Run("malformed tree", func(tt *testing.T) {
		responses := scenario()
		responses[treeOfLib] = response{body: `{"message":"no array here"}`}
		h := newHarness(tt, responses, nil)

		_, err := h.crawl.Crawl(context.Background())
		var parseErr *githubapi.ParseError
		assert.ErrorAs(tt, err, &parseErr)
		assert.Equal(tt, 1, h.sink.calls)
	})
}

func TestCrawlCancelledStillExports(t *testing.T) {
	h := newHarness(t, scenario(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.crawl.Crawl(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, h.sink.calls)
}

func TestCrawlRespectsEndID(t *testing.T) {
	responses := map[string]response{
		"/users?since=0&per_page=5": {body: `[{"id":2,"login":"a"},{"id":6,"login":"b"}]`},
		reposOfA:                    {body: `[]`},
		reposOfB:                    {body: `[]`},
	}
	h := newHarness(t, responses, func(c *cfg.Config) { c.Crawl.EndID = 5 })

	result, err := h.crawl.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Cursor)
	assert.Equal(t, int64(2), result.Users)
}

func TestCrawlParallelTrees(t *testing.T) {
	responses := scenario()
	responses[reposOfA] = response{body: `[
		{"name":"lib","language":"Java"},
		{"name":"app","language":"Java"},
		{"name":"old","language":"Java"}
	]`}
	responses["/repos/a/app/git/trees/master?recursive=true"] = response{body: `[
		{"path":"src/Foo.java","type":"blob"},
		{"path":"src/App.java","type":"blob"}
	]`}
	h := newHarness(t, responses, func(c *cfg.Config) { c.Crawl.TreeWorkers = 3 })

	result, err := h.crawl.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Foo": 2, "Bar": 1, "App": 1}, counts(h.sink.all))
	assert.Equal(t, int64(1), result.SkippedRepos)
	assert.Equal(t, []export.Entry{{Name: "Foo", Count: 2}, {Name: "App", Count: 1}}, h.sink.top)
}

func TestCrawlParallelTreesFirstErrorWins(t *testing.T) {
	responses := scenario()
	responses[reposOfA] = response{body: `[{"name":"lib","language":"Java"},{"name":"bad","language":"Java"}]`}
	responses["/repos/a/bad/git/trees/master?recursive=true"] = response{status: http.StatusBadGateway}
	h := newHarness(t, responses, func(c *cfg.Config) { c.Crawl.TreeWorkers = 2 })

	_, err := h.crawl.Crawl(context.Background())
	var transportErr *githubapi.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.Equal(t, 1, h.sink.calls)
}

func TestCrawlPublishesRepoScans(t *testing.T) {
	h := newHarness(t, scenario(), nil)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	h.crawl.WithPublisher(publisher)

	_, err := h.crawl.Crawl(context.Background())
	require.NoError(t, err)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, int64(5), msg.UserID)
	assert.Equal(t, "a", msg.Owner)
	assert.Equal(t, "lib", msg.Repo)
	assert.Equal(t, 2, msg.Files)
	assert.Equal(t, map[string]int{"Foo": 1, "Bar": 1}, msg.ClassNames)
}

func TestNewOrchestratorRequiresCollaborators(t *testing.T) {
	_, err := NewOrchestrator(nil, &cfg.Config{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "FetchingTree", StateFetchingTree.String())
	assert.Equal(t, "Done", StateDone.String())
}
