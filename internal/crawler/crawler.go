// Crawler walks GitHub users page by page, lists each user's Java
// repositories, reads their file trees and counts class names. The table is
// exported exactly once when the crawl ends, whether it finished, failed or
// was cancelled.

package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/classname"
	"github.com/thep200/github-classnames/internal/export"
	githubapi "github.com/thep200/github-classnames/internal/github_api"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/log"
)

type Crawler interface {
	Crawl(ctx context.Context) (*Result, error)
}

type RepoResolver interface {
	ReposForUser(ctx context.Context, login string) ([]githubapi.Repository, error)
	TreeForRepo(ctx context.Context, owner, repo string) ([]githubapi.TreeEntry, bool, error)
}

type TableExporter interface {
	Export(ctx context.Context, table *classname.Table) (*export.Report, error)
}

// EventPublisher receives one message per scanned repository.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Result summarises one crawl.
type Result struct {
	Cursor       int64
	Users        int64
	JavaRepos    int64
	SkippedRepos int64
	Files        int64
	ClassNames   int
	Duration     time.Duration
	Report       *export.Report
}

type Orchestrator struct {
	Logger    log.Logger
	Config    *cfg.Config
	Fetcher   githubapi.Fetcher
	Resolver  RepoResolver
	Exporter  TableExporter
	Publisher EventPublisher

	state atomic.Int32

	users   atomic.Int64
	repos   atomic.Int64
	skipped atomic.Int64
	files   atomic.Int64
}

func NewOrchestrator(logger log.Logger, config *cfg.Config, fetcher githubapi.Fetcher, resolver RepoResolver, exporter TableExporter) (*Orchestrator, error) {
	if fetcher == nil || resolver == nil || exporter == nil {
		return nil, errors.New("crawler needs a fetcher, a resolver and an exporter")
	}
	return &Orchestrator{
		Logger:   logger,
		Config:   config,
		Fetcher:  fetcher,
		Resolver: resolver,
		Exporter: exporter,
	}, nil
}

// WithPublisher enables per-repository events.
func (c *Orchestrator) WithPublisher(publisher EventPublisher) *Orchestrator {
	c.Publisher = publisher
	return c
}

func (c *Orchestrator) State() State {
	return State(c.state.Load())
}

func (c *Orchestrator) setState(ctx context.Context, s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		c.Logger.Debug(ctx, "State %s -> %s", prev, s)
	}
}

// Crawl runs the crawl and always exports the table before returning. The
// returned error joins the crawl error, if any, with the export error.
func (c *Orchestrator) Crawl(ctx context.Context) (result *Result, err error) {
	startTime := time.Now()
	c.setState(ctx, StateIdle)
	c.users.Store(0)
	c.repos.Store(0)
	c.skipped.Store(0)
	c.files.Store(0)

	crawl := c.Config.Crawl
	table := classname.NewTable()
	walker := NewUserWalker(c.Fetcher, c.Config.GithubApi.ApiUrl, crawl.StartID, crawl.EndID, crawl.PageSize)
	result = &Result{}

	c.Logger.Info(ctx, "Starting class name crawl at %s, users %d..%d", startTime.Format(time.RFC3339), crawl.StartID, crawl.EndID)

	defer func() {
		c.setState(ctx, StateExporting)
		// Export even when ctx was cancelled.
		report, exportErr := c.Exporter.Export(context.WithoutCancel(ctx), table)

		result.Cursor = walker.Cursor()
		result.Users = c.users.Load()
		result.JavaRepos = c.repos.Load()
		result.SkippedRepos = c.skipped.Load()
		result.Files = c.files.Load()
		result.ClassNames = table.Len()
		result.Duration = time.Since(startTime)
		result.Report = report

		err = errors.Join(err, exportErr)
		c.setState(ctx, StateDone)
		c.logCrawlResults(ctx, startTime, result)
	}()

	if err = c.run(ctx, walker, table); err != nil {
		c.setState(ctx, StateError)
		c.Logger.Error(ctx, "Crawl aborted at user %d: %v", walker.Cursor(), err)
	}
	return result, err
}

func (c *Orchestrator) run(ctx context.Context, walker *UserWalker, table *classname.Table) error {
	for !walker.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.setState(ctx, StateFetchingUsers)
		users, err := walker.Next(ctx)
		if err != nil {
			return err
		}

		for _, user := range users {
			if err := c.processUser(ctx, user, table); err != nil {
				return err
			}
		}
		c.Logger.Debug(ctx, "Processed %d users, cursor at %d, %d class names so far", len(users), walker.Cursor(), table.Len())
	}
	return nil
}

func (c *Orchestrator) processUser(ctx context.Context, user githubapi.User, table *classname.Table) error {
	c.setState(ctx, StateProcessingUser)
	if err := ctx.Err(); err != nil {
		return err
	}

	c.setState(ctx, StateFetchingRepos)
	repos, err := c.Resolver.ReposForUser(ctx, user.Login)
	if err != nil {
		return err
	}
	c.users.Add(1)
	c.repos.Add(int64(len(repos)))

	workers := c.Config.Crawl.TreeWorkers
	if workers <= 1 || len(repos) <= 1 {
		for _, repo := range repos {
			if err := c.processRepo(ctx, user, repo, table); err != nil {
				return err
			}
		}
		return nil
	}
	return c.processReposConcurrently(ctx, user, repos, table, workers)
}

// processReposConcurrently fetches up to workers trees at once. The first
// failure cancels the rest and is the one returned.
func (c *Orchestrator) processReposConcurrently(ctx context.Context, user githubapi.User, repos []githubapi.Repository, table *classname.Table, workers int) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, workers)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

dispatch:
	for _, repo := range repos {
		select {
		case sem <- struct{}{}:
		case <-workerCtx.Done():
			break dispatch
		}

		wg.Add(1)
		go func(repo githubapi.Repository) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := c.processRepo(workerCtx, user, repo, table); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(repo)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (c *Orchestrator) processRepo(ctx context.Context, user githubapi.User, repo githubapi.Repository, table *classname.Table) error {
	c.setState(ctx, StateProcessingRepo)
	c.setState(ctx, StateFetchingTree)
	entries, found, err := c.Resolver.TreeForRepo(ctx, user.Login, repo.Name)
	if err != nil {
		return err
	}
	if !found {
		c.skipped.Add(1)
		return nil
	}

	c.setState(ctx, StateExtractingFiles)
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsBlob() {
			paths = append(paths, entry.Path)
		}
	}
	counts := classname.CountPaths(paths)
	table.Merge(counts)

	files := 0
	for _, n := range counts {
		files += n
	}
	c.files.Add(int64(files))

	c.publish(ctx, user, repo, counts, files)
	return nil
}

func (c *Orchestrator) publish(ctx context.Context, user githubapi.User, repo githubapi.Repository, counts map[string]int, files int) {
	if c.Publisher == nil || files == 0 {
		return
	}

	msg := model.RepoScannedMessage{
		UserID:     user.ID,
		Owner:      user.Login,
		Repo:       repo.Name,
		Files:      files,
		ClassNames: counts,
	}
	if err := c.Publisher.Publish(ctx, model.RepoScannedKey, msg); err != nil {
		c.Logger.Warn(ctx, "Could not publish scan of %s/%s: %v", user.Login, repo.Name, err)
	}
}

func (c *Orchestrator) logCrawlResults(ctx context.Context, startTime time.Time, result *Result) {
	c.Logger.Info(ctx, "==== CRAWL RESULT ====")
	c.Logger.Info(ctx, "Started: %s", startTime.Format(time.RFC3339))
	c.Logger.Info(ctx, "Duration: %v", result.Duration.Round(time.Millisecond))
	c.Logger.Info(ctx, "Last user id: %d", result.Cursor)
	c.Logger.Info(ctx, "Users processed: %d", result.Users)
	c.Logger.Info(ctx, "Java repositories: %d (%s)", result.JavaRepos, skippedNote(result.SkippedRepos, c.Config.GithubApi.DefaultBranch))
	c.Logger.Info(ctx, "Java files counted: %d", result.Files)
	c.Logger.Info(ctx, "Distinct class names: %d", result.ClassNames)
}

func skippedNote(skipped int64, branch string) string {
	return fmt.Sprintf("%d without a %s branch", skipped, branch)
}
