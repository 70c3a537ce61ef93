package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/pkg/log"
)

type Resolver struct {
	Logger       log.Logger
	Fetcher      Fetcher
	BaseURL      string
	Branch       string
	ReposPerPage int
}

func NewResolver(logger log.Logger, config *cfg.Config, fetcher Fetcher) *Resolver {
	perPage := config.Crawl.ReposPerPage
	if perPage <= 0 || perPage > cfg.MaxPageSize {
		perPage = cfg.MaxPageSize
	}
	return &Resolver{
		Logger:       logger,
		Fetcher:      fetcher,
		BaseURL:      strings.TrimRight(config.GithubApi.ApiUrl, "/"),
		Branch:       config.GithubApi.DefaultBranch,
		ReposPerPage: perPage,
	}
}

// UsersURL lists up to perPage users with an ID greater than since.
func UsersURL(baseURL string, since int64, perPage int) string {
	return fmt.Sprintf("%s/users?since=%d&per_page=%d", strings.TrimRight(baseURL, "/"), since, perPage)
}

func (r *Resolver) reposURL(login string, page int) string {
	return fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d", r.BaseURL, url.PathEscape(login), r.ReposPerPage, page)
}

func (r *Resolver) treeURL(owner, repo string) string {
	return fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=true",
		r.BaseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(r.Branch))
}

// ReposForUser returns the user's repositories written in Java. Every page
// of the listing is read; a short page ends it.
func (r *Resolver) ReposForUser(ctx context.Context, login string) ([]Repository, error) {
	var java []Repository
	for page := 1; ; page++ {
		body, err := r.Fetcher.Fetch(ctx, http.MethodGet, r.reposURL(login, page))
		if err != nil {
			return nil, fmt.Errorf("fetch repos of %s: %w", login, err)
		}

		repos, err := ParseRepositories(body)
		if err != nil {
			return nil, fmt.Errorf("repos of %s: %w", login, err)
		}
		java = append(java, FilterJava(repos)...)

		if len(repos) < r.ReposPerPage {
			return java, nil
		}
	}
}

// TreeForRepo returns the recursive listing of the configured branch. found
// is false when the branch does not exist; that is not an error.
func (r *Resolver) TreeForRepo(ctx context.Context, owner, repo string) (entries []TreeEntry, found bool, err error) {
	body, err := r.Fetcher.Fetch(ctx, http.MethodGet, r.treeURL(owner, repo))
	if err != nil {
		if errors.Is(err, ErrResourceAbsent) {
			r.Logger.Debug(ctx, "No %s branch in %s/%s, skipping", r.Branch, owner, repo)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch tree of %s/%s: %w", owner, repo, err)
	}

	entries, err = ParseTree(body)
	if err != nil {
		return nil, false, fmt.Errorf("tree of %s/%s: %w", owner, repo, err)
	}
	return entries, true, nil
}
