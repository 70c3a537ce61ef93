package cfg

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError reports a config value outside its allowed bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[ERROR][CONFIG] invalid %s: %s", e.Field, e.Reason)
}

// Validate checks every bound the crawl depends on. It never touches the network.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GithubApi.AccessToken) == "" {
		return &ValidationError{Field: "github_api.access_token", Reason: "ensure a token for the API is passed, otherwise it will not be functional"}
	}
	return c.ValidateBounds()
}

// ValidateBounds is Validate without the token check, for binaries that
// never call the API.
func (c *Config) ValidateBounds() error {
	switch {
	case strings.TrimSpace(c.GithubApi.ApiUrl) == "":
		return &ValidationError{Field: "github_api.api_url", Reason: "must not be empty"}
	case strings.TrimSpace(c.GithubApi.DefaultBranch) == "":
		return &ValidationError{Field: "github_api.default_branch", Reason: "must not be empty"}
	case c.Crawl.StartID < 0:
		return &ValidationError{Field: "crawl.start_id", Reason: "only non-negative values are allowed, set 0 for a full scan"}
	case c.Crawl.EndID < 1:
		return &ValidationError{Field: "crawl.end_id", Reason: "only positive non-zero values are allowed"}
	case c.Crawl.MostUsed < 1:
		return &ValidationError{Field: "crawl.most_used", Reason: "only positive non-zero values are allowed"}
	case c.Crawl.PageSize < 1 || c.Crawl.PageSize > MaxPageSize:
		return &ValidationError{Field: "crawl.page_size", Reason: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
	case c.Crawl.ReposPerPage < 1 || c.Crawl.ReposPerPage > MaxPageSize:
		return &ValidationError{Field: "crawl.repos_per_page", Reason: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
	case c.Crawl.TreeWorkers < 1:
		return &ValidationError{Field: "crawl.tree_workers", Reason: "at least one worker is required"}
	case c.GithubApi.RequestsPerSecond < 0:
		return &ValidationError{Field: "github_api.requests_per_second", Reason: "must not be negative"}
	case c.Kafka.Enabled && len(c.Kafka.Brokers) == 0:
		return &ValidationError{Field: "kafka.brokers", Reason: "no kafka brokers configured"}
	}
	return nil
}

// ResolveToken falls back to the token file when no token was configured.
func (c *Config) ResolveToken() error {
	if strings.TrimSpace(c.GithubApi.AccessToken) != "" || c.GithubApi.TokenFile == "" {
		return nil
	}

	raw, err := os.ReadFile(c.GithubApi.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("[ERROR][CONFIG] failed to read token file %s: %w", c.GithubApi.TokenFile, err)
	}
	c.GithubApi.AccessToken = strings.TrimSpace(string(raw))
	return nil
}
