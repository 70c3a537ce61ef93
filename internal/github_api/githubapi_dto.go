// Response schemas for the three endpoints the crawl uses. Bodies are decoded
// into go-github's model types and copied into the small records below.

package githubapi

import (
	"encoding/json"
	"strings"

	"github.com/google/go-github/github"
)

const (
	JavaLanguage  = "Java"
	EntryTypeBlob = "blob"
	EntryTypeTree = "tree"
)

type User struct {
	ID    int64
	Login string
}

type Repository struct {
	Name     string
	Language string
}

type TreeEntry struct {
	Path string
	Type string
}

func (e TreeEntry) IsBlob() bool {
	return e.Type == EntryTypeBlob
}

func ParseUsers(body string) ([]User, error) {
	var raw []*github.User
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, &ParseError{What: "users", Err: err}
	}

	users := make([]User, 0, len(raw))
	for _, u := range raw {
		if u == nil {
			continue
		}
		users = append(users, User{ID: int64(u.GetID()), Login: u.GetLogin()})
	}
	return users, nil
}

func ParseRepositories(body string) ([]Repository, error) {
	var raw []*github.Repository
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, &ParseError{What: "repositories", Err: err}
	}

	repos := make([]Repository, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		repos = append(repos, Repository{Name: r.GetName(), Language: r.GetLanguage()})
	}
	return repos, nil
}

// ParseTree keeps only the entry array of a tree response: everything before
// the first '[' and after the last ']' is metadata the crawl never reads.
func ParseTree(body string) ([]TreeEntry, error) {
	start := strings.IndexByte(body, '[')
	end := strings.LastIndexByte(body, ']')
	if start < 0 || end < start {
		return nil, &ParseError{What: "git tree elements", Err: errNoArray}
	}

	var raw []*github.TreeEntry
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return nil, &ParseError{What: "git tree elements", Err: err}
	}

	entries := make([]TreeEntry, 0, len(raw))
	for _, e := range raw {
		if e == nil {
			continue
		}
		entries = append(entries, TreeEntry{Path: e.GetPath(), Type: e.GetType()})
	}
	return entries, nil
}

// FilterJava keeps repositories whose language is exactly "Java".
func FilterJava(repos []Repository) []Repository {
	java := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if r.Language == JavaLanguage {
			java = append(java, r)
		}
	}
	return java
}
