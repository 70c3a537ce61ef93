package crawler

import (
	"context"
	"fmt"
	"net/http"

	githubapi "github.com/thep200/github-classnames/internal/github_api"
)

// UserWalker pages through the user ID space with the since cursor.
// The cursor jumps to the highest ID seen, so ID gaps left by deleted
// accounts make the [start, end) bound approximate.
type UserWalker struct {
	Fetcher  githubapi.Fetcher
	BaseURL  string
	cursor   int64
	endID    int64
	pageSize int
	done     bool
}

func NewUserWalker(fetcher githubapi.Fetcher, baseURL string, startID, endID int64, pageSize int) *UserWalker {
	return &UserWalker{
		Fetcher:  fetcher,
		BaseURL:  baseURL,
		cursor:   startID,
		endID:    endID,
		pageSize: pageSize,
	}
}

// Cursor is the exclusive lower bound of the next page.
func (w *UserWalker) Cursor() int64 {
	return w.cursor
}

// Done is true after an empty page or once the cursor reached the end ID.
func (w *UserWalker) Done() bool {
	return w.done || w.cursor >= w.endID
}

// Next fetches the next page. It returns no users once Done.
func (w *UserWalker) Next(ctx context.Context) ([]githubapi.User, error) {
	if w.Done() {
		return nil, nil
	}

	entries := min(int64(w.pageSize), w.endID-w.cursor)
	body, err := w.Fetcher.Fetch(ctx, http.MethodGet, githubapi.UsersURL(w.BaseURL, w.cursor, int(entries)))
	if err != nil {
		return nil, fmt.Errorf("fetch users since %d: %w", w.cursor, err)
	}

	users, err := githubapi.ParseUsers(body)
	if err != nil {
		return nil, fmt.Errorf("users since %d: %w", w.cursor, err)
	}
	if len(users) == 0 {
		w.done = true
		return nil, nil
	}

	last := w.cursor
	for _, u := range users {
		last = max(last, u.ID)
	}
	// A page that does not move the cursor would be fetched forever.
	if last == w.cursor {
		w.done = true
	}
	w.cursor = last
	return users, nil
}
