package ui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/log"
)

type fakeStore struct {
	rows   []model.NameCount
	err    error
	offset int
	limit  int
	search string
}

func (s *fakeStore) List(ctx context.Context, offset, limit int, search string) ([]model.NameCount, int64, error) {
	s.offset, s.limit, s.search = offset, limit, search
	if s.err != nil {
		return nil, 0, s.err
	}

	var matched []model.NameCount
	for _, row := range s.rows {
		if search == "" || strings.Contains(row.Name, search) {
			matched = append(matched, row)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], total, nil
}

type listResponse struct {
	ClassNames []ClassName `json:"classNames"`
	Pagination struct {
		Page       int   `json:"page"`
		PageSize   int   `json:"pageSize"`
		TotalCount int64 `json:"totalCount"`
		TotalPages int64 `json:"totalPages"`
	} `json:"pagination"`
}

func newTestServer(t *testing.T, store RankingStore) *httptest.Server {
	t.Helper()
	logger, err := log.NewCslLoggerTo(io.Discard, false)
	require.NoError(t, err)
	server, err := NewServer(logger, nil, store, 0)
	require.NoError(t, err)
	mux, err := server.Routes()
	require.NoError(t, err)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestClassNamesEndpoint(t *testing.T) {
	store := &fakeStore{rows: []model.NameCount{
		{Name: "Main", Occurrences: 40},
		{Name: "Utils", Occurrences: 30},
		{Name: "MainTest", Occurrences: 12},
		{Name: "Foo", Occurrences: 1},
	}}
	ts := newTestServer(t, store)

	t.Run("pages and ranks", func(tt *testing.T) {
		var body listResponse
		status := getJSON(tt, ts.URL+"/api/class-names?page=2&pageSize=2", &body)
		require.Equal(tt, http.StatusOK, status)

		assert.Equal(tt, 2, store.offset)
		assert.Equal(tt, []ClassName{
			{Rank: 3, Name: "MainTest", Occurrences: 12},
			{Rank: 4, Name: "Foo", Occurrences: 1},
		}, body.ClassNames)
		assert.Equal(tt, int64(4), body.Pagination.TotalCount)
		assert.Equal(tt, int64(2), body.Pagination.TotalPages)
	})

	t.Run("search and default page size", func(tt *testing.T) {
		var body listResponse
		status := getJSON(tt, ts.URL+"/api/class-names?search=Main&pageSize=1000", &body)
		require.Equal(tt, http.StatusOK, status)

		assert.Equal(tt, "Main", store.search)
		assert.Equal(tt, defaultPageSize, store.limit)
		assert.Len(tt, body.ClassNames, 2)
		assert.Equal(tt, 1, body.Pagination.Page)
	})

	t.Run("rejects other methods", func(tt *testing.T) {
		resp, err := http.Post(ts.URL+"/api/class-names", "application/json", nil)
		require.NoError(tt, err)
		resp.Body.Close()
		assert.Equal(tt, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestClassNamesEndpointStoreFailure(t *testing.T) {
	ts := newTestServer(t, &fakeStore{err: errors.New("db gone")})

	var body listResponse
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, ts.URL+"/api/class-names", &body))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeStore{})

	var body map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(nil, nil, nil, 8080)
	assert.Error(t, err)
}
