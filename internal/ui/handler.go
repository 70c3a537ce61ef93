package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/log"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// RankingStore reads the stored class name ranking.
type RankingStore interface {
	List(ctx context.Context, offset, limit int, search string) ([]model.NameCount, int64, error)
}

// Handler manages HTTP requests for the UI
type Handler struct {
	Logger log.Logger
	Config *cfg.Config
	Store  RankingStore
}

func NewHandler(logger log.Logger, config *cfg.Config, store RankingStore) (*Handler, error) {
	return &Handler{
		Logger: logger,
		Config: config,
		Store:  store,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the UI
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/class-names", h.getClassNames)
	mux.HandleFunc("/healthz", h.healthz)
}

// ClassName is one ranked row of the response.
type ClassName struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Occurrences int    `json:"occurrences"`
}

func (h *Handler) getClassNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse query parameters for pagination
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	search := r.URL.Query().Get("search")
	offset := (page - 1) * pageSize

	rows, totalCount, err := h.Store.List(r.Context(), offset, pageSize, search)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch class names: %v", err)
		http.Error(w, "Failed to fetch class names", http.StatusInternalServerError)
		return
	}

	classNames := make([]ClassName, 0, len(rows))
	for i, row := range rows {
		classNames = append(classNames, ClassName{
			Rank:        offset + i + 1,
			Name:        row.Name,
			Occurrences: row.Occurrences,
		})
	}

	response := map[string]interface{}{
		"classNames": classNames,
		"pagination": map[string]interface{}{
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": totalCount,
			"totalPages": (totalCount + int64(pageSize) - 1) / int64(pageSize),
		},
	}
	h.writeJSON(w, r, response)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
