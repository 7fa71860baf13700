package handlers

import (
	"context"
	"net/http"

	"github.com/lumenlabs/kbpipe/internal/api"
	"github.com/lumenlabs/kbpipe/internal/domain"
)

type StatsStore interface {
	CountAll(ctx context.Context) (int64, error)
	ListCategories(ctx context.Context) (map[domain.Category]int64, error)
}

type StatsHandler struct {
	store StatsStore
}

func NewStatsHandler(store StatsStore) *StatsHandler {
	return &StatsHandler{store: store}
}

type StatsResponse struct {
	TotalItems int64            `json:"total_items"`
	Categories map[string]int64 `json:"categories"`
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.CountAll(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	byCategory, err := h.store.ListCategories(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	categories := make(map[string]int64, len(byCategory))
	for category, count := range byCategory {
		categories[string(category)] = count
	}

	api.Success(w, http.StatusOK, StatsResponse{
		TotalItems: total,
		Categories: categories,
	})
}
