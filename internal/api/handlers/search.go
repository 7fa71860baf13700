package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lumenlabs/kbpipe/internal/api"
	"github.com/lumenlabs/kbpipe/internal/domain"
	"github.com/lumenlabs/kbpipe/internal/retrieve"
)

type SearchService interface {
	Retrieve(ctx context.Context, query string, opts retrieve.Options) ([]*domain.SimilarityResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query          string  `json:"query"`
	MatchThreshold float64 `json:"match_threshold,omitempty"`
	MatchCount     int     `json:"match_count,omitempty"`
}

type SearchResultResponse struct {
	Content    string              `json:"content"`
	Metadata   domain.ItemMetadata `json:"metadata"`
	Similarity float64             `json:"similarity"`
}

type SearchResponse struct {
	Results []*SearchResultResponse `json:"results"`
	Count   int                     `json:"count"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.MatchThreshold < 0 || req.MatchThreshold > 1 {
		api.Error(w, http.StatusBadRequest, "match_threshold must be between 0 and 1")
		return
	}
	if req.MatchCount < 0 {
		api.Error(w, http.StatusBadRequest, "match_count must be positive")
		return
	}

	results, err := h.svc.Retrieve(r.Context(), req.Query, retrieve.Options{
		MatchThreshold: req.MatchThreshold,
		MatchCount:     req.MatchCount,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SearchResultResponse, len(results))
	for i, result := range results {
		responses[i] = &SearchResultResponse{
			Content:    result.Content,
			Metadata:   result.Metadata,
			Similarity: result.Similarity,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Results: responses,
		Count:   len(responses),
	})
}
