package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lumenlabs/kbpipe/internal/api"
)

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type EmbeddingHandler struct {
	svc EmbeddingService
}

func NewEmbeddingHandler(svc EmbeddingService) *EmbeddingHandler {
	return &EmbeddingHandler{svc: svc}
}

type EmbeddingRequest struct {
	Text string `json:"text"`
}

type EmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension"`
}

func (h *EmbeddingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	embedding, err := h.svc.GenerateEmbedding(r.Context(), req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, EmbeddingResponse{
		Embedding: embedding,
		Dimension: len(embedding),
	})
}
