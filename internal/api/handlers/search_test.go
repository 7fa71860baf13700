package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenlabs/kbpipe/internal/domain"
	"github.com/lumenlabs/kbpipe/internal/retrieve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearchService is a mock implementation of SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Retrieve(ctx context.Context, query string, opts retrieve.Options) ([]*domain.SimilarityResult, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SimilarityResult), args.Error(1)
}

func TestSearchHandler_Search_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	results := []*domain.SimilarityResult{
		{
			Content: "our pricing starts at 500 per month",
			Metadata: domain.ItemMetadata{
				Source:      "pricing-guide.md",
				Category:    domain.CategoryPricing,
				ChunkIndex:  0,
				TotalChunks: 2,
			},
			Similarity: 0.92,
		},
	}
	mockSvc.On("Retrieve", mock.Anything, "what does it cost", retrieve.Options{}).Return(results, nil)

	body, _ := json.Marshal(SearchRequest{Query: "what does it cost"})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "pricing-guide.md", resp.Data.Results[0].Metadata.Source)
	assert.InDelta(t, 0.92, resp.Data.Results[0].Similarity, 1e-9)
}

func TestSearchHandler_Search_PassesOptions(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	opts := retrieve.Options{MatchThreshold: 0.8, MatchCount: 3}
	mockSvc.On("Retrieve", mock.Anything, "query", opts).Return([]*domain.SimilarityResult{}, nil)

	body, _ := json.Marshal(SearchRequest{Query: "query", MatchThreshold: 0.8, MatchCount: 3})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_EmptyResults(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.SimilarityResult{}, nil)

	body, _ := json.Marshal(SearchRequest{Query: "nothing matches this"})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.Count)
	assert.NotNil(t, resp.Data.Results)
}

func TestSearchHandler_Search_MissingQuery(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	body, _ := json.Marshal(SearchRequest{})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchHandler_Search_InvalidThreshold(t *testing.T) {
	handler := NewSearchHandler(new(MockSearchService))

	body, _ := json.Marshal(SearchRequest{Query: "query", MatchThreshold: 1.5})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_Search_ProviderError(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewProviderError("embedding request failed", errors.New("quota exceeded")))

	body, _ := json.Marshal(SearchRequest{Query: "query"})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
