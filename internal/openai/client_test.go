package openai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lumenlabs/kbpipe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock implementation of EmbeddingAPI
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func newTestClient(api EmbeddingAPI, dimensions int) *Client {
	return &Client{api: api, dimensions: dimensions}
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	embedding := make([]float32, 1536)
	mockAPI.On("CreateEmbeddings", mock.Anything, "hello world").Return(embedding, nil)

	client := newTestClient(mockAPI, DefaultEmbeddingDimensions)
	result, err := client.GenerateEmbedding(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Len(t, result, 1536)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newTestClient(mockAPI, DefaultEmbeddingDimensions)

	_, err := client.GenerateEmbedding(context.Background(), "")

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	mockAPI.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestClient_GenerateEmbedding_TextTooLong(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newTestClient(mockAPI, DefaultEmbeddingDimensions)

	_, err := client.GenerateEmbedding(context.Background(), strings.Repeat("x", MaxEmbeddingTextLength+1))

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.ErrorIs(t, err, domain.ErrTextTooLong)
	mockAPI.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestClient_GenerateEmbedding_MaxLengthAccepted(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	embedding := make([]float32, 1536)
	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(embedding, nil)

	client := newTestClient(mockAPI, DefaultEmbeddingDimensions)
	_, err := client.GenerateEmbedding(context.Background(), strings.Repeat("x", MaxEmbeddingTextLength))

	assert.NoError(t, err)
}

func TestClient_GenerateEmbedding_ProviderError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(nil, errors.New("429 too many requests"))

	client := newTestClient(mockAPI, DefaultEmbeddingDimensions)
	_, err := client.GenerateEmbedding(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
	// One attempt only, no retries
	mockAPI.AssertNumberOfCalls(t, "CreateEmbeddings", 1)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(make([]float32, 42), nil)

	client := newTestClient(mockAPI, DefaultEmbeddingDimensions)
	_, err := client.GenerateEmbedding(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()

	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewClientWithConfig_DefaultDimensions(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-key"})

	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
}
