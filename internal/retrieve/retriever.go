package retrieve

import (
	"context"

	"github.com/lumenlabs/kbpipe/internal/domain"
	"github.com/lumenlabs/kbpipe/internal/telemetry"
)

const (
	// DefaultMatchThreshold is the minimum similarity a result must reach
	// to be returned.
	DefaultMatchThreshold = 0.7
	// DefaultMatchCount caps how many results one query returns.
	DefaultMatchCount = 5
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SimilaritySearcher defines the store-side nearest-neighbor contract.
type SimilaritySearcher interface {
	SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*domain.SimilarityResult, error)
}

// Options tunes a single retrieval call. Zero values fall back to the
// retriever's configured defaults.
type Options struct {
	MatchThreshold float64
	MatchCount     int
}

// Retriever answers queries by embedding them and delegating the
// nearest-neighbor computation to the store.
type Retriever struct {
	client    EmbeddingClient
	store     SimilaritySearcher
	threshold float64
	count     int
}

// NewRetriever creates a new Retriever with default match parameters.
func NewRetriever(client EmbeddingClient, store SimilaritySearcher) *Retriever {
	return NewRetrieverWithDefaults(client, store, DefaultMatchThreshold, DefaultMatchCount)
}

// NewRetrieverWithDefaults creates a new Retriever with explicit default
// match parameters.
func NewRetrieverWithDefaults(client EmbeddingClient, store SimilaritySearcher, threshold float64, count int) *Retriever {
	if count <= 0 {
		count = DefaultMatchCount
	}
	return &Retriever{
		client:    client,
		store:     store,
		threshold: threshold,
		count:     count,
	}
}

// Retrieve returns the stored items most relevant to the query, ordered
// by descending similarity. An empty result means nothing cleared the
// threshold; a provider failure while embedding the query is an error,
// never an empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts Options) ([]*domain.SimilarityResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	threshold := opts.MatchThreshold
	if threshold == 0 {
		threshold = r.threshold
	}
	count := opts.MatchCount
	if count <= 0 {
		count = r.count
	}

	embedding, err := r.client.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	results, err := r.store.SimilaritySearch(ctx, embedding, threshold, count)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewStoreError("similarity search failed", err)
	}

	return results, nil
}
