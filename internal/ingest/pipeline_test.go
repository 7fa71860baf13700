package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/lumenlabs/kbpipe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	docs []domain.Document
	err  error
}

func (s *fakeSource) List(ctx context.Context) ([]domain.Document, error) {
	return s.docs, s.err
}

type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failOn    map[string]bool
	embedding []float32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		failOn:    map[string]bool{},
		embedding: []float32{0.1, 0.2, 0.3},
	}
}

func (e *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	for marker := range e.failOn {
		if strings.Contains(text, marker) {
			return nil, domain.NewProviderError("embedding request failed", errors.New("rate limited"))
		}
	}
	return e.embedding, nil
}

type fakeStore struct {
	mu        sync.Mutex
	items     []*domain.KnowledgeItem
	deletes   int
	deleteErr error
	insertErr error
}

func (s *fakeStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes++
	s.items = nil
	return nil
}

func (s *fakeStore) Insert(ctx context.Context, item *domain.KnowledgeItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.items = append(s.items, item)
	return nil
}

func docOfLength(name string, n int) domain.Document {
	return domain.Document{
		Filename: name,
		Content:  strings.Repeat("lorem ipsum dolor sit amet ", n/27+1)[:n],
	}
}

func testConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:    200,
		ChunkOverlap: 40,
		BatchSize:    10,
		BatchDelay:   0,
	}
}

func TestPipeline_Run_StoresAllChunks(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{
		docOfLength("services.md", 500),
		docOfLength("pricing-guide.md", 300),
	}}
	embedder := newFakeEmbedder()
	store := &fakeStore{}

	pipeline := NewPipeline(source, embedder, store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.DocumentsSeen)
	assert.Equal(t, 0, report.DocumentsSkipped)
	assert.Equal(t, report.ChunksAttempted, report.ChunksStored)
	assert.Equal(t, 0, report.ChunksFailed)
	assert.Equal(t, 1, store.deletes)
	assert.Len(t, store.items, report.ChunksStored)
}

func TestPipeline_Run_SkipsShortDocuments(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{
		docOfLength("services.md", 500),
		{Filename: "stub.md", Content: "too short"},
	}}
	embedder := newFakeEmbedder()
	store := &fakeStore{}

	pipeline := NewPipeline(source, embedder, store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.DocumentsSeen)
	assert.Equal(t, 1, report.DocumentsSkipped)
	for _, item := range store.items {
		assert.Equal(t, "services.md", item.Metadata.Source)
	}
}

func TestPipeline_Run_PartialFailuresDoNotAbort(t *testing.T) {
	// Ten single-chunk documents, three of which fail to embed.
	var docs []domain.Document
	for i := 0; i < 10; i++ {
		docs = append(docs, domain.Document{
			Filename: fmt.Sprintf("doc-%02d.md", i),
			Content:  fmt.Sprintf("document number %02d with enough body text to pass the minimum length check", i),
		})
	}
	embedder := newFakeEmbedder()
	embedder.failOn["number 02"] = true
	embedder.failOn["number 05"] = true
	embedder.failOn["number 08"] = true
	store := &fakeStore{}

	pipeline := NewPipeline(&fakeSource{docs: docs}, embedder, store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, report.ChunksAttempted)
	assert.Equal(t, 7, report.ChunksStored)
	assert.Equal(t, 3, report.ChunksFailed)
	assert.Len(t, store.items, 7)
}

func TestPipeline_Run_SourceFailureIsFatal(t *testing.T) {
	source := &fakeSource{err: errors.New("bucket unreachable")}
	store := &fakeStore{}

	pipeline := NewPipeline(source, newFakeEmbedder(), store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 0, store.deletes)
}

func TestPipeline_Run_ClearFailureIsFatal(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{docOfLength("services.md", 500)}}
	store := &fakeStore{deleteErr: errors.New("connection reset")}
	embedder := newFakeEmbedder()

	pipeline := NewPipeline(source, embedder, store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, domain.IsStoreError(err))
	assert.Equal(t, 0, embedder.calls)
}

func TestPipeline_Run_InvalidChunkConfigIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkOverlap = cfg.ChunkSize

	pipeline := NewPipeline(&fakeSource{}, newFakeEmbedder(), &fakeStore{}, cfg)
	_, err := pipeline.Run(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestPipeline_Run_StoreInsertFailuresCounted(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{docOfLength("services.md", 500)}}
	store := &fakeStore{insertErr: errors.New("disk full")}
	embedder := newFakeEmbedder()

	pipeline := NewPipeline(source, embedder, store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, report.ChunksAttempted, report.ChunksFailed)
	assert.Equal(t, 0, report.ChunksStored)
}

func TestPipeline_Run_EmptySource(t *testing.T) {
	pipeline := NewPipeline(&fakeSource{}, newFakeEmbedder(), &fakeStore{}, testConfig())
	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.DocumentsSeen)
	assert.Equal(t, 0, report.ChunksAttempted)
}

func TestPipeline_Run_ItemsCarryChunkMetadata(t *testing.T) {
	source := &fakeSource{docs: []domain.Document{
		{Filename: "faq.md", Content: "# FAQ\n\n" + strings.Repeat("question and answer text ", 30)},
	}}
	embedder := newFakeEmbedder()
	store := &fakeStore{}

	pipeline := NewPipeline(source, embedder, store, testConfig())
	report, err := pipeline.Run(context.Background())

	require.NoError(t, err)
	require.Greater(t, report.ChunksStored, 1)
	seen := map[int]bool{}
	for _, item := range store.items {
		assert.Equal(t, "faq.md", item.Metadata.Source)
		assert.Equal(t, domain.CategoryFAQ, item.Category)
		assert.Equal(t, "FAQ", item.Metadata.Title)
		assert.Equal(t, report.ChunksStored, item.Metadata.TotalChunks)
		seen[item.Metadata.ChunkIndex] = true
	}
	assert.Len(t, seen, report.ChunksStored)
}
