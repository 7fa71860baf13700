package domain

import (
	"fmt"
	"time"
)

// Category is the coarse topic label derived from a document's filename.
type Category string

const (
	CategoryCompany   Category = "company"
	CategoryServices  Category = "services"
	CategoryPricing   Category = "pricing"
	CategoryProcess   Category = "process"
	CategoryFAQ       Category = "faq"
	CategoryBotConfig Category = "bot_config"
	CategoryGeneral   Category = "general"
)

// Document is a raw source document. It is read once during ingestion and
// never persisted itself.
type Document struct {
	Filename string
	Content  string
}

// Chunk is a contiguous segment of a document's normalized text, produced
// by the chunker. ChunkIndex is the 0-based position among siblings and
// TotalChunks the sibling count; both are fixed at creation time.
type Chunk struct {
	Content        string
	SourceFilename string
	Category       Category
	Title          string
	ChunkIndex     int
	TotalChunks    int
}

// ItemMetadata is the closed metadata record carried by every stored item.
type ItemMetadata struct {
	Source      string   `json:"source"`
	Category    Category `json:"category"`
	Title       string   `json:"title,omitempty"`
	ChunkIndex  int      `json:"chunk_index"`
	TotalChunks int      `json:"total_chunks"`
}

// KnowledgeItem is a persisted (content, embedding, metadata) record.
// The id is assigned by the store on insert. Category duplicates
// Metadata.Category so the store can filter on an indexed column.
type KnowledgeItem struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  ItemMetadata
	Category  Category
	CreatedAt time.Time
}

// SimilarityResult is one ranked retrieval hit. Never persisted.
type SimilarityResult struct {
	Content    string       `json:"content"`
	Metadata   ItemMetadata `json:"metadata"`
	Similarity float64      `json:"similarity"`
}

// NewKnowledgeItemFromChunk converts a chunk into the item the store will
// persist alongside its embedding.
func NewKnowledgeItemFromChunk(c Chunk, embedding []float32) *KnowledgeItem {
	return &KnowledgeItem{
		Content:   c.Content,
		Embedding: embedding,
		Metadata: ItemMetadata{
			Source:      c.SourceFilename,
			Category:    c.Category,
			Title:       c.Title,
			ChunkIndex:  c.ChunkIndex,
			TotalChunks: c.TotalChunks,
		},
		Category: c.Category,
	}
}

// ValidateKnowledgeItem checks the invariants a store write relies on.
func ValidateKnowledgeItem(item *KnowledgeItem) error {
	if item == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if item.Content == "" {
		return fmt.Errorf("knowledge item Content is required")
	}

	if len(item.Embedding) == 0 {
		return fmt.Errorf("knowledge item Embedding is required")
	}

	if item.Metadata.Source == "" {
		return fmt.Errorf("knowledge item Metadata.Source is required")
	}

	if item.Metadata.ChunkIndex < 0 || item.Metadata.ChunkIndex >= item.Metadata.TotalChunks {
		return fmt.Errorf("knowledge item chunk position is invalid: %d of %d",
			item.Metadata.ChunkIndex, item.Metadata.TotalChunks)
	}

	return nil
}
