package ingest

import (
	"strings"

	"github.com/lumenlabs/kbpipe/internal/domain"
)

const (
	// DefaultChunkSize is the target length of each chunk in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many trailing characters each chunk shares
	// with its successor.
	DefaultChunkOverlap = 200
)

// SplitText splits text into overlapping segments of at most size
// characters. Every chunk except possibly the last has length exactly
// size, and consecutive chunks share exactly overlap characters. Text no
// longer than size yields a single chunk equal to the whole text.
//
// overlap must be strictly smaller than size; otherwise the cursor would
// never advance and the split would loop forever.
func SplitText(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= size {
		return nil, domain.ErrOverlapTooLarge
	}

	if len(text) <= size {
		return []string{text}, nil
	}

	var segments []string
	cursor := 0
	for {
		end := cursor + size
		if end >= len(text) {
			segments = append(segments, text[cursor:])
			break
		}
		segments = append(segments, text[cursor:end])
		cursor = end - overlap
	}

	return segments, nil
}

// ChunkDocument splits a document's normalized text and wraps each segment
// into a Chunk record carrying the document's source identity, category
// and title. Segment text is trimmed of surrounding whitespace.
func ChunkDocument(doc domain.Document, category domain.Category, title string, size, overlap int) ([]domain.Chunk, error) {
	segments, err := SplitText(doc.Content, size, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	for i, segment := range segments {
		chunks = append(chunks, domain.Chunk{
			Content:        strings.TrimSpace(segment),
			SourceFilename: doc.Filename,
			Category:       category,
			Title:          title,
			ChunkIndex:     i,
			TotalChunks:    len(segments),
		})
	}

	return chunks, nil
}
