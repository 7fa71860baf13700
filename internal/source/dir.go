package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lumenlabs/kbpipe/internal/domain"
)

// DirSource reads markdown and plain-text documents from a local
// directory. A missing or unreadable directory is a fatal condition for
// the ingestion run.
type DirSource struct {
	dir string
}

// NewDirSource creates a new DirSource for the given directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List reads every .md and .txt file in the directory, in name order.
func (s *DirSource) List(ctx context.Context) ([]domain.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isDocumentFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	docs := make([]domain.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", name, err)
		}
		docs = append(docs, domain.Document{
			Filename: name,
			Content:  string(content),
		})
	}

	return docs, nil
}

func isDocumentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt":
		return true
	}
	return false
}
