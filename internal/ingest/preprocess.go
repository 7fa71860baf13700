package ingest

import (
	"regexp"
	"strings"
)

// MinDocumentLength is the shortest normalized document worth chunking.
// Anything below this is skipped without error; stub files and empty
// templates carry no retrievable signal.
const MinDocumentLength = 50

var (
	titleRe    = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// PreprocessResult holds a document's normalized text and extracted title.
// Skip is set when the document is too short to ingest.
type PreprocessResult struct {
	Text  string
	Title string
	Skip  bool
}

// Preprocess normalizes raw document text for chunking. The first level-1
// heading becomes the title; all heading markers are stripped with their
// text retained; runs of three or more newlines collapse to two.
func Preprocess(raw string) PreprocessResult {
	var title string
	if m := titleRe.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(m[1])
	}

	text := headingRe.ReplaceAllString(raw, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return PreprocessResult{
		Text:  text,
		Title: title,
		Skip:  len(text) < MinDocumentLength,
	}
}
