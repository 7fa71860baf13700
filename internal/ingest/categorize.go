package ingest

import (
	"path/filepath"
	"strings"

	"github.com/lumenlabs/kbpipe/internal/domain"
)

// categoryRules are tested in order; the first match wins.
var categoryRules = []struct {
	keywords []string
	category domain.Category
}{
	{[]string{"company", "info"}, domain.CategoryCompany},
	{[]string{"service"}, domain.CategoryServices},
	{[]string{"pricing", "package"}, domain.CategoryPricing},
	{[]string{"process", "methodology"}, domain.CategoryProcess},
	{[]string{"faq", "question"}, domain.CategoryFAQ},
	{[]string{"personality", "bot"}, domain.CategoryBotConfig},
}

// Categorize derives a topic label from a document's filename. It is a
// pure function of the name: case-insensitive, extension stripped, falling
// back to the general category when no rule matches.
func Categorize(filename string) domain.Category {
	name := strings.ToLower(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.category
			}
		}
	}

	return domain.CategoryGeneral
}
