package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// detailSelectors are tried in order against the rendered detail page; the
// first non-trivial match supplies the job description text.
var detailSelectors = []string{
	"main",
	"article",
	".job-description",
	`[class*="desc"]`,
	".content",
}

const maxDetailTextLen = 4000

// ExtractDetailText picks the most promising description region from a job
// detail page. The second return is false when no selector yields enough
// text; the caller then keeps the candidate's list-page context instead.
func ExtractDetailText(doc *goquery.Document) (string, bool) {
	for _, sel := range detailSelectors {
		text := cleanText(doc.Find(sel).First().Text())
		if len(text) >= 100 {
			return truncate(text, maxDetailTextLen), true
		}
	}
	return "", false
}

// ParseHTML wraps goquery document construction so callers outside the
// package do not import goquery directly for this one step.
func ParseHTML(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
