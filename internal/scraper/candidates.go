package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jobURLPatterns describe the URL shapes that identify a job-detail link.
var jobURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/job[s]?/[A-Z0-9\-]{3,20}`),
	regexp.MustCompile(`R-\d+`),
	regexp.MustCompile(`/us/en/job/[A-Z0-9\-]+`),
}

var jobIDPattern = regexp.MustCompile(`R-(\d+)`)

// invalidTitles are UI labels that disqualify an anchor regardless of URL shape.
var invalidTitles = []string{
	"search", "filter", "loading", "view all", "clear text", "previous job", "next job",
}

const (
	minTitleLen     = 9
	maxTitleLen     = 119
	contextCharCap  = 300
	candidateParent = "li, div, article"
)

// ExtractCandidates scans every hyperlink on a rendered list page and returns
// the ones shaped like job postings. A page-local dedup set by absolute URL
// prevents the same anchor from being added twice within one page.
func ExtractCandidates(doc *goquery.Document, baseURL string) []Candidate {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var out []Candidate
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if strings.HasPrefix(href, "#") || strings.Contains(href, "javascript") {
			return
		}

		title := cleanText(link.Text())
		if len(title) < minTitleLen || len(title) > maxTitleLen {
			return
		}
		if containsAnyLower(title, invalidTitles) {
			return
		}

		fullURL := resolveURL(base, href)
		if fullURL == "" || !matchesJobURL(fullURL) {
			return
		}
		if _, dup := seen[fullURL]; dup {
			return
		}
		seen[fullURL] = struct{}{}

		out = append(out, Candidate{
			Title:   title,
			URL:     fullURL,
			JobID:   extractJobID(fullURL),
			Context: candidateContext(link, title),
		})
	})
	return out
}

func matchesJobURL(fullURL string) bool {
	for _, p := range jobURLPatterns {
		if p.MatchString(fullURL) {
			return true
		}
	}
	return false
}

func extractJobID(fullURL string) string {
	m := jobIDPattern.FindStringSubmatch(fullURL)
	if m == nil {
		return ""
	}
	return "R-" + m[1]
}

// candidateContext returns the text of the nearest list item/div/article
// ancestor, truncated to contextCharCap, falling back to the link text.
func candidateContext(link *goquery.Selection, title string) string {
	parent := link.ParentsFiltered(candidateParent).First()
	if parent.Length() == 0 {
		return truncate(title, contextCharCap)
	}
	ctx := cleanText(parent.Text())
	if ctx == "" {
		ctx = title
	}
	return truncate(ctx, contextCharCap)
}
