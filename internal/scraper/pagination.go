package scraper

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// nextPageSelectors are tried in order; the first match wins.
var nextPageSelectors = []string{
	`a[data-automation="page-next"]`,
	`.pagination-next a`,
	`a[rel="next"]`,
	`.next-page`,
	`[aria-label="Next"]`,
}

var pageParamPattern = regexp.MustCompile(`from=\d+|page=\d+`)

// paginationCollectLimit caps how many numbered-page candidates are gathered
// before the final truncation to MaxListPages.
const paginationCollectLimit = 20

// DiscoverPages returns the ordered set of list-page URLs to visit for one
// session: the base URL first, then the first matching "next page" link, then
// numbered pagination links carrying an offset or page-number query parameter,
// in document order. The result is deduplicated and truncated to MaxListPages
// so crawl cost stays proportional to the output cap.
func DiscoverPages(doc *goquery.Document, baseURL string) []string {
	pages := []string{baseURL}
	seen := map[string]struct{}{baseURL: {}}

	base, err := url.Parse(baseURL)
	if err != nil {
		return pages
	}

	for _, sel := range nextPageSelectors {
		href, ok := doc.Find(sel).First().Attr("href")
		if !ok || href == "" {
			continue
		}
		next := resolveURL(base, href)
		if next == "" {
			continue
		}
		if _, dup := seen[next]; !dup {
			seen[next] = struct{}{}
			pages = append(pages, next)
		}
		break
	}

	doc.Find(".pagination a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || !pageParamPattern.MatchString(href) {
			return true
		}
		full := resolveURL(base, href)
		if full == "" {
			return true
		}
		if _, dup := seen[full]; dup {
			return true
		}
		seen[full] = struct{}{}
		pages = append(pages, full)
		return len(pages) < paginationCollectLimit
	})

	if len(pages) > MaxListPages {
		pages = pages[:MaxListPages]
	}
	return pages
}

// resolveURL makes href absolute against base, returning "" when unparsable.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
