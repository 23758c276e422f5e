package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CompanyInfo is the working set extracted from the list page before it is
// split across Source, CompanyProfile and ContactInformation in the result.
type CompanyInfo struct {
	Name    string
	Domain  string
	Profile CompanyProfile
	Emails  []string
}

var (
	emailPattern       = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	companyNameSuffix  = regexp.MustCompile(`(?i)\s*[-|–]?\s*(Careers?|Jobs?)\s*$`)
	companySelectorSet = []string{"h1", ".company-name"}
)

// ExtractCompany derives company attributes from the page and its URL. The
// domain is the host with the www. and careers. prefixes stripped; the name
// defaults to the domain's first label and is overridden by a plausible
// page title or heading.
func ExtractCompany(doc *goquery.Document, pageURL string) CompanyInfo {
	info := CompanyInfo{
		Profile: CompanyProfile{
			Industry:          "Technology",
			BusinessType:      "Private",
			EmployeeSizeRange: "Unknown",
		},
	}

	if u, err := url.Parse(pageURL); err == nil {
		host := strings.ToLower(u.Hostname())
		host = strings.TrimPrefix(host, "www.")
		host = strings.TrimPrefix(host, "careers.")
		info.Domain = host
		if idx := strings.Index(host, "."); idx > 0 {
			info.Name = capitalize(host[:idx])
		}
	}

	if name := pageCompanyName(doc); name != "" {
		info.Name = name
	}

	body := strings.ToLower(doc.Text())
	info.Profile.EqualOpportunityEmployer = strings.Contains(body, "equal opportunity") ||
		strings.Contains(body, "equal employment")
	info.Profile.DiversityStatementPresent = strings.Contains(body, "diversity") ||
		strings.Contains(body, "inclusion")
	if strings.Contains(body, "financial") || strings.Contains(body, "payments") ||
		strings.Contains(body, "banking") {
		info.Profile.Industry = "Financial Services"
	}

	info.Emails = extractContactEmails(doc)
	return info
}

// pageCompanyName checks the title tag then the heading selectors for a
// usable company name, stripping trailing "Careers"/"Jobs" decorations.
func pageCompanyName(doc *goquery.Document) string {
	candidates := []string{cleanText(doc.Find("title").First().Text())}
	for _, sel := range companySelectorSet {
		candidates = append(candidates, cleanText(doc.Find(sel).First().Text()))
	}
	for _, raw := range candidates {
		name := cleanText(companyNameSuffix.ReplaceAllString(raw, ""))
		if len(name) >= 4 && len(name) < 50 {
			return name
		}
	}
	return ""
}

// extractContactEmails returns up to two distinct addresses in page order,
// skipping obvious placeholders.
func extractContactEmails(doc *goquery.Document) []string {
	matches := emailPattern.FindAllString(doc.Text(), -1)
	seen := map[string]bool{}
	var emails []string
	for _, m := range matches {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "example") || seen[lower] {
			continue
		}
		seen[lower] = true
		emails = append(emails, m)
		if len(emails) == 2 {
			break
		}
	}
	return emails
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
