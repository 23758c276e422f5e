package scraper

import "regexp"

var (
	responsibilityPattern = regexp.MustCompile(`[-•]\s*([A-Z][^•\n]{19,199}[.;])`)
	qualificationPattern  = regexp.MustCompile(`(?i)(?:requirements?|qualifications?)[:\-]?\s*([^\n]{50,300})`)
)

const (
	maxDescriptionEntries = 8
	maxEntryLen           = 200
	minEntryLen           = 20
)

// ExtractResponsibilities pulls bulleted sentences out of a description.
// Entries shorter than the minimum are dropped; at most eight survive.
func ExtractResponsibilities(text string) []string {
	matches := responsibilityPattern.FindAllStringSubmatch(text, -1)
	return collectEntries(matches)
}

// ExtractQualifications pulls the text following a requirements or
// qualifications heading.
func ExtractQualifications(text string) []string {
	matches := qualificationPattern.FindAllStringSubmatch(text, -1)
	return collectEntries(matches)
}

func collectEntries(matches [][]string) []string {
	var entries []string
	for _, m := range matches {
		entry := truncate(cleanText(m[1]), maxEntryLen)
		if len(entry) < minEntryLen {
			continue
		}
		entries = append(entries, entry)
		if len(entries) == maxDescriptionEntries {
			break
		}
	}
	return entries
}
