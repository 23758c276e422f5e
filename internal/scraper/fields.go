package scraper

import (
	"regexp"
	"strings"
)

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules are checked in order; the first matching rule wins.
var categoryRules = []categoryRule{
	{"Software Engineering", []string{"engineer", "developer"}},
	{"Data Science", []string{"data", "analytics"}},
	{"DevOps", []string{"devops", "reliability"}},
	{"Customer Success", []string{"support", "customer"}},
}

var seniorityQualifiers = regexp.MustCompile(`(?i)\b(senior|lead|sr\.?|ii|iii)\b`)

// InferSeniority picks a level from the title first, falling back to the
// body text. Title evidence always outranks body evidence.
func InferSeniority(title, body string) string {
	for _, text := range []string{title, body} {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "senior") || strings.Contains(lower, "lead") ||
			strings.Contains(lower, " iii") || strings.Contains(lower, " sr") {
			return "Senior"
		}
		if strings.Contains(lower, "junior") || strings.Contains(lower, "intern") ||
			strings.Contains(lower, "entry") {
			return "Junior"
		}
	}
	return "Mid"
}

// InferCategory maps a job to a category via the ordered rule table, scanning
// the title together with the body text.
func InferCategory(title, body string) string {
	lower := strings.ToLower(title + " " + body)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return "Engineering"
}

// NormalizeTitle strips seniority qualifiers from a title and caps it at 50
// characters, yielding a stable key for matching equivalent roles.
func NormalizeTitle(title string) string {
	normalized := seniorityQualifiers.ReplaceAllString(title, "")
	return truncate(cleanText(normalized), 50)
}

// InferDepartment buckets a title into an org department.
func InferDepartment(title string) string {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "engineer") || strings.Contains(lower, "developer") {
		return "Technology"
	}
	return "Other"
}

// MinimumYears derives the experience floor from the seniority level.
func MinimumYears(seniority string) int {
	if seniority == "Senior" {
		return 3
	}
	return 2
}
