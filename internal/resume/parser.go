// Package resume extracts candidate details from plain-text resumes.
package resume

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jobpilot/careers-crawler/internal/scraper"
)

// maxResumeLen bounds how much resume text is scanned.
const maxResumeLen = 5000

// Profile holds everything extracted from one resume.
type Profile struct {
	Name       string              `json:"name"`
	Phone      string              `json:"phone"`
	Email      string              `json:"email"`
	Skills     map[string][]string `json:"skills"`
	SkillsFlat []string            `json:"skills_flat"`
	Confidence float64             `json:"confidence"`
}

var (
	namePattern  = regexp.MustCompile(`^[A-Z][a-z]{2,20}\s+[A-Z][a-z]{2,20}`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+?91|0)?[6-9]\d{9}`),
		regexp.MustCompile(`\+?1?[2-9]\d{9}`),
		regexp.MustCompile(`\d{3}[-.]?\d{3}[-.]?\d{4}`),
	}
)

// ExtractProfile parses a plain-text resume. Extraction is best effort:
// fields that cannot be found are left empty and lower the confidence.
func ExtractProfile(text string) Profile {
	if len(text) > maxResumeLen {
		text = text[:maxResumeLen]
	}

	profile := Profile{
		Name:   extractName(text),
		Phone:  extractPhone(text),
		Email:  emailPattern.FindString(text),
		Skills: scraper.MatchSkills(text),
	}
	profile.SkillsFlat = flatten(profile.Skills)
	profile.Confidence = confidence(profile)
	return profile
}

// extractName scans the first lines for a capitalized first/last name pair.
func extractName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		if match := namePattern.FindString(strings.TrimSpace(line)); match != "" {
			return match
		}
	}
	return ""
}

func extractPhone(text string) string {
	for _, pattern := range phonePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// flatten produces a sorted, distinct skill list from the category map.
func flatten(byCategory map[string][]string) []string {
	seen := map[string]bool{}
	flat := []string{}
	for _, skills := range byCategory {
		for _, skill := range skills {
			if !seen[skill] {
				seen[skill] = true
				flat = append(flat, skill)
			}
		}
	}
	sort.Strings(flat)
	if len(flat) > 20 {
		flat = flat[:20]
	}
	return flat
}

func confidence(p Profile) float64 {
	score := 0.2
	if p.Name != "" {
		score += 0.15
	}
	if p.Phone != "" {
		score += 0.15
	}
	if p.Email != "" {
		score += 0.15
	}
	if len(p.SkillsFlat) > 0 {
		score += 0.3
	}
	if score > 0.95 {
		score = 0.95
	}
	return score
}
