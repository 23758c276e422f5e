package scraper

import "strings"

// skillsDatabase groups detectable skills by category. Matching is a plain
// case-insensitive substring scan over the combined title and body text.
var skillsDatabase = map[string][]string{
	"programming": {"python", "java", "javascript", "typescript", "go", "c++", "c#", "ruby", "scala", "kotlin"},
	"frontend":    {"react", "angular", "vue", "html", "css", "webpack", "next.js"},
	"backend":     {"node", "django", "flask", "spring", "express", "graphql", "rest api", "microservices"},
	"database":    {"sql", "postgresql", "mysql", "mongodb", "redis", "cassandra", "elasticsearch"},
	"cloud":       {"aws", "azure", "gcp", "google cloud", "kubernetes", "docker", "terraform"},
	"devops":      {"ci/cd", "jenkins", "gitlab", "github actions", "ansible", "prometheus", "grafana"},
}

// TallySkills counts skill mentions per category for the given text. Each
// skill contributes at most one count no matter how often it appears.
// Categories with zero matches are omitted from the tally.
func TallySkills(text string) SkillTally {
	lower := strings.ToLower(text)
	tally := SkillTally{}
	for category, skills := range skillsDatabase {
		count := 0
		for _, skill := range skills {
			if strings.Contains(lower, skill) {
				count++
			}
		}
		if count > 0 {
			tally[category] = count
		}
	}
	return tally
}

// MatchSkills returns the skill names found in the text, grouped by
// category. Categories with no matches are omitted.
func MatchSkills(text string) map[string][]string {
	lower := strings.ToLower(text)
	matched := map[string][]string{}
	for category, skills := range skillsDatabase {
		for _, skill := range skills {
			if strings.Contains(lower, skill) {
				matched[category] = append(matched[category], skill)
			}
		}
	}
	return matched
}

// SkillCount sums all category counts in a tally.
func (t SkillTally) SkillCount() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// TopCategories returns the matched category names, highest count first.
// Ties break alphabetically so the ordering is stable.
func (t SkillTally) TopCategories(limit int) []string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(t))
	for name, count := range t {
		pairs = append(pairs, pair{name, count})
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0; j-- {
			a, b := pairs[j-1], pairs[j]
			if b.count > a.count || (b.count == a.count && b.name < a.name) {
				pairs[j-1], pairs[j] = b, a
			} else {
				break
			}
		}
	}
	if limit > len(pairs) {
		limit = len(pairs)
	}
	names := make([]string, 0, limit)
	for _, p := range pairs[:limit] {
		names = append(names, p.name)
	}
	return names
}
