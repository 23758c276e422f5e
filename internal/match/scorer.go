// Package match scores scraped job records against a candidate profile.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jobpilot/careers-crawler/internal/scraper"
)

const (
	baseScore     = 70
	skillWeight   = 3
	locationBonus = 20
	maxScore      = 95
	maxMatches    = 10
	maxTitleLen   = 70
)

// Candidate is the profile a result document is scored against. Only the
// city influences scoring; skill counts come from the job records themselves.
type Candidate struct {
	City string
}

// JobMatch is one scored job, ranked for presentation.
type JobMatch struct {
	Title        string             `json:"title"`
	Score        int                `json:"match_score"`
	Percentage   string             `json:"match_percentage"`
	Priority     string             `json:"priority"`
	WhyGoodFit   string             `json:"why_good_fit"`
	ApplyURL     string             `json:"apply_url"`
	SkillsMatch  scraper.SkillTally `json:"skills_match"`
	Improvements []string           `json:"improvements"`
}

// Analysis is the full scoring outcome for one result document.
type Analysis struct {
	Jobs        []JobMatch `json:"jobs"`
	HighMatches int        `json:"high_matches"`
}

// Score ranks the document's jobs for the candidate. Scoring is
// deterministic: a base of 70, plus 3 per matched skill mention, plus a
// 20 point bonus when the job is in the candidate's city, capped at 95.
func Score(doc scraper.ResultDocument, candidate Candidate) Analysis {
	jobs := doc.Jobs
	if len(jobs) > maxMatches {
		jobs = jobs[:maxMatches]
	}

	matches := make([]JobMatch, 0, len(jobs))
	for _, job := range jobs {
		matches = append(matches, scoreJob(job, candidate))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	high := 0
	for _, m := range matches {
		if m.Score >= 80 {
			high++
		}
	}
	return Analysis{Jobs: matches, HighMatches: high}
}

// EmailRecommended reports whether a cold email draft should accompany
// the analysis: fewer than three jobs scoring 80 or better.
func (a Analysis) EmailRecommended() bool {
	return a.HighMatches < 3
}

func scoreJob(job scraper.JobRecord, candidate Candidate) JobMatch {
	skillScore := job.Skills.SkillCount()
	bonus := 0
	if inCandidateCity(job.Location, candidate.City) {
		bonus = locationBonus
	}

	score := baseScore + skillScore*skillWeight + bonus
	if score > maxScore {
		score = maxScore
	}

	priority := "MEDIUM"
	if bonus > 0 {
		priority = "HIGH"
	}

	title := job.Title
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	return JobMatch{
		Title:        title,
		Score:        score,
		Percentage:   fmt.Sprintf("%d%%", score),
		Priority:     priority,
		WhyGoodFit:   fmt.Sprintf("%s + %s match", cityOrRemote(job.Location), job.SeniorityLevel),
		ApplyURL:     job.Application.ApplyURL,
		SkillsMatch:  job.Skills,
		Improvements: improvements(job),
	}
}

func inCandidateCity(loc scraper.Location, city string) bool {
	if city == "" {
		return false
	}
	haystack := strings.ToLower(strings.Join([]string{loc.City, loc.State, loc.Country}, " "))
	return strings.Contains(haystack, strings.ToLower(city))
}

func cityOrRemote(loc scraper.Location) string {
	if loc.City != "" && loc.City != "Not Specified" {
		return loc.City
	}
	return "Remote"
}

func improvements(job scraper.JobRecord) []string {
	topSkill := "relevant projects"
	if categories := job.Skills.TopCategories(1); len(categories) > 0 {
		topSkill = categories[0]
	}
	return []string{
		fmt.Sprintf("Highlight %s experience", topSkill),
		"Add quantifiable achievements",
		fmt.Sprintf("Tailor for %s role", job.SeniorityLevel),
	}
}
