// Package email drafts and sends cold application emails.
package email

import (
	"fmt"
	"strings"

	"github.com/jobpilot/careers-crawler/internal/resume"
	"github.com/jobpilot/careers-crawler/internal/scraper"
)

const maxDraftJobs = 3

// Draft is a composed cold email, returned to clients before sending.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Company string `json:"company"`
	Ready   bool   `json:"ready"`
}

// Compose builds a cold email draft for the scraped company from the
// candidate's resume profile. Ready is false when the list page exposed
// no contact address.
func Compose(profile resume.Profile, doc scraper.ResultDocument) Draft {
	name := profile.Name
	if name == "" {
		name = "Candidate"
	}
	company := doc.Source.CompanyName
	if company == "" {
		company = "your company"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear Hiring Team,\n\n")
	fmt.Fprintf(&b, "I am %s. I came across the openings at %s and believe my skills align well.\n\n", name, company)

	if len(profile.SkillsFlat) > 0 {
		fmt.Fprintf(&b, "Matching skills: %s\n\n", strings.Join(profile.SkillsFlat, ", "))
	}

	if len(doc.Jobs) > 0 {
		b.WriteString("Relevant openings:\n")
		for i, job := range doc.Jobs {
			if i == maxDraftJobs {
				break
			}
			title := job.Title
			if len(title) > 60 {
				title = title[:60]
			}
			fmt.Fprintf(&b, "- %s\n", title)
		}
		b.WriteString("\n")
	}

	b.WriteString("I would love to discuss how I can contribute to your team.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s", name)
	if profile.Email != "" {
		fmt.Fprintf(&b, "\n%s", profile.Email)
	}

	return Draft{
		To:      doc.ContactInformation.PrivacyEmail,
		Subject: fmt.Sprintf("Application for Software Engineering Positions - %s", name),
		Body:    b.String(),
		Company: company,
		Ready:   doc.ContactInformation.PrivacyEmail != "",
	}
}
