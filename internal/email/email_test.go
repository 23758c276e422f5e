package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobpilot/careers-crawler/internal/resume"
	"github.com/jobpilot/careers-crawler/internal/scraper"
)

func sampleDoc() scraper.ResultDocument {
	doc := scraper.ResultDocument{
		Jobs: []scraper.JobRecord{
			{Title: "Senior Backend Engineer"},
			{Title: "Platform Engineer"},
			{Title: "Data Engineer"},
			{Title: "Site Reliability Engineer"},
		},
	}
	doc.Source.CompanyName = "Acme"
	doc.ContactInformation.PrivacyEmail = "privacy@acme.com"
	return doc
}

func TestComposeFullDraft(t *testing.T) {
	t.Parallel()

	profile := resume.Profile{
		Name:       "Saksham Sharma",
		Email:      "saksham@example.com",
		SkillsFlat: []string{"go", "postgresql", "docker"},
	}

	draft := Compose(profile, sampleDoc())

	require.True(t, draft.Ready)
	require.Equal(t, "privacy@acme.com", draft.To)
	require.Equal(t, "Acme", draft.Company)
	require.Equal(t, "Application for Software Engineering Positions - Saksham Sharma", draft.Subject)
	require.Contains(t, draft.Body, "openings at Acme")
	require.Contains(t, draft.Body, "Matching skills: go, postgresql, docker")
	require.Contains(t, draft.Body, "- Senior Backend Engineer")
	require.NotContains(t, draft.Body, "Site Reliability Engineer")
	require.True(t, strings.HasSuffix(draft.Body, "Best regards,\nSaksham Sharma\nsaksham@example.com"))
}

func TestComposeWithoutContactIsNotReady(t *testing.T) {
	t.Parallel()

	doc := sampleDoc()
	doc.ContactInformation.PrivacyEmail = ""

	draft := Compose(resume.Profile{}, doc)
	require.False(t, draft.Ready)
	require.Empty(t, draft.To)
	require.Contains(t, draft.Subject, "Candidate")
}

func TestComposeDefaultsForEmptyInputs(t *testing.T) {
	t.Parallel()

	draft := Compose(resume.Profile{}, scraper.ResultDocument{})
	require.Contains(t, draft.Body, "openings at your company")
	require.NotContains(t, draft.Body, "Matching skills")
	require.NotContains(t, draft.Body, "Relevant openings")
}

func TestNewSenderValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSender(SenderConfig{From: "noreply@example.com"})
	require.Error(t, err)

	_, err = NewSender(SenderConfig{Host: "smtp.example.com"})
	require.Error(t, err)

	s, err := NewSender(SenderConfig{Host: "smtp.example.com", From: "noreply@example.com"})
	require.NoError(t, err)
	require.Error(t, s.Send(Draft{}))
}

func TestBuildMessageHeaders(t *testing.T) {
	t.Parallel()

	msg := string(buildMessage("noreply@example.com", Draft{
		To:      "privacy@acme.com",
		Subject: "Hello",
		Body:    "Body text",
	}))
	require.Contains(t, msg, "From: noreply@example.com\r\n")
	require.Contains(t, msg, "To: privacy@acme.com\r\n")
	require.Contains(t, msg, "Subject: Hello\r\n")
	require.True(t, strings.HasSuffix(msg, "\r\n\r\nBody text"))
}
