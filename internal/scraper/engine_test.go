package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const careersURL = "https://acme.com/careers"

func detailPage(title string) string {
	return fmt.Sprintf(`<html><body><main>
		%s role in Pune, India. We use Python, Go and AWS every day.
		- Design and operate services for the payments platform.
		Requirements: several years building distributed systems with Kubernetes in production.
	</main></body></html>`, title)
}

func buildSite(jobs int) *fakeFetcher {
	f := newFakeFetcher()
	var b strings.Builder
	b.WriteString(`<html><head><title>Acme Corp - Careers</title></head><body>`)
	b.WriteString(`<p>Contact privacy@acme.com or accommodations@acme.com. Equal opportunity employer.</p><ul>`)
	for i := 0; i < jobs; i++ {
		fmt.Fprintf(&b, `<li><a href="/jobs/R-%d">Senior Software Engineer %02d</a><span>Pune, India</span></li>`, 100+i, i)
		f.pages[fmt.Sprintf("https://acme.com/jobs/R-%d", 100+i)] = detailPage("Senior")
	}
	b.WriteString(`</ul></body></html>`)
	f.pages[careersURL] = b.String()
	return f
}

func newTestEngine(f Fetcher, res SessionResource, pauser Pauser) *Engine {
	return NewEngine(EngineOptions{
		Fetcher:  f,
		Resource: res,
		Hasher:   fakeHasher{},
		Clock:    &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		Pauser:   pauser,
		Logger:   zap.NewNop(),
	})
}

func TestEngine_ScrapeSuccess(t *testing.T) {
	t.Parallel()
	site := buildSite(3)
	e := newTestEngine(site, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)

	require.Equal(t, SchemaVersion, doc.SchemaVersion)
	require.Equal(t, StatusSuccess, doc.Source.ScrapeStatus)
	require.Equal(t, "Acme Corp", doc.Source.CompanyName)
	require.Equal(t, "acme.com", doc.Source.CompanyDomain)
	require.Equal(t, careersURL, doc.Source.CareersPage)
	require.Equal(t, "2026-08-01T12:00:00Z", doc.Source.ScrapedAt)

	require.Len(t, doc.Jobs, 3)
	require.Equal(t, len(doc.Jobs), doc.ScrapingMetadata.JobsSuccessfullyParsed)
	require.Equal(t, 3, doc.ScrapingMetadata.UniqueJobs)
	require.Equal(t, 1, doc.ScrapingMetadata.PagesScraped)
	require.Equal(t, 3, doc.ScrapingMetadata.JobsWithSkills)

	job := doc.Jobs[0]
	require.Equal(t, "Senior Software Engineer 00", job.Title)
	require.Equal(t, "Senior", job.SeniorityLevel)
	require.Equal(t, "Software Engineering", job.Category)
	require.Equal(t, "Pune", job.Location.City)
	require.Equal(t, "R-100", job.Identifiers.InternalJobID)
	require.Len(t, job.Identifiers.CanonicalHash, 12)
	require.True(t, strings.HasPrefix(job.Application.ApplyURL, "https://"))
	require.True(t, job.Quality.DescriptionCleaned)

	require.Equal(t, "privacy@acme.com", doc.ContactInformation.PrivacyEmail)
	require.Equal(t, "accommodations@acme.com", doc.ContactInformation.AccommodationEmail)
	require.Equal(t, "India", doc.Source.CountryOfOrigin)
}

func pagedListPage(perPage, startID int, withPagination bool) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Acme Corp - Careers</title></head><body><ul>`)
	for i := 0; i < perPage; i++ {
		id := startID + i
		fmt.Fprintf(&b, `<li><a href="/jobs/R-%d">Senior Software Engineer %03d</a><span>Pune, India</span></li>`, id, id)
	}
	b.WriteString(`</ul>`)
	if withPagination {
		b.WriteString(`<div class="pagination"><a href="/careers?page=2">2</a><a href="/careers?page=3">3</a></div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestEngine_CountsAllPagesBeforeCap(t *testing.T) {
	t.Parallel()
	f := newFakeFetcher()
	f.pages[careersURL] = pagedListPage(10, 100, true)
	f.pages["https://acme.com/careers?page=2"] = pagedListPage(10, 200, false)
	f.pages["https://acme.com/careers?page=3"] = pagedListPage(10, 300, false)
	for _, start := range []int{100, 200, 300} {
		for i := 0; i < 10; i++ {
			f.pages[fmt.Sprintf("https://acme.com/jobs/R-%d", start+i)] = detailPage("Senior")
		}
	}
	e := newTestEngine(f, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)

	// Every page is visited and every raw candidate counted; only detail
	// processing stops at the cap.
	require.Equal(t, 30, doc.ScrapingMetadata.TotalJobsFound)
	require.Equal(t, 3, doc.ScrapingMetadata.PagesScraped)
	require.Equal(t, MaxJobs, doc.ScrapingMetadata.UniqueJobs)
	require.Len(t, doc.Jobs, MaxJobs)
}

func TestEngine_EmptyBoardIsStillSuccess(t *testing.T) {
	t.Parallel()
	f := newFakeFetcher()
	f.pages[careersURL] = `<html><head><title>Acme Corp - Careers</title></head><body><p>No open positions right now.</p></body></html>`
	e := newTestEngine(f, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Equal(t, StatusSuccess, doc.Source.ScrapeStatus)
	require.Empty(t, doc.Jobs)
	require.Zero(t, doc.ScrapingMetadata.TotalJobsFound)
	require.Equal(t, 1, doc.ScrapingMetadata.PagesScraped)
	require.True(t, doc.DataQuality.ManualReviewRequired)
}

func TestEngine_SkillsTalliedFromDetailTextOnly(t *testing.T) {
	t.Parallel()
	f := newFakeFetcher()
	f.pages[careersURL] = `<html><head><title>Acme Corp - Careers</title></head><body><ul>` +
		`<li><a href="/jobs/R-900">Python Platform Engineer</a><span>Pune, India</span></li></ul></body></html>`
	f.pages["https://acme.com/jobs/R-900"] = `<html><body><main>Help us shape excellent billing flows ` +
		`for merchants around the planet. You will partner with product teams to deliver delightful ` +
		`member experiences at a steady pace.</main></body></html>`
	e := newTestEngine(f, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Len(t, doc.Jobs, 1)
	// The title mentions Python but the detail text carries no skills.
	require.Zero(t, doc.Jobs[0].Skills.SkillCount())
	require.Zero(t, doc.ScrapingMetadata.JobsWithSkills)
}

func TestEngine_JobCapAndDistinctHashes(t *testing.T) {
	t.Parallel()
	site := buildSite(30)
	e := newTestEngine(site, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Len(t, doc.Jobs, MaxJobs)
	require.Equal(t, MaxJobs, doc.ScrapingMetadata.JobsSuccessfullyParsed)

	hashes := map[string]bool{}
	for _, job := range doc.Jobs {
		require.NotEmpty(t, job.Title)
		require.False(t, hashes[job.Identifiers.CanonicalHash], "duplicate hash")
		hashes[job.Identifiers.CanonicalHash] = true
	}
}

func TestEngine_BaseFetchFailure(t *testing.T) {
	t.Parallel()
	f := newFakeFetcher()
	f.errs[careersURL] = errors.New("connection refused")
	e := newTestEngine(f, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Equal(t, StatusFailed, doc.Source.ScrapeStatus)
	require.Contains(t, doc.Source.Error, "connection refused")
	require.Empty(t, doc.Jobs)
	require.True(t, doc.DataQuality.ManualReviewRequired)
}

func TestEngine_DetailFetchFailureFallsBackToContext(t *testing.T) {
	t.Parallel()
	site := buildSite(2)
	site.errs["https://acme.com/jobs/R-100"] = errors.New("detail timeout")
	e := newTestEngine(site, nil, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Len(t, doc.Jobs, 2)
	require.False(t, doc.Jobs[0].Quality.DescriptionCleaned)
	require.NotEmpty(t, doc.Jobs[0].Description.Summary)
	require.True(t, doc.Jobs[1].Quality.DescriptionCleaned)
}

type panickyFetcher struct {
	calls int
}

func (f *panickyFetcher) Fetch(context.Context, string) (RenderedPage, error) {
	f.calls++
	panic("selector engine exploded")
}

func TestEngine_PanicCollapsesToErrorStatus(t *testing.T) {
	t.Parallel()
	res := &fakeResource{}
	e := newTestEngine(&panickyFetcher{}, res, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Equal(t, StatusError, doc.Source.ScrapeStatus)
	require.Contains(t, doc.Source.Error, "selector engine exploded")
	require.Empty(t, doc.Jobs)
	require.Zero(t, doc.ScrapingMetadata.JobsSuccessfullyParsed)
	require.Equal(t, 1, res.releases, "resource released on panic path")
}

func TestEngine_ResourceAcquireFailure(t *testing.T) {
	t.Parallel()
	res := &fakeResource{err: errors.New("all browser slots busy")}
	e := newTestEngine(buildSite(1), res, &recordingPauser{})

	doc := e.Scrape(context.Background(), careersURL)
	require.Equal(t, StatusError, doc.Source.ScrapeStatus)
	require.Contains(t, doc.Source.Error, "browser slots busy")
}

func TestEngine_ResourceReleasedOnSuccess(t *testing.T) {
	t.Parallel()
	res := &fakeResource{}
	e := newTestEngine(buildSite(1), res, &recordingPauser{})

	_ = e.Scrape(context.Background(), careersURL)
	require.Equal(t, 1, res.acquires)
	require.Equal(t, 1, res.releases)
}

func TestEngine_CourtesyPauseBetweenListPages(t *testing.T) {
	t.Parallel()
	site := buildSite(2)
	// Page two carries different postings.
	page2 := `<html><body><li><a href="/jobs/R-900">Senior Platform Engineer</a><span>Pune</span></li></body></html>`
	site.pages[careersURL] = strings.Replace(site.pages[careersURL], "</body>",
		`<a rel="next" href="/careers?page=2">Next</a></body>`, 1)
	site.pages["https://acme.com/careers?page=2"] = page2
	site.pages["https://acme.com/jobs/R-900"] = detailPage("Senior")

	pauser := &recordingPauser{}
	e := newTestEngine(site, nil, pauser)

	doc := e.Scrape(context.Background(), careersURL)
	require.Equal(t, 2, doc.ScrapingMetadata.PagesScraped)
	require.Len(t, doc.Jobs, 3)
	require.Contains(t, pauser.recorded(), defaultPageDelay)
}

func TestEngine_SessionsAreIndependent(t *testing.T) {
	t.Parallel()
	site := buildSite(3)
	e := newTestEngine(site, nil, &recordingPauser{})

	first := e.Scrape(context.Background(), careersURL)
	second := e.Scrape(context.Background(), careersURL)
	require.Len(t, first.Jobs, 3)
	require.Len(t, second.Jobs, 3, "dedup state must not leak across sessions")
}
