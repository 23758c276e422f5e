package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	engineName       = "careers-crawler/2.x"
	defaultPageDelay = 1200 * time.Millisecond
	// canonicalHashLen is how much of the dedup digest JobRecord carries.
	canonicalHashLen = 12
)

// Engine runs one complete scrape session per call. It owns no cross-session
// state; every Scrape builds a fresh dedup session, so two calls never see
// each other's hashes.
type Engine struct {
	fetcher   Fetcher
	resource  SessionResource
	hasher    Hasher
	clock     Clock
	pauser    Pauser
	locations *LocationClassifier
	logger    *zap.Logger
	pageDelay time.Duration
	maxJobs   int
}

// EngineOptions configures an Engine. Fetcher, Hasher, Clock, Pauser and
// Logger are required; Resource is optional and is acquired once per session
// when present.
type EngineOptions struct {
	Fetcher   Fetcher
	Resource  SessionResource
	Hasher    Hasher
	Clock     Clock
	Pauser    Pauser
	Locations *LocationClassifier
	Logger    *zap.Logger
	PageDelay time.Duration
	MaxJobs   int
}

// NewEngine builds an Engine from the given options.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Locations == nil {
		opts.Locations = NewLocationClassifier()
	}
	if opts.PageDelay <= 0 {
		opts.PageDelay = defaultPageDelay
	}
	if opts.MaxJobs <= 0 || opts.MaxJobs > MaxJobs {
		opts.MaxJobs = MaxJobs
	}
	return &Engine{
		fetcher:   opts.Fetcher,
		resource:  opts.Resource,
		hasher:    opts.Hasher,
		clock:     opts.Clock,
		pauser:    opts.Pauser,
		locations: opts.Locations,
		logger:    opts.Logger,
		pageDelay: opts.PageDelay,
		maxJobs:   opts.MaxJobs,
	}
}

// Scrape crawls the careers page at startURL and returns a complete result
// document. It never returns an error: fetch exhaustion on individual pages
// skips them, and panics or resource failures collapse into a document whose
// source carries scrape_status "error" and the failure message.
func (e *Engine) Scrape(ctx context.Context, startURL string) (doc ResultDocument) {
	started := e.clock.Now()
	doc = ResultDocument{
		SchemaVersion: SchemaVersion,
		Source: Source{
			CareersPage:     startURL,
			ScrapingEngine:  engineName,
			ScrapedAt:       started.UTC().Format(time.RFC3339),
			ScrapeStatus:    StatusFailed,
			CountryOfOrigin: unspecified,
		},
		Jobs: []JobRecord{},
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scrape session panicked",
				zap.String("url", startURL), zap.Any("panic", r))
			doc.Source.ScrapeStatus = StatusError
			doc.Source.Error = fmt.Sprintf("panic: %v", r)
			doc.Jobs = []JobRecord{}
			doc.ScrapingMetadata.JobsSuccessfullyParsed = 0
		}
		doc.DataQuality = e.assessQuality(&doc)
	}()

	if e.resource != nil {
		release, err := e.resource.Acquire(ctx)
		if err != nil {
			doc.Source.ScrapeStatus = StatusError
			doc.Source.Error = fmt.Sprintf("acquire session resource: %v", err)
			return doc
		}
		defer release()
	}

	e.run(ctx, startURL, &doc)

	e.logger.Info("scrape session finished",
		zap.String("url", startURL),
		zap.String("status", string(doc.Source.ScrapeStatus)),
		zap.Int("jobs", len(doc.Jobs)),
		zap.Int("pages", doc.ScrapingMetadata.PagesScraped),
		zap.Duration("elapsed", e.clock.Now().Sub(started)))
	return doc
}

func (e *Engine) run(ctx context.Context, startURL string, doc *ResultDocument) {
	firstPage, err := e.fetcher.Fetch(ctx, startURL)
	if err != nil {
		doc.Source.Error = fmt.Sprintf("fetch careers page: %v", err)
		return
	}
	firstDoc, err := ParseHTML(string(firstPage.Body))
	if err != nil {
		doc.Source.Error = fmt.Sprintf("parse careers page: %v", err)
		return
	}
	// The page is reachable and parseable; from here on the scrape counts as
	// a success even when the board turns out to have no openings.
	doc.Source.ScrapeStatus = StatusSuccess

	info := ExtractCompany(firstDoc, startURL)
	doc.Source.CompanyName = info.Name
	doc.Source.CompanyDomain = info.Domain
	doc.CompanyProfile = info.Profile
	if len(info.Emails) > 0 {
		doc.ContactInformation.PrivacyEmail = info.Emails[0]
	}
	if len(info.Emails) > 1 {
		doc.ContactInformation.AccommodationEmail = info.Emails[1]
	}

	pages := DiscoverPages(firstDoc, startURL)
	session := NewSession(e.hasher, e.maxJobs)
	var kept []candidateWithHash

	for i, pageURL := range pages {
		listDoc := firstDoc
		if i > 0 {
			page, err := e.fetcher.Fetch(ctx, pageURL)
			if err != nil {
				e.logger.Warn("skipping list page",
					zap.String("url", pageURL), zap.Error(err))
				continue
			}
			listDoc, err = ParseHTML(string(page.Body))
			if err != nil {
				e.logger.Warn("skipping unparseable list page",
					zap.String("url", pageURL), zap.Error(err))
				continue
			}
		}
		doc.ScrapingMetadata.PagesScraped++

		// Every page contributes to total_jobs_found; only Keep enforces
		// the output cap.
		candidates := ExtractCandidates(listDoc, pageURL)
		doc.ScrapingMetadata.TotalJobsFound += len(candidates)
		for _, c := range candidates {
			if hash, ok := session.Keep(c); ok {
				kept = append(kept, candidateWithHash{c, hash})
			}
		}

		if i < len(pages)-1 {
			e.pauser.Pause(ctx, e.pageDelay)
		}
		if ctx.Err() != nil {
			break
		}
	}
	doc.ScrapingMetadata.UniqueJobs = session.Accepted()

	for _, kc := range kept {
		record := e.buildJob(ctx, kc.candidate, kc.hash)
		doc.Jobs = append(doc.Jobs, record)
		if record.Skills.SkillCount() > 0 {
			doc.ScrapingMetadata.JobsWithSkills++
		}
		if record.Location.Remote {
			doc.ScrapingMetadata.RemoteJobs++
		}
	}
	doc.ScrapingMetadata.JobsSuccessfullyParsed = len(doc.Jobs)

	if len(doc.Jobs) > 0 {
		doc.Source.CountryOfOrigin = doc.Jobs[0].Location.Country
	}
}

type candidateWithHash struct {
	candidate Candidate
	hash      string
}

// buildJob fetches the candidate's detail page and synthesizes the full job
// record. A failed detail fetch falls back to the candidate's list-page
// context so one bad posting never sinks the session.
func (e *Engine) buildJob(ctx context.Context, c Candidate, hash string) JobRecord {
	detailText := c.Context
	cleaned := false
	if page, err := e.fetcher.Fetch(ctx, c.URL); err == nil {
		if detailDoc, perr := ParseHTML(string(page.Body)); perr == nil {
			if text, ok := ExtractDetailText(detailDoc); ok {
				detailText = text
				cleaned = true
			}
		}
	} else {
		e.logger.Debug("detail fetch failed, using list context",
			zap.String("url", c.URL), zap.Error(err))
	}

	seniority := InferSeniority(c.Title, detailText)
	skills := TallySkills(detailText)
	location, locConfidence := e.locations.Classify(c.Context, c.Title)
	now := e.clock.Now().UTC().Format(time.RFC3339)

	skillsConfidence := 0.5
	if skills.SkillCount() > 0 {
		skillsConfidence = 0.9
	}

	return JobRecord{
		Identifiers: JobIdentifiers{
			InternalJobID: c.JobID,
			SourceJobID:   c.JobID,
			CanonicalHash: truncate(hash, canonicalHashLen),
		},
		Title:           c.Title,
		NormalizedTitle: NormalizeTitle(c.Title),
		SeniorityLevel:  seniority,
		Employment: Employment{
			Type:      "Full-time",
			Contract:  "Permanent",
			WorkShift: "Day",
		},
		Department: InferDepartment(c.Title),
		Category:   InferCategory(c.Title, detailText),
		Location:   location,
		Description: JobDescription{
			Summary:          truncate(detailText, 500),
			Responsibilities: ExtractResponsibilities(detailText),
			Qualifications:   ExtractQualifications(detailText),
		},
		Skills: skills,
		Education: EducationRequirements{
			MinimumDegree:   "Bachelor's",
			AcceptedDegrees: []string{"Bachelor's", "Master's"},
			PreferredFields: []string{"Computer Science", "Engineering"},
		},
		Experience: ExperienceRequirements{
			MinimumYears:     MinimumYears(seniority),
			LevelDescription: seniority,
		},
		Application: Application{
			ApplyURL:          c.URL,
			ApplicationMethod: "online",
			ResumeRequired:    true,
		},
		PostingInfo: PostingInfo{
			LastUpdated: now,
			JobStatus:   "active",
		},
		Quality: ExtractionQuality{
			DescriptionCleaned: cleaned,
			SkillsConfidence:   skillsConfidence,
			LocationConfidence: locConfidence,
		},
	}
}

// assessQuality averages per-job confidences into a document-level score.
func (e *Engine) assessQuality(doc *ResultDocument) DataQuality {
	if len(doc.Jobs) == 0 {
		return DataQuality{OverallConfidence: 0, ManualReviewRequired: true}
	}
	var sum float64
	for _, job := range doc.Jobs {
		sum += (job.Quality.SkillsConfidence + job.Quality.LocationConfidence) / 2
	}
	overall := sum / float64(len(doc.Jobs))
	return DataQuality{
		OverallConfidence:    overall,
		ManualReviewRequired: overall < 0.6,
	}
}
