// Package scraper defines core types shared across the scrape pipeline.
package scraper

import "time"

// SchemaVersion identifies the output contract of ResultDocument.
const SchemaVersion = "2.1.3"

// MaxJobs is the hard cap on job records in one result document.
const MaxJobs = 15

// MaxListPages bounds how many paginated list pages one session will visit.
const MaxListPages = 15

// ScrapeStatus reports whether a session's output can be trusted.
type ScrapeStatus string

// Scrape status values carried in ResultDocument.Source.
const (
	StatusSuccess ScrapeStatus = "success"
	StatusFailed  ScrapeStatus = "failed"
	StatusError   ScrapeStatus = "error"
)

// RenderedPage is the outcome of one page fetch, static or headless.
type RenderedPage struct {
	URL          string
	FinalURL     string
	StatusCode   int
	Body         []byte
	UsedHeadless bool
	Duration     time.Duration
}

// Candidate is a hyperlink provisionally identified as a job posting,
// prior to dedup and detail enrichment. It is consumed by the pipeline
// and never persisted on its own.
type Candidate struct {
	Title   string
	URL     string
	JobID   string
	Context string
}

// Location is derived deterministically from a candidate's context and title.
type Location struct {
	City                string `json:"city"`
	State               string `json:"state,omitempty"`
	Country             string `json:"country"`
	PostalCode          string `json:"postal_code,omitempty"`
	Region              string `json:"region"`
	Remote              bool   `json:"remote"`
	Hybrid              bool   `json:"hybrid"`
	RelocationSupported bool   `json:"relocation_supported"`
}

// SkillTally maps a skill category to the count of matched keywords.
// Categories with zero matches are omitted.
type SkillTally map[string]int

// JobIdentifiers carries source-side and canonical identifiers for a posting.
type JobIdentifiers struct {
	InternalJobID string `json:"internal_job_id"`
	SourceJobID   string `json:"source_job_id"`
	CanonicalHash string `json:"canonical_hash"`
}

// Employment describes the working arrangement of a posting.
type Employment struct {
	Type      string `json:"type"`
	Contract  string `json:"contract"`
	WorkShift string `json:"work_shift"`
}

// JobDescription holds the summary plus extracted bullet lists.
type JobDescription struct {
	Summary          string   `json:"summary"`
	Responsibilities []string `json:"responsibilities"`
	Qualifications   []string `json:"qualifications"`
}

// EducationRequirements captures degree expectations.
type EducationRequirements struct {
	MinimumDegree   string   `json:"minimum_degree"`
	AcceptedDegrees []string `json:"accepted_degrees"`
	PreferredFields []string `json:"preferred_fields"`
}

// ExperienceRequirements captures years-of-experience expectations.
type ExperienceRequirements struct {
	MinimumYears     int    `json:"minimum_years"`
	MaximumYears     *int   `json:"maximum_years"`
	LevelDescription string `json:"level_description"`
}

// Compensation flags whether salary data was available.
type Compensation struct {
	SalaryAvailable bool `json:"salary_available"`
}

// Application describes how to apply for a posting.
type Application struct {
	ApplyURL            string `json:"apply_url"`
	ApplicationMethod   string `json:"application_method"`
	ResumeRequired      bool   `json:"resume_required"`
	CoverLetterRequired bool   `json:"cover_letter_required"`
}

// PostingInfo carries lifecycle metadata for a posting.
type PostingInfo struct {
	PostedDate  *string `json:"posted_date"`
	LastUpdated string  `json:"last_updated"`
	JobStatus   string  `json:"job_status"`
}

// ExtractionQuality reports per-field confidence for one job record.
type ExtractionQuality struct {
	DescriptionCleaned bool    `json:"description_cleaned"`
	SkillsConfidence   float64 `json:"skills_confidence"`
	LocationConfidence float64 `json:"location_confidence"`
}

// JobRecord is the finalized, schema-stable representation of one posting.
type JobRecord struct {
	Identifiers     JobIdentifiers         `json:"job_identifiers"`
	Title           string                 `json:"title"`
	NormalizedTitle string                 `json:"normalized_title"`
	SeniorityLevel  string                 `json:"seniority_level"`
	Employment      Employment             `json:"employment"`
	Department      string                 `json:"department"`
	Category        string                 `json:"category"`
	Location        Location               `json:"location"`
	Description     JobDescription         `json:"job_description"`
	Skills          SkillTally             `json:"skills"`
	Education       EducationRequirements  `json:"education_requirements"`
	Experience      ExperienceRequirements `json:"experience_requirements"`
	Compensation    Compensation           `json:"compensation"`
	Application     Application            `json:"application"`
	PostingInfo     PostingInfo            `json:"posting_info"`
	Quality         ExtractionQuality      `json:"extraction_quality"`
}

// Source identifies where and how the document was scraped.
type Source struct {
	CompanyName     string       `json:"company_name"`
	CompanyDomain   string       `json:"company_domain"`
	CareersPage     string       `json:"careers_page"`
	ScrapingEngine  string       `json:"scraping_engine"`
	ScrapedAt       string       `json:"scraped_at"`
	ScrapeStatus    ScrapeStatus `json:"scrape_status"`
	CountryOfOrigin string       `json:"country_of_origin"`
	Error           string       `json:"error,omitempty"`
}

// CompanyProfile carries inferred company-level attributes.
type CompanyProfile struct {
	Industry                  string `json:"industry"`
	BusinessType              string `json:"business_type"`
	OperatingCountries        int    `json:"operating_countries"`
	EmployeeSizeRange         string `json:"employee_size_range"`
	DiversityStatementPresent bool   `json:"diversity_statement_present"`
	EqualOpportunityEmployer  bool   `json:"equal_opportunity_employer"`
}

// ContactInformation holds the first distinct emails found on the list page.
type ContactInformation struct {
	PrivacyEmail       string `json:"privacy_email"`
	AccommodationEmail string `json:"accommodation_email"`
}

// ScrapingMetadata aggregates session counters.
type ScrapingMetadata struct {
	TotalJobsFound         int `json:"total_jobs_found"`
	JobsSuccessfullyParsed int `json:"jobs_successfully_parsed"`
	PagesScraped           int `json:"pages_scraped"`
	UniqueJobs             int `json:"unique_jobs"`
	JobsWithSkills         int `json:"jobs_with_skills"`
	RemoteJobs             int `json:"remote_jobs"`
}

// DataQuality summarizes output trustworthiness for downstream consumers.
type DataQuality struct {
	OverallConfidence    float64 `json:"overall_confidence"`
	ManualReviewRequired bool    `json:"manual_review_required"`
}

// ResultDocument is the top-level output of one scrape session.
type ResultDocument struct {
	SchemaVersion      string             `json:"schema_version"`
	Source             Source             `json:"source"`
	CompanyProfile     CompanyProfile     `json:"company_profile"`
	Jobs               []JobRecord        `json:"jobs"`
	ContactInformation ContactInformation `json:"contact_information"`
	ScrapingMetadata   ScrapingMetadata   `json:"scraping_metadata"`
	DataQuality        DataQuality        `json:"data_quality"`
}
