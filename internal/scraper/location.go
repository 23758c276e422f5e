package scraper

import (
	"regexp"
	"strings"
)

// GazetteerEntry matches a specific city (or its postal-code prefix) and maps
// it to a fully resolved Location. Entries are checked before the broader
// country rules so the more informative match is never shadowed.
type GazetteerEntry struct {
	Pattern  *regexp.Regexp
	Location Location
}

// CountryRule resolves a country-name substring to country-level fields.
type CountryRule struct {
	Substring string
	Country   string
	State     string
	Region    string
}

// DefaultGazetteer holds the seed city rules. Callers crawling other sites
// can supply their own entries via Classifier.
var DefaultGazetteer = []GazetteerEntry{
	{
		Pattern: regexp.MustCompile(`(?i)pune|4110\d{2}`),
		Location: Location{
			City: "Pune", State: "Maharashtra", Country: "India",
			PostalCode: "411006", Region: "Asia Pacific",
		},
	},
	{
		Pattern: regexp.MustCompile(`(?i)o\s*fallon|63368`),
		Location: Location{
			City: "O Fallon", State: "Missouri", Country: "United States of America",
			PostalCode: "63368", Region: "North America",
		},
	},
}

// DefaultCountryRules back the gazetteer with country-substring matches.
var DefaultCountryRules = []CountryRule{
	{Substring: "india", Country: "India", State: "Maharashtra", Region: "Asia Pacific"},
	{Substring: "united states", Country: "United States of America", Region: "North America"},
	{Substring: "canada", Country: "Canada", Region: "North America"},
	{Substring: "united kingdom", Country: "United Kingdom", Region: "Europe"},
	{Substring: "germany", Country: "Germany", Region: "Europe"},
	{Substring: "singapore", Country: "Singapore", Region: "Asia Pacific"},
	{Substring: "australia", Country: "Australia", Region: "Asia Pacific"},
}

var locationLabelPattern = regexp.MustCompile(`(?i)\b(location|in|at)\b[:\s]*`)

const unspecified = "Not Specified"

// LocationClassifier derives a Location from free text using rule tables.
// It is a pure function of its inputs: identical inputs always yield an
// identical Location and confidence.
type LocationClassifier struct {
	Gazetteer    []GazetteerEntry
	CountryRules []CountryRule
}

// NewLocationClassifier returns a classifier seeded with the default tables.
func NewLocationClassifier() *LocationClassifier {
	return &LocationClassifier{
		Gazetteer:    DefaultGazetteer,
		CountryRules: DefaultCountryRules,
	}
}

// Classify strips the title and boilerplate labels from the context text and
// resolves a Location: gazetteer city match first, then country substring,
// then a generic fallback echoing the cleaned text as the city. The returned
// confidence reflects which tier matched.
func (lc *LocationClassifier) Classify(context, title string) (Location, float64) {
	clean := stripTitleAndLabels(context, title)
	lower := strings.ToLower(clean)

	remote := strings.Contains(lower, "remote")
	hybrid := strings.Contains(lower, "hybrid")

	for _, entry := range lc.Gazetteer {
		if entry.Pattern.MatchString(clean) {
			loc := entry.Location
			loc.Remote = remote
			loc.Hybrid = hybrid
			return loc, 0.98
		}
	}

	for _, rule := range lc.CountryRules {
		if strings.Contains(lower, rule.Substring) {
			return Location{
				City:    truncate(clean, 50),
				State:   rule.State,
				Country: rule.Country,
				Region:  rule.Region,
				Remote:  remote,
				Hybrid:  hybrid,
			}, 0.9
		}
	}

	city := truncate(clean, 50)
	if city == "" {
		city = unspecified
	}
	return Location{
		City:    city,
		Country: unspecified,
		Region:  unspecified,
		Remote:  remote,
		Hybrid:  hybrid,
	}, 0.4
}

// stripTitleAndLabels removes the job title and "Location"/"in"/"at" labels
// from the context so only the place text remains.
func stripTitleAndLabels(context, title string) string {
	clean := context
	if title != "" {
		titlePattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(title))
		if err == nil {
			clean = titlePattern.ReplaceAllString(clean, "")
		}
	}
	clean = locationLabelPattern.ReplaceAllString(clean, "")
	return cleanText(clean)
}
