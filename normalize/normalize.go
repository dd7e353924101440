// Package normalize converts raw scraped string fields into canonical
// typed values. Every function is total: bad input degrades to a
// default instead of failing, since scraped feeds are messy by nature.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseCityState splits a market slug like "san-antonio-tx" into a
// title-cased city and an upper-cased two-letter state code.
func ParseCityState(slug string) (city, state string) {
	parts := strings.Split(slug, "-")
	if len(parts) < 2 {
		return titleCase(slug), ""
	}

	state = strings.ToUpper(parts[len(parts)-1])
	city = titleCase(strings.Join(parts[:len(parts)-1], " "))
	return city, state
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// ParsePrice strips currency formatting and parses an integer dollar
// amount. Anything non-numeric yields 0.
func ParsePrice(s string) int {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseSquareFeet parses a square-footage string. Blank or unparseable
// input yields nil, which is distinct from an explicit 0.
func ParseSquareFeet(s string) *int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &n
}

// ParseBedrooms parses a bedroom count, defaulting to 0.
func ParseBedrooms(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseBathrooms parses a bathroom count (may be fractional),
// defaulting to 0.
func ParseBathrooms(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// Property types the web application understands.
const (
	TypeHouse     = "house"
	TypeApartment = "apartment"
	TypeTownhouse = "townhouse"
	TypeCondo     = "condo"
)

// StandardizePropertyType maps free-text property types onto the
// closed set above. Unmatched input defaults to house, since most
// scraped inventory is single-family.
func StandardizePropertyType(raw string) string {
	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "single family"), strings.Contains(t, "house"):
		return TypeHouse
	case strings.Contains(t, "apartment"):
		return TypeApartment
	case strings.Contains(t, "townhouse"):
		return TypeTownhouse
	case strings.Contains(t, "condo"):
		return TypeCondo
	default:
		return TypeHouse
	}
}

var (
	urlIDPattern = regexp.MustCompile(`-(\d{6,})/`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// ExternalID derives a stable listing id from a source URL: the first
// run of 6+ digits between a hyphen and a slash, falling back to the
// digits of the final path segment.
func ExternalID(url string) string {
	if m := urlIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}

	segments := strings.Split(strings.TrimRight(url, "/"), "/")
	last := segments[len(segments)-1]
	return nonDigits.ReplaceAllString(last, "")
}

// ComposeDescription appends availability and features sections to the
// base description. Order is fixed: description, availability,
// features.
func ComposeDescription(description, availability string, features []string) string {
	out := description
	if availability != "" {
		out += "\n\nAvailable: " + availability
	}
	if len(features) > 0 {
		out += "\n\nFeatures: " + strings.Join(features, ", ")
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SlugifyAddress turns a street address into a storage-path segment:
// non-alphanumeric runs collapse to a single underscore, lower-cased,
// trimmed. Deterministic so re-imports overwrite the same objects.
func SlugifyAddress(address string) string {
	slug := nonAlnum.ReplaceAllString(address, "_")
	return strings.Trim(strings.ToLower(slug), "_")
}
