package models

import (
	"encoding/json"
	"strings"
)

// StringList accepts both a bare JSON string and an array of strings.
// Scraped feeds are inconsistent about the "features" field, so the
// union is collapsed here before anything downstream sees it.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	s = strings.TrimSpace(s)
	if s == "" {
		*l = nil
		return nil
	}
	*l = StringList{s}
	return nil
}

// DownloadedImage is one entry of the local media manifest produced by
// the upstream scraper. LocalPath is authoritative; Images URLs on the
// raw record are informational only.
type DownloadedImage struct {
	OriginalURL      string `json:"originalUrl"`
	LocalPath        string `json:"localPath"`
	Filename         string `json:"filename"`
	Size             int64  `json:"size"`
	WatermarkRemoved bool   `json:"watermarkRemoved"`
	WasCropped       bool   `json:"wasCropped"`
}

// RawScrapedProperty is one listing as delivered by the scraper feed.
// All numeric-ish fields are free text and parsed defensively.
type RawScrapedProperty struct {
	URL              string            `json:"url"`
	Title            string            `json:"title"`
	Address          string            `json:"address"`
	ZipCode          string            `json:"zipCode"`
	Rent             string            `json:"rent"`
	Bedrooms         string            `json:"bedrooms"`
	Bathrooms        string            `json:"bathrooms"`
	SquareFeet       string            `json:"squareFeet"`
	YearBuilt        string            `json:"yearBuilt"`
	PropertyType     string            `json:"propertyType"`
	ListedBy         string            `json:"listedBy"`
	PhoneNumber      string            `json:"phoneNumber"`
	Description      string            `json:"description"`
	Availability     string            `json:"availability"`
	Features         StringList        `json:"features"`
	Images           []string          `json:"images"`
	DownloadedImages []DownloadedImage `json:"downloadedImages"`
}

// HasImages reports whether the record carries at least one downloaded
// image. Listings without photos are never persisted.
func (p *RawScrapedProperty) HasImages() bool {
	return len(p.DownloadedImages) > 0
}
