package models

import (
	"time"
)

// DataSourceScraped marks rows owned by the ingestion pipeline, as
// opposed to listings created by landlords through the web app.
const DataSourceScraped = "scraped"

// CanonicalProperty is the persisted row shape for a scraped listing.
// Nullable columns use pointer types so a missing value round-trips as
// SQL NULL / JSON null rather than a zero.
type CanonicalProperty struct {
	ID           string `json:"id,omitempty" db:"id"`
	ExternalURL  string `json:"external_url" db:"external_url"`
	ExternalID   string `json:"external_id" db:"external_id"`
	SourceMarket string `json:"source_market" db:"source_market"`

	Title        string  `json:"title" db:"title"`
	Description  string  `json:"description" db:"description"`
	PropertyType string  `json:"property_type" db:"property_type"`
	Bedrooms     int     `json:"bedrooms" db:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms" db:"bathrooms"`
	SqFt         *int    `json:"sqft" db:"sqft"`
	Price        int     `json:"price" db:"price"`

	Address   string   `json:"address" db:"address"`
	City      string   `json:"city" db:"city"`
	State     string   `json:"state" db:"state"`
	ZipCode   string   `json:"zip_code" db:"zip_code"`
	Latitude  *float64 `json:"latitude" db:"latitude"`
	Longitude *float64 `json:"longitude" db:"longitude"`

	// Images is nil when no uploads succeeded, which marshals to null.
	Images []string `json:"images" db:"images"`

	LandlordID          string `json:"landlord_id" db:"landlord_id"`
	IsActive            bool   `json:"is_active" db:"is_active"`
	DataSource          string `json:"data_source" db:"data_source"`
	ScrapedContactName  string `json:"scraped_contact_name" db:"scraped_contact_name"`
	ScrapedContactPhone string `json:"scraped_contact_phone" db:"scraped_contact_phone"`

	LastScrapedAt time.Time  `json:"last_scraped_at" db:"last_scraped_at"`
	// CreatedAt is assigned by the database on insert; omitzero keeps
	// upsert payloads from carrying the zero time over PostgREST.
	CreatedAt     time.Time  `json:"created_at,omitzero" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
