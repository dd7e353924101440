package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"casa8_ingest/geocode"
	"casa8_ingest/models"
	"casa8_ingest/normalize"
)

// Geocoder resolves street addresses to coordinates. A nil result is
// an expected miss, not a failure.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocode.Result, error)
}

// Transformer turns one raw scraped record into the canonical row
// shape: uploads media, geocodes the address, and normalizes every
// free-text field. It never fails for data-quality issues; bad values
// degrade to defaults and failed geocodes leave coordinates null.
type Transformer struct {
	uploader   *MediaUploader
	geocoder   Geocoder
	landlordID string

	// sleep is swapped out in tests to skip the geocode rate delay.
	sleep func(time.Duration)
}

func NewTransformer(uploader *MediaUploader, geocoder Geocoder, landlordID string) *Transformer {
	return &Transformer{
		uploader:   uploader,
		geocoder:   geocoder,
		landlordID: landlordID,
		sleep:      time.Sleep,
	}
}

// Transform builds the canonical property for a raw record. The
// returned record carries is_active=true and the system landlord id;
// persistence stays with the orchestrators.
func (t *Transformer) Transform(ctx context.Context, raw *models.RawScrapedProperty, sourceMarket string) *models.CanonicalProperty {
	var images []string
	if t.uploader != nil {
		images = t.uploader.UploadImages(ctx, raw.DownloadedImages, sourceMarket, raw.Address)
	}

	city, state := normalize.ParseCityState(sourceMarket)

	var lat, lng *float64
	if raw.Address != "" && t.geocoder != nil {
		fullAddress := fmt.Sprintf("%s, %s, %s %s", raw.Address, city, state, raw.ZipCode)
		loc, err := t.geocoder.Geocode(ctx, fullAddress)
		if err != nil {
			log.Printf("Warning: geocode failed for %s: %v", raw.Address, err)
		}
		if loc != nil {
			lat, lng = &loc.Lat, &loc.Lng
		}
		t.sleep(geocode.RequestDelay)
	}

	return &models.CanonicalProperty{
		ExternalURL:  raw.URL,
		ExternalID:   normalize.ExternalID(raw.URL),
		SourceMarket: sourceMarket,

		Title:        raw.Title,
		Description:  normalize.ComposeDescription(raw.Description, raw.Availability, raw.Features),
		PropertyType: normalize.StandardizePropertyType(raw.PropertyType),
		Bedrooms:     normalize.ParseBedrooms(raw.Bedrooms),
		Bathrooms:    normalize.ParseBathrooms(raw.Bathrooms),
		SqFt:         normalize.ParseSquareFeet(raw.SquareFeet),
		Price:        normalize.ParsePrice(raw.Rent),

		Address:   raw.Address,
		City:      city,
		State:     state,
		ZipCode:   raw.ZipCode,
		Latitude:  lat,
		Longitude: lng,

		Images: images,

		LandlordID:          t.landlordID,
		IsActive:            true,
		DataSource:          models.DataSourceScraped,
		ScrapedContactName:  raw.ListedBy,
		ScrapedContactPhone: raw.PhoneNumber,

		LastScrapedAt: time.Now(),
	}
}
