package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"casa8_ingest/models"
)

// PropertyStore is the persistence contract the orchestrators run
// against. SupabaseStore and PostgresStore both satisfy it.
type PropertyStore interface {
	GetByExternalURL(ctx context.Context, externalURL string) (*models.CanonicalProperty, error)
	Insert(ctx context.Context, p *models.CanonicalProperty) error
	Update(ctx context.Context, id string, p *models.CanonicalProperty) error
	DeactivateByURLs(ctx context.Context, urls []string, sourceMarket string) (int, error)
	ListExternalURLs(ctx context.Context, sourceMarket string) ([]string, error)
}

// Importer runs the full-file batch import: transform every record in
// the feed and upsert by external_url.
type Importer struct {
	store       PropertyStore
	transformer *Transformer
}

func NewImporter(store PropertyStore, transformer *Transformer) *Importer {
	return &Importer{store: store, transformer: transformer}
}

// ImportFromFile reads a JSON array of raw scraped properties and
// reconciles each one against the store. A malformed file fails the
// whole run; a failing record is reported and skipped. Records are
// processed strictly in input order.
func (i *Importer) ImportFromFile(ctx context.Context, filePath, sourceMarket string) *models.ImportResult {
	result := models.NewImportResult()

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.AddError(fmt.Sprintf("read %s: %v", filePath, err))
		return result.Finalize()
	}

	var records []models.RawScrapedProperty
	if err := json.Unmarshal(data, &records); err != nil {
		result.AddError(fmt.Sprintf("parse %s: %v", filePath, err))
		return result.Finalize()
	}

	log.Printf("Importing %d records for %s", len(records), sourceMarket)
	market := result.Market(sourceMarket)

	for idx := range records {
		raw := &records[idx]
		result.TotalProcessed++
		market.Processed++

		// Listings without photos are never persisted.
		if !raw.HasImages() {
			log.Printf("Skipping %s: no downloaded images", raw.URL)
			continue
		}

		existing, err := i.store.GetByExternalURL(ctx, raw.URL)
		if err != nil {
			result.AddError(fmt.Sprintf("lookup %s: %v", raw.URL, err))
			continue
		}

		prop := i.transformer.Transform(ctx, raw, sourceMarket)
		result.ImageUploads += len(prop.Images)

		if existing != nil {
			if err := i.store.Update(ctx, existing.ID, prop); err != nil {
				result.AddError(fmt.Sprintf("update %s: %v", raw.URL, err))
				continue
			}
			result.UpdatedProperties++
			market.Updated++
		} else {
			if err := i.store.Insert(ctx, prop); err != nil {
				result.AddError(fmt.Sprintf("insert %s: %v", raw.URL, err))
				continue
			}
			result.NewProperties++
			market.New++
		}
	}

	result.Finalize()
	log.Printf("Import complete for %s: %d processed, %d new, %d updated, %d image uploads, %d errors",
		sourceMarket, result.TotalProcessed, result.NewProperties,
		result.UpdatedProperties, result.ImageUploads, len(result.Errors))
	return result
}
