package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"casa8_ingest/models"
)

// Syncer applies a pre-computed scrape diff: insert listings that just
// appeared, deactivate listings whose URLs vanished.
type Syncer struct {
	store       PropertyStore
	transformer *Transformer
}

func NewSyncer(store PropertyStore, transformer *Transformer) *Syncer {
	return &Syncer{store: store, transformer: transformer}
}

// ComputeDiff splits a fresh scrape against the store's current URL
// set: records whose URL the store has never seen, and stored URLs the
// scrape no longer contains.
func ComputeDiff(currentURLs []string, scraped []models.RawScrapedProperty) (added []models.RawScrapedProperty, removed []string) {
	current := make(map[string]bool, len(currentURLs))
	for _, u := range currentURLs {
		current[u] = true
	}

	scrapedSet := make(map[string]bool, len(scraped))
	for idx := range scraped {
		scrapedSet[scraped[idx].URL] = true
		if !current[scraped[idx].URL] {
			added = append(added, scraped[idx])
		}
	}

	for _, u := range currentURLs {
		if !scrapedSet[u] {
			removed = append(removed, u)
		}
	}

	return added, removed
}

// IncrementalSync inserts the new records and retires the removed
// URLs. New records are inserts by construction (their URLs are absent
// from the store), so there is no lookup step. The deactivation is one
// bulk update scoped to the source market.
func (s *Syncer) IncrementalSync(ctx context.Context, newRaw []models.RawScrapedProperty, removedURLs []string, sourceMarket string) *models.ImportResult {
	result := models.NewImportResult()
	market := result.Market(sourceMarket)

	log.Printf("Incremental sync for %s: %d new, %d removed", sourceMarket, len(newRaw), len(removedURLs))

	for idx := range newRaw {
		raw := &newRaw[idx]
		result.TotalProcessed++
		market.Processed++

		if !raw.HasImages() {
			log.Printf("Skipping %s: no downloaded images", raw.URL)
			continue
		}

		prop := s.transformer.Transform(ctx, raw, sourceMarket)
		result.ImageUploads += len(prop.Images)

		if err := s.store.Insert(ctx, prop); err != nil {
			result.AddError(fmt.Sprintf("insert %s: %v", raw.URL, err))
			continue
		}
		result.NewProperties++
		market.New++
	}

	if len(removedURLs) > 0 {
		affected, err := s.store.DeactivateByURLs(ctx, removedURLs, sourceMarket)
		if err != nil {
			result.AddError(fmt.Sprintf("deactivate removed listings: %v", err))
		} else {
			result.DeactivatedProperties = affected
			market.Deactivated = affected
			if affected != len(removedURLs) {
				log.Printf("Warning: %d removed URLs matched %d rows for %s",
					len(removedURLs), affected, sourceMarket)
			}
		}
	}

	result.Finalize()
	log.Printf("Sync complete for %s: %d new, %d deactivated, %d errors",
		sourceMarket, result.NewProperties, result.DeactivatedProperties, len(result.Errors))
	return result
}

// SyncFromFile loads a fresh scrape file, diffs it against the store's
// URL set for the market, and applies the delta.
func (s *Syncer) SyncFromFile(ctx context.Context, filePath, sourceMarket string) *models.ImportResult {
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

	currentURLs, err := s.store.ListExternalURLs(ctx, sourceMarket)
	if err != nil {
		result.AddError(fmt.Sprintf("list current urls: %v", err))
		return result.Finalize()
	}

	added, removed := ComputeDiff(currentURLs, records)
	return s.IncrementalSync(ctx, added, removed, sourceMarket)
}
