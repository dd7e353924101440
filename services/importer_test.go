package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"casa8_ingest/models"
)

func writeFeed(t *testing.T, records []models.RawScrapedProperty) string {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "feed.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	return path
}

func TestImportFromFile_Scenario(t *testing.T) {
	dir := t.TempDir()
	store := newFakeStore()
	importer := NewImporter(store, newTestTransformer(newFakeObjectStore(), nil))

	noImages := *rawFixture()
	noImages.URL = "https://rentals.test/listing/no-photos-1000001/"

	badRent := *rawFixture(writeImage(t, dir, "a.jpg"))
	badRent.URL = "https://rentals.test/listing/bad-rent-1000002/"
	badRent.Rent = "call for price"

	good := *rawFixture(writeImage(t, dir, "b.jpg"))
	good.URL = "https://rentals.test/listing/good-1000003/"

	path := writeFeed(t, []models.RawScrapedProperty{noImages, badRent, good})
	result := importer.ImportFromFile(context.Background(), path, "san-antonio-tx")

	if !result.Success {
		t.Fatalf("expected success, errors: %v", result.Errors)
	}
	if result.TotalProcessed != 3 {
		t.Fatalf("expected 3 processed, got %d", result.TotalProcessed)
	}
	if result.NewProperties != 2 {
		t.Fatalf("expected 2 new, got %d", result.NewProperties)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}

	// The record without photos was never persisted.
	if _, ok := store.props[noImages.URL]; ok {
		t.Fatal("record without images must not be stored")
	}

	// Malformed rent degrades to 0, record still imported.
	stored := store.props[badRent.URL]
	if stored == nil || stored.Price != 0 {
		t.Fatalf("expected bad-rent record stored with price 0, got %+v", stored)
	}

	markets := result.Markets["san-antonio-tx"]
	if markets == nil || markets.Processed != 3 || markets.New != 2 {
		t.Fatalf("unexpected market breakdown %+v", markets)
	}
}

func TestImportFromFile_IdempotentReimport(t *testing.T) {
	dir := t.TempDir()
	store := newFakeStore()
	importer := NewImporter(store, newTestTransformer(newFakeObjectStore(), nil))

	rec := *rawFixture(writeImage(t, dir, "a.jpg"))
	path := writeFeed(t, []models.RawScrapedProperty{rec})

	first := importer.ImportFromFile(context.Background(), path, "san-antonio-tx")
	if first.NewProperties != 1 || first.UpdatedProperties != 0 {
		t.Fatalf("first run: new=%d updated=%d", first.NewProperties, first.UpdatedProperties)
	}

	second := importer.ImportFromFile(context.Background(), path, "san-antonio-tx")
	if second.NewProperties != 0 {
		t.Fatalf("second run should create nothing, got %d new", second.NewProperties)
	}
	if second.UpdatedProperties != first.NewProperties {
		t.Fatalf("second run should update %d, updated %d", first.NewProperties, second.UpdatedProperties)
	}
	if len(store.props) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(store.props))
	}
}

func TestImportFromFile_MalformedFileIsFatal(t *testing.T) {
	store := newFakeStore()
	importer := NewImporter(store, newTestTransformer(newFakeObjectStore(), nil))

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := importer.ImportFromFile(context.Background(), path, "san-antonio-tx")
	if result.Success {
		t.Fatal("malformed input must fail the run")
	}
	if result.TotalProcessed != 0 {
		t.Fatalf("no records should be processed, got %d", result.TotalProcessed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
}

func TestImportFromFile_PerRecordErrorContinues(t *testing.T) {
	dir := t.TempDir()
	store := newFakeStore()
	store.insertErr = errors.New("db down")
	importer := NewImporter(store, newTestTransformer(newFakeObjectStore(), nil))

	rec1 := *rawFixture(writeImage(t, dir, "a.jpg"))
	rec1.URL = "https://rentals.test/listing/one-1000001/"
	rec2 := *rawFixture(writeImage(t, dir, "b.jpg"))
	rec2.URL = "https://rentals.test/listing/two-1000002/"

	path := writeFeed(t, []models.RawScrapedProperty{rec1, rec2})
	result := importer.ImportFromFile(context.Background(), path, "san-antonio-tx")

	if result.Success {
		t.Fatal("expected failure with insert errors")
	}
	if result.TotalProcessed != 2 {
		t.Fatalf("both records should be attempted, got %d", result.TotalProcessed)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
}
