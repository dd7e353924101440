package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStringList_AcceptsArray(t *testing.T) {
	var p RawScrapedProperty
	if err := json.Unmarshal([]byte(`{"features": ["Pool", "Gym"]}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(p.Features) != 2 || p.Features[0] != "Pool" || p.Features[1] != "Gym" {
		t.Fatalf("unexpected features %v", p.Features)
	}
}

func TestStringList_AcceptsBareString(t *testing.T) {
	var p RawScrapedProperty
	if err := json.Unmarshal([]byte(`{"features": "Washer/Dryer"}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(p.Features) != 1 || p.Features[0] != "Washer/Dryer" {
		t.Fatalf("unexpected features %v", p.Features)
	}
}

func TestStringList_EmptyStringIsNil(t *testing.T) {
	var p RawScrapedProperty
	if err := json.Unmarshal([]byte(`{"features": "  "}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if p.Features != nil {
		t.Fatalf("expected nil features, got %v", p.Features)
	}
}

func TestCanonicalProperty_NullFieldsMarshal(t *testing.T) {
	data, err := json.Marshal(&CanonicalProperty{ExternalURL: "https://a.test/1"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{"sqft", "latitude", "longitude", "images"} {
		if string(out[field]) != "null" {
			t.Fatalf("expected %s to marshal as null, got %s", field, out[field])
		}
	}
}

func TestCanonicalProperty_UnsetCreatedAtOmitted(t *testing.T) {
	data, err := json.Marshal(&CanonicalProperty{ExternalURL: "https://a.test/1"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw, ok := out["created_at"]; ok {
		t.Fatalf("fresh record must not carry created_at, got %s", raw)
	}

	stamped := CanonicalProperty{CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	data, err = json.Marshal(&stamped)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := out["created_at"]; !ok {
		t.Fatal("populated created_at should round-trip")
	}
}

func TestHasImages(t *testing.T) {
	p := RawScrapedProperty{}
	if p.HasImages() {
		t.Fatal("empty manifest should report no images")
	}
	p.DownloadedImages = []DownloadedImage{{Filename: "a.jpg"}}
	if !p.HasImages() {
		t.Fatal("expected images present")
	}
}
