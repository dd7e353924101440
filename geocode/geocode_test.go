package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocode_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "123 Main St, Dallas, TX 75201" {
			t.Fatalf("unexpected address param %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Fatalf("unexpected key param %q", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "123 Main St, Dallas, TX 75201, USA",
				"geometry": {"location": {"lat": 32.7767, "lng": -96.797}}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", server.Client())
	result, err := client.Geocode(context.Background(), "123 Main St, Dallas, TX 75201")
	if err != nil {
		t.Fatalf("geocode failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Lat != 32.7767 || result.Lng != -96.797 {
		t.Fatalf("unexpected coordinates %v/%v", result.Lat, result.Lng)
	}
	if result.FormattedAddress != "123 Main St, Dallas, TX 75201, USA" {
		t.Fatalf("unexpected formatted address %q", result.FormattedAddress)
	}
}

func TestGeocode_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", server.Client())
	result, err := client.Geocode(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("non-OK status should not be an error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestGeocode_Disabled(t *testing.T) {
	client := NewClient("", "", nil)
	if client.Enabled() {
		t.Fatal("client without API key should be disabled")
	}

	result, err := client.Geocode(context.Background(), "123 Main St")
	if err != nil || result != nil {
		t.Fatalf("disabled client should return nil, nil; got %+v, %v", result, err)
	}
}
