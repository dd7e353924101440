package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"casa8_ingest/geocode"
	"casa8_ingest/models"
)

// fakeStore is an in-memory PropertyStore keyed by external_url.
type fakeStore struct {
	props    map[string]*models.CanonicalProperty
	sequence int

	insertErr error
	updateErr error

	deactivateCalls []deactivateCall
}

type deactivateCall struct {
	urls   []string
	market string
}

func newFakeStore() *fakeStore {
	return &fakeStore{props: make(map[string]*models.CanonicalProperty)}
}

func (s *fakeStore) GetByExternalURL(_ context.Context, externalURL string) (*models.CanonicalProperty, error) {
	p, ok := s.props[externalURL]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (s *fakeStore) Insert(_ context.Context, p *models.CanonicalProperty) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.sequence++
	p.ID = fmt.Sprintf("prop-%d", s.sequence)
	cp := *p
	s.props[p.ExternalURL] = &cp
	return nil
}

func (s *fakeStore) Update(_ context.Context, id string, p *models.CanonicalProperty) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	cp := *p
	cp.ID = id
	s.props[p.ExternalURL] = &cp
	return nil
}

func (s *fakeStore) DeactivateByURLs(_ context.Context, urls []string, sourceMarket string) (int, error) {
	s.deactivateCalls = append(s.deactivateCalls, deactivateCall{urls: urls, market: sourceMarket})

	affected := 0
	for _, u := range urls {
		if p, ok := s.props[u]; ok && p.SourceMarket == sourceMarket {
			p.IsActive = false
			affected++
		}
	}
	return affected, nil
}

func (s *fakeStore) ListExternalURLs(_ context.Context, sourceMarket string) ([]string, error) {
	var urls []string
	for u, p := range s.props {
		if p.SourceMarket == sourceMarket {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// fakeObjectStore records uploads; keys map to canned public URLs.
type fakeObjectStore struct {
	uploads []string
	failOn  map[string]bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{failOn: make(map[string]bool)}
}

func (o *fakeObjectStore) Upload(_ context.Context, key string, data io.Reader, _ string) error {
	io.Copy(io.Discard, data)
	if o.failOn[key] {
		return fmt.Errorf("upload rejected")
	}
	o.uploads = append(o.uploads, key)
	return nil
}

func (o *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.test/property-images/" + key
}

// fakeGeocoder returns a fixed location, or nil when unset.
type fakeGeocoder struct {
	result *geocode.Result
	calls  int
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) (*geocode.Result, error) {
	g.calls++
	return g.result, nil
}

// newTestTransformer wires a transformer with fakes and no sleep.
func newTestTransformer(objects ObjectStore, geocoder Geocoder) *Transformer {
	t := NewTransformer(NewMediaUploader(objects), geocoder, "system-landlord")
	t.sleep = func(time.Duration) {}
	return t
}

// writeImage drops a fake image file and returns its manifest entry.
func writeImage(t *testing.T, dir, filename string) models.DownloadedImage {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return models.DownloadedImage{
		OriginalURL: "https://source.test/" + filename,
		LocalPath:   path,
		Filename:    filename,
		Size:        9,
	}
}
