package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casa8_ingest/config"
	"casa8_ingest/models"
)

// SupabaseStore talks to the properties table through the PostgREST
// API using the service-role key.
type SupabaseStore struct {
	url        string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStore(cfg *config.SupabaseConfig, client *http.Client) *SupabaseStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SupabaseStore{
		url:        strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		client:     client,
	}
}

func (s *SupabaseStore) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.url+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	return req, nil
}

// GetByExternalURL fetches one property by its unique source URL.
// Returns nil, nil when no row matches.
func (s *SupabaseStore) GetByExternalURL(ctx context.Context, externalURL string) (*models.CanonicalProperty, error) {
	path := "/rest/v1/properties?external_url=eq." + url.QueryEscape(externalURL) + "&limit=1"
	req, err := s.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, restError(resp)
	}

	var rows []models.CanonicalProperty
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode property: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Insert creates a new property row.
func (s *SupabaseStore) Insert(ctx context.Context, p *models.CanonicalProperty) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, "POST", "/rest/v1/properties", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return restError(resp)
	}
	return nil
}

// Update merges the transformed fields into an existing row by id.
// The caller's record is left untouched; updated_at is stamped on a
// copy of the payload only.
func (s *SupabaseStore) Update(ctx context.Context, id string, p *models.CanonicalProperty) error {
	row := *p
	now := time.Now()
	row.UpdatedAt = &now

	data, err := json.Marshal(&row)
	if err != nil {
		return err
	}

	path := "/rest/v1/properties?id=eq." + url.QueryEscape(id)
	req, err := s.newRequest(ctx, "PATCH", path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return restError(resp)
	}
	return nil
}

// DeactivateByURLs flips is_active off for every property whose
// external_url is in the removed set. The source_market filter keeps
// one market's sync from touching another market's rows even if URLs
// collide. Returns the number of rows actually matched.
func (s *SupabaseStore) DeactivateByURLs(ctx context.Context, urls []string, sourceMarket string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(urls))
	for i, u := range urls {
		quoted[i] = quoteListItem(u)
	}
	filter := url.Values{}
	filter.Set("external_url", "in.("+strings.Join(quoted, ",")+")")
	filter.Set("source_market", "eq."+sourceMarket)

	body, err := json.Marshal(map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	})
	if err != nil {
		return 0, err
	}

	req, err := s.newRequest(ctx, "PATCH", "/rest/v1/properties?"+filter.Encode(), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, restError(resp)
	}

	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, fmt.Errorf("decode deactivated rows: %w", err)
	}
	return len(rows), nil
}

// ListExternalURLs returns every external_url the store holds for a
// market. The sync caller diffs a fresh scrape against this set.
func (s *SupabaseStore) ListExternalURLs(ctx context.Context, sourceMarket string) ([]string, error) {
	path := "/rest/v1/properties?source_market=eq." + url.QueryEscape(sourceMarket) + "&select=external_url"
	req, err := s.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, restError(resp)
	}

	var rows []struct {
		ExternalURL string `json:"external_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode urls: %w", err)
	}

	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		urls = append(urls, row.ExternalURL)
	}
	return urls, nil
}

// quoteListItem quotes one value for a PostgREST in.(...) filter list,
// escaping embedded backslashes and double quotes.
func quoteListItem(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

func restError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("supabase error %d: %s", resp.StatusCode, string(body))
}
