package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"casa8_ingest/config"
)

// SupabaseBucket is the default object store: the Supabase Storage
// HTTP API. Uploads use x-upsert so re-imports overwrite in place.
type SupabaseBucket struct {
	url        string
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseBucket(cfg *config.SupabaseConfig, bucket string, client *http.Client) *SupabaseBucket {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SupabaseBucket{
		url:        strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     bucket,
		client:     client,
	}
}

func (b *SupabaseBucket) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.url, b.bucket, key)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, data)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+b.serviceKey)
	req.Header.Set("x-upsert", "true")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (b *SupabaseBucket) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.url, b.bucket, key)
}
