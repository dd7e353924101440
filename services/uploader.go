package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"strings"

	"casa8_ingest/models"
	"casa8_ingest/normalize"
)

// ObjectStore is the content store uploads go through. Both the
// Supabase Storage bucket and the S3 uploader satisfy it.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	PublicURL(key string) string
}

// MediaUploader pushes locally-downloaded listing photos to the object
// store under a deterministic per-property path.
type MediaUploader struct {
	objects ObjectStore
}

func NewMediaUploader(objects ObjectStore) *MediaUploader {
	return &MediaUploader{objects: objects}
}

// UploadImages uploads a property's downloaded image manifest and
// returns the public URLs that succeeded. A missing local file or a
// failed upload is logged and skipped; it never fails the property.
func (u *MediaUploader) UploadImages(ctx context.Context, images []models.DownloadedImage, sourceMarket, propertyAddress string) []string {
	if u.objects == nil || len(images) == 0 {
		return nil
	}

	addressSlug := normalize.SlugifyAddress(propertyAddress)

	var urls []string
	for _, img := range images {
		data, err := os.ReadFile(img.LocalPath)
		if err != nil {
			log.Printf("Warning: skipping image %s: %v", img.LocalPath, err)
			continue
		}

		key := fmt.Sprintf("%s/%s/%s", sourceMarket, addressSlug, img.Filename)
		contentType := contentTypeForFile(img.Filename)

		if err := u.objects.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			log.Printf("Warning: upload failed for %s: %v", img.Filename, err)
			continue
		}

		urls = append(urls, u.objects.PublicURL(key))
	}

	return urls
}

// contentTypeForFile maps an image filename extension to a MIME type.
func contentTypeForFile(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
