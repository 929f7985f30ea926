// Package storage mirrors externally hosted media (bracket renders, team
// icons) into our own bucket so the community-facing messages never link to
// assets we do not control.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// MirrorFromURL downloads a remote asset and re-uploads it under key,
// returning the mirrored public URL. The source content type is preserved.
func MirrorFromURL(ctx context.Context, uploader FileUploader, client *http.Client, sourceURL, key string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build mirror request for %s: %w", sourceURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s for mirroring: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s for mirroring: status %d", sourceURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := uploader.Upload(ctx, key, contentType, resp.Body)
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
