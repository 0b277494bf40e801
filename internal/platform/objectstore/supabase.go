package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lingkod/pkg/platform/sentinel"
)

// Supabase talks to the Supabase storage REST API with the service-role key.
type Supabase struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewSupabase builds a storage client. baseURL is the project URL without a
// trailing slash, e.g. https://xyz.supabase.co.
func NewSupabase(baseURL, serviceKey string) *Supabase {
	return &Supabase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload writes an object. With Upsert set, an existing object at the same
// key is overwritten instead of returning a duplicate error.
func (s *Supabase) Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	if opts.Upsert {
		req.Header.Set("x-upsert", "true")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusServiceUnavailable {
			return "", fmt.Errorf("upload %s/%s: %w: %s", bucket, key, sentinel.ErrUnavailable, body)
		}
		return "", fmt.Errorf("upload %s/%s: storage returned %d: %s", bucket, key, resp.StatusCode, body)
	}
	return fmt.Sprintf("%s/%s", bucket, key), nil
}

// PublicURL resolves an object path to the public bucket URL.
func (s *Supabase) PublicURL(_, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s", s.baseURL, path)
}
