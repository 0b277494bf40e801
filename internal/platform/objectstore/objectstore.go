// Package objectstore defines the object storage port used by photo ingest.
//
// Buckets are per tenant (keyed by tenant slug). Uploads are upserts when
// requested: writing the same key twice overwrites, which is what makes
// photo re-submission idempotent.
package objectstore

import "context"

// UploadOptions controls a single upload.
type UploadOptions struct {
	ContentType string
	Upsert      bool
}

// Store is the object storage port.
type Store interface {
	// Upload writes data at bucket/key and returns the storage path.
	Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) (string, error)
	// PublicURL resolves a storage path to a publicly reachable URL.
	PublicURL(bucket, path string) string
}
