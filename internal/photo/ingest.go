// Package photo turns inline data-URI photos into stored objects with
// deterministic, per-person filenames.
package photo

import (
	"context"
	"encoding/base64"
	"strings"

	"lingkod/internal/platform/objectstore"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/textutil"
)

// MaxPhotoBytes caps the decoded payload size.
const MaxPhotoBytes = 10 << 20

// Identity names the person a photo belongs to. The derived filename is the
// uppercased, diacritic-folded name parts joined with hyphens.
type Identity struct {
	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string
}

// Ingestor validates inline photos and uploads them to object storage.
type Ingestor struct {
	store  objectstore.Store
	bucket string
}

func NewIngestor(store objectstore.Store, bucket string) *Ingestor {
	return &Ingestor{store: store, bucket: bucket}
}

// Ingest decodes a data URI, enforces the size cap, and upserts the object at
// the identity-derived key in the default bucket. Returns the public URL of
// the stored photo. Validation failures fail fast before any upload is
// attempted.
func (i *Ingestor) Ingest(ctx context.Context, dataURI string, identity Identity) (string, error) {
	return i.IngestTo(ctx, i.bucket, dataURI, identity)
}

// IngestTo is Ingest targeting an explicit bucket, for callers that store
// photos per tenant.
func (i *Ingestor) IngestTo(ctx context.Context, bucket, dataURI string, identity Identity) (string, error) {
	contentType, encoded, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "photo payload is not valid base64")
	}
	if len(data) > MaxPhotoBytes {
		return "", dErrors.New(dErrors.CodeValidation, "photo exceeds the 10 MiB limit")
	}

	key := textutil.PhotoFilename(identity.LastName, identity.FirstName, identity.MiddleName, identity.Suffix)
	path, err := i.store.Upload(ctx, bucket, key, data, objectstore.UploadOptions{
		ContentType: contentType,
		Upsert:      true,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "photo upload failed")
	}
	return i.store.PublicURL(bucket, path), nil
}

// splitDataURI validates a "data:image/<subtype>;base64,<payload>" URI and
// returns its content type and raw base64 payload.
func splitDataURI(uri string) (contentType, payload string, err error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return "", "", dErrors.New(dErrors.CodeValidation, "photo must be an image data URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", dErrors.New(dErrors.CodeValidation, "photo data URI has no payload")
	}
	contentType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return "", "", dErrors.New(dErrors.CodeValidation, "photo data URI must be base64 encoded")
	}
	return contentType, payload, nil
}
