// Package ports defines the document-service contract the synthesis engine
// drives. Implementations classify their failures with the shared error
// codes: rate limiting as CodeRateLimited (retried), credential failures as
// CodeUpstreamAuth (never retried), anything else as CodeUpstream.
package ports

import "context"

// DocsClient is a templated-document service. The reference implementation
// talks to Google Docs/Drive; tests use a recording fake.
type DocsClient interface {
	// CopyTemplate copies the template into the output folder under the
	// given file name and returns the new document's id.
	CopyTemplate(ctx context.Context, templateID, outputFolderID, fileName string) (string, error)
	// ReplaceText substitutes each <placeholder> occurrence, case-sensitive.
	ReplaceText(ctx context.Context, documentID string, replacements map[string]string) error
	// EmbedImage replaces the document's picture placeholder with the image
	// at the given URL, sized to sizePt points square. Returns false when
	// the document has no placeholder.
	EmbedImage(ctx context.Context, documentID, imageURL string, sizePt float64) (bool, error)
	// ClearImagePlaceholder blanks the picture placeholder when there is no
	// photo to embed.
	ClearImagePlaceholder(ctx context.Context, documentID string) error
	// BoldText bolds every occurrence of text in the document.
	BoldText(ctx context.Context, documentID, text string) error
}
