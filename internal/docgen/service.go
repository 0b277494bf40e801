// Package docgen synthesizes clearance documents from templates.
//
// Synthesis is NOT idempotent: every invocation copies the template into a
// new document. Callers must enforce at-most-once invocation per submission,
// which the clearance service does with its processing claim.
package docgen

import (
	"context"
	"log/slog"
	"strings"

	"lingkod/internal/clearance/fields"
	"lingkod/internal/clearance/models"
	"lingkod/internal/docgen/metrics"
	"lingkod/internal/docgen/ports"
	regmodels "lingkod/internal/registration/models"
	tenantmodels "lingkod/internal/tenant/models"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/retry"
	"lingkod/pkg/requestcontext"
)

// Photo sizes in points. The ID card caps the photo at 1.4 cm.
const (
	photoSizeDefault    = 90
	photoSizeBarangayID = 39.685
)

// Result identifies a synthesized document.
type Result struct {
	DocumentID  string
	DocumentURL string
}

type Service struct {
	client           ports.DocsClient
	outputFolder     string
	retryPolicy      retry.Policy
	defaultTemplates map[string]string
	metrics          *metrics.Metrics
	logger           *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRetryPolicy overrides the rate-limit retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) { s.retryPolicy = p }
}

// WithMetrics attaches synthesis metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTemplateFallback sets deployment-level template ids used when a tenant
// has none configured for a clearance type.
func WithTemplateFallback(templates map[string]string) Option {
	return func(s *Service) { s.defaultTemplates = templates }
}

func NewService(client ports.DocsClient, outputFolder string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		client:       client,
		outputFolder: outputFolder,
		retryPolicy:  retry.DefaultPolicy,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func documentURL(documentID string) string {
	return "https://docs.google.com/document/d/" + documentID + "/edit"
}

// Synthesize copies the tenant's template for the submission's clearance
// type, embeds the resident photo where the template supports one, applies
// the placeholder replacements, and returns the document location. The photo
// goes in before any text substitution so its placeholder still exists.
// Template copies throttled upstream are retried with backoff; credential
// failures surface immediately.
func (s *Service) Synthesize(ctx context.Context, sub *models.Submission, resident *regmodels.Resident, tenant *tenantmodels.Config) (Result, error) {
	templateID := tenant.TemplateID(string(sub.ClearanceType))
	if templateID == "" {
		templateID = s.defaultTemplates[string(sub.ClearanceType)]
	}
	if templateID == "" {
		return Result{}, dErrors.Newf(dErrors.CodeInternal,
			"no template configured for %q", sub.ClearanceType)
	}

	replacements := fields.Map(sub, resident, requestcontext.Now(ctx))
	fileName := sub.Name + " - " + strings.ReplaceAll(string(sub.ClearanceType), "-", " ") + " Clearance"

	var docID string
	err := retry.Do(ctx, s.retryPolicy, s.retryable, func() error {
		var copyErr error
		docID, copyErr = s.client.CopyTemplate(ctx, templateID, s.outputFolder, fileName)
		return copyErr
	})
	if err != nil {
		s.metrics.IncFailure(string(dErrors.CodeOf(err)))
		return Result{}, err
	}

	if sub.ClearanceType.SupportsPhoto() {
		if err := s.embedPhoto(ctx, docID, sub, resident); err != nil {
			s.metrics.IncFailure(string(dErrors.CodeOf(err)))
			return Result{}, err
		}
	}

	if err := s.client.ReplaceText(ctx, docID, replacements); err != nil {
		s.metrics.IncFailure(string(dErrors.CodeOf(err)))
		return Result{}, err
	}

	if sub.ClearanceType == models.TypeBarangayID {
		// bold pass after substitution; formatting is best-effort
		if err := s.client.BoldText(ctx, docID, strings.ToUpper(sub.Name)); err != nil {
			s.logger.Warn("bold formatting failed",
				"document_id", docID,
				"error", err,
			)
		}
	}

	s.metrics.IncGenerated(string(sub.ClearanceType))
	return Result{DocumentID: docID, DocumentURL: documentURL(docID)}, nil
}

func (s *Service) embedPhoto(ctx context.Context, docID string, sub *models.Submission, resident *regmodels.Resident) error {
	photoURL := ""
	if resident != nil {
		photoURL = resident.PhotoURL
	}
	if photoURL == "" {
		return s.client.ClearImagePlaceholder(ctx, docID)
	}

	size := float64(photoSizeDefault)
	if sub.ClearanceType == models.TypeBarangayID {
		size = photoSizeBarangayID
	}

	embedded, err := s.client.EmbedImage(ctx, docID, photoURL, size)
	if err != nil {
		return err
	}
	if !embedded {
		s.logger.Warn("template has no photo placeholder",
			"document_id", docID,
			"clearance_type", sub.ClearanceType,
		)
	}
	return nil
}

// retryable limits retries to upstream throttling. Auth failures and plain
// upstream errors would fail again identically.
func (s *Service) retryable(err error) bool {
	if dErrors.HasCode(err, dErrors.CodeRateLimited) {
		s.metrics.IncRetry()
		return true
	}
	return false
}
