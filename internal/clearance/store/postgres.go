package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lingkod/internal/clearance/models"
	"lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
)

// Postgres implements Store over the clearance_submissions table. form_data
// is a jsonb column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const submissionColumns = `id, tenant_id, clearance_type, name, form_data, resident_id,
	status, document_url, processed_by, processed_at, created_at`

func (s *Postgres) Insert(ctx context.Context, sub *models.Submission) error {
	formData, err := json.Marshal(sub.FormData)
	if err != nil {
		return fmt.Errorf("marshal form data: %w", err)
	}
	var residentID any
	if !sub.ResidentID.IsNil() {
		residentID = uuid.UUID(sub.ResidentID)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clearance_submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(sub.ID), uuid.UUID(sub.TenantID), string(sub.ClearanceType),
		sub.Name, formData, residentID, string(sub.Status), sub.DocumentURL,
		sub.ProcessedBy, sub.ProcessedAt, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *Postgres) GetByID(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+`
		FROM clearance_submissions
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(id),
	)
	return scanSubmission(row)
}

func (s *Postgres) List(ctx context.Context, tenantID domain.TenantID, status models.Status, limit, offset int) ([]*models.Submission, int, error) {
	where := `WHERE tenant_id = $1`
	args := []any{uuid.UUID(tenantID)}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM clearance_submissions `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM clearance_submissions %s
		ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		submissionColumns, where, limit, offset,
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sub)
	}
	return out, total, rows.Err()
}

func (s *Postgres) Transition(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID, from, to models.Status, processedBy string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clearance_submissions
		SET status = $4, processed_by = $5, processed_at = $6
		WHERE tenant_id = $1 AND id = $2 AND status = $3`,
		uuid.UUID(tenantID), uuid.UUID(id), string(from), string(to), processedBy, now,
	)
	if err != nil {
		return fmt.Errorf("transition submission: %w", err)
	}
	return s.checkAffected(ctx, res, tenantID, id)
}

func (s *Postgres) SetDocument(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID, documentURL, processedBy string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clearance_submissions
		SET status = 'approved', document_url = $3, processed_by = $4, processed_at = $5
		WHERE tenant_id = $1 AND id = $2 AND status = 'processing'`,
		uuid.UUID(tenantID), uuid.UUID(id), documentURL, processedBy, now,
	)
	if err != nil {
		return fmt.Errorf("set submission document: %w", err)
	}
	return s.checkAffected(ctx, res, tenantID, id)
}

func (s *Postgres) RevertToPending(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clearance_submissions
		SET status = 'pending', processed_by = '', processed_at = NULL
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(id),
	)
	if err != nil {
		return fmt.Errorf("revert submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revert submission: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListApprovedFacility(ctx context.Context, tenantID domain.TenantID) ([]*models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM clearance_submissions
		WHERE tenant_id = $1 AND clearance_type = 'facility' AND status = 'approved'`,
		uuid.UUID(tenantID),
	)
	if err != nil {
		return nil, fmt.Errorf("list facility submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Postgres) checkAffected(ctx context.Context, res sql.Result, tenantID domain.TenantID, id domain.SubmissionID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submission rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM clearance_submissions WHERE tenant_id = $1 AND id = $2
		)`,
		uuid.UUID(tenantID), uuid.UUID(id),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("submission exists check: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub         models.Submission
		id, tenant  uuid.UUID
		residentID  uuid.NullUUID
		formData    []byte
		cType       string
		status      string
		processedAt sql.NullTime
	)
	err := row.Scan(
		&id, &tenant, &cType, &sub.Name, &formData, &residentID,
		&status, &sub.DocumentURL, &sub.ProcessedBy, &processedAt, &sub.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.ID = domain.SubmissionID(id)
	sub.TenantID = domain.TenantID(tenant)
	sub.ClearanceType = models.Type(cType)
	sub.Status = models.Status(status)
	if residentID.Valid {
		sub.ResidentID = domain.ResidentID(residentID.UUID)
	}
	if processedAt.Valid {
		t := processedAt.Time
		sub.ProcessedAt = &t
	}
	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &sub.FormData); err != nil {
			return nil, fmt.Errorf("unmarshal form data: %w", err)
		}
	}
	if sub.FormData == nil {
		sub.FormData = map[string]string{}
	}
	return &sub, nil
}
