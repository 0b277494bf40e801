package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lingkod/internal/registration/models"
	"lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
)

// Postgres implements Store on a relational database. Conditional updates
// rely on affected-row counts for the claim protocol.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const registrationColumns = `id, tenant_id, first_name, middle_name, last_name, suffix,
	birthdate, age, gender, civil_status, citizenship, purok, contact_number,
	photo_url, status, processed_by, processed_at, created_at`

const residentColumns = `id, tenant_id, first_name, middle_name, last_name, suffix,
	birthdate, age, gender, civil_status, citizenship, purok, contact_number,
	photo_url, registration_id, created_at`

func (s *Postgres) Insert(ctx context.Context, reg *models.PendingRegistration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		uuid.UUID(reg.ID), uuid.UUID(reg.TenantID),
		reg.FirstName, reg.MiddleName, reg.LastName, reg.Suffix,
		reg.Birthdate, reg.Age, reg.Gender, reg.CivilStatus, reg.Citizenship,
		reg.Purok, reg.ContactNumber, reg.PhotoURL, string(reg.Status),
		reg.ProcessedBy, reg.ProcessedAt, reg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending registration: %w", err)
	}
	return nil
}

func (s *Postgres) GetByID(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID) (*models.PendingRegistration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+registrationColumns+`
		FROM pending_registrations
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(id),
	)
	return scanRegistration(row)
}

func (s *Postgres) List(ctx context.Context, tenantID domain.TenantID, status models.Status, limit int) ([]*models.PendingRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM pending_registrations
		WHERE tenant_id = $1`
	args := []any{uuid.UUID(tenantID)}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.PendingRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (s *Postgres) ClaimApproval(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID, processedBy string, now time.Time) error {
	return s.conditionalTransition(ctx, tenantID, id, models.StatusApproved, processedBy, now)
}

func (s *Postgres) UpdateStatus(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID, status models.Status, processedBy string, now time.Time) error {
	return s.conditionalTransition(ctx, tenantID, id, status, processedBy, now)
}

// conditionalTransition moves a registration out of pending only when it is
// still pending, and distinguishes a lost race from a missing row.
func (s *Postgres) conditionalTransition(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID, status models.Status, processedBy string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_registrations
		SET status = $4, processed_by = $3, processed_at = $5
		WHERE tenant_id = $1 AND id = $2 AND status = 'pending'`,
		uuid.UUID(tenantID), uuid.UUID(id), processedBy, string(status), now,
	)
	if err != nil {
		return fmt.Errorf("transition registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition registration: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pending_registrations WHERE tenant_id = $1 AND id = $2
		)`,
		uuid.UUID(tenantID), uuid.UUID(id),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("transition registration: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *Postgres) RevertToPending(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_registrations
		SET status = 'pending', processed_by = '', processed_at = NULL
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(id),
	)
	if err != nil {
		return fmt.Errorf("revert registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revert registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindDuplicateResident(ctx context.Context, tenantID domain.TenantID, firstName, lastName string, birthdate time.Time) (*models.Resident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+residentColumns+`
		FROM residents
		WHERE tenant_id = $1
		  AND lower(first_name) = lower($2)
		  AND lower(last_name) = lower($3)
		  AND birthdate = $4
		LIMIT 1`,
		uuid.UUID(tenantID), firstName, lastName, birthdate,
	)
	return scanResident(row)
}

func (s *Postgres) InsertResident(ctx context.Context, r *models.Resident) error {
	var registrationID any
	if !r.RegistrationID.IsNil() {
		registrationID = uuid.UUID(r.RegistrationID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO residents (`+residentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(r.ID), uuid.UUID(r.TenantID),
		r.FirstName, r.MiddleName, r.LastName, r.Suffix,
		r.Birthdate, r.Age, r.Gender, r.CivilStatus, r.Citizenship,
		r.Purok, r.ContactNumber, r.PhotoURL, registrationID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resident: %w", err)
	}
	return nil
}

func (s *Postgres) GetResident(ctx context.Context, tenantID domain.TenantID, id domain.ResidentID) (*models.Resident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+residentColumns+`
		FROM residents
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(id),
	)
	return scanResident(row)
}

func (s *Postgres) UpdateResidentPhoto(ctx context.Context, tenantID domain.TenantID, id domain.ResidentID, photoURL string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE residents SET photo_url = $3
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(id), photoURL,
	)
	if err != nil {
		return fmt.Errorf("update resident photo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update resident photo: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) SearchResidents(ctx context.Context, tenantID domain.TenantID, query string, limit int) ([]*models.Resident, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}

	sqlQuery := `
		SELECT ` + residentColumns + `
		FROM residents
		WHERE tenant_id = $1`
	args := []any{uuid.UUID(tenantID)}
	for _, term := range terms {
		args = append(args, "%"+escapeLike(term)+"%")
		sqlQuery += fmt.Sprintf(
			` AND (first_name || ' ' || middle_name || ' ' || last_name) ILIKE $%d`,
			len(args),
		)
	}
	sqlQuery += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search residents: %w", err)
	}
	defer rows.Close()

	var out []*models.Resident
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.PendingRegistration, error) {
	var (
		reg         models.PendingRegistration
		id, tenant  uuid.UUID
		status      string
		processedAt sql.NullTime
	)
	err := row.Scan(
		&id, &tenant,
		&reg.FirstName, &reg.MiddleName, &reg.LastName, &reg.Suffix,
		&reg.Birthdate, &reg.Age, &reg.Gender, &reg.CivilStatus, &reg.Citizenship,
		&reg.Purok, &reg.ContactNumber, &reg.PhotoURL, &status,
		&reg.ProcessedBy, &processedAt, &reg.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pending registration: %w", err)
	}
	reg.ID = domain.RegistrationID(id)
	reg.TenantID = domain.TenantID(tenant)
	reg.Status = models.Status(status)
	if processedAt.Valid {
		t := processedAt.Time
		reg.ProcessedAt = &t
	}
	return &reg, nil
}

func scanResident(row rowScanner) (*models.Resident, error) {
	var (
		res            models.Resident
		id, tenant     uuid.UUID
		registrationID uuid.NullUUID
	)
	err := row.Scan(
		&id, &tenant,
		&res.FirstName, &res.MiddleName, &res.LastName, &res.Suffix,
		&res.Birthdate, &res.Age, &res.Gender, &res.CivilStatus, &res.Citizenship,
		&res.Purok, &res.ContactNumber, &res.PhotoURL, &registrationID, &res.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan resident: %w", err)
	}
	res.ID = domain.ResidentID(id)
	res.TenantID = domain.TenantID(tenant)
	if registrationID.Valid {
		res.RegistrationID = domain.RegistrationID(registrationID.UUID)
	}
	return &res, nil
}
