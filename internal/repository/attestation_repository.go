package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const attestationSelect = `SELECT ar.id, ar.volunteer_id, ar.training_id, ar.request_type, ar.details, ar.file_url, ar.status,
ar.processed_by, ar.processed_at, ar.response_notes, ar.created_at, ar.updated_at,
p.full_name AS volunteer_name, p.email AS volunteer_email
FROM attestation_requests ar LEFT JOIN profiles p ON p.id = ar.volunteer_id`

const certificateColumns = `id, volunteer_id, training_id, certificate_type, title, description, file_url, issued_by, issued_date, created_at`

// AttestationRepository persists attestation requests and issued certificates.
type AttestationRepository struct {
	db *sqlx.DB
}

// NewAttestationRepository constructs an AttestationRepository.
func NewAttestationRepository(db *sqlx.DB) *AttestationRepository {
	return &AttestationRepository{db: db}
}

// Create inserts a pending request.
func (r *AttestationRepository) Create(ctx context.Context, req *models.AttestationRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.AttestationPending
	const query = `INSERT INTO attestation_requests (id, volunteer_id, training_id, request_type, details, status, created_at, updated_at)
VALUES (:id, :volunteer_id, :training_id, :request_type, :details, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create attestation request: %w", err)
	}
	return nil
}

// FindByID returns a request with the requester's contact details.
func (r *AttestationRepository) FindByID(ctx context.Context, id string) (*models.AttestationRequest, error) {
	var req models.AttestationRequest
	if err := r.db.GetContext(ctx, &req, attestationSelect+` WHERE ar.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attestation request: %w", err)
	}
	return &req, nil
}

// ListByVolunteer returns a volunteer's requests, newest first.
func (r *AttestationRepository) ListByVolunteer(ctx context.Context, volunteerID string) ([]models.AttestationRequest, error) {
	var reqs []models.AttestationRequest
	if err := r.db.SelectContext(ctx, &reqs, attestationSelect+` WHERE ar.volunteer_id = $1 ORDER BY ar.created_at DESC`, volunteerID); err != nil {
		return nil, fmt.Errorf("list volunteer attestation requests: %w", err)
	}
	return reqs, nil
}

// List returns every request, optionally restricted to one status.
func (r *AttestationRepository) List(ctx context.Context, status *models.AttestationStatus) ([]models.AttestationRequest, error) {
	query := attestationSelect
	var args []interface{}
	if status != nil {
		query += ` WHERE ar.status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY ar.created_at DESC`
	var reqs []models.AttestationRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("list attestation requests: %w", err)
	}
	return reqs, nil
}

// Process decides a pending request and, when cert is non-nil, issues the certificate in the same transaction.
// It returns sql.ErrNoRows when the request is no longer pending.
func (r *AttestationRepository) Process(ctx context.Context, req *models.AttestationRequest, cert *models.Certificate) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin process attestation tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE attestation_requests SET status = :status, processed_by = :processed_by, processed_at = :processed_at,
response_notes = :response_notes, file_url = :file_url, updated_at = :updated_at WHERE id = :id AND status = 'pending'`
	res, err := tx.NamedExecContext(ctx, update, req)
	if err != nil {
		return fmt.Errorf("process attestation request: %w", err)
	}
	if err = expectAffected(res); err != nil {
		return err
	}
	if cert != nil {
		if err = insertCertificate(ctx, tx, cert); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit process attestation tx: %w", err)
	}
	return nil
}

// CountPending returns the number of undecided requests.
func (r *AttestationRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM attestation_requests WHERE status = 'pending'`); err != nil {
		return 0, fmt.Errorf("count pending attestation requests: %w", err)
	}
	return count, nil
}

// IssueCertificate inserts a certificate.
func (r *AttestationRepository) IssueCertificate(ctx context.Context, cert *models.Certificate) error {
	return insertCertificate(ctx, r.db, cert)
}

// ListCertificates returns a volunteer's certificates, newest first.
func (r *AttestationRepository) ListCertificates(ctx context.Context, volunteerID string) ([]models.Certificate, error) {
	var certs []models.Certificate
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE volunteer_id = $1 ORDER BY issued_date DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &certs, query, volunteerID); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

func insertCertificate(ctx context.Context, exec sqlx.ExtContext, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	cert.CreatedAt = time.Now().UTC()
	if cert.IssuedDate.IsZero() {
		cert.IssuedDate = models.NewDate(cert.CreatedAt)
	}
	const query = `INSERT INTO certificates (id, volunteer_id, training_id, certificate_type, title, description, file_url, issued_by, issued_date, created_at)
VALUES (:id, :volunteer_id, :training_id, :certificate_type, :title, :description, :file_url, :issued_by, :issued_date, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, cert); err != nil {
		return fmt.Errorf("issue certificate: %w", err)
	}
	return nil
}
