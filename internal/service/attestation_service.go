package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type attestationStore interface {
	Create(ctx context.Context, req *models.AttestationRequest) error
	FindByID(ctx context.Context, id string) (*models.AttestationRequest, error)
	ListByVolunteer(ctx context.Context, volunteerID string) ([]models.AttestationRequest, error)
	List(ctx context.Context, status *models.AttestationStatus) ([]models.AttestationRequest, error)
	Process(ctx context.Context, req *models.AttestationRequest, cert *models.Certificate) error
	IssueCertificate(ctx context.Context, cert *models.Certificate) error
	ListCertificates(ctx context.Context, volunteerID string) ([]models.Certificate, error)
}

// AttestationService handles attestation requests and certificates.
type AttestationService struct {
	repo      attestationStore
	profiles  profileFinder
	notifier  Notifier
	stats     statsInvalidator
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttestationService constructs an AttestationService.
func NewAttestationService(repo attestationStore, profiles profileFinder, notifier Notifier, stats statsInvalidator, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *AttestationService {
	return &AttestationService{
		repo:      repo,
		profiles:  profiles,
		notifier:  notifier,
		stats:     stats,
		audit:     audit,
		validator: newValidator(validate),
		logger:    newLogger(logger),
		now:       time.Now,
	}
}

// Request files a pending attestation request for the caller.
func (s *AttestationService) Request(ctx context.Context, session *models.Session, req dto.AttestationCreateRequest) (*models.AttestationRequest, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attestation request")
	}
	record := &models.AttestationRequest{
		VolunteerID: session.ProfileID,
		TrainingID:  req.TrainingID,
		RequestType: models.AttestationType(req.RequestType),
		Details:     nullIfEmpty(req.Details),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, internalError(err, "failed to create attestation request")
	}
	s.invalidate(ctx)
	return record, nil
}

// ListMine returns the caller's requests.
func (s *AttestationService) ListMine(ctx context.Context, session *models.Session) ([]models.AttestationRequest, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListByVolunteer(ctx, session.ProfileID)
	if err != nil {
		return nil, internalError(err, "failed to list attestation requests")
	}
	return reqs, nil
}

// List returns requests for administrators, optionally filtered by status.
func (s *AttestationService) List(ctx context.Context, session *models.Session, status string) ([]models.AttestationRequest, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	var filter *models.AttestationStatus
	if raw := strings.TrimSpace(status); raw != "" {
		st := models.AttestationStatus(raw)
		switch st {
		case models.AttestationPending, models.AttestationApproved, models.AttestationRejected:
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		filter = &st
	}
	reqs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list attestation requests")
	}
	return reqs, nil
}

// Process decides a pending request. Approving with a file also issues a certificate.
func (s *AttestationService) Process(ctx context.Context, session *models.Session, id string, req dto.AttestationProcessRequest) (*models.AttestationRequest, []string, error) {
	if err := requireAdmin(session); err != nil {
		return nil, nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid attestation decision")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "attestation request not found", "failed to load attestation request")
	}
	if record.Status != models.AttestationPending {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "attestation request already processed")
	}

	now := s.now().UTC()
	record.Status = models.AttestationStatus(req.Status)
	record.ProcessedBy = &session.UserID
	record.ProcessedAt = &now
	record.ResponseNotes = nullIfEmpty(req.ResponseNotes)
	record.FileURL = nullIfEmpty(req.FileURL)
	record.UpdatedAt = now

	var cert *models.Certificate
	if record.Status == models.AttestationApproved && record.FileURL != nil {
		cert = &models.Certificate{
			VolunteerID:     record.VolunteerID,
			TrainingID:      record.TrainingID,
			CertificateType: string(record.RequestType),
			Title:           certificateTitle(record.RequestType),
			FileURL:         record.FileURL,
			IssuedBy:        &session.UserID,
			IssuedDate:      models.NewDate(now),
		}
	}
	if err := s.repo.Process(ctx, record, cert); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrConflict, "attestation request already processed")
		}
		return nil, nil, internalError(err, "failed to process attestation request")
	}
	writeAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     models.AuditActionAttestation,
		Resource:   "attestation_request",
		ResourceID: &id,
		NewValues:  []byte(`{"status":"` + string(record.Status) + `"}`),
	})
	s.invalidate(ctx)

	var warnings []string
	if s.notifier != nil {
		result := s.notifier.Enqueue(ctx, []models.Notification{attestationMail(record)})
		if w := dispatchWarning("attestation processed", result); w != "" {
			warnings = append(warnings, w)
		}
	}
	return record, warnings, nil
}

func certificateTitle(kind models.AttestationType) string {
	switch kind {
	case models.AttestationTraining:
		return "Attestation de formation"
	case models.AttestationRecommendation:
		return "Lettre de recommandation"
	default:
		return "Attestation de bénévolat"
	}
}

// Certificates returns the caller's issued certificates.
func (s *AttestationService) Certificates(ctx context.Context, session *models.Session) ([]models.Certificate, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	certs, err := s.repo.ListCertificates(ctx, session.ProfileID)
	if err != nil {
		return nil, internalError(err, "failed to list certificates")
	}
	return certs, nil
}

// IssueCertificate attaches a certificate to a volunteer without a prior request.
func (s *AttestationService) IssueCertificate(ctx context.Context, session *models.Session, req dto.IssueCertificateRequest) (*models.Certificate, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid certificate payload")
	}
	if _, err := s.profiles.FindByID(ctx, req.VolunteerID); err != nil {
		return nil, notFoundOr(err, "volunteer not found", "failed to load volunteer")
	}
	cert := &models.Certificate{
		VolunteerID:     req.VolunteerID,
		TrainingID:      req.TrainingID,
		CertificateType: req.CertificateType,
		Title:           strings.TrimSpace(req.Title),
		Description:     nullIfEmpty(req.Description),
		FileURL:         nullIfEmpty(req.FileURL),
		IssuedBy:        &session.UserID,
		IssuedDate:      models.NewDate(s.now()),
	}
	if err := s.repo.IssueCertificate(ctx, cert); err != nil {
		return nil, internalError(err, "failed to issue certificate")
	}
	s.invalidate(ctx)
	return cert, nil
}

func (s *AttestationService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}
