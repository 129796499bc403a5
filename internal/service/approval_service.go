package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type approvalStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ListPending(ctx context.Context) ([]models.Profile, error)
	TransitionStatus(ctx context.Context, id string, from, to models.ProfileStatus, reason *string, reviewerID string, at time.Time) error
}

// ApprovalService moves submitted profiles to active or rejected.
type ApprovalService struct {
	repo     approvalStore
	notifier Notifier
	stats    statsInvalidator
	audit    auditWriter
	logger   *zap.Logger
}

// NewApprovalService constructs an ApprovalService.
func NewApprovalService(repo approvalStore, notifier Notifier, stats statsInvalidator, audit auditWriter, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{repo: repo, notifier: notifier, stats: stats, audit: audit, logger: newLogger(logger)}
}

// ListPending returns profiles awaiting review, oldest submission first.
func (s *ApprovalService) ListPending(ctx context.Context, session *models.Session) ([]models.Profile, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	profiles, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list pending profiles")
	}
	return profiles, nil
}

// Approve activates a pending profile.
func (s *ApprovalService) Approve(ctx context.Context, session *models.Session, profileID string) (*models.Profile, []string, error) {
	if err := requireAdmin(session); err != nil {
		return nil, nil, err
	}
	return s.decide(ctx, session, profileID, models.ProfileStatusActive, nil)
}

// Reject refuses a pending profile. The reason is mandatory.
func (s *ApprovalService) Reject(ctx context.Context, session *models.Session, profileID, reason string) (*models.Profile, []string, error) {
	if err := requireAdmin(session); err != nil {
		return nil, nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	return s.decide(ctx, session, profileID, models.ProfileStatusRejected, &reason)
}

func (s *ApprovalService) decide(ctx context.Context, session *models.Session, profileID string, to models.ProfileStatus, reason *string) (*models.Profile, []string, error) {
	now := time.Now().UTC()
	err := s.repo.TransitionStatus(ctx, profileID, models.ProfileStatusPending, to, reason, session.UserID, now)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, internalError(err, "failed to update profile status")
		}
		if _, findErr := s.repo.FindByID(ctx, profileID); findErr != nil {
			return nil, nil, notFoundOr(findErr, "profile not found", "failed to load profile")
		}
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "profile is not pending review")
	}

	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, nil, notFoundOr(err, "profile not found", "failed to load profile")
	}

	action := models.AuditActionProfileApprove
	if to == models.ProfileStatusRejected {
		action = models.AuditActionProfileReject
	}
	writeAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     action,
		Resource:   "profile",
		ResourceID: &profileID,
		OldValues:  []byte(`{"status":"pending"}`),
		NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, to)),
	})
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}

	var warnings []string
	if s.notifier != nil {
		mail := profileDecisionMail(profile, to == models.ProfileStatusActive, valueOr(reason, ""))
		if w := dispatchWarning("volunteer notification", s.notifier.Enqueue(ctx, []models.Notification{mail})); w != "" {
			warnings = append(warnings, w)
		}
	}
	return profile, warnings, nil
}
