package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

// statsInvalidator drops cached dashboard counters after a mutation.
type statsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

// auditWriter records audit trail entries.
type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

func requireSession(session *models.Session) error {
	if !session.Authenticated() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	return nil
}

func requireAdmin(session *models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !session.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return nil
}

func requireProfile(session *models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if session.ProfileID == "" {
		return appErrors.Clone(appErrors.ErrProfileIncomplete, "no profile attached to this account")
	}
	return nil
}

// RequireActiveProfile maps the profile status to the PROFILE_* errors. It returns nil for active profiles.
func RequireActiveProfile(profile *models.Profile) error {
	switch profile.NextStep() {
	case models.NextStepReady:
		return nil
	case models.NextStepAwaitingApproval:
		return appErrors.Clone(appErrors.ErrProfilePending, "")
	case models.NextStepRejected:
		details := map[string]interface{}{}
		if profile.RejectionReason != nil {
			details["rejectionReason"] = *profile.RejectionReason
		}
		return appErrors.WithDetails(appErrors.ErrProfileRejected, details)
	default:
		return appErrors.Clone(appErrors.ErrProfileIncomplete, "")
	}
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, internal)
}

func conflictOr(err error, conflict, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConflict, conflict)
	}
	return internalError(err, internal)
}

func newValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return validator.New()
	}
	return v
}

func newLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// nullIfEmpty trims s and returns nil for blank values.
func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeAudit(ctx context.Context, w auditWriter, logger *zap.Logger, entry *models.AuditLog) {
	if w == nil {
		return
	}
	if err := w.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
