package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type profileStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
	SubmitOnboarding(ctx context.Context, profile *models.Profile, languages []models.VolunteerLanguage) error
	UpdateContact(ctx context.Context, profile *models.Profile) error
	UpdateAvatar(ctx context.Context, id, url string) error
	ListLanguages(ctx context.Context, profileID string) ([]models.VolunteerLanguage, error)
	ReplaceLanguages(ctx context.Context, profileID string, languages []models.VolunteerLanguage) error
}

type avatarStore interface {
	StoreAvatar(ctx context.Context, profileID string, upload Upload) (string, error)
}

// ProfileService manages volunteer profiles and the onboarding submission.
type ProfileService struct {
	repo      profileStore
	notifier  Notifier
	stats     statsInvalidator
	media     avatarStore
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	appURL    string
}

// NewProfileService constructs a ProfileService and registers the onboarding validators.
func NewProfileService(repo profileStore, notifier Notifier, stats statsInvalidator, media avatarStore, audit auditWriter, validate *validator.Validate, logger *zap.Logger, appURL string) *ProfileService {
	validate = newValidator(validate)
	registerProfileValidators(validate)
	return &ProfileService{
		repo:      repo,
		notifier:  notifier,
		stats:     stats,
		media:     media,
		audit:     audit,
		validator: validate,
		logger:    newLogger(logger),
		appURL:    appURL,
	}
}

func registerProfileValidators(v *validator.Validate) {
	rules := map[string]validator.Func{
		"langlevel": func(fl validator.FieldLevel) bool {
			return models.LanguageLevel(fl.Field().String()).Valid()
		},
		"weekday": func(fl validator.FieldLevel) bool {
			return containsString(models.Weekdays, fl.Field().String())
		},
		"timeslot": func(fl validator.FieldLevel) bool {
			return containsString(models.TimeSlots, fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validator: %v", tag, err))
		}
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Get returns the caller's profile with languages.
func (s *ProfileService) Get(ctx context.Context, session *models.Session) (*models.Profile, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	return s.load(ctx, session.ProfileID)
}

// GetByID returns any profile. Admin only.
func (s *ProfileService) GetByID(ctx context.Context, session *models.Session, id string) (*models.Profile, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *ProfileService) load(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "profile not found", "failed to load profile")
	}
	langs, err := s.repo.ListLanguages(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load languages")
	}
	profile.Languages = langs
	return profile, nil
}

// List returns volunteer profiles matching the query. Admin only.
func (s *ProfileService) List(ctx context.Context, session *models.Session, query dto.ProfileListQuery) ([]models.Profile, *models.Pagination, error) {
	if err := requireAdmin(session); err != nil {
		return nil, nil, err
	}
	filter := models.ProfileFilter{
		Search:      strings.TrimSpace(query.Search),
		Governorate: strings.TrimSpace(query.Governorate),
		Page:        query.Page,
		PageSize:    query.PageSize,
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := models.ProfileStatus(raw)
		if raw == "incomplete" {
			status = models.ProfileStatusIncomplete
		} else if status != models.ProfileStatusPending && status != models.ProfileStatusActive && status != models.ProfileStatusRejected {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list profiles")
	}
	return profiles, pagination(filter.Page, filter.PageSize, total), nil
}

// Update edits contact details. The workflow status is never touched.
func (s *ProfileService) Update(ctx context.Context, session *models.Session, req dto.ProfileUpdateRequest) (*models.Profile, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	if blank := blankRequiredFields(req); len(blank) > 0 {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "required profile fields cannot be cleared"),
			map[string]interface{}{"fields": blank},
		)
	}
	profile, err := s.repo.FindByID(ctx, session.ProfileID)
	if err != nil {
		return nil, notFoundOr(err, "profile not found", "failed to load profile")
	}
	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	assignOptional(&profile.Phone, req.Phone)
	assignOptional(&profile.PhoneSecondary, req.PhoneSecondary)
	assignOptional(&profile.City, req.City)
	assignOptional(&profile.Governorate, req.Governorate)
	assignOptional(&profile.AddressLine1, req.AddressLine1)
	assignOptional(&profile.Bio, req.Bio)
	if req.Skills != nil {
		profile.Skills = pq.StringArray(trimAll(req.Skills))
	}
	if req.Interests != nil {
		profile.Interests = pq.StringArray(trimAll(req.Interests))
	}
	if err := s.repo.UpdateContact(ctx, profile); err != nil {
		return nil, notFoundOr(err, "profile not found", "failed to update profile")
	}
	return profile, nil
}

// blankRequiredFields lists completeness fields the request tries to clear.
func blankRequiredFields(req dto.ProfileUpdateRequest) []string {
	var blank []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"fullName", req.FullName},
		{"phone", req.Phone},
		{"city", req.City},
		{"governorate", req.Governorate},
	} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			blank = append(blank, f.name)
		}
	}
	return blank
}

func assignOptional(dst **string, v *string) {
	if v != nil {
		*dst = nullIfEmpty(*v)
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SubmitOnboarding stores the registration form and moves the profile to pending.
// The admin alert is best-effort; its failure is returned as a warning.
func (s *ProfileService) SubmitOnboarding(ctx context.Context, session *models.Session, req dto.OnboardingRequest) (*models.Profile, []string, error) {
	if err := requireProfile(session); err != nil {
		return nil, nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid onboarding payload")
	}
	if !req.ConsentTerms || !req.ConsentDataUsage {
		return nil, nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "both consents are required"),
			map[string]interface{}{"consentTerms": req.ConsentTerms, "consentDataUsage": req.ConsentDataUsage},
		)
	}
	dob, err := models.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, nil, validationError(err, "invalid date of birth")
	}

	current, err := s.repo.FindByID(ctx, session.ProfileID)
	if err != nil {
		return nil, nil, notFoundOr(err, "profile not found", "failed to load profile")
	}
	if current.CurrentStatus() == models.ProfileStatusActive {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "profile already approved")
	}

	profile := applyOnboarding(current, req, dob)
	languages := toLanguages(profile.ID, req.Languages)
	if err := s.repo.SubmitOnboarding(ctx, profile, languages); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "profile can no longer be submitted")
		}
		return nil, nil, internalError(err, "failed to submit onboarding")
	}
	profile.Languages = languages

	writeAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     models.AuditActionProfileSubmit,
		Resource:   "profile",
		ResourceID: &profile.ID,
	})
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}

	var warnings []string
	if w := s.notifyAdmins(ctx, profile); w != "" {
		warnings = append(warnings, w)
	}
	return profile, warnings, nil
}

func (s *ProfileService) notifyAdmins(ctx context.Context, profile *models.Profile) string {
	if s.notifier == nil {
		return ""
	}
	recipients, err := s.notifier.AdminRecipients(ctx)
	if err != nil {
		s.logger.Warn("failed to resolve admin recipients", zap.String("profile_id", profile.ID), zap.Error(err))
		return "admin notification could not be sent"
	}
	if len(recipients) == 0 {
		s.logger.Warn("no admin recipients configured", zap.String("profile_id", profile.ID))
		return ""
	}
	batch := make([]models.Notification, 0, len(recipients))
	for _, to := range recipients {
		batch = append(batch, newVolunteerAlert(to, profile, s.appURL))
	}
	return dispatchWarning("admin notification", s.notifier.Enqueue(ctx, batch))
}

func applyOnboarding(p *models.Profile, req dto.OnboardingRequest, dob models.Date) *models.Profile {
	out := *p
	out.FullName = strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	if email := strings.TrimSpace(req.Email); email != "" {
		out.Email = strings.ToLower(email)
	}
	out.Phone = nullIfEmpty(req.PhoneMain)
	out.PhoneSecondary = nullIfEmpty(req.PhoneSecondary)
	out.Gender = nullIfEmpty(req.Gender)
	out.DateOfBirth = &dob
	out.AddressLine1 = nullIfEmpty(req.AddressLine1)
	out.AddressLine2 = nullIfEmpty(req.AddressLine2)
	out.City = nullIfEmpty(req.City)
	out.Governorate = nullIfEmpty(req.Governorate)
	out.PostalCode = nullIfEmpty(req.PostalCode)
	out.EducationLevel = nullIfEmpty(req.EducationLevel)
	out.Profession = nullIfEmpty(req.Profession)
	out.Organization = nullIfEmpty(req.Organization)
	out.Position = nullIfEmpty(req.Position)
	out.IsStudent = req.IsStudent
	out.IsAffiliated = req.IsAffiliated
	out.AffiliationDetails = nullIfEmpty(req.AffiliationDetails)
	out.IsCommunityMember = req.IsCommunityMember
	out.OtherOrgDetails = nullIfEmpty(req.OtherOrgDetails)
	out.Skills = pq.StringArray(splitList(req.Skills))
	out.OtherSkills = nullIfEmpty(req.OtherSkills)
	out.Interests = pq.StringArray(splitList(req.Interests))
	out.AvailabilityDays = pq.StringArray(trimAll(req.AvailabilityDays))
	out.AvailabilityHours = pq.StringArray(trimAll(req.AvailabilityHours))
	out.OtherVolunteering = req.OtherVolunteering
	out.IwatchExperience = req.IwatchExperience
	out.IwatchRole = nullIfEmpty(req.IwatchRole)
	out.IwatchYears = nullIfEmpty(req.IwatchYears)
	out.IwatchEvents = nullIfEmpty(req.IwatchEvents)
	out.ReferralSource = nullIfEmpty(req.ReferralSource)
	out.OnboardingNotes = nullIfEmpty(req.OnboardingNotes)
	out.PreferredContact = nullIfEmpty(strings.Join(trimAll(req.PreferredContact), ","))
	out.ConsentTerms = req.ConsentTerms
	out.ConsentDataUsage = req.ConsentDataUsage
	return &out
}

func toLanguages(profileID string, inputs []dto.LanguageInput) []models.VolunteerLanguage {
	out := make([]models.VolunteerLanguage, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Language)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.VolunteerLanguage{VolunteerID: profileID, Language: name, Level: in.Level})
	}
	return out
}

// CheckStatus refetches the caller's profile and reports where they should go next.
func (s *ProfileService) CheckStatus(ctx context.Context, session *models.Session) (*dto.ProfileStatusResponse, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	profile, err := s.repo.FindByID(ctx, session.ProfileID)
	if err != nil {
		return nil, notFoundOr(err, "profile not found", "failed to load profile")
	}
	resp := &dto.ProfileStatusResponse{
		Status:          string(profile.CurrentStatus()),
		NextStep:        profile.NextStep(),
		ProfileComplete: profile.IsComplete(),
	}
	if resp.Status == "" {
		resp.Status = "incomplete"
	}
	if profile.CurrentStatus() == models.ProfileStatusRejected {
		resp.RejectionReason = profile.RejectionReason
	}
	return resp, nil
}

// ReplaceLanguages swaps the caller's language list wholesale.
func (s *ProfileService) ReplaceLanguages(ctx context.Context, session *models.Session, req dto.ReplaceLanguagesRequest) ([]models.VolunteerLanguage, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid languages payload")
	}
	languages := toLanguages(session.ProfileID, req.Languages)
	if err := s.repo.ReplaceLanguages(ctx, session.ProfileID, languages); err != nil {
		return nil, internalError(err, "failed to replace languages")
	}
	return languages, nil
}

// UploadAvatar stores a new avatar and records its URL on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, session *models.Session, upload Upload) (string, error) {
	if err := requireProfile(session); err != nil {
		return "", err
	}
	url, err := s.media.StoreAvatar(ctx, session.ProfileID, upload)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateAvatar(ctx, session.ProfileID, url); err != nil {
		return "", notFoundOr(err, "profile not found", "failed to save avatar")
	}
	return url, nil
}
