package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const profileColumns = `id, user_id, full_name, email, phone, phone_secondary, gender, date_of_birth,
address_line1, address_line2, city, governorate, postal_code, education_level, profession, organization, position,
is_student, is_affiliated, affiliation_details, is_community_member, other_org_details, skills, other_skills, interests,
availability_days, availability_hours, other_volunteering, iwatch_experience, iwatch_role, iwatch_years, iwatch_events,
referral_source, onboarding_notes, preferred_contact, bio, avatar_url, consent_terms, consent_data_usage, status,
rejection_reason, hours_volunteered, submitted_at, reviewed_by, reviewed_at, created_at, updated_at`

// ProfileRepository persists volunteer profiles and their languages.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns a profile by its key.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// FindByUserID returns the profile owned by a user.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by user: %w", err)
	}
	return &profile, nil
}

// List returns volunteer profiles matching the filter with the total count.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	baseQuery := `FROM profiles p JOIN user_roles ur ON ur.user_id = p.user_id AND ur.role = 'volunteer' WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		if *filter.Status == models.ProfileStatusIncomplete {
			conditions = append(conditions, "p.status IS NULL")
		} else {
			conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
			args = append(args, string(*filter.Status))
		}
	}
	if filter.Governorate != "" {
		conditions = append(conditions, fmt.Sprintf("p.governorate = $%d", len(args)+1))
		args = append(args, filter.Governorate)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.email) LIKE $%d OR LOWER(p.full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at":        true,
		"full_name":         true,
		"submitted_at":      true,
		"hours_volunteered": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY p.%s %s LIMIT %d OFFSET %d", prefixColumns("p", profileColumns), baseQuery, sortBy, sortOrder, pageSize, offset)
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return profiles, total, nil
}

// ListForExport returns every volunteer profile ordered by name.
func (r *ProfileRepository) ListForExport(ctx context.Context) ([]models.Profile, error) {
	query := `SELECT ` + prefixColumns("p", profileColumns) + ` FROM profiles p JOIN user_roles ur ON ur.user_id = p.user_id AND ur.role = 'volunteer' ORDER BY p.full_name ASC`
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list profiles for export: %w", err)
	}
	return profiles, nil
}

// ListPending returns profiles awaiting review, oldest submission first.
func (r *ProfileRepository) ListPending(ctx context.Context) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE status = 'pending' ORDER BY submitted_at ASC NULLS LAST, created_at ASC`
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list pending profiles: %w", err)
	}
	return profiles, nil
}

// SubmitOnboarding stores the onboarding fields, moves the profile to pending and
// replaces its languages atomically. Active profiles are left untouched and
// sql.ErrNoRows is returned.
func (r *ProfileRepository) SubmitOnboarding(ctx context.Context, profile *models.Profile, languages []models.VolunteerLanguage) (err error) {
	now := time.Now().UTC()
	pending := models.ProfileStatusPending
	profile.Status = &pending
	profile.RejectionReason = nil
	profile.SubmittedAt = &now
	profile.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin onboarding tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE profiles SET
full_name = :full_name, email = :email, phone = :phone, phone_secondary = :phone_secondary, gender = :gender,
date_of_birth = :date_of_birth, address_line1 = :address_line1, address_line2 = :address_line2, city = :city,
governorate = :governorate, postal_code = :postal_code, education_level = :education_level, profession = :profession,
organization = :organization, position = :position, is_student = :is_student, is_affiliated = :is_affiliated,
affiliation_details = :affiliation_details, is_community_member = :is_community_member, other_org_details = :other_org_details,
skills = :skills, other_skills = :other_skills, interests = :interests, availability_days = :availability_days,
availability_hours = :availability_hours, other_volunteering = :other_volunteering, iwatch_experience = :iwatch_experience,
iwatch_role = :iwatch_role, iwatch_years = :iwatch_years, iwatch_events = :iwatch_events, referral_source = :referral_source,
onboarding_notes = :onboarding_notes, preferred_contact = :preferred_contact, consent_terms = :consent_terms,
consent_data_usage = :consent_data_usage, status = :status, rejection_reason = NULL, submitted_at = :submitted_at,
updated_at = :updated_at
WHERE id = :id AND (status IS NULL OR status IN ('pending', 'rejected'))`
	res, err := tx.NamedExecContext(ctx, update, profile)
	if err != nil {
		return fmt.Errorf("submit onboarding: %w", err)
	}
	if err = expectAffected(res); err != nil {
		return err
	}
	if err = replaceLanguagesTx(ctx, tx, profile.ID, languages); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit onboarding tx: %w", err)
	}
	return nil
}

// TransitionStatus moves a profile from one status to another only if it is
// still in the expected state. It returns sql.ErrNoRows when nothing matched.
func (r *ProfileRepository) TransitionStatus(ctx context.Context, id string, from, to models.ProfileStatus, reason *string, reviewerID string, at time.Time) error {
	const query = `UPDATE profiles SET status = $3, rejection_reason = $4, reviewed_by = $5, reviewed_at = $6, updated_at = $6 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), reason, reviewerID, at)
	if err != nil {
		return fmt.Errorf("transition profile status: %w", err)
	}
	return expectAffected(res)
}

// UpdateContact stores editable contact and presentation fields.
func (r *ProfileRepository) UpdateContact(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET full_name = :full_name, phone = :phone, phone_secondary = :phone_secondary, city = :city,
governorate = :governorate, address_line1 = :address_line1, bio = :bio, skills = :skills, interests = :interests, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update profile contact: %w", err)
	}
	return expectAffected(res)
}

// UpdateAvatar sets the avatar URL.
func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	const query = `UPDATE profiles SET avatar_url = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	return expectAffected(res)
}

// ListLanguages returns the languages attached to a profile.
func (r *ProfileRepository) ListLanguages(ctx context.Context, profileID string) ([]models.VolunteerLanguage, error) {
	const query = `SELECT id, volunteer_id, language, level, created_at FROM volunteer_languages WHERE volunteer_id = $1 ORDER BY created_at, language`
	var langs []models.VolunteerLanguage
	if err := r.db.SelectContext(ctx, &langs, query, profileID); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return langs, nil
}

// ReplaceLanguages deletes every language of the profile and inserts the given set.
func (r *ProfileRepository) ReplaceLanguages(ctx context.Context, profileID string, languages []models.VolunteerLanguage) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin languages tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = replaceLanguagesTx(ctx, tx, profileID, languages); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit languages tx: %w", err)
	}
	return nil
}

func replaceLanguagesTx(ctx context.Context, tx *sqlx.Tx, profileID string, languages []models.VolunteerLanguage) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM volunteer_languages WHERE volunteer_id = $1`, profileID); err != nil {
		return fmt.Errorf("delete languages: %w", err)
	}
	const insert = `INSERT INTO volunteer_languages (id, volunteer_id, language, level, created_at) VALUES (:id, :volunteer_id, :language, :level, :created_at)`
	now := time.Now().UTC()
	for i := range languages {
		lang := &languages[i]
		if lang.ID == "" {
			lang.ID = uuid.NewString()
		}
		lang.VolunteerID = profileID
		lang.CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, lang); err != nil {
			return fmt.Errorf("insert language: %w", err)
		}
	}
	return nil
}
