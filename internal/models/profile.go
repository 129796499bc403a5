package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// ProfileStatus is the approval state of a volunteer profile. The empty value means onboarding is incomplete.
type ProfileStatus string

const (
	ProfileStatusIncomplete ProfileStatus = ""
	ProfileStatusPending    ProfileStatus = "pending"
	ProfileStatusActive     ProfileStatus = "active"
	ProfileStatusRejected   ProfileStatus = "rejected"
)

// NextStep tells a client where the profile owner should be routed.
type NextStep string

const (
	NextStepOnboarding       NextStep = "onboarding"
	NextStepAwaitingApproval NextStep = "awaiting_approval"
	NextStepRejected         NextStep = "rejected"
	NextStepReady            NextStep = "ready"
)

// Profile is the extended registration record of a user.
type Profile struct {
	ID                 string         `db:"id" json:"id"`
	UserID             string         `db:"user_id" json:"userId"`
	FullName           string         `db:"full_name" json:"fullName"`
	Email              string         `db:"email" json:"email"`
	Phone              *string        `db:"phone" json:"phone,omitempty"`
	PhoneSecondary     *string        `db:"phone_secondary" json:"phoneSecondary,omitempty"`
	Gender             *string        `db:"gender" json:"gender,omitempty"`
	DateOfBirth        *Date          `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	AddressLine1       *string        `db:"address_line1" json:"addressLine1,omitempty"`
	AddressLine2       *string        `db:"address_line2" json:"addressLine2,omitempty"`
	City               *string        `db:"city" json:"city,omitempty"`
	Governorate        *string        `db:"governorate" json:"governorate,omitempty"`
	PostalCode         *string        `db:"postal_code" json:"postalCode,omitempty"`
	EducationLevel     *string        `db:"education_level" json:"educationLevel,omitempty"`
	Profession         *string        `db:"profession" json:"profession,omitempty"`
	Organization       *string        `db:"organization" json:"organization,omitempty"`
	Position           *string        `db:"position" json:"position,omitempty"`
	IsStudent          bool           `db:"is_student" json:"isStudent"`
	IsAffiliated       bool           `db:"is_affiliated" json:"isAffiliated"`
	AffiliationDetails *string        `db:"affiliation_details" json:"affiliationDetails,omitempty"`
	IsCommunityMember  bool           `db:"is_community_member" json:"isCommunityMember"`
	OtherOrgDetails    *string        `db:"other_org_details" json:"otherOrgDetails,omitempty"`
	Skills             pq.StringArray `db:"skills" json:"skills"`
	OtherSkills        *string        `db:"other_skills" json:"otherSkills,omitempty"`
	Interests          pq.StringArray `db:"interests" json:"interests"`
	AvailabilityDays   pq.StringArray `db:"availability_days" json:"availabilityDays"`
	AvailabilityHours  pq.StringArray `db:"availability_hours" json:"availabilityHours"`
	OtherVolunteering  bool           `db:"other_volunteering" json:"otherVolunteering"`
	IwatchExperience   bool           `db:"iwatch_experience" json:"iwatchExperience"`
	IwatchRole         *string        `db:"iwatch_role" json:"iwatchRole,omitempty"`
	IwatchYears        *string        `db:"iwatch_years" json:"iwatchYears,omitempty"`
	IwatchEvents       *string        `db:"iwatch_events" json:"iwatchEvents,omitempty"`
	ReferralSource     *string        `db:"referral_source" json:"referralSource,omitempty"`
	OnboardingNotes    *string        `db:"onboarding_notes" json:"onboardingNotes,omitempty"`
	PreferredContact   *string        `db:"preferred_contact" json:"preferredContact,omitempty"`
	Bio                *string        `db:"bio" json:"bio,omitempty"`
	AvatarURL          *string        `db:"avatar_url" json:"avatarUrl,omitempty"`
	ConsentTerms       bool           `db:"consent_terms" json:"consentTerms"`
	ConsentDataUsage   bool           `db:"consent_data_usage" json:"consentDataUsage"`
	Status             *ProfileStatus `db:"status" json:"status,omitempty"`
	RejectionReason    *string        `db:"rejection_reason" json:"rejectionReason,omitempty"`
	HoursVolunteered   float64        `db:"hours_volunteered" json:"hoursVolunteered"`
	SubmittedAt        *time.Time     `db:"submitted_at" json:"submittedAt,omitempty"`
	ReviewedBy         *string        `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time     `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`

	Languages []VolunteerLanguage `db:"-" json:"languages,omitempty"`
}

// CurrentStatus returns the workflow status, treating NULL as incomplete.
func (p *Profile) CurrentStatus() ProfileStatus {
	if p == nil || p.Status == nil {
		return ProfileStatusIncomplete
	}
	return *p.Status
}

// IsComplete reports whether the mandatory onboarding fields are filled in.
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	return nonBlank(p.Gender) && p.DateOfBirth != nil && !p.DateOfBirth.IsZero() &&
		nonBlank(p.Governorate) && nonBlank(p.City) && nonBlank(p.Phone)
}

// NextStep derives the routing decision for the profile owner.
func (p *Profile) NextStep() NextStep {
	if !p.IsComplete() || p.CurrentStatus() == ProfileStatusIncomplete {
		return NextStepOnboarding
	}
	switch p.CurrentStatus() {
	case ProfileStatusPending:
		return NextStepAwaitingApproval
	case ProfileStatusRejected:
		return NextStepRejected
	default:
		return NextStepReady
	}
}

func nonBlank(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// LanguageLevel enumerates accepted proficiency levels.
type LanguageLevel string

const (
	LanguageLevelBeginner     LanguageLevel = "Débutant"
	LanguageLevelIntermediate LanguageLevel = "Intermédiaire"
	LanguageLevelAdvanced     LanguageLevel = "Avancé"
	LanguageLevelNative       LanguageLevel = "Langue maternelle"
)

// Valid reports whether the level is one of the accepted values.
func (l LanguageLevel) Valid() bool {
	switch l {
	case LanguageLevelBeginner, LanguageLevelIntermediate, LanguageLevelAdvanced, LanguageLevelNative:
		return true
	}
	return false
}

// VolunteerLanguage is a spoken language entry attached to a profile.
type VolunteerLanguage struct {
	ID          string    `db:"id" json:"id"`
	VolunteerID string    `db:"volunteer_id" json:"volunteerId"`
	Language    string    `db:"language" json:"language"`
	Level       string    `db:"level" json:"level"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ProfileFilter constrains admin volunteer listings.
type ProfileFilter struct {
	Status      *ProfileStatus
	Search      string
	Governorate string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ProfileContact is the minimal projection used to address notifications.
type ProfileContact struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"fullName"`
	Email    string `db:"email" json:"email"`
}

// Weekdays are the accepted availability day tokens.
var Weekdays = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// TimeSlots are the accepted availability hour tokens.
var TimeSlots = []string{"8h-10h", "10h-12h", "12h-14h", "14h-16h", "16h-18h", "18h-20h", "20h-22h"}
