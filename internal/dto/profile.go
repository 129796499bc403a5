package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// LanguageInput is one spoken language with its proficiency.
type LanguageInput struct {
	Language string `json:"language" validate:"required,max=60"`
	Level    string `json:"level" validate:"required,langlevel"`
}

// OnboardingRequest is the complete volunteer registration form.
type OnboardingRequest struct {
	FirstName          string          `json:"firstName" validate:"required,max=100"`
	LastName           string          `json:"lastName" validate:"required,max=100"`
	Gender             string          `json:"gender" validate:"required,oneof=homme femme autre"`
	DateOfBirth        string          `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	IsStudent          bool            `json:"isStudent"`
	EducationLevel     string          `json:"educationLevel" validate:"max=120"`
	Organization       string          `json:"organization" validate:"max=200"`
	Position           string          `json:"position" validate:"max=120"`
	Profession         string          `json:"profession" validate:"max=120"`
	IsAffiliated       bool            `json:"isAffiliated"`
	AffiliationDetails string          `json:"affiliationDetails" validate:"max=500"`
	Governorate        string          `json:"governorate" validate:"required,max=80"`
	City               string          `json:"city" validate:"required,max=80"`
	AddressLine1       string          `json:"addressLine1" validate:"max=200"`
	AddressLine2       string          `json:"addressLine2" validate:"max=200"`
	PostalCode         string          `json:"postalCode" validate:"max=20"`
	Email              string          `json:"email" validate:"omitempty,email"`
	PhoneMain          string          `json:"phoneMain" validate:"required,max=30"`
	PhoneSecondary     string          `json:"phoneSecondary" validate:"max=30"`
	PreferredContact   []string        `json:"preferredContact" validate:"omitempty,dive,oneof=email phone whatsapp"`
	Skills             string          `json:"skills" validate:"max=1000"`
	OtherSkills        string          `json:"otherSkills" validate:"max=500"`
	Interests          string          `json:"interests" validate:"max=1000"`
	AvailabilityDays   []string        `json:"availabilityDays" validate:"omitempty,dive,weekday"`
	AvailabilityHours  []string        `json:"availabilityHours" validate:"omitempty,dive,timeslot"`
	Languages          []LanguageInput `json:"languages" validate:"omitempty,max=20,dive"`
	IwatchExperience   bool            `json:"iwatchExperience"`
	IwatchEvents       string          `json:"iwatchEvents" validate:"max=500"`
	IwatchYears        string          `json:"iwatchYears" validate:"max=20"`
	IwatchRole         string          `json:"iwatchRole" validate:"max=120"`
	OtherVolunteering  bool            `json:"otherVolunteering"`
	OtherOrgDetails    string          `json:"otherOrgDetails" validate:"max=500"`
	IsCommunityMember  bool            `json:"isCommunityMember"`
	ReferralSource     string          `json:"referralSource" validate:"max=200"`
	OnboardingNotes    string          `json:"onboardingQuestions" validate:"max=2000"`
	ConsentTerms       bool            `json:"consentTerms"`
	ConsentDataUsage   bool            `json:"consentDataUsage"`
}

// ProfileUpdateRequest edits contact details of an existing profile.
type ProfileUpdateRequest struct {
	FullName       *string  `json:"fullName" validate:"omitempty,min=1,max=200"`
	Phone          *string  `json:"phone" validate:"omitempty,max=30"`
	PhoneSecondary *string  `json:"phoneSecondary" validate:"omitempty,max=30"`
	City           *string  `json:"city" validate:"omitempty,max=80"`
	Governorate    *string  `json:"governorate" validate:"omitempty,max=80"`
	AddressLine1   *string  `json:"addressLine1" validate:"omitempty,max=200"`
	Bio            *string  `json:"bio" validate:"omitempty,max=2000"`
	Skills         []string `json:"skills" validate:"omitempty,max=50,dive,max=80"`
	Interests      []string `json:"interests" validate:"omitempty,max=50,dive,max=80"`
}

// ReplaceLanguagesRequest replaces all languages of the caller.
type ReplaceLanguagesRequest struct {
	Languages []LanguageInput `json:"languages" validate:"max=20,dive"`
}

// ProfileListQuery captures admin listing parameters.
type ProfileListQuery struct {
	Status      string `form:"status"`
	Search      string `form:"search"`
	Governorate string `form:"governorate"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// RejectProfileRequest carries the mandatory rejection reason.
type RejectProfileRequest struct {
	Reason string `json:"reason"`
}

// ProfileStatusResponse answers the check-status action.
type ProfileStatusResponse struct {
	Status          string          `json:"status"`
	NextStep        models.NextStep `json:"nextStep"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	ProfileComplete bool            `json:"profileComplete"`
}
