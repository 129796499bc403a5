package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// SignUpRequest registers a volunteer account. It deliberately has no role field.
type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FullName  string `json:"fullName" validate:"required,max=200"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AdminRegisterRequest registers an administrator gated by the shared code.
type AdminRegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FullName  string `json:"fullName" validate:"required,max=200"`
	AdminCode string `json:"adminCode" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SessionResponse describes the caller for GET /auth/me.
type SessionResponse struct {
	User            models.UserInfo `json:"user"`
	Role            models.UserRole `json:"role"`
	Profile         *models.Profile `json:"profile,omitempty"`
	Status          string          `json:"status"`
	ProfileComplete bool            `json:"profileComplete"`
	NextStep        models.NextStep `json:"nextStep"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
}
