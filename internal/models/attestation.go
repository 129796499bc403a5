package models

import "time"

// AttestationType enumerates document kinds a volunteer may request.
type AttestationType string

const (
	AttestationVolunteering   AttestationType = "volunteering"
	AttestationTraining       AttestationType = "training"
	AttestationRecommendation AttestationType = "recommendation"
)

// AttestationStatus tracks processing of a request.
type AttestationStatus string

const (
	AttestationPending  AttestationStatus = "pending"
	AttestationApproved AttestationStatus = "approved"
	AttestationRejected AttestationStatus = "rejected"
)

// AttestationRequest is a volunteer's request for a certificate or letter.
type AttestationRequest struct {
	ID            string            `db:"id" json:"id"`
	VolunteerID   string            `db:"volunteer_id" json:"volunteerId"`
	TrainingID    *string           `db:"training_id" json:"trainingId,omitempty"`
	RequestType   AttestationType   `db:"request_type" json:"requestType"`
	Details       *string           `db:"details" json:"details,omitempty"`
	FileURL       *string           `db:"file_url" json:"fileUrl,omitempty"`
	Status        AttestationStatus `db:"status" json:"status"`
	ProcessedBy   *string           `db:"processed_by" json:"processedBy,omitempty"`
	ProcessedAt   *time.Time        `db:"processed_at" json:"processedAt,omitempty"`
	ResponseNotes *string           `db:"response_notes" json:"responseNotes,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`

	VolunteerName  *string `db:"volunteer_name" json:"volunteerName,omitempty"`
	VolunteerEmail *string `db:"volunteer_email" json:"volunteerEmail,omitempty"`
}

// Certificate is an issued document attached to a volunteer.
type Certificate struct {
	ID              string    `db:"id" json:"id"`
	VolunteerID     string    `db:"volunteer_id" json:"volunteerId"`
	TrainingID      *string   `db:"training_id" json:"trainingId,omitempty"`
	CertificateType string    `db:"certificate_type" json:"certificateType"`
	Title           string    `db:"title" json:"title"`
	Description     *string   `db:"description" json:"description,omitempty"`
	FileURL         *string   `db:"file_url" json:"fileUrl,omitempty"`
	IssuedBy        *string   `db:"issued_by" json:"issuedBy,omitempty"`
	IssuedDate      Date      `db:"issued_date" json:"issuedDate"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
