package dto

// SendMessageRequest posts a message. A missing recipient addresses the administrators.
type SendMessageRequest struct {
	RecipientID *string `json:"recipientId" validate:"omitempty,uuid"`
	Subject     string  `json:"subject" validate:"required,max=200"`
	Content     string  `json:"content" validate:"required,max=10000"`
	ParentID    *string `json:"parentId" validate:"omitempty,uuid"`
}

// UnreadCountResponse reports unread inbox messages.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// AttestationCreateRequest asks for a document.
type AttestationCreateRequest struct {
	RequestType string  `json:"requestType" validate:"required,oneof=volunteering training recommendation"`
	Details     string  `json:"details" validate:"max=2000"`
	TrainingID  *string `json:"trainingId" validate:"omitempty,uuid"`
}

// AttestationProcessRequest records the admin decision.
type AttestationProcessRequest struct {
	Status        string `json:"status" validate:"required,oneof=approved rejected"`
	ResponseNotes string `json:"responseNotes" validate:"max=2000"`
	FileURL       string `json:"fileUrl" validate:"omitempty,url"`
}

// IssueCertificateRequest attaches a certificate to a volunteer.
type IssueCertificateRequest struct {
	VolunteerID     string  `json:"volunteerId" validate:"required,uuid"`
	TrainingID      *string `json:"trainingId" validate:"omitempty,uuid"`
	CertificateType string  `json:"certificateType" validate:"required,max=80"`
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description" validate:"max=2000"`
	FileURL         string  `json:"fileUrl" validate:"omitempty,url"`
}
