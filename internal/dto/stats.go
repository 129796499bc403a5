package dto

import "time"

// ExportResponse points at a generated export file.
type ExportResponse struct {
	Filename    string    `json:"filename"`
	Format      string    `json:"format"`
	Rows        int       `json:"rows"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
