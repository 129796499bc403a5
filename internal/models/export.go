package models

import "time"

// ExportKind names the datasets an administrator may export.
type ExportKind string

const (
	ExportKindVolunteers      ExportKind = "volunteers"
	ExportKindEventVolunteers ExportKind = "event_volunteers"
)

// ExportFormat enumerates the rendered file formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatPDF:
		return "application/pdf"
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ExportRecord tracks a generated export file until it expires.
type ExportRecord struct {
	ID        string       `db:"id" json:"id"`
	Kind      ExportKind   `db:"kind" json:"kind"`
	Format    ExportFormat `db:"format" json:"format"`
	FileName  string       `db:"file_name" json:"fileName"`
	RowCount  int          `db:"row_count" json:"rowCount"`
	CreatedBy string       `db:"created_by" json:"createdBy"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	ExpiresAt time.Time    `db:"expires_at" json:"expiresAt"`
}
