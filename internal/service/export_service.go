package service

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/export"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	DownloadPath string
	ResultTTL    time.Duration
}

// ExportResult captures a stored export and its signed link.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService renders datasets and persists the files behind signed links.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	xlsx    xlsxRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers use the pkg/export defaults.
func NewExportService(files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/exports/download"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{
		storage: files,
		csv:     csv,
		pdf:     pdf,
		xlsx:    xlsx,
		signer:  signer,
		logger:  newLogger(logger),
		cfg:     cfg,
	}
}

// Render produces the file content in the requested format.
func (s *ExportService) Render(data export.Dataset, format models.ExportFormat, title string) ([]byte, error) {
	switch format {
	case models.ExportFormatCSV:
		return s.csv.Render(data)
	case models.ExportFormatPDF:
		return s.pdf.Render(data, title)
	case models.ExportFormatXLSX:
		return s.xlsx.Render(data, title)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// Store saves the payload and signs a download token bound to exportID.
func (s *ExportService) Store(exportID, filename string, payload []byte) (*ExportResult, error) {
	relPath, err := s.storage.Save(exportID+"/"+filename, payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s?token=%s", s.cfg.DownloadPath, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.DownloadClaims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// TTL is how long a stored export stays downloadable.
func (s *ExportService) TTL() time.Duration {
	return s.cfg.ResultTTL
}

// Volunteer roster columns.
var volunteerHeaders = []string{"Nom complet", "Email", "Téléphone", "Gouvernorat", "Ville", "Statut", "Heures", "Date d'inscription"}

// Per-event sheet columns.
var eventVolunteerHeaders = []string{"Nom complet", "Email", "Téléphone", "Gouvernorat", "Ville", "Statut", "Date d'inscription"}

func volunteerDataset(profiles []models.Profile) export.Dataset {
	rows := make([]map[string]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, map[string]string{
			"Nom complet":        p.FullName,
			"Email":              p.Email,
			"Téléphone":          deref(p.Phone),
			"Gouvernorat":        deref(p.Governorate),
			"Ville":              deref(p.City),
			"Statut":             profileStatusLabel(p.CurrentStatus()),
			"Heures":             fmt.Sprintf("%.1f", p.HoursVolunteered),
			"Date d'inscription": formatExportDay(p.CreatedAt),
		})
	}
	return export.Dataset{Headers: volunteerHeaders, Rows: rows}
}

// eventVolunteerDataset drops registrations whose profile no longer exists.
func eventVolunteerDataset(details []models.AssignmentDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		if !d.HasVolunteer() {
			continue
		}
		rows = append(rows, map[string]string{
			"Nom complet":        deref(d.VolunteerName),
			"Email":              deref(d.VolunteerEmail),
			"Téléphone":          deref(d.VolunteerPhone),
			"Gouvernorat":        deref(d.Governorate),
			"Ville":              deref(d.City),
			"Statut":             assignmentStatusLabel(d.Status),
			"Date d'inscription": formatExportDay(d.CreatedAt),
		})
	}
	return export.Dataset{Headers: eventVolunteerHeaders, Rows: rows}
}

func profileStatusLabel(status models.ProfileStatus) string {
	switch status {
	case models.ProfileStatusPending:
		return "En attente"
	case models.ProfileStatusActive:
		return "Actif"
	case models.ProfileStatusRejected:
		return "Rejeté"
	default:
		return "Incomplet"
	}
}

func assignmentStatusLabel(status models.EventStatus) string {
	switch status {
	case models.EventStatusPending:
		return "En attente"
	case models.EventStatusInProgress:
		return "Confirmé"
	case models.EventStatusCompleted:
		return "Terminé"
	default:
		return "Annulé"
	}
}

func exportFilename(prefix string, format models.ExportFormat, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeFilename(prefix), at.UTC().Format("20060102_150405"), format)
}

func sanitizeFilename(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	result := b.String()
	if result == "" {
		return "export"
	}
	if len(result) > 60 {
		return result[:60]
	}
	return result
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatExportDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("02/01/2006")
}
