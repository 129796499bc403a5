package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/export"
)

type statsStore interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
	VolunteerStats(ctx context.Context, profileID string) (*models.VolunteerStats, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type exportProfileSource interface {
	ListForExport(ctx context.Context) ([]models.Profile, error)
}

type exportRegistrationSource interface {
	ListByEvent(ctx context.Context, eventID string) ([]models.AssignmentDetail, error)
}

type exportEventSource interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type exportStore interface {
	Create(ctx context.Context, record *models.ExportRecord) error
	GetByID(ctx context.Context, id string) (*models.ExportRecord, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportRecord, error)
	Delete(ctx context.Context, id string) error
}

// ReportServiceConfig governs stats caching and export cleanup.
type ReportServiceConfig struct {
	StatsTTL        time.Duration
	CleanupInterval time.Duration
}

// GeneratedExport is a freshly rendered export with its stored location.
type GeneratedExport struct {
	Record      models.ExportRecord
	Payload     []byte
	DownloadURL string
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ReportService serves dashboard counters and volunteer exports.
type ReportService struct {
	stats         statsStore
	cache         statsCache
	profiles      exportProfileSource
	registrations exportRegistrationSource
	events        exportEventSource
	exports       exportStore
	exporter      *ExportService
	logger        *zap.Logger
	cfg           ReportServiceConfig
	now           func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(stats statsStore, cache statsCache, profiles exportProfileSource, registrations exportRegistrationSource, events exportEventSource, exports exportStore, exporter *ExportService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = 5 * time.Minute
	}
	return &ReportService{
		stats:         stats,
		cache:         cache,
		profiles:      profiles,
		registrations: registrations,
		events:        events,
		exports:       exports,
		exporter:      exporter,
		logger:        newLogger(logger),
		cfg:           cfg,
		now:           time.Now,
	}
}

// AdminStats returns platform counters, reporting whether they came from the cache.
func (s *ReportService) AdminStats(ctx context.Context, session *models.Session) (*models.AdminStats, bool, error) {
	if err := requireAdmin(session); err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		var cached models.AdminStats
		hit, err := s.cache.Get(ctx, CacheKeyAdminStats, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}
	stats, err := s.stats.AdminStats(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to compute statistics")
	}
	stats.GeneratedAt = s.now().UTC()
	if s.cache != nil {
		_ = s.cache.Set(ctx, CacheKeyAdminStats, stats, s.cfg.StatsTTL)
	}
	return stats, false, nil
}

// VolunteerStats returns the caller's personal counters.
func (s *ReportService) VolunteerStats(ctx context.Context, session *models.Session) (*models.VolunteerStats, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	stats, err := s.stats.VolunteerStats(ctx, session.ProfileID)
	if err != nil {
		return nil, internalError(err, "failed to compute statistics")
	}
	return stats, nil
}

// ExportVolunteers renders every volunteer as CSV or PDF.
func (s *ReportService) ExportVolunteers(ctx context.Context, session *models.Session, format string) (*GeneratedExport, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	f, err := parseExportFormat(format, models.ExportFormatCSV, models.ExportFormatCSV, models.ExportFormatPDF)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListForExport(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load volunteers")
	}
	return s.generate(ctx, session, models.ExportKindVolunteers, f, volunteerDataset(profiles), "Liste des bénévoles", "benevoles")
}

// ExportEventVolunteers renders the volunteers registered to an event as XLSX or CSV.
func (s *ReportService) ExportEventVolunteers(ctx context.Context, session *models.Session, eventID, format string) (*GeneratedExport, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	f, err := parseExportFormat(format, models.ExportFormatXLSX, models.ExportFormatXLSX, models.ExportFormatCSV)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to load event")
	}
	details, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to load registrations")
	}
	return s.generate(ctx, session, models.ExportKindEventVolunteers, f, eventVolunteerDataset(details), event.Title, "benevoles_"+event.Title)
}

func parseExportFormat(raw string, fallback models.ExportFormat, allowed ...models.ExportFormat) (models.ExportFormat, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback, nil
	}
	for _, f := range allowed {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

func (s *ReportService) generate(ctx context.Context, session *models.Session, kind models.ExportKind, format models.ExportFormat, data export.Dataset, title, prefix string) (*GeneratedExport, error) {
	payload, err := s.exporter.Render(data, format, title)
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}
	now := s.now()
	record := models.ExportRecord{
		Kind:      kind,
		Format:    format,
		FileName:  exportFilename(prefix, format, now),
		RowCount:  len(data.Rows),
		CreatedBy: session.UserID,
		CreatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(s.exporter.TTL()),
	}
	if err := s.exports.Create(ctx, &record); err != nil {
		return nil, internalError(err, "failed to record export")
	}
	result, err := s.exporter.Store(record.ID, record.FileName, payload)
	if err != nil {
		return nil, internalError(err, "failed to store export")
	}
	record.ExpiresAt = result.ExpiresAt
	s.logger.Info("export generated",
		zap.String("export_id", record.ID),
		zap.String("kind", string(kind)),
		zap.String("format", string(format)),
		zap.Int("rows", record.RowCount),
	)
	return &GeneratedExport{Record: record, Payload: payload, DownloadURL: result.URL}, nil
}

// ResolveDownload validates a signed token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	claims, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	record, err := s.exports.GetByID(ctx, claims.ExportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, internalError(err, "failed to load export")
	}
	if filepath.Base(claims.Name) != record.FileName {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.exporter.Open(claims.Name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return &ReportDownload{
		File:        file,
		Filename:    record.FileName,
		ContentType: record.Format.ContentType(),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupExpired(ctx context.Context) {
	const batch = 100
	for {
		records, err := s.exports.ListExpired(ctx, s.now().UTC(), batch)
		if err != nil {
			s.logger.Warn("export cleanup list failed", zap.Error(err))
			return
		}
		for _, record := range records {
			if err := s.exporter.Delete(record.ID + "/" + record.FileName); err != nil {
				s.logger.Warn("export cleanup delete failed", zap.String("export_id", record.ID), zap.Error(err))
				return
			}
			if err := s.exports.Delete(ctx, record.ID); err != nil {
				s.logger.Warn("export cleanup row delete failed", zap.String("export_id", record.ID), zap.Error(err))
				return
			}
		}
		if len(records) < batch {
			break
		}
	}
	if _, err := s.exporter.Cleanup(0); err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
}
