package service

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	svc := NewExportService(files, signer, ExportConfig{ResultTTL: time.Hour}, nil, nil, nil, nil)
	return svc, files
}

func TestExportServiceStoreSignsDownloadLink(t *testing.T) {
	svc, files := newExportServiceForTest(t)

	result, err := svc.Store("exp-1", "benevoles.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "exp-1/benevoles.csv", result.RelativePath)
	assert.True(t, strings.HasPrefix(result.URL, "/exports/download?token="))

	claims, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", claims.ExportID)
	assert.Equal(t, "exp-1/benevoles.csv", claims.Name)

	path, err := files.Path(result.RelativePath)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(raw))
}

func TestExportServiceRenderFormats(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	data := volunteerDataset([]models.Profile{{FullName: "Amel Ben Salah", Email: "amel@example.org", Status: statusPtr(models.ProfileStatusActive)}})

	for _, format := range []models.ExportFormat{models.ExportFormatCSV, models.ExportFormatPDF, models.ExportFormatXLSX} {
		payload, err := svc.Render(data, format, "Bénévoles")
		require.NoError(t, err, format)
		assert.NotEmpty(t, payload, format)
	}

	_, err := svc.Render(data, models.ExportFormat("docx"), "x")
	require.Error(t, err)
}

func TestEventVolunteerDatasetDropsMissingProfiles(t *testing.T) {
	details := []models.AssignmentDetail{
		{Assignment: models.Assignment{ID: "a1", Status: models.EventStatusInProgress}, VolunteerName: strPtr("Sami"), VolunteerEmail: strPtr("sami@example.org")},
		{Assignment: models.Assignment{ID: "a2", Status: models.EventStatusPending}},
	}

	data := eventVolunteerDataset(details)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Sami", data.Rows[0]["Nom complet"])
	assert.Equal(t, "Confirmé", data.Rows[0]["Statut"])
	assert.NotContains(t, data.Headers, "Heures")
}

func TestExportFilenameIsSanitized(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "benevoles_nettoyage_de_plage_20260304_103000.xlsx", exportFilename("benevoles_Nettoyage de plage", models.ExportFormatXLSX, at))
	assert.Equal(t, "export_20260304_103000.csv", exportFilename("***", models.ExportFormatCSV, at))
}
