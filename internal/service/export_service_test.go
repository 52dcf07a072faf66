package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
	"github.com/appforge-labs/devopshub/pkg/storage"
)

var exportHeader = []string{"ID", "Title"}

func newExportService(t *testing.T, files *fakeFileStorage) *ExportService {
	t.Helper()
	svc := NewExportService(ExportServiceParams{
		Requests: &fakeRequestExporter{fakeExporter{
			header: exportHeader,
			rows:   [][]string{{"REQ-001", "Monthly GL extract"}, {"REQ-002", "Teller audit script"}},
		}},
		Errors:   &fakeErrorExporter{fakeExporter{header: exportHeader}},
		Projects: &fakeProjectExporter{fakeExporter{header: exportHeader}},
		Storage:  files,
		Signer:   storage.NewSignedURLSigner("test_secret", time.Hour),
		Config:   ExportConfig{APIPrefix: "/api/v1"},
	})
	return svc
}

func waitForJob(t *testing.T, svc *ExportService, id string) dto.ExportJobView {
	t.Helper()
	var view dto.ExportJobView
	require.Eventually(t, func() bool {
		got, err := svc.Job(context.Background(), id)
		if err != nil {
			return false
		}
		view = *got
		return view.Status == string(models.ExportStatusCompleted) ||
			view.Status == string(models.ExportStatusFailed)
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func TestExportServiceCSVJobLifecycle(t *testing.T) {
	files := newFakeFileStorage()
	svc := newExportService(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	created, err := svc.Create(ctx, dto.CreateExportInput{Entity: "requests", Format: "csv"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "requests", created.Entity)
	assert.Equal(t, "csv", created.Format)

	done := waitForJob(t, svc, created.ID)
	assert.Equal(t, string(models.ExportStatusCompleted), done.Status)
	assert.Contains(t, done.DownloadURL, "/api/v1/export/")
	assert.NotEmpty(t, done.ExpiresAt)

	// Exactly one file was rendered, in the persisted column layout.
	require.Len(t, files.saved, 1)
	for name, payload := range files.saved {
		assert.Contains(t, name, "requests_")
		assert.Contains(t, name, ".csv")
		assert.Equal(t, "ID,Title\nREQ-001,Monthly GL extract\nREQ-002,Teller audit script\n", string(payload))
	}
}

func TestExportServicePDFJob(t *testing.T) {
	files := newFakeFileStorage()
	svc := newExportService(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	created, err := svc.Create(ctx, dto.CreateExportInput{Entity: "errors", Format: "pdf"})
	require.NoError(t, err)

	done := waitForJob(t, svc, created.ID)
	assert.Equal(t, string(models.ExportStatusCompleted), done.Status)
	require.Len(t, files.saved, 1)
	for name, payload := range files.saved {
		assert.Contains(t, name, ".pdf")
		assert.NotEmpty(t, payload)
	}
}

func TestExportServiceCreateValidation(t *testing.T) {
	svc := newExportService(t, newFakeFileStorage())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	_, err := svc.Create(ctx, dto.CreateExportInput{Entity: "users", Format: "csv"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, dto.CreateExportInput{Entity: "requests", Format: "xlsx"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	// Bad filters are rejected at submission, before any job exists.
	_, err = svc.Create(ctx, dto.CreateExportInput{
		Entity: "requests", Format: "csv",
		Filters: dto.ExportFilters{Statuses: []string{"Done"}},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportServiceJobNotFound(t *testing.T) {
	svc := newExportService(t, newFakeFileStorage())

	_, err := svc.Job(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	files := newFakeFileStorage()
	svc := newExportService(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	created, err := svc.Create(ctx, dto.CreateExportInput{Entity: "requests", Format: "csv"})
	require.NoError(t, err)
	done := waitForJob(t, svc, created.ID)

	token := done.DownloadURL[len("/api/v1/export/"):]
	jobID, relPath, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, jobID)
	_, ok := files.saved[relPath]
	assert.True(t, ok)

	_, _, err = svc.ParseToken("not-a-token")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
