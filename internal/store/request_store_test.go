package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
	"github.com/appforge-labs/devopshub/pkg/export"
)

const requestsFixture = `ID,Title,Description,Type,Priority,Status,Requester Name,Requester Email,Requester Department,Assigned To,Created Date,Due Date,Completed Date,Technology,Related Project
REQ-001,Monthly GL extract,Pull month-end GL balances,Report,High,Completed,Dana Whitfield,dana.whitfield@bank.example,Accounting,Marcus Lee,2026-01-05,2026-01-20,2026-01-18,SQL,PROJ-001
REQ-002,Teller audit script,Flag teller overrides daily,Script,Critical,In Progress,Omar Haddad,omar.haddad@bank.example,Operations,Priya Nair,2026-02-02,2026-02-28,,Python,
REQ-003,Branch volume report,Weekly branch transaction volumes,Report,Low,Submitted,Dana Whitfield,dana.whitfield@bank.example,Accounting,Unassigned,2026-03-01,,,SQL,
`

func renderCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	out, err := export.NewCSVExporter().Render(export.Dataset{Headers: header, Rows: rows})
	require.NoError(t, err)
	return string(out)
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func newRequestStore(t *testing.T) *RequestStore {
	t.Helper()
	dir := writeFixture(t, requestsFile, requestsFixture)
	return NewRequestStore(dir, zap.NewNop())
}

func TestRequestStoreLoad(t *testing.T) {
	store := newRequestStore(t)

	all, err := store.Load()
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "REQ-001", all[0].ID)
	assert.Equal(t, models.RequestTypeReport, all[0].Type)
	assert.Equal(t, models.RequestStatusCompleted, all[0].Status)
	assert.Equal(t, "2026-01-18", all[0].CompletedDate.String())
	assert.True(t, all[1].CompletedDate.IsZero())
	assert.Equal(t, models.UnassignedSentinel, all[2].AssignedTo)
}

func TestRequestStoreLoadCachesUntilInvalidated(t *testing.T) {
	dir := writeFixture(t, requestsFile, requestsFixture)
	store := NewRequestStore(dir, zap.NewNop())

	_, err := store.Load()
	require.NoError(t, err)

	// Out-of-band edit is invisible until the cache is dropped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, requestsFile),
		[]byte(requestsFixture+`REQ-004,Rate sheet loader,Load daily rate sheets,Script,Medium,Submitted,Omar Haddad,omar.haddad@bank.example,Operations,Unassigned,2026-03-10,,,Python,
`), 0o644))

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	fresh, err := store.Reload()
	require.NoError(t, err)
	assert.Len(t, fresh, 4)
}

func TestRequestStoreLoadMissingFile(t *testing.T) {
	store := NewRequestStore(t.TempDir(), zap.NewNop())

	_, err := store.Load()
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageUnavailable))
}

func TestRequestStoreLoadRejectsUnknownEnum(t *testing.T) {
	dir := writeFixture(t, requestsFile,
		`ID,Title,Description,Type,Priority,Status,Requester Name,Requester Email,Requester Department,Assigned To,Created Date,Due Date,Completed Date,Technology,Related Project
REQ-001,Broken row,desc,Gadget,High,Submitted,Dana,d@b.example,Accounting,Unassigned,2026-01-05,,,SQL,
`)
	store := NewRequestStore(dir, zap.NewNop())

	_, err := store.Load()
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageUnavailable))
}

func TestRequestStoreList(t *testing.T) {
	store := newRequestStore(t)

	reports, err := store.List(models.RequestFilter{Types: []models.RequestType{models.RequestTypeReport}})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "REQ-001", reports[0].ID)
	assert.Equal(t, "REQ-003", reports[1].ID)

	// Filters are a conjunction.
	completedReports, err := store.List(models.RequestFilter{
		Types:    []models.RequestType{models.RequestTypeReport},
		Statuses: []models.RequestStatus{models.RequestStatusCompleted},
	})
	require.NoError(t, err)
	require.Len(t, completedReports, 1)
	assert.Equal(t, "REQ-001", completedReports[0].ID)

	all, err := store.List(models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRequestStoreFindByID(t *testing.T) {
	store := newRequestStore(t)

	found, err := store.FindByID("REQ-002")
	require.NoError(t, err)
	assert.Equal(t, "Teller audit script", found.Title)

	_, err = store.FindByID("REQ-999")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRequestStoreAppend(t *testing.T) {
	store := newRequestStore(t)

	err := store.Append(models.Request{
		ID:                  "REQ-004",
		Title:               "Rate sheet loader",
		Description:         "Load daily rate sheets",
		Type:                models.RequestTypeScript,
		Priority:            models.PriorityMedium,
		Status:              models.RequestStatusSubmitted,
		RequesterName:       "Omar Haddad",
		RequesterEmail:      "omar.haddad@bank.example",
		RequesterDepartment: "Operations",
		AssignedTo:          models.UnassignedSentinel,
		CreatedDate:         models.MustDate("2026-03-10"),
	})
	require.NoError(t, err)

	// Survives a cold reload, so it reached the file.
	fresh, err := store.Reload()
	require.NoError(t, err)
	require.Len(t, fresh, 4)
	assert.Equal(t, "REQ-004", fresh[3].ID)
}

func TestRequestStoreUpdate(t *testing.T) {
	store := newRequestStore(t)

	updated, err := store.Update("REQ-003", func(r *models.Request) error {
		r.Status = models.RequestStatusInProgress
		r.AssignedTo = "Marcus Lee"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)

	fresh, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, "Marcus Lee", fresh[2].AssignedTo)
}

func TestRequestStoreUpdateUnknownIDLeavesFileUntouched(t *testing.T) {
	dir := writeFixture(t, requestsFile, requestsFixture)
	store := NewRequestStore(dir, zap.NewNop())

	_, err := store.Update("REQ-999", func(r *models.Request) error {
		r.Title = "never applied"
		return nil
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	raw, readErr := os.ReadFile(filepath.Join(dir, requestsFile))
	require.NoError(t, readErr)
	assert.Equal(t, requestsFixture, string(raw))
}

func TestRequestStoreUpdateMutateErrorAbortsWrite(t *testing.T) {
	dir := writeFixture(t, requestsFile, requestsFixture)
	store := NewRequestStore(dir, zap.NewNop())

	boom := errors.New("rejected transition")
	_, err := store.Update("REQ-001", func(r *models.Request) error {
		r.Title = "never persisted"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	raw, readErr := os.ReadFile(filepath.Join(dir, requestsFile))
	require.NoError(t, readErr)
	assert.Equal(t, requestsFixture, string(raw))
}

func TestRequestStoreNextID(t *testing.T) {
	store := newRequestStore(t)

	id, err := store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "REQ-004", id)
}

func TestRequestStoreExportDatasetRoundTrips(t *testing.T) {
	dir := writeFixture(t, requestsFile, requestsFixture)
	store := NewRequestStore(dir, zap.NewNop())

	// An unfiltered export of an untouched table reproduces the file exactly.
	header, rows, err := store.ExportDataset(models.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, requestsFixture, renderCSV(t, header, rows))

	_, filtered, err := store.ExportDataset(models.RequestFilter{
		Priorities: []models.Priority{models.PriorityCritical},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "REQ-002", filtered[0][0])
}

func TestRequestStoreBootstrap(t *testing.T) {
	dir := t.TempDir()
	store := NewRequestStore(dir, zap.NewNop())

	require.NoError(t, store.Bootstrap())
	all, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, all)

	// Re-running leaves the existing table alone.
	require.NoError(t, store.Bootstrap())

	id, err := store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "REQ-001", id)
}

func TestRequestStoreBootstrapKeepsExistingRows(t *testing.T) {
	dir := writeFixture(t, requestsFile, requestsFixture)
	store := NewRequestStore(dir, zap.NewNop())

	require.NoError(t, store.Bootstrap())
	raw, err := os.ReadFile(filepath.Join(dir, requestsFile))
	require.NoError(t, err)
	assert.Equal(t, requestsFixture, string(raw))
}
