package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

const projectsFixture = `ID,Project Name,Description,Status,Start Date,Target Completion,Actual Completion,Team Members,SDLC Checklist,Linked Requests,Current Phase
PROJ-001,Core conversion toolkit,Utilities for the core conversion,In Progress,2026-01-10,2026-06-30,,"Marcus Lee, Priya Nair",Requirements Gathering:Complete|Design & Architecture:Complete|Development:Pending|Testing & QA:Pending|Deployment:Pending|Post-Deployment Review:Pending,"REQ-001,REQ-002",Development
PROJ-002,Statement archive viewer,Archived statement lookup tool,Planning,2026-02-15,2026-09-30,,Priya Nair,not-a-checklist,,Development
`

func newProjectStore(t *testing.T) *ProjectStore {
	t.Helper()
	dir := writeFixture(t, projectsFile, projectsFixture)
	return NewProjectStore(dir, zap.NewNop())
}

func TestProjectStoreLoad(t *testing.T) {
	store := newProjectStore(t)

	all, err := store.Load()
	require.NoError(t, err)
	require.Len(t, all, 2)

	first := all[0]
	assert.Equal(t, []string{"Marcus Lee", "Priya Nair"}, first.TeamMembers)
	assert.Equal(t, []string{"REQ-001", "REQ-002"}, first.LinkedRequests)
	require.True(t, first.Checklist.Valid())

	phase, ok := first.Checklist.CurrentPhase()
	require.True(t, ok)
	assert.Equal(t, "Development", phase)

	percent, ok := first.Checklist.CompletionPercent()
	require.True(t, ok)
	assert.InDelta(t, 100.0/3, percent, 0.001)

	// Malformed checklist keeps the record, derived values undefined.
	second := all[1]
	assert.Nil(t, second.Checklist)
	_, ok = second.Checklist.CurrentPhase()
	assert.False(t, ok)
}

func TestProjectStoreNilLoggerLoadsMalformedRow(t *testing.T) {
	dir := writeFixture(t, projectsFile, projectsFixture)
	store := NewProjectStore(dir, nil)

	all, err := store.Load()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[1].Checklist)
}

func TestProjectStoreMalformedChecklistRoundTrips(t *testing.T) {
	store := newProjectStore(t)

	// Rewriting the table for an unrelated update keeps the malformed
	// checklist text byte-identical.
	_, err := store.Update("PROJ-001", func(p *models.Project) error {
		p.Description = "Utilities for the 2026 core conversion"
		return nil
	})
	require.NoError(t, err)

	header, rows, err := store.ExportDataset(models.ProjectFilter{})
	require.NoError(t, err)
	exported := renderCSV(t, header, rows)
	assert.Contains(t, exported, "PROJ-002,Statement archive viewer,Archived statement lookup tool,Planning,2026-02-15,2026-09-30,,Priya Nair,not-a-checklist,,Development")
}

func TestProjectStoreUpdateRepairsChecklist(t *testing.T) {
	store := newProjectStore(t)

	updated, err := store.Update("PROJ-002", func(p *models.Project) error {
		p.Checklist = models.NewChecklist()
		return nil
	})
	require.NoError(t, err)
	require.True(t, updated.Checklist.Valid())

	fresh, err := store.Reload()
	require.NoError(t, err)
	require.True(t, fresh[1].Checklist.Valid())

	phase, ok := fresh[1].Checklist.CurrentPhase()
	require.True(t, ok)
	assert.Equal(t, "Requirements Gathering", phase)
}

func TestProjectStoreUpdateKeepsPhaseColumnDerived(t *testing.T) {
	store := newProjectStore(t)

	_, err := store.Update("PROJ-001", func(p *models.Project) error {
		p.Status = models.ProjectStatusTesting
		p.Checklist.CompleteThrough(3)
		return nil
	})
	require.NoError(t, err)

	header, rows, err := store.ExportDataset(models.ProjectFilter{})
	require.NoError(t, err)
	exported := renderCSV(t, header, rows)
	assert.Contains(t, exported, "Development:Complete|Testing & QA:Pending")
	assert.Contains(t, exported, ",Testing & QA\n")
}

func TestProjectStoreAppend(t *testing.T) {
	store := newProjectStore(t)

	err := store.Append(models.Project{
		ID:          "PROJ-003",
		Name:        "Wire room dashboard",
		Description: "Same-day wire cutoff tracking",
		Status:      models.ProjectStatusPlanning,
		StartDate:   models.MustDate("2026-03-20"),
		TeamMembers: []string{"Marcus Lee"},
		Checklist:   models.NewChecklist(),
	})
	require.NoError(t, err)

	fresh, err := store.Reload()
	require.NoError(t, err)
	require.Len(t, fresh, 3)
	assert.Equal(t, "PROJ-003", fresh[2].ID)
}

func TestProjectStoreAppendRequiresChecklist(t *testing.T) {
	store := newProjectStore(t)

	err := store.Append(models.Project{
		ID:        "PROJ-004",
		Name:      "No checklist",
		Status:    models.ProjectStatusPlanning,
		StartDate: models.MustDate("2026-03-20"),
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrMalformedChecklist))
}

func TestProjectStoreFindByIDAndNextID(t *testing.T) {
	store := newProjectStore(t)

	found, err := store.FindByID("PROJ-002")
	require.NoError(t, err)
	assert.Equal(t, "Statement archive viewer", found.Name)

	_, err = store.FindByID("PROJ-050")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	id, err := store.NextID()
	require.NoError(t, err)
	assert.Equal(t, "PROJ-003", id)
}

func TestProjectStoreExportDatasetRoundTrips(t *testing.T) {
	store := newProjectStore(t)

	header, rows, err := store.ExportDataset(models.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, projectsFixture, renderCSV(t, header, rows))
}

func TestProjectStoreListSearch(t *testing.T) {
	store := newProjectStore(t)

	matched, err := store.List(models.ProjectFilter{Search: "archive"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "PROJ-002", matched[0].ID)

	matched, err = store.List(models.ProjectFilter{Statuses: []models.ProjectStatus{models.ProjectStatusInProgress}})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "PROJ-001", matched[0].ID)
}
