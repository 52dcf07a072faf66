package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

func seedProjects() []models.Project {
	inProgress := models.NewChecklist()
	inProgress.CompleteThrough(2)
	return []models.Project{
		{
			ID: "PROJ-001", Name: "Core conversion toolkit", Description: "Utilities for the core conversion",
			Status: models.ProjectStatusInProgress, StartDate: models.MustDate("2026-01-10"),
			TargetCompletion: models.MustDate("2026-06-30"),
			TeamMembers:      []string{"Marcus Lee", "Priya Nair"},
			Checklist:        inProgress,
			LinkedRequests:   []string{"REQ-001", "REQ-404"},
		},
		{
			ID: "PROJ-002", Name: "Statement archive viewer", Description: "Archived statement lookup tool",
			Status: models.ProjectStatusPlanning, StartDate: models.MustDate("2026-02-15"),
			TeamMembers: []string{"Priya Nair"},
			// Malformed persisted checklist decodes to nil.
		},
	}
}

func newProjectService(store *fakeProjectStore, requests *fakeRequestStore) *ProjectService {
	if requests == nil {
		requests = &fakeRequestStore{records: seedRequests()}
	}
	svc := NewProjectService(store, requests, nil, nil, nil)
	svc.now = fixedNow("2026-03-15")
	return svc
}

func TestProjectServiceList(t *testing.T) {
	svc := newProjectService(&fakeProjectStore{records: seedProjects()}, nil)

	resp, err := svc.List(context.Background(), dto.ProjectListQuery{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	first := resp.Items[0]
	require.NotNil(t, first.CurrentPhase)
	assert.Equal(t, "Development", *first.CurrentPhase)
	require.NotNil(t, first.CompletionPercent)
	assert.InDelta(t, 100.0/3, *first.CompletionPercent, 0.001)

	// Dangling links are tolerated and reported.
	require.Len(t, first.LinkedRequests, 2)
	assert.Equal(t, "Monthly GL extract", first.LinkedRequests[0].Title)
	assert.False(t, first.LinkedRequests[0].Missing)
	assert.True(t, first.LinkedRequests[1].Missing)

	// Malformed checklist leaves derived values undefined, not zero.
	second := resp.Items[1]
	assert.Nil(t, second.CurrentPhase)
	assert.Nil(t, second.CompletionPercent)

	assert.Equal(t, dto.ProjectStats{Total: 2, InProgress: 1}, resp.Stats)
}

func TestProjectServiceListSearch(t *testing.T) {
	svc := newProjectService(&fakeProjectStore{records: seedProjects()}, nil)

	resp, err := svc.List(context.Background(), dto.ProjectListQuery{Search: "ARCHIVE"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "PROJ-002", resp.Items[0].ID)
}

func TestProjectServiceCreate(t *testing.T) {
	store := &fakeProjectStore{nextID: "PROJ-003"}
	svc := newProjectService(store, nil)

	created, err := svc.Create(context.Background(), dto.CreateProjectInput{
		Name:        "Wire room dashboard",
		Description: "Same-day wire cutoff tracking",
		TeamMembers: []string{"Marcus Lee"},
	})
	require.NoError(t, err)

	assert.Equal(t, "PROJ-003", created.ID)
	assert.Equal(t, models.ProjectStatusPlanning, created.Status)
	assert.Equal(t, "2026-03-15", created.StartDate.String())
	require.NotNil(t, created.CurrentPhase)
	assert.Equal(t, "Requirements Gathering", *created.CurrentPhase)
	require.NotNil(t, created.CompletionPercent)
	assert.Zero(t, *created.CompletionPercent)
}

func TestProjectServiceCreateValidation(t *testing.T) {
	svc := newProjectService(&fakeProjectStore{}, nil)

	_, err := svc.Create(context.Background(), dto.CreateProjectInput{Name: "no team"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProjectServiceTesting(t *testing.T) {
	store := &fakeProjectStore{records: seedProjects()}
	svc := newProjectService(store, nil)

	view, err := svc.Testing(context.Background(), "PROJ-001")
	require.NoError(t, err)

	require.NotNil(t, view.CurrentPhase)
	assert.Equal(t, "Testing & QA", *view.CurrentPhase)
	assert.Equal(t, models.ProjectStatusTesting, view.Status)
	require.NotNil(t, view.CompletionPercent)
	assert.InDelta(t, 50.0, *view.CompletionPercent, 0.001)
}

func TestProjectServiceTestingRepairsMalformedChecklist(t *testing.T) {
	store := &fakeProjectStore{records: seedProjects()}
	svc := newProjectService(store, nil)

	view, err := svc.Testing(context.Background(), "PROJ-002")
	require.NoError(t, err)

	require.NotNil(t, view.CurrentPhase)
	assert.Equal(t, "Testing & QA", *view.CurrentPhase)
	require.True(t, view.Checklist.Valid())
}

func TestProjectServiceDeploy(t *testing.T) {
	store := &fakeProjectStore{records: seedProjects()}
	svc := newProjectService(store, nil)

	view, err := svc.Deploy(context.Background(), "PROJ-001")
	require.NoError(t, err)

	assert.Equal(t, models.ProjectStatusDeployed, view.Status)
	assert.Equal(t, "2026-03-15", view.ActualCompletion.String())
	require.NotNil(t, view.CurrentPhase)
	assert.Equal(t, "Post-Deployment Review", *view.CurrentPhase)

	_, err = svc.Deploy(context.Background(), "PROJ-001")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestProjectServiceAnalytics(t *testing.T) {
	svc := newProjectService(&fakeProjectStore{records: seedProjects()}, nil)

	resp, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"In Progress": 1, "Planning": 1}, resp.ByStatus)
	require.NotNil(t, resp.AvgCompletion)
	assert.InDelta(t, 100.0/3, *resp.AvgCompletion, 0.001)
	assert.InDelta(t, 100.0/3, resp.AvgCompletionByStatus["In Progress"], 0.001)
	_, present := resp.AvgCompletionByStatus["Planning"]
	assert.False(t, present)

	// Only active projects with a target land on the timeline.
	require.Len(t, resp.Timeline, 1)
	entry := resp.Timeline[0]
	assert.Equal(t, "PROJ-001", entry.ID)
	assert.Equal(t, 107, entry.DaysUntilTarget)
}
