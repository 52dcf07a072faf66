package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/analytics"
	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

// Checklist depth reached by each lifecycle transition: moving to Testing
// completes the first three phases, deploying completes the first five.
const (
	testingChecklistDepth = 3
	deployChecklistDepth  = 5
)

type projectStore interface {
	List(filter models.ProjectFilter) ([]models.Project, error)
	FindByID(id string) (*models.Project, error)
	Append(p models.Project) error
	Update(id string, mutate func(*models.Project) error) (*models.Project, error)
	NextID() (string, error)
}

type requestLister interface {
	List(filter models.RequestFilter) ([]models.Request, error)
}

// ProjectService implements the project lifecycle and SDLC tracking.
type ProjectService struct {
	store    projectStore
	requests requestLister
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewProjectService constructs a ProjectService.
func NewProjectService(store projectStore, requests requestLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		store:    store,
		requests: requests,
		cache:    cache,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns projects matching the query with derived SDLC values and
// linked-request titles resolved.
func (s *ProjectService) List(ctx context.Context, query dto.ProjectListQuery) (*dto.ProjectListResponse, error) {
	filter, err := parseProjectFilter(query.Statuses, query.Search)
	if err != nil {
		return nil, err
	}
	items, err := s.store.List(filter)
	if err != nil {
		return nil, err
	}
	titles, err := s.requestTitles()
	if err != nil {
		return nil, err
	}

	views := make([]dto.ProjectView, len(items))
	stats := dto.ProjectStats{Total: len(items)}
	for i, p := range items {
		views[i] = buildProjectView(p, titles)
		switch p.Status {
		case models.ProjectStatusInProgress:
			stats.InProgress++
		case models.ProjectStatusTesting:
			stats.Testing++
		case models.ProjectStatusDeployed:
			stats.Deployed++
		}
	}
	return &dto.ProjectListResponse{Items: views, Stats: stats}, nil
}

// Get returns a single project view.
func (s *ProjectService) Get(ctx context.Context, id string) (*dto.ProjectView, error) {
	p, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	titles, err := s.requestTitles()
	if err != nil {
		return nil, err
	}
	view := buildProjectView(*p, titles)
	return &view, nil
}

// Create opens a new project in Planning with every SDLC phase pending.
func (s *ProjectService) Create(ctx context.Context, input dto.CreateProjectInput) (*dto.ProjectView, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	startDate, err := models.ParseOptionalDate(input.StartDate)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	if startDate.IsZero() {
		startDate = models.DateOf(s.now())
	}
	target, err := models.ParseOptionalDate(input.TargetCompletion)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}

	id, err := s.store.NextID()
	if err != nil {
		return nil, err
	}
	record := models.Project{
		ID:               id,
		Name:             input.Name,
		Description:      input.Description,
		Status:           models.ProjectStatusPlanning,
		StartDate:        startDate,
		TargetCompletion: target,
		TeamMembers:      input.TeamMembers,
		Checklist:        models.NewChecklist(),
		LinkedRequests:   input.LinkedRequests,
	}
	if err := s.store.Append(record); err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	s.logger.Info("project created", zap.String("project_id", id))

	titles, err := s.requestTitles()
	if err != nil {
		return nil, err
	}
	view := buildProjectView(record, titles)
	return &view, nil
}

// Testing moves a project into Testing and advances the checklist so the
// derived current phase is Testing & QA. A malformed persisted checklist
// is rebuilt deterministically by the transition.
func (s *ProjectService) Testing(ctx context.Context, id string) (*dto.ProjectView, error) {
	return s.transition(ctx, id, func(p *models.Project) error {
		if p.Status == models.ProjectStatusDeployed {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("project %s is already deployed", id))
		}
		p.Status = models.ProjectStatusTesting
		advanceChecklist(p, testingChecklistDepth)
		return nil
	})
}

// Deploy finishes a project: Deployed, actual completion today, checklist
// advanced so the derived current phase is Post-Deployment Review.
func (s *ProjectService) Deploy(ctx context.Context, id string) (*dto.ProjectView, error) {
	today := models.DateOf(s.now())
	return s.transition(ctx, id, func(p *models.Project) error {
		if p.Status == models.ProjectStatusDeployed {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("project %s is already deployed", id))
		}
		p.Status = models.ProjectStatusDeployed
		p.ActualCompletion = today
		advanceChecklist(p, deployChecklistDepth)
		return nil
	})
}

// Analytics computes the project-page aggregates.
func (s *ProjectService) Analytics(ctx context.Context) (*dto.ProjectAnalyticsResponse, error) {
	all, err := s.store.List(models.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	resp := &dto.ProjectAnalyticsResponse{
		ByStatus:              analytics.CountBy(all, func(p models.Project) string { return string(p.Status) }),
		AvgCompletionByStatus: make(map[string]float64),
	}
	if avg, ok := analytics.AverageChecklistCompletion(all); ok {
		resp.AvgCompletion = &avg
	}
	byStatus := make(map[models.ProjectStatus][]models.Project)
	for _, p := range all {
		byStatus[p.Status] = append(byStatus[p.Status], p)
	}
	for status, group := range byStatus {
		if avg, ok := analytics.AverageChecklistCompletion(group); ok {
			resp.AvgCompletionByStatus[string(status)] = avg
		}
	}

	today := models.DateOf(s.now())
	for _, p := range all {
		if !isActiveProject(p.Status) || p.TargetCompletion.IsZero() {
			continue
		}
		resp.Timeline = append(resp.Timeline, dto.ProjectTimelineEntry{
			ID:               p.ID,
			Name:             p.Name,
			Status:           p.Status,
			TargetCompletion: p.TargetCompletion,
			DaysUntilTarget:  today.DaysUntil(p.TargetCompletion),
		})
	}
	return resp, nil
}

func (s *ProjectService) transition(ctx context.Context, id string, mutate func(*models.Project) error) (*dto.ProjectView, error) {
	updated, err := s.store.Update(id, mutate)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	titles, err := s.requestTitles()
	if err != nil {
		return nil, err
	}
	view := buildProjectView(*updated, titles)
	return &view, nil
}

func (s *ProjectService) requestTitles() (map[string]string, error) {
	requests, err := s.requests.List(models.RequestFilter{})
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(requests))
	for _, r := range requests {
		titles[r.ID] = r.Title
	}
	return titles, nil
}

func (s *ProjectService) afterWrite(ctx context.Context) {
	s.metrics.RecordTableRewrite("projects")
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func advanceChecklist(p *models.Project, depth int) {
	if !p.Checklist.Valid() {
		p.Checklist = models.NewChecklist()
	}
	p.Checklist.CompleteThrough(depth)
}

func buildProjectView(p models.Project, requestTitles map[string]string) dto.ProjectView {
	view := dto.ProjectView{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Status:           p.Status,
		StartDate:        p.StartDate,
		TargetCompletion: p.TargetCompletion,
		ActualCompletion: p.ActualCompletion,
		TeamMembers:      p.TeamMembers,
		Checklist:        p.Checklist,
		LinkedRequests:   make([]dto.LinkedRequestRef, 0, len(p.LinkedRequests)),
	}
	if phase, ok := p.Checklist.CurrentPhase(); ok {
		view.CurrentPhase = &phase
	}
	if percent, ok := p.Checklist.CompletionPercent(); ok {
		view.CompletionPercent = &percent
	}
	for _, id := range p.LinkedRequests {
		ref := dto.LinkedRequestRef{ID: id}
		if title, found := requestTitles[id]; found {
			ref.Title = title
		} else {
			ref.Missing = true
		}
		view.LinkedRequests = append(view.LinkedRequests, ref)
	}
	return view
}

func isActiveProject(status models.ProjectStatus) bool {
	for _, s := range models.ActiveProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func parseProjectFilter(statuses []string, search string) (models.ProjectFilter, error) {
	var filter models.ProjectFilter
	for _, raw := range statuses {
		v, err := models.ParseProjectStatus(raw)
		if err != nil {
			return models.ProjectFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Statuses = append(filter.Statuses, v)
	}
	filter.Search = search
	return filter, nil
}
