package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/analytics"
	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
)

const (
	dashboardCacheKey = "dashboard:snapshot"

	// Recent-activity window and cap for the landing page feed.
	recentRequestDays  = 7
	recentRequestLimit = 5
)

// severityOrder fixes the dashboard severity distribution, least to most
// severe, zero-filled.
var severityOrder = []models.Severity{
	models.PriorityLow,
	models.PriorityMedium,
	models.PriorityHigh,
	models.PriorityCritical,
}

type dashboardRequestSource interface {
	List(filter models.RequestFilter) ([]models.Request, error)
}

type dashboardErrorSource interface {
	List(filter models.ErrorFilter) ([]models.SystemError, error)
}

type dashboardProjectSource interface {
	List(filter models.ProjectFilter) ([]models.Project, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the landing-page snapshot across all three
// record tables, with an optional cached copy.
type DashboardService struct {
	requests dashboardRequestSource
	errors   dashboardErrorSource
	projects dashboardProjectSource
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Requests dashboardRequestSource
	Errors   dashboardErrorSource
	Projects dashboardProjectSource
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		requests: params.Requests,
		errors:   params.Errors,
		projects: params.Projects,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Snapshot returns the dashboard payload and whether it came from cache.
// The whole snapshot is computed against one "today".
func (s *DashboardService) Snapshot(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	requests, err := s.requests.List(models.RequestFilter{})
	if err != nil {
		return nil, false, err
	}
	sysErrors, err := s.errors.List(models.ErrorFilter{})
	if err != nil {
		return nil, false, err
	}
	projects, err := s.projects.List(models.ProjectFilter{})
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	today := models.DateOf(now)
	resp := &dto.DashboardResponse{
		Requests:        buildRequestSummary(requests, today),
		Errors:          buildErrorSummary(sysErrors),
		Projects:        buildProjectSummary(projects),
		RecentRequests:  recentRequests(requests, today),
		RequestWorkload: analytics.WorkloadByAssignee(requests),
		TeamWorkload:    analytics.TeamWorkload(projects),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return resp, false, nil
}

func buildRequestSummary(requests []models.Request, today models.Date) dto.DashboardRequests {
	summary := dto.DashboardRequests{
		Total:    len(requests),
		Overdue:  analytics.OverdueCount(requests, today),
		ByStatus: analytics.CountBy(requests, func(r models.Request) string { return string(r.Status) }),
		ByType:   analytics.CountBy(requests, func(r models.Request) string { return string(r.Type) }),
	}
	for _, r := range requests {
		if !r.Status.Terminal() {
			summary.Open++
		}
	}
	if avg, ok := analytics.AverageRequestResolutionDays(requests); ok {
		summary.AvgResolutionDays = &avg
	}
	return summary
}

func buildErrorSummary(sysErrors []models.SystemError) dto.DashboardErrors {
	summary := dto.DashboardErrors{Total: len(sysErrors)}
	counts := analytics.CountBy(sysErrors, func(e models.SystemError) string { return string(e.Severity) })
	for _, severity := range severityOrder {
		summary.BySeverity = append(summary.BySeverity, dto.SeverityCount{
			Severity: string(severity),
			Count:    counts[string(severity)],
		})
	}
	for _, e := range sysErrors {
		if !e.Status.Terminal() {
			summary.Open++
		}
	}
	if avg, ok := analytics.AverageResolutionDays(sysErrors); ok {
		summary.AvgResolutionDays = &avg
	}
	return summary
}

func buildProjectSummary(projects []models.Project) dto.DashboardProjects {
	summary := dto.DashboardProjects{
		Total:    len(projects),
		ByStatus: analytics.CountBy(projects, func(p models.Project) string { return string(p.Status) }),
	}
	for _, p := range projects {
		if isActiveProject(p.Status) {
			summary.Active++
		}
	}
	return summary
}

func recentRequests(requests []models.Request, today models.Date) []models.Request {
	cutoff := today.AddDays(-recentRequestDays)
	window := make([]models.Request, 0, len(requests))
	for _, r := range requests {
		if r.CreatedDate.Before(cutoff) {
			continue
		}
		window = append(window, r)
	}
	return analytics.RecentRequests(window, recentRequestLimit)
}
