package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/analytics"
	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

type errorStore interface {
	List(filter models.ErrorFilter) ([]models.SystemError, error)
	FindByID(id string) (*models.SystemError, error)
	Append(e models.SystemError) error
	Update(id string, mutate func(*models.SystemError) error) (*models.SystemError, error)
	NextID() (string, error)
	NextFiservTicket(year int) (string, error)
}

// ErrorService implements the system-error triage workflows.
type ErrorService struct {
	store    errorStore
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewErrorService constructs an ErrorService.
func NewErrorService(store errorStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ErrorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorService{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns errors matching the query, most severe first, newest
// within a severity, with summary stats over the matching set.
func (s *ErrorService) List(ctx context.Context, query dto.ErrorListQuery) (*dto.ErrorListResponse, error) {
	filter, err := parseErrorFilter(query.Statuses, query.Severities, query.Systems, query.Fiserv)
	if err != nil {
		return nil, err
	}
	items, err := s.store.List(filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := models.PriorityRank(items[i].Severity), models.PriorityRank(items[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return items[j].DateReported.Before(items[i].DateReported)
	})

	stats := dto.ErrorStats{Total: len(items)}
	for _, e := range items {
		if e.Severity == models.PriorityCritical || e.Severity == models.PriorityHigh {
			stats.CriticalHigh++
		}
		if !e.Status.Terminal() {
			stats.Open++
		}
		if e.ReportedToFiserv {
			stats.Escalated++
		}
	}
	return &dto.ErrorListResponse{Items: items, Stats: stats}, nil
}

// Get returns a single error record.
func (s *ErrorService) Get(ctx context.Context, id string) (*models.SystemError, error) {
	return s.store.FindByID(id)
}

// Create logs a new error: allocator ID, New, reported today.
func (s *ErrorService) Create(ctx context.Context, input dto.CreateErrorInput) (*models.SystemError, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	system, err := models.ParseErrorSystem(input.System)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	severity, err := models.ParsePriority(input.Severity)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}

	id, err := s.store.NextID()
	if err != nil {
		return nil, err
	}
	record := models.SystemError{
		ID:           id,
		ErrorCode:    input.ErrorCode,
		System:       system,
		Severity:     severity,
		Description:  input.Description,
		Status:       models.ErrorStatusNew,
		DateReported: models.DateOf(s.now()),
	}
	if err := s.store.Append(record); err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	s.logger.Info("error logged", zap.String("error_id", id),
		zap.String("system", string(system)), zap.String("severity", string(severity)))
	return &record, nil
}

// Investigate moves a new error into Investigating.
func (s *ErrorService) Investigate(ctx context.Context, id string) (*models.SystemError, error) {
	updated, err := s.store.Update(id, func(e *models.SystemError) error {
		if e.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("error %s is already resolved", id))
		}
		e.Status = models.ErrorStatusInvestigating
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return updated, nil
}

// Fix resolves an error internally, stamping today as the resolution date.
func (s *ErrorService) Fix(ctx context.Context, id string, input dto.FixErrorInput) (*models.SystemError, error) {
	today := models.DateOf(s.now())
	updated, err := s.store.Update(id, func(e *models.SystemError) error {
		if e.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("error %s is already resolved", id))
		}
		e.Status = models.ErrorStatusFixed
		e.DateResolved = today
		if input.ResolutionNotes != "" {
			e.ResolutionNotes = input.ResolutionNotes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return updated, nil
}

// Escalate hands an error to Fiserv: terminal status, escalation flag,
// resolution date today and a freshly allocated ticket.
func (s *ErrorService) Escalate(ctx context.Context, id string) (*models.SystemError, error) {
	today := models.DateOf(s.now())
	ticket, err := s.store.NextFiservTicket(s.now().Year())
	if err != nil {
		return nil, err
	}
	updated, err := s.store.Update(id, func(e *models.SystemError) error {
		if e.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("error %s is already resolved", id))
		}
		e.Status = models.ErrorStatusReportedToFiserv
		e.ReportedToFiserv = true
		e.FiservTicket = ticket
		e.DateResolved = today
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	s.logger.Info("error escalated", zap.String("error_id", id), zap.String("ticket", ticket))
	return updated, nil
}

// Analytics computes the error-page aggregates.
func (s *ErrorService) Analytics(ctx context.Context) (*dto.ErrorAnalyticsResponse, error) {
	all, err := s.store.List(models.ErrorFilter{})
	if err != nil {
		return nil, err
	}
	resp := &dto.ErrorAnalyticsResponse{
		BySystem: analytics.CountBy(all, func(e models.SystemError) string { return string(e.System) }),
	}
	if rate, ok := analytics.EscalationRate(all); ok {
		resp.EscalationRate = &rate
		fixed := 0
		for _, e := range all {
			if e.Status == models.ErrorStatusFixed {
				fixed++
			}
		}
		internal := 100 * float64(fixed) / float64(len(all))
		resp.FixedInternallyRate = &internal
	}
	if avg, ok := analytics.AverageResolutionDays(all); ok {
		resp.AvgResolutionDays = &avg
	}
	bySeverity := analytics.AverageResolutionBySeverity(all)
	resp.ResolutionBySeverity = make(map[string]float64, len(bySeverity))
	for sev, avg := range bySeverity {
		resp.ResolutionBySeverity[string(sev)] = avg
	}
	return resp, nil
}

func (s *ErrorService) afterWrite(ctx context.Context) {
	s.metrics.RecordTableRewrite("errors")
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func parseErrorFilter(statuses, severities, systems []string, fiserv string) (models.ErrorFilter, error) {
	var filter models.ErrorFilter
	for _, raw := range statuses {
		v, err := models.ParseErrorStatus(raw)
		if err != nil {
			return models.ErrorFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Statuses = append(filter.Statuses, v)
	}
	for _, raw := range severities {
		v, err := models.ParsePriority(raw)
		if err != nil {
			return models.ErrorFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Severities = append(filter.Severities, v)
	}
	for _, raw := range systems {
		v, err := models.ParseErrorSystem(raw)
		if err != nil {
			return models.ErrorFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Systems = append(filter.Systems, v)
	}
	switch fiserv {
	case "":
	case "Yes":
		escalated := true
		filter.Escalated = &escalated
	case "No":
		escalated := false
		filter.Escalated = &escalated
	default:
		return models.ErrorFilter{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("fiserv filter must be Yes or No, got %q", fiserv))
	}
	return filter, nil
}
