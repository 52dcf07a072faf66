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

const dashboardCachePattern = "dashboard*"

// completionTrendMonths is the trailing window of the monthly trend chart.
const completionTrendMonths = 6

type requestStore interface {
	List(filter models.RequestFilter) ([]models.Request, error)
	FindByID(id string) (*models.Request, error)
	Append(r models.Request) error
	Update(id string, mutate func(*models.Request) error) (*models.Request, error)
	NextID() (string, error)
}

// RequestService implements the programming-request workflows.
type RequestService struct {
	store    requestStore
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewRequestService constructs a RequestService.
func NewRequestService(store requestStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns requests matching the query, newest first, with summary
// stats computed over the matching set.
func (s *RequestService) List(ctx context.Context, query dto.RequestListQuery) (*dto.RequestListResponse, error) {
	filter, err := parseRequestFilter(query.Statuses, query.Types, query.Priorities, query.Assignees)
	if err != nil {
		return nil, err
	}
	items, err := s.store.List(filter)
	if err != nil {
		return nil, err
	}
	items = analytics.RecentRequests(items, len(items))

	today := models.DateOf(s.now())
	stats := dto.RequestStats{
		Total:   len(items),
		Overdue: analytics.OverdueCount(items, today),
	}
	for _, r := range items {
		if r.Priority == models.PriorityHigh || r.Priority == models.PriorityCritical {
			stats.HighPriority++
		}
		if r.AssignedTo == models.UnassignedSentinel {
			stats.Unassigned++
		}
	}
	return &dto.RequestListResponse{Items: items, Stats: stats}, nil
}

// Get returns a single request.
func (s *RequestService) Get(ctx context.Context, id string) (*models.Request, error) {
	return s.store.FindByID(id)
}

// Create logs a new request: allocator ID, Submitted, Unassigned, created
// today.
func (s *RequestService) Create(ctx context.Context, input dto.CreateRequestInput) (*models.Request, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	reqType, err := models.ParseRequestType(input.Type)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	dueDate, err := models.ParseOptionalDate(input.DueDate)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}

	id, err := s.store.NextID()
	if err != nil {
		return nil, err
	}
	record := models.Request{
		ID:                  id,
		Title:               input.Title,
		Description:         input.Description,
		Type:                reqType,
		Priority:            priority,
		Status:              models.RequestStatusSubmitted,
		RequesterName:       input.RequesterName,
		RequesterEmail:      input.RequesterEmail,
		RequesterDepartment: input.RequesterDepartment,
		AssignedTo:          models.UnassignedSentinel,
		CreatedDate:         models.DateOf(s.now()),
		DueDate:             dueDate,
		Technology:          input.Technology,
		RelatedProject:      input.RelatedProject,
	}
	if err := s.store.Append(record); err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	s.logger.Info("request created", zap.String("request_id", id), zap.String("priority", string(priority)))
	return &record, nil
}

// Start moves a submitted request into In Progress, assigning it when an
// assignee is given.
func (s *RequestService) Start(ctx context.Context, id, assignee string) (*models.Request, error) {
	updated, err := s.store.Update(id, func(r *models.Request) error {
		if r.Status != models.RequestStatusSubmitted {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("request %s is %s, only submitted requests can be started", id, r.Status))
		}
		r.Status = models.RequestStatusInProgress
		if assignee != "" {
			r.AssignedTo = assignee
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return updated, nil
}

// Complete finishes a request, stamping today as the completion date.
func (s *RequestService) Complete(ctx context.Context, id string) (*models.Request, error) {
	today := models.DateOf(s.now())
	updated, err := s.store.Update(id, func(r *models.Request) error {
		if r.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("request %s is already completed", id))
		}
		r.Status = models.RequestStatusCompleted
		r.CompletedDate = today
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return updated, nil
}

// Analytics computes the request-page aggregates.
func (s *RequestService) Analytics(ctx context.Context) (*dto.RequestAnalyticsResponse, error) {
	all, err := s.store.List(models.RequestFilter{})
	if err != nil {
		return nil, err
	}
	today := models.DateOf(s.now())
	return &dto.RequestAnalyticsResponse{
		ByDepartment: analytics.CountBy(all, func(r models.Request) string { return r.RequesterDepartment }),
		ByTechnology: analytics.CountBy(all, func(r models.Request) string { return r.Technology }),
		MonthlyCompletions: analytics.MonthlyCompletions(all, completionTrendMonths, today),
	}, nil
}

func (s *RequestService) afterWrite(ctx context.Context) {
	s.metrics.RecordTableRewrite("requests")
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func parseRequestFilter(statuses, types, priorities, assignees []string) (models.RequestFilter, error) {
	var filter models.RequestFilter
	for _, raw := range statuses {
		v, err := models.ParseRequestStatus(raw)
		if err != nil {
			return models.RequestFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Statuses = append(filter.Statuses, v)
	}
	for _, raw := range types {
		v, err := models.ParseRequestType(raw)
		if err != nil {
			return models.RequestFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Types = append(filter.Types, v)
	}
	for _, raw := range priorities {
		v, err := models.ParsePriority(raw)
		if err != nil {
			return models.RequestFilter{}, appErrors.WithCause(appErrors.ErrValidation, err)
		}
		filter.Priorities = append(filter.Priorities, v)
	}
	filter.Assignees = append(filter.Assignees, assignees...)
	return filter, nil
}
