package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/dto"
	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
	"github.com/appforge-labs/devopshub/pkg/export"
	"github.com/appforge-labs/devopshub/pkg/jobs"
	"github.com/appforge-labs/devopshub/pkg/storage"
)

type requestExporter interface {
	ExportDataset(filter models.RequestFilter) ([]string, [][]string, error)
}

type errorExporter interface {
	ExportDataset(filter models.ErrorFilter) ([]string, [][]string, error)
}

type projectExporter interface {
	ExportDataset(filter models.ProjectFilter) ([]string, [][]string, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix  string
	ResultTTL  time.Duration
	Workers    int
	MaxRetries int
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Requests requestExporter
	Errors   errorExporter
	Projects projectExporter
	Storage  fileStorage
	Signer   *storage.SignedURLSigner
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   ExportConfig
	CSV      csvRenderer
	PDF      pdfRenderer
}

// ExportService renders filtered record tables into downloadable files
// through an in-memory worker queue. Rendered CSV reuses the stores'
// persisted column layout, so a filtered export round-trips byte-for-byte.
type ExportService struct {
	requests requestExporter
	errors   errorExporter
	projects projectExporter
	storage  fileStorage
	signer   *storage.SignedURLSigner
	csv      csvRenderer
	pdf      pdfRenderer
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      ExportConfig
	queue    *jobs.Queue
	now      func() time.Time

	mu      sync.Mutex
	tracked map[string]*models.ExportJob
}

// NewExportService constructs an ExportService and its worker queue.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	s := &ExportService{
		requests: params.Requests,
		errors:   params.Errors,
		projects: params.Projects,
		storage:  params.Storage,
		signer:   params.Signer,
		csv:      csv,
		pdf:      pdf,
		metrics:  params.Metrics,
		validate: validator.New(),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		tracked:  make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start begins queue consumption.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Create validates the request, registers a pending job and enqueues it.
func (s *ExportService) Create(ctx context.Context, input dto.CreateExportInput) (*dto.ExportJobView, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	entity, err := models.ParseExportEntity(input.Entity)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	format, err := models.ParseExportFormat(input.Format)
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrValidation, err)
	}
	// Reject bad filters at submission, not inside the worker.
	if _, err := s.buildDataset(entity, input.Filters); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Entity:    entity,
		Format:    format,
		Status:    models.ExportStatusPending,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.tracked[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export", Payload: input.Filters}); err != nil {
		s.mu.Lock()
		delete(s.tracked, job.ID)
		s.mu.Unlock()
		return nil, appErrors.WithCause(appErrors.ErrInternal, err)
	}
	// A worker may already be touching the job; read it under the lock.
	s.mu.Lock()
	view := buildExportView(job)
	s.mu.Unlock()
	return &view, nil
}

// Job returns the visible state of an export job.
func (s *ExportService) Job(ctx context.Context, id string) (*dto.ExportJobView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.tracked[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("export job %s not found", id))
	}
	view := buildExportView(job)
	return &view, nil
}

// ParseToken validates a download token and returns the referenced file.
func (s *ExportService) ParseToken(token string) (jobID, relPath string, err error) {
	jobID, relPath, _, err = s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.WithCause(appErrors.ErrValidation, err)
	}
	return jobID, relPath, nil
}

// Open returns a handle to a stored export file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, nil
}

// RunCleanup periodically removes expired export files until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func (s *ExportService) process(ctx context.Context, queued jobs.Job) error {
	job := s.claim(queued.ID)
	if job == nil {
		return nil
	}
	filters, _ := queued.Payload.(dto.ExportFilters)

	err := s.render(job, filters)
	s.mu.Lock()
	if err != nil {
		job.Status = models.ExportStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = models.ExportStatusCompleted
		job.CompletedAt = s.now().UTC()
		job.Error = ""
	}
	entity, format, status := string(job.Entity), string(job.Format), string(job.Status)
	s.mu.Unlock()

	s.metrics.RecordExportJob(entity, format, status)
	if err != nil {
		s.logger.Error("export job failed", zap.String("job_id", queued.ID), zap.Error(err))
		return err
	}
	s.logger.Info("export job completed", zap.String("job_id", queued.ID),
		zap.String("entity", entity), zap.String("format", format))
	return nil
}

func (s *ExportService) claim(id string) *models.ExportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.tracked[id]
	if !ok {
		return nil
	}
	job.Status = models.ExportStatusProcessing
	return job
}

func (s *ExportService) render(job *models.ExportJob, filters dto.ExportFilters) error {
	dataset, err := s.buildDataset(job.Entity, filters)
	if err != nil {
		return err
	}

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, exportTitle(job.Entity))
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s_%s.%s", job.Entity, s.now().UTC().Format("20060102_150405"), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.mu.Lock()
	job.FilePath = relPath
	job.Token = token
	job.DownloadURL = fmt.Sprintf("%s/export/%s", prefix, token)
	job.ExpiresAt = expiresAt
	s.mu.Unlock()
	return nil
}

func (s *ExportService) buildDataset(entity models.ExportEntity, filters dto.ExportFilters) (export.Dataset, error) {
	switch entity {
	case models.ExportEntityRequests:
		filter, err := parseRequestFilter(filters.Statuses, filters.Types, filters.Priorities, filters.Assignees)
		if err != nil {
			return export.Dataset{}, err
		}
		header, rows, err := s.requests.ExportDataset(filter)
		if err != nil {
			return export.Dataset{}, err
		}
		return export.Dataset{Headers: header, Rows: rows}, nil
	case models.ExportEntityErrors:
		filter, err := parseErrorFilter(filters.Statuses, filters.Severities, filters.Systems, filters.Fiserv)
		if err != nil {
			return export.Dataset{}, err
		}
		header, rows, err := s.errors.ExportDataset(filter)
		if err != nil {
			return export.Dataset{}, err
		}
		return export.Dataset{Headers: header, Rows: rows}, nil
	case models.ExportEntityProjects:
		filter, err := parseProjectFilter(filters.Statuses, filters.Search)
		if err != nil {
			return export.Dataset{}, err
		}
		header, rows, err := s.projects.ExportDataset(filter)
		if err != nil {
			return export.Dataset{}, err
		}
		return export.Dataset{Headers: header, Rows: rows}, nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export entity %s", entity)
	}
}

func exportTitle(entity models.ExportEntity) string {
	switch entity {
	case models.ExportEntityRequests:
		return "Programming Requests"
	case models.ExportEntityErrors:
		return "System Errors"
	case models.ExportEntityProjects:
		return "Projects"
	default:
		return string(entity)
	}
}

func buildExportView(job *models.ExportJob) dto.ExportJobView {
	view := dto.ExportJobView{
		ID:        job.ID,
		Entity:    string(job.Entity),
		Format:    string(job.Format),
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		Error:     job.Error,
	}
	if !job.CompletedAt.IsZero() {
		view.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	if job.Status == models.ExportStatusCompleted {
		view.DownloadURL = job.DownloadURL
		view.ExpiresAt = job.ExpiresAt.Format(time.RFC3339)
	}
	return view
}
