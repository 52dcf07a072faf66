package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

const requestsFile = "requests.csv"

var requestHeader = []string{
	"ID", "Title", "Description", "Type", "Priority", "Status",
	"Requester Name", "Requester Email", "Requester Department", "Assigned To",
	"Created Date", "Due Date", "Completed Date", "Technology", "Related Project",
}

// RequestStore serves the programming-request table from a flat CSV file,
// caching the decoded rows until a write invalidates them.
type RequestStore struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	cache []models.Request
}

// NewRequestStore creates a store over <dataDir>/requests.csv.
func NewRequestStore(dataDir string, logger *zap.Logger) *RequestStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestStore{
		path:   filepath.Join(dataDir, requestsFile),
		logger: logger,
	}
}

// Bootstrap writes a header-only table when the file does not exist yet.
func (s *RequestStore) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := bootstrapTable(s.path, requestHeader)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	if created {
		s.logger.Info("table created", zap.String("path", s.path))
	}
	return nil
}

// Load returns every request, reading the file only when the cache is cold.
// The returned slice is the caller's to mutate.
func (s *RequestStore) Load() ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return cloneRequests(s.cache), nil
}

// Invalidate drops the cache so the next read hits the file.
func (s *RequestStore) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Reload drops the cache and reads the table fresh.
func (s *RequestStore) Reload() ([]models.Request, error) {
	s.Invalidate()
	return s.Load()
}

// List returns the requests matching the filter, in table order.
func (s *RequestStore) List(filter models.RequestFilter) ([]models.Request, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Request, 0, len(all))
	for _, r := range all {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindByID returns the request with the given ID.
func (s *RequestStore) FindByID(id string) (*models.Request, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("request %s not found", id))
}

// Append persists a new request at the end of the table.
func (s *RequestStore) Append(r models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := append(cloneRequests(s.cache), r)
	if err := s.persist(next); err != nil {
		return err
	}
	s.cache = next
	return nil
}

// Update applies mutate to the request with the given ID and rewrites the
// table. An unknown ID returns RecordNotFound without touching the file;
// an error from mutate aborts the write.
func (s *RequestStore) Update(id string, mutate func(*models.Request) error) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	next := cloneRequests(s.cache)
	idx := -1
	for i := range next {
		if next[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("request %s not found", id))
	}
	if err := mutate(&next[idx]); err != nil {
		return nil, err
	}
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.cache = next
	updated := next[idx]
	return &updated, nil
}

// NextID allocates the next REQ identifier.
func (s *RequestStore) NextID() (string, error) {
	all, err := s.Load()
	if err != nil {
		return "", err
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return NextID("REQ-", ids), nil
}

// ExportDataset returns the filtered requests as header plus rows in the
// persisted column layout, so a rendered CSV is byte-compatible with the
// table on disk.
func (s *RequestStore) ExportDataset(filter models.RequestFilter) ([]string, [][]string, error) {
	matched, err := s.List(filter)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, len(matched))
	for i, r := range matched {
		rows[i] = encodeRequestRow(r)
	}
	return requestHeader, rows, nil
}

func (s *RequestStore) ensureLoaded() error {
	if s.cache != nil {
		return nil
	}
	rows, err := readTable(s.path, requestHeader)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	requests := make([]models.Request, 0, len(rows))
	for i, row := range rows {
		r, err := decodeRequestRow(row)
		if err != nil {
			return appErrors.WithCause(appErrors.ErrStorageUnavailable,
				fmt.Errorf("%s row %d: %w", requestsFile, i+2, err))
		}
		requests = append(requests, r)
	}
	s.cache = requests
	return nil
}

func (s *RequestStore) persist(requests []models.Request) error {
	rows := make([][]string, len(requests))
	for i, r := range requests {
		rows[i] = encodeRequestRow(r)
	}
	if err := writeTable(s.path, requestHeader, rows); err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	return nil
}

func encodeRequestRow(r models.Request) []string {
	return []string{
		r.ID,
		r.Title,
		r.Description,
		string(r.Type),
		string(r.Priority),
		string(r.Status),
		r.RequesterName,
		r.RequesterEmail,
		r.RequesterDepartment,
		r.AssignedTo,
		r.CreatedDate.String(),
		r.DueDate.String(),
		r.CompletedDate.String(),
		r.Technology,
		r.RelatedProject,
	}
}

func decodeRequestRow(row []string) (models.Request, error) {
	var r models.Request
	var err error
	r.ID = row[0]
	r.Title = row[1]
	r.Description = row[2]
	if r.Type, err = models.ParseRequestType(row[3]); err != nil {
		return models.Request{}, err
	}
	if r.Priority, err = models.ParsePriority(row[4]); err != nil {
		return models.Request{}, err
	}
	if r.Status, err = models.ParseRequestStatus(row[5]); err != nil {
		return models.Request{}, err
	}
	r.RequesterName = row[6]
	r.RequesterEmail = row[7]
	r.RequesterDepartment = row[8]
	r.AssignedTo = row[9]
	if r.CreatedDate, err = models.ParseDate(row[10]); err != nil {
		return models.Request{}, err
	}
	if r.DueDate, err = models.ParseOptionalDate(row[11]); err != nil {
		return models.Request{}, err
	}
	if r.CompletedDate, err = models.ParseOptionalDate(row[12]); err != nil {
		return models.Request{}, err
	}
	r.Technology = row[13]
	r.RelatedProject = row[14]
	return r, nil
}

func cloneRequests(in []models.Request) []models.Request {
	out := make([]models.Request, len(in))
	copy(out, in)
	return out
}
