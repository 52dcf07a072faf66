package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

const errorsFile = "errors.csv"

var errorHeader = []string{
	"ID", "Error Code", "System", "Severity", "Description", "Status",
	"Resolution Notes", "Date Reported", "Date Resolved",
	"Reported to Fiserv", "Fiserv Ticket",
}

// ErrorStore serves the system-error table from a flat CSV file.
type ErrorStore struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	cache []models.SystemError
}

// NewErrorStore creates a store over <dataDir>/errors.csv.
func NewErrorStore(dataDir string, logger *zap.Logger) *ErrorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorStore{
		path:   filepath.Join(dataDir, errorsFile),
		logger: logger,
	}
}

// Bootstrap writes a header-only table when the file does not exist yet.
func (s *ErrorStore) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := bootstrapTable(s.path, errorHeader)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	if created {
		s.logger.Info("table created", zap.String("path", s.path))
	}
	return nil
}

// Load returns every error record, reading the file only when the cache
// is cold.
func (s *ErrorStore) Load() ([]models.SystemError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return cloneErrors(s.cache), nil
}

// Invalidate drops the cache so the next read hits the file.
func (s *ErrorStore) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Reload drops the cache and reads the table fresh.
func (s *ErrorStore) Reload() ([]models.SystemError, error) {
	s.Invalidate()
	return s.Load()
}

// List returns the errors matching the filter, in table order.
func (s *ErrorStore) List(filter models.ErrorFilter) ([]models.SystemError, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]models.SystemError, 0, len(all))
	for _, e := range all {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindByID returns the error record with the given ID.
func (s *ErrorStore) FindByID(id string) (*models.SystemError, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("error %s not found", id))
}

// Append persists a new error record at the end of the table.
func (s *ErrorStore) Append(e models.SystemError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := append(cloneErrors(s.cache), e)
	if err := s.persist(next); err != nil {
		return err
	}
	s.cache = next
	return nil
}

// Update applies mutate to the record with the given ID and rewrites the
// table. An unknown ID returns RecordNotFound without touching the file.
func (s *ErrorStore) Update(id string, mutate func(*models.SystemError) error) (*models.SystemError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	next := cloneErrors(s.cache)
	idx := -1
	for i := range next {
		if next[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("error %s not found", id))
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

// NextID allocates the next ERR identifier.
func (s *ErrorStore) NextID() (string, error) {
	all, err := s.Load()
	if err != nil {
		return "", err
	}
	ids := make([]string, len(all))
	for i, e := range all {
		ids[i] = e.ID
	}
	return NextID("ERR-", ids), nil
}

// NextFiservTicket allocates the next escalation ticket for the given year,
// scanning every existing ticket in the table.
func (s *ErrorStore) NextFiservTicket(year int) (string, error) {
	all, err := s.Load()
	if err != nil {
		return "", err
	}
	tickets := make([]string, 0, len(all))
	for _, e := range all {
		if e.FiservTicket != "" {
			tickets = append(tickets, e.FiservTicket)
		}
	}
	return NextFiservTicket(year, tickets), nil
}

// ExportDataset returns the filtered errors as header plus rows in the
// persisted column layout, so a rendered CSV is byte-compatible with the
// table on disk.
func (s *ErrorStore) ExportDataset(filter models.ErrorFilter) ([]string, [][]string, error) {
	matched, err := s.List(filter)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, len(matched))
	for i, e := range matched {
		rows[i] = encodeErrorRow(e)
	}
	return errorHeader, rows, nil
}

func (s *ErrorStore) ensureLoaded() error {
	if s.cache != nil {
		return nil
	}
	rows, err := readTable(s.path, errorHeader)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	records := make([]models.SystemError, 0, len(rows))
	for i, row := range rows {
		e, err := decodeErrorRow(row)
		if err != nil {
			return appErrors.WithCause(appErrors.ErrStorageUnavailable,
				fmt.Errorf("%s row %d: %w", errorsFile, i+2, err))
		}
		records = append(records, e)
	}
	s.cache = records
	return nil
}

func (s *ErrorStore) persist(records []models.SystemError) error {
	rows := make([][]string, len(records))
	for i, e := range records {
		rows[i] = encodeErrorRow(e)
	}
	if err := writeTable(s.path, errorHeader, rows); err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	return nil
}

func encodeErrorRow(e models.SystemError) []string {
	reported := "No"
	if e.ReportedToFiserv {
		reported = "Yes"
	}
	return []string{
		e.ID,
		e.ErrorCode,
		string(e.System),
		string(e.Severity),
		e.Description,
		string(e.Status),
		e.ResolutionNotes,
		e.DateReported.String(),
		e.DateResolved.String(),
		reported,
		e.FiservTicket,
	}
}

func decodeErrorRow(row []string) (models.SystemError, error) {
	var e models.SystemError
	var err error
	e.ID = row[0]
	e.ErrorCode = row[1]
	if e.System, err = models.ParseErrorSystem(row[2]); err != nil {
		return models.SystemError{}, err
	}
	if e.Severity, err = models.ParsePriority(row[3]); err != nil {
		return models.SystemError{}, err
	}
	e.Description = row[4]
	if e.Status, err = models.ParseErrorStatus(row[5]); err != nil {
		return models.SystemError{}, err
	}
	e.ResolutionNotes = row[6]
	if e.DateReported, err = models.ParseDate(row[7]); err != nil {
		return models.SystemError{}, err
	}
	if e.DateResolved, err = models.ParseOptionalDate(row[8]); err != nil {
		return models.SystemError{}, err
	}
	switch row[9] {
	case "Yes":
		e.ReportedToFiserv = true
	case "No":
		e.ReportedToFiserv = false
	default:
		return models.SystemError{}, fmt.Errorf("unknown Reported to Fiserv value %q", row[9])
	}
	e.FiservTicket = row[10]
	return e, nil
}

func cloneErrors(in []models.SystemError) []models.SystemError {
	out := make([]models.SystemError, len(in))
	copy(out, in)
	return out
}
