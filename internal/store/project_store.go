package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

const projectsFile = "projects.csv"

var projectHeader = []string{
	"ID", "Project Name", "Description", "Status", "Start Date",
	"Target Completion", "Actual Completion", "Team Members",
	"SDLC Checklist", "Linked Requests", "Current Phase",
}

const (
	teamMemberSep    = ", "
	linkedRequestSep = ","
)

// projectRow pairs a decoded project with the raw checklist columns. When
// the checklist failed to decode the record stays usable and the raw text
// round-trips unchanged through full-table rewrites.
type projectRow struct {
	project      models.Project
	rawChecklist string
	rawPhase     string
}

// ProjectStore serves the project table from a flat CSV file.
type ProjectStore struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	cache []projectRow
}

// NewProjectStore creates a store over <dataDir>/projects.csv.
func NewProjectStore(dataDir string, logger *zap.Logger) *ProjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectStore{
		path:   filepath.Join(dataDir, projectsFile),
		logger: logger,
	}
}

// Bootstrap writes a header-only table when the file does not exist yet.
func (s *ProjectStore) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := bootstrapTable(s.path, projectHeader)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	if created {
		s.logger.Info("table created", zap.String("path", s.path))
	}
	return nil
}

// Load returns every project, reading the file only when the cache is cold.
// Projects whose persisted checklist is malformed come back with a nil
// Checklist.
func (s *ProjectStore) Load() ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]models.Project, len(s.cache))
	for i, row := range s.cache {
		out[i] = cloneProject(row.project)
	}
	return out, nil
}

// Invalidate drops the cache so the next read hits the file.
func (s *ProjectStore) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Reload drops the cache and reads the table fresh.
func (s *ProjectStore) Reload() ([]models.Project, error) {
	s.Invalidate()
	return s.Load()
}

// List returns the projects matching the filter, in table order.
func (s *ProjectStore) List(filter models.ProjectFilter) ([]models.Project, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Project, 0, len(all))
	for _, p := range all {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByID returns the project with the given ID.
func (s *ProjectStore) FindByID(id string) (*models.Project, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s not found", id))
}

// Append persists a new project at the end of the table. The project must
// carry a well-formed checklist.
func (s *ProjectStore) Append(p models.Project) error {
	if !p.Checklist.Valid() {
		return appErrors.WithCause(appErrors.ErrMalformedChecklist,
			fmt.Errorf("project %s has no usable checklist", p.ID))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := append(cloneRows(s.cache), projectRow{project: cloneProject(p)})
	if err := s.persist(next); err != nil {
		return err
	}
	s.cache = next
	return nil
}

// Update applies mutate to the project with the given ID and rewrites the
// table. An unknown ID returns RecordNotFound without touching the file.
// When mutate leaves a valid checklist the raw malformed text, if any, is
// replaced by the repaired encoding.
func (s *ProjectStore) Update(id string, mutate func(*models.Project) error) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	next := cloneRows(s.cache)
	idx := -1
	for i := range next {
		if next[i].project.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s not found", id))
	}
	if err := mutate(&next[idx].project); err != nil {
		return nil, err
	}
	if next[idx].project.Checklist.Valid() {
		next[idx].rawChecklist = ""
		next[idx].rawPhase = ""
	}
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.cache = next
	updated := cloneProject(next[idx].project)
	return &updated, nil
}

// NextID allocates the next PROJ identifier.
func (s *ProjectStore) NextID() (string, error) {
	all, err := s.Load()
	if err != nil {
		return "", err
	}
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	return NextID("PROJ-", ids), nil
}

// ExportDataset returns the filtered projects as header plus rows in the
// persisted column layout, raw checklist text included, so a rendered CSV
// is byte-compatible with the table on disk.
func (s *ProjectStore) ExportDataset(filter models.ProjectFilter) ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, nil, err
	}
	rows := make([][]string, 0, len(s.cache))
	for _, row := range s.cache {
		if filter.Match(row.project) {
			rows = append(rows, encodeProjectRow(row))
		}
	}
	return projectHeader, rows, nil
}

func (s *ProjectStore) ensureLoaded() error {
	if s.cache != nil {
		return nil
	}
	rows, err := readTable(s.path, projectHeader)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	projects := make([]projectRow, 0, len(rows))
	for i, row := range rows {
		p, err := s.decodeProjectRow(row)
		if err != nil {
			return appErrors.WithCause(appErrors.ErrStorageUnavailable,
				fmt.Errorf("%s row %d: %w", projectsFile, i+2, err))
		}
		projects = append(projects, p)
	}
	s.cache = projects
	return nil
}

func (s *ProjectStore) persist(rows []projectRow) error {
	encoded := make([][]string, len(rows))
	for i, row := range rows {
		encoded[i] = encodeProjectRow(row)
	}
	if err := writeTable(s.path, projectHeader, encoded); err != nil {
		return appErrors.WithCause(appErrors.ErrStorageUnavailable, err)
	}
	return nil
}

func encodeProjectRow(row projectRow) []string {
	p := row.project
	checklist := row.rawChecklist
	phase := row.rawPhase
	if p.Checklist.Valid() {
		checklist, _ = EncodeChecklist(p.Checklist)
		phase, _ = p.Checklist.CurrentPhase()
	}
	return []string{
		p.ID,
		p.Name,
		p.Description,
		string(p.Status),
		p.StartDate.String(),
		p.TargetCompletion.String(),
		p.ActualCompletion.String(),
		strings.Join(p.TeamMembers, teamMemberSep),
		checklist,
		strings.Join(p.LinkedRequests, linkedRequestSep),
		phase,
	}
}

func (s *ProjectStore) decodeProjectRow(row []string) (projectRow, error) {
	var p models.Project
	var err error
	p.ID = row[0]
	p.Name = row[1]
	p.Description = row[2]
	if p.Status, err = models.ParseProjectStatus(row[3]); err != nil {
		return projectRow{}, err
	}
	if p.StartDate, err = models.ParseDate(row[4]); err != nil {
		return projectRow{}, err
	}
	if p.TargetCompletion, err = models.ParseOptionalDate(row[5]); err != nil {
		return projectRow{}, err
	}
	if p.ActualCompletion, err = models.ParseOptionalDate(row[6]); err != nil {
		return projectRow{}, err
	}
	p.TeamMembers = splitList(row[7], teamMemberSep)
	p.LinkedRequests = splitList(row[9], linkedRequestSep)

	out := projectRow{}
	checklist, err := DecodeChecklist(row[8])
	if err != nil {
		// Recoverable: keep the record, leave derived values undefined
		// and round-trip the raw text untouched.
		s.logger.Warn("project carries malformed SDLC checklist",
			zap.String("project_id", p.ID),
			zap.Error(err))
		out.rawChecklist = row[8]
		out.rawPhase = row[10]
	} else {
		p.Checklist = checklist
	}
	out.project = p
	return out, nil
}

func splitList(raw, sep string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, sep)
}

func cloneProject(p models.Project) models.Project {
	out := p
	out.Checklist = p.Checklist.Clone()
	if p.TeamMembers != nil {
		out.TeamMembers = append([]string(nil), p.TeamMembers...)
	}
	if p.LinkedRequests != nil {
		out.LinkedRequests = append([]string(nil), p.LinkedRequests...)
	}
	return out
}

func cloneRows(in []projectRow) []projectRow {
	out := make([]projectRow, len(in))
	for i, row := range in {
		out[i] = projectRow{
			project:      cloneProject(row.project),
			rawChecklist: row.rawChecklist,
			rawPhase:     row.rawPhase,
		}
	}
	return out
}
