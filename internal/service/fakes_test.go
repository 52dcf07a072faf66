package service

import (
	"fmt"
	"os"
	"time"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

type fakeRequestStore struct {
	records []models.Request
	nextID  string
	err     error
}

func (f *fakeRequestStore) List(filter models.RequestFilter) ([]models.Request, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Request, 0, len(f.records))
	for _, r := range f.records {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) FindByID(id string) (*models.Request, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("request %s not found", id))
}

func (f *fakeRequestStore) Append(r models.Request) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeRequestStore) Update(id string, mutate func(*models.Request) error) (*models.Request, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			if err := mutate(&f.records[i]); err != nil {
				return nil, err
			}
			updated := f.records[i]
			return &updated, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("request %s not found", id))
}

func (f *fakeRequestStore) NextID() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.nextID == "" {
		return "REQ-001", nil
	}
	return f.nextID, nil
}

type fakeErrorStore struct {
	records []models.SystemError
	nextID  string
	ticket  string
	err     error
}

func (f *fakeErrorStore) List(filter models.ErrorFilter) ([]models.SystemError, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.SystemError, 0, len(f.records))
	for _, e := range f.records {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeErrorStore) FindByID(id string) (*models.SystemError, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("error %s not found", id))
}

func (f *fakeErrorStore) Append(e models.SystemError) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, e)
	return nil
}

func (f *fakeErrorStore) Update(id string, mutate func(*models.SystemError) error) (*models.SystemError, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			if err := mutate(&f.records[i]); err != nil {
				return nil, err
			}
			updated := f.records[i]
			return &updated, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("error %s not found", id))
}

func (f *fakeErrorStore) NextID() (string, error) {
	if f.nextID == "" {
		return "ERR-001", nil
	}
	return f.nextID, nil
}

func (f *fakeErrorStore) NextFiservTicket(year int) (string, error) {
	if f.ticket == "" {
		return fmt.Sprintf("FSV-%d-2000", year), nil
	}
	return f.ticket, nil
}

type fakeProjectStore struct {
	records []models.Project
	nextID  string
	err     error
}

func (f *fakeProjectStore) List(filter models.ProjectFilter) ([]models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Project, 0, len(f.records))
	for _, p := range f.records {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) FindByID(id string) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s not found", id))
}

func (f *fakeProjectStore) Append(p models.Project) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, p)
	return nil
}

func (f *fakeProjectStore) Update(id string, mutate func(*models.Project) error) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			if err := mutate(&f.records[i]); err != nil {
				return nil, err
			}
			updated := f.records[i]
			return &updated, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s not found", id))
}

func (f *fakeProjectStore) NextID() (string, error) {
	if f.nextID == "" {
		return "PROJ-001", nil
	}
	return f.nextID, nil
}

type fakeExporter struct {
	header []string
	rows   [][]string
	err    error
}

func (f *fakeExporter) exportDataset() ([]string, [][]string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.header, f.rows, nil
}

type fakeRequestExporter struct{ fakeExporter }

func (f *fakeRequestExporter) ExportDataset(models.RequestFilter) ([]string, [][]string, error) {
	return f.exportDataset()
}

type fakeErrorExporter struct{ fakeExporter }

func (f *fakeErrorExporter) ExportDataset(models.ErrorFilter) ([]string, [][]string, error) {
	return f.exportDataset()
}

type fakeProjectExporter struct{ fakeExporter }

func (f *fakeProjectExporter) ExportDataset(models.ProjectFilter) ([]string, [][]string, error) {
	return f.exportDataset()
}

type fakeFileStorage struct {
	saved   map[string][]byte
	saveErr error
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{saved: make(map[string][]byte)}
}

func (f *fakeFileStorage) Save(filename string, data []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved[filename] = data
	return filename, nil
}

func (f *fakeFileStorage) Open(filename string) (*os.File, error) {
	if _, ok := f.saved[filename]; !ok {
		return nil, os.ErrNotExist
	}
	return nil, nil
}

func (f *fakeFileStorage) CleanupOlderThan(time.Duration) ([]string, error) {
	return nil, nil
}

func fixedNow(value string) func() time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
