package dto

// CreateExportInput requests an asynchronous file export. Filters reuse
// the listing vocabulary of the chosen entity; irrelevant ones are
// ignored.
type CreateExportInput struct {
	Entity  string        `json:"entity" validate:"required,oneof=requests errors projects"`
	Format  string        `json:"format" validate:"required,oneof=csv pdf"`
	Filters ExportFilters `json:"filters"`
}

// ExportFilters is the union of the per-entity filter sets.
type ExportFilters struct {
	Statuses   []string `json:"statuses"`
	Types      []string `json:"types"`
	Priorities []string `json:"priorities"`
	Assignees  []string `json:"assignees"`
	Severities []string `json:"severities"`
	Systems    []string `json:"systems"`
	// Fiserv is "Yes", "No" or empty.
	Fiserv string `json:"fiserv"`
	Search string `json:"search"`
}

// ExportJobView is the externally visible state of an export job.
type ExportJobView struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	Format      string `json:"format"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	Error       string `json:"error,omitempty"`
}
