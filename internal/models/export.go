package models

import (
	"fmt"
	"time"
)

// ExportEntity selects which record table an export reads.
type ExportEntity string

const (
	ExportEntityRequests ExportEntity = "requests"
	ExportEntityErrors   ExportEntity = "errors"
	ExportEntityProjects ExportEntity = "projects"
)

// ParseExportEntity validates an export entity value.
func ParseExportEntity(raw string) (ExportEntity, error) {
	switch ExportEntity(raw) {
	case ExportEntityRequests, ExportEntityErrors, ExportEntityProjects:
		return ExportEntity(raw), nil
	}
	return "", fmt.Errorf("unknown export entity %q", raw)
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat validates an export format value.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(raw) {
	case ExportFormatCSV, ExportFormatPDF:
		return ExportFormat(raw), nil
	}
	return "", fmt.Errorf("unknown export format %q", raw)
}

// ExportStatus is the lifecycle of an asynchronous export job.
type ExportStatus string

const (
	ExportStatusPending    ExportStatus = "pending"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusFailed     ExportStatus = "failed"
)

// ExportJob tracks one queued export through rendering and download.
type ExportJob struct {
	ID          string
	Entity      ExportEntity
	Format      ExportFormat
	Status      ExportStatus
	FilePath    string
	Token       string
	DownloadURL string
	Error       string
	CreatedAt   time.Time
	CompletedAt time.Time
	ExpiresAt   time.Time
}
