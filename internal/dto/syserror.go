package dto

import "github.com/appforge-labs/devopshub/internal/models"

// CreateErrorInput is the payload for logging a system error.
type CreateErrorInput struct {
	ErrorCode   string `json:"error_code" validate:"required,max=50"`
	System      string `json:"system" validate:"required"`
	Severity    string `json:"severity" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// FixErrorInput carries optional resolution notes for a fix.
type FixErrorInput struct {
	ResolutionNotes string `json:"resolution_notes"`
}

// ErrorListQuery carries the repeatable query filters for the listing.
type ErrorListQuery struct {
	Statuses   []string
	Severities []string
	Systems    []string
	// Fiserv is "Yes", "No" or empty (no constraint).
	Fiserv string
}

// ErrorStats summarises an error listing.
type ErrorStats struct {
	Total        int `json:"total"`
	CriticalHigh int `json:"critical_high"`
	Open         int `json:"open"`
	Escalated    int `json:"escalated"`
}

// ErrorListResponse is the listing payload, most severe and newest first.
type ErrorListResponse struct {
	Items []models.SystemError `json:"items"`
	Stats ErrorStats           `json:"stats"`
}

// ErrorAnalyticsResponse carries the error-page aggregates. Nil rates and
// averages mean no data, never zero.
type ErrorAnalyticsResponse struct {
	BySystem             map[string]int     `json:"by_system"`
	EscalationRate       *float64           `json:"escalation_rate"`
	FixedInternallyRate  *float64           `json:"fixed_internally_rate"`
	AvgResolutionDays    *float64           `json:"avg_resolution_days"`
	ResolutionBySeverity map[string]float64 `json:"resolution_by_severity"`
}
