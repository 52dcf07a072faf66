package dto

import (
	"github.com/appforge-labs/devopshub/internal/analytics"
	"github.com/appforge-labs/devopshub/internal/models"
)

// CreateRequestInput is the payload for logging a new programming request.
type CreateRequestInput struct {
	Title               string `json:"title" validate:"required,max=200"`
	Description         string `json:"description" validate:"required"`
	Type                string `json:"type" validate:"required"`
	Priority            string `json:"priority" validate:"required"`
	RequesterName       string `json:"requester_name" validate:"required"`
	RequesterEmail      string `json:"requester_email" validate:"required,email"`
	RequesterDepartment string `json:"requester_department" validate:"required"`
	DueDate             string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Technology          string `json:"technology"`
	RelatedProject      string `json:"related_project"`
}

// StartRequestInput optionally assigns the request while starting it.
type StartRequestInput struct {
	AssignedTo string `json:"assigned_to"`
}

// RequestListQuery carries the repeatable query filters for the listing.
type RequestListQuery struct {
	Statuses   []string
	Types      []string
	Priorities []string
	Assignees  []string
}

// RequestStats summarises a request listing.
type RequestStats struct {
	Total        int `json:"total"`
	HighPriority int `json:"high_priority"`
	Unassigned   int `json:"unassigned"`
	Overdue      int `json:"overdue"`
}

// RequestListResponse is the listing payload, newest first.
type RequestListResponse struct {
	Items []models.Request `json:"items"`
	Stats RequestStats     `json:"stats"`
}

// RequestAnalyticsResponse carries the request-page aggregates.
type RequestAnalyticsResponse struct {
	ByDepartment       map[string]int         `json:"by_department"`
	ByTechnology       map[string]int         `json:"by_technology"`
	MonthlyCompletions []analytics.MonthCount `json:"monthly_completions"`
}
