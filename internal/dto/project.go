package dto

import "github.com/appforge-labs/devopshub/internal/models"

// CreateProjectInput is the payload for opening a new project.
type CreateProjectInput struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Description      string   `json:"description" validate:"required"`
	StartDate        string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	TargetCompletion string   `json:"target_completion" validate:"omitempty,datetime=2006-01-02"`
	TeamMembers      []string `json:"team_members" validate:"required,min=1,dive,required"`
	LinkedRequests   []string `json:"linked_requests"`
}

// ProjectListQuery carries status filters plus a free-text search.
type ProjectListQuery struct {
	Statuses []string
	Search   string
}

// LinkedRequestRef resolves a linked request ID to its title. Missing is
// set when the link dangles.
type LinkedRequestRef struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

// ProjectView is a project enriched with derived SDLC values. CurrentPhase
// and CompletionPercent are nil when the persisted checklist is malformed.
type ProjectView struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	Status            models.ProjectStatus `json:"status"`
	StartDate         models.Date          `json:"start_date"`
	TargetCompletion  models.Date          `json:"target_completion"`
	ActualCompletion  models.Date          `json:"actual_completion"`
	TeamMembers       []string             `json:"team_members"`
	Checklist         models.Checklist     `json:"checklist,omitempty"`
	CurrentPhase      *string              `json:"current_phase"`
	CompletionPercent *float64             `json:"completion_percent"`
	LinkedRequests    []LinkedRequestRef   `json:"linked_requests"`
}

// ProjectStats summarises a project listing.
type ProjectStats struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Testing    int `json:"testing"`
	Deployed   int `json:"deployed"`
}

// ProjectListResponse is the listing payload in table order.
type ProjectListResponse struct {
	Items []ProjectView `json:"items"`
	Stats ProjectStats  `json:"stats"`
}

// ProjectTimelineEntry positions an active project against its target.
type ProjectTimelineEntry struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Status           models.ProjectStatus `json:"status"`
	TargetCompletion models.Date          `json:"target_completion"`
	DaysUntilTarget  int                  `json:"days_until_target"`
}

// ProjectAnalyticsResponse carries the project-page aggregates.
type ProjectAnalyticsResponse struct {
	ByStatus              map[string]int         `json:"by_status"`
	AvgCompletion         *float64               `json:"avg_completion"`
	AvgCompletionByStatus map[string]float64     `json:"avg_completion_by_status"`
	Timeline              []ProjectTimelineEntry `json:"timeline"`
}
