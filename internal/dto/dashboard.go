package dto

import "github.com/appforge-labs/devopshub/internal/models"

// DashboardResponse is the landing-page snapshot across all three tables.
// All of it is computed against a single "today" captured when the
// snapshot is built.
type DashboardResponse struct {
	Requests        DashboardRequests `json:"requests"`
	Errors          DashboardErrors   `json:"errors"`
	Projects        DashboardProjects `json:"projects"`
	RecentRequests  []models.Request  `json:"recent_requests"`
	RequestWorkload map[string]int    `json:"request_workload"`
	TeamWorkload    map[string]int    `json:"team_workload"`
	GeneratedAt     string            `json:"generated_at"`
}

// DashboardRequests summarises the request table. AvgResolutionDays spans
// creation to completion and is nil until something has been completed.
type DashboardRequests struct {
	Total             int            `json:"total"`
	Open              int            `json:"open"`
	Overdue           int            `json:"overdue"`
	ByStatus          map[string]int `json:"by_status"`
	ByType            map[string]int `json:"by_type"`
	AvgResolutionDays *float64       `json:"avg_resolution_days"`
}

// SeverityCount is one bar of the severity distribution. The slice order
// is always Low, Medium, High, Critical, zero-filled.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// DashboardErrors summarises the error table. AvgResolutionDays is nil
// when nothing has been resolved yet.
type DashboardErrors struct {
	Total             int             `json:"total"`
	Open              int             `json:"open"`
	BySeverity        []SeverityCount `json:"by_severity"`
	AvgResolutionDays *float64        `json:"avg_resolution_days"`
}

// DashboardProjects summarises the project table.
type DashboardProjects struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	ByStatus map[string]int `json:"by_status"`
}
