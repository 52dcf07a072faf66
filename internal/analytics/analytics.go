// Package analytics computes dashboard aggregates over in-memory record
// slices. Every function is pure: callers capture "now" once and pass it
// down, so a single dashboard render sees one consistent today.
package analytics

import (
	"sort"
	"time"

	"github.com/appforge-labs/devopshub/internal/models"
)

// CountBy tallies records by an extracted key. Empty input yields an
// empty, non-nil map.
func CountBy[T any](records []T, key func(T) string) map[string]int {
	out := make(map[string]int, len(records))
	for _, r := range records {
		out[key(r)]++
	}
	return out
}

// AverageResolutionDays averages DateReported..DateResolved over resolved
// errors. ok is false when no error has been resolved, which renders as
// "no data" rather than zero days.
func AverageResolutionDays(errs []models.SystemError) (float64, bool) {
	total, n := 0, 0
	for _, e := range errs {
		if e.DateResolved.IsZero() {
			continue
		}
		total += e.DateReported.DaysUntil(e.DateResolved)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

// AverageRequestResolutionDays averages CreatedDate..CompletedDate over
// completed requests. ok is false when nothing has been completed.
func AverageRequestResolutionDays(requests []models.Request) (float64, bool) {
	total, n := 0, 0
	for _, r := range requests {
		if r.CompletedDate.IsZero() {
			continue
		}
		total += r.CreatedDate.DaysUntil(r.CompletedDate)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

// AverageResolutionBySeverity splits the resolution average per severity.
// Severities with no resolved errors are absent from the result.
func AverageResolutionBySeverity(errs []models.SystemError) map[models.Severity]float64 {
	totals := make(map[models.Severity]int)
	counts := make(map[models.Severity]int)
	for _, e := range errs {
		if e.DateResolved.IsZero() {
			continue
		}
		totals[e.Severity] += e.DateReported.DaysUntil(e.DateResolved)
		counts[e.Severity]++
	}
	out := make(map[models.Severity]float64, len(totals))
	for sev, total := range totals {
		out[sev] = float64(total) / float64(counts[sev])
	}
	return out
}

// EscalationRate is the percentage of errors reported to Fiserv. ok is
// false over an empty table.
func EscalationRate(errs []models.SystemError) (float64, bool) {
	if len(errs) == 0 {
		return 0, false
	}
	escalated := 0
	for _, e := range errs {
		if e.ReportedToFiserv {
			escalated++
		}
	}
	return 100 * float64(escalated) / float64(len(errs)), true
}

// OverdueCount counts open requests whose due date has passed. Requests
// without a due date are never overdue.
func OverdueCount(requests []models.Request, today models.Date) int {
	n := 0
	for _, r := range requests {
		if r.Status.Terminal() || r.DueDate.IsZero() {
			continue
		}
		if r.DueDate.Before(today) {
			n++
		}
	}
	return n
}

// WorkloadByAssignee counts open requests per assignee. The Unassigned
// sentinel never appears: it is a backlog, not a person's workload.
func WorkloadByAssignee(requests []models.Request) map[string]int {
	out := make(map[string]int)
	for _, r := range requests {
		if r.Status.Terminal() || r.AssignedTo == models.UnassignedSentinel || r.AssignedTo == "" {
			continue
		}
		out[r.AssignedTo]++
	}
	return out
}

// TeamWorkload counts in-flight projects (In Progress, Testing) per team
// member. A member on three such projects counts three times; the
// Unassigned sentinel is never a person's load.
func TeamWorkload(projects []models.Project) map[string]int {
	out := make(map[string]int)
	for _, p := range projects {
		if p.Status != models.ProjectStatusInProgress && p.Status != models.ProjectStatusTesting {
			continue
		}
		for _, member := range p.TeamMembers {
			if member == models.UnassignedSentinel || member == "" {
				continue
			}
			out[member]++
		}
	}
	return out
}

// AverageChecklistCompletion averages SDLC completion percent across
// projects with a usable checklist. ok is false when none qualifies.
func AverageChecklistCompletion(projects []models.Project) (float64, bool) {
	total, n := 0.0, 0
	for _, p := range projects {
		percent, ok := p.Checklist.CompletionPercent()
		if !ok {
			continue
		}
		total += percent
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// MonthCount is one month's completion tally, months ordered oldest first.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyCompletions buckets completed requests by completion month over
// the trailing window ending at today's month. Months with no completions
// still appear with a zero count.
func MonthlyCompletions(requests []models.Request, months int, today models.Date) []MonthCount {
	if months <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, r := range requests {
		if r.CompletedDate.IsZero() {
			continue
		}
		counts[r.CompletedDate.Time().Format("2006-01")]++
	}
	out := make([]MonthCount, 0, months)
	// Anchor on the first of the month so stepping back from a day like
	// the 31st cannot normalize into the wrong month.
	y, m, _ := today.Time().Date()
	anchor := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	for i := months - 1; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0).Format("2006-01")
		out = append(out, MonthCount{Month: month, Count: counts[month]})
	}
	return out
}

// RecentRequests returns the n most recently created requests, newest
// first. Ties keep table order.
func RecentRequests(requests []models.Request, n int) []models.Request {
	out := make([]models.Request, len(requests))
	copy(out, requests)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].CreatedDate.Before(out[i].CreatedDate)
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
