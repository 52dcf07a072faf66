package models

import "fmt"

// RequestType classifies what kind of deliverable was asked for.
type RequestType string

const (
	RequestTypeCustomProgram RequestType = "Custom Program"
	RequestTypeSQLQuery      RequestType = "SQL Query"
	RequestTypeReport        RequestType = "Report"
	RequestTypeScript        RequestType = "Script"
)

// ParseRequestType validates a request type read from storage or input.
func ParseRequestType(raw string) (RequestType, error) {
	switch RequestType(raw) {
	case RequestTypeCustomProgram, RequestTypeSQLQuery, RequestTypeReport, RequestTypeScript:
		return RequestType(raw), nil
	}
	return "", fmt.Errorf("unknown request type %q", raw)
}

// Priority orders requests by urgency.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// ParsePriority validates a priority value.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(raw), nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// PriorityRank returns the sort weight of a priority, most urgent first.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// RequestStatus is the ordered request lifecycle.
type RequestStatus string

const (
	RequestStatusSubmitted  RequestStatus = "Submitted"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusTesting    RequestStatus = "Testing"
	RequestStatusCompleted  RequestStatus = "Completed"
)

// ParseRequestStatus validates a request status value.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	switch RequestStatus(raw) {
	case RequestStatusSubmitted, RequestStatusInProgress, RequestStatusTesting, RequestStatusCompleted:
		return RequestStatus(raw), nil
	}
	return "", fmt.Errorf("unknown request status %q", raw)
}

// Terminal reports whether no further transition is expected.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted
}

// UnassignedSentinel marks records without an owner. It is kept in raw
// distributions but excluded from per-person workload tallies.
const UnassignedSentinel = "Unassigned"

// Request is one programming request tracked by the team.
//
// Invariant: CompletedDate is set if and only if Status is Completed.
type Request struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Type                RequestType   `json:"type"`
	Priority            Priority      `json:"priority"`
	Status              RequestStatus `json:"status"`
	RequesterName       string        `json:"requester_name"`
	RequesterEmail      string        `json:"requester_email"`
	RequesterDepartment string        `json:"requester_department"`
	AssignedTo          string        `json:"assigned_to"`
	CreatedDate         Date          `json:"created_date"`
	DueDate             Date          `json:"due_date"`
	CompletedDate       Date          `json:"completed_date"`
	Technology          string        `json:"technology"`
	RelatedProject      string        `json:"related_project"`
}

// RequestFilter is a conjunction of field-membership predicates.
// An empty slice places no constraint on its field.
type RequestFilter struct {
	Statuses   []RequestStatus
	Types      []RequestType
	Priorities []Priority
	Assignees  []string
}

// Match reports whether the request satisfies every populated predicate.
func (f RequestFilter) Match(r Request) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, r.Type) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, r.Priority) {
		return false
	}
	if len(f.Assignees) > 0 && !containsString(f.Assignees, r.AssignedTo) {
		return false
	}
	return true
}

func containsStatus(set []RequestStatus, v RequestStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsType(set []RequestType, v RequestType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsPriority(set []Priority, v Priority) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
