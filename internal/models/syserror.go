package models

import "fmt"

// ErrorSystem names which banking system produced an error.
type ErrorSystem string

const (
	SystemDatasafe          ErrorSystem = "Datasafe"
	SystemKeystone          ErrorSystem = "Keystone"
	SystemCustomIntegration ErrorSystem = "Custom Integration"
)

// ParseErrorSystem validates a system value.
func ParseErrorSystem(raw string) (ErrorSystem, error) {
	switch ErrorSystem(raw) {
	case SystemDatasafe, SystemKeystone, SystemCustomIntegration:
		return ErrorSystem(raw), nil
	}
	return "", fmt.Errorf("unknown system %q", raw)
}

// Severity shares the Low..Critical vocabulary with request priorities.
type Severity = Priority

// ErrorStatus is the triage lifecycle for system errors.
type ErrorStatus string

const (
	ErrorStatusNew              ErrorStatus = "New"
	ErrorStatusInvestigating    ErrorStatus = "Investigating"
	ErrorStatusFixed            ErrorStatus = "Fixed"
	ErrorStatusReportedToFiserv ErrorStatus = "Reported to Fiserv"
)

// ParseErrorStatus validates an error status value.
func ParseErrorStatus(raw string) (ErrorStatus, error) {
	switch ErrorStatus(raw) {
	case ErrorStatusNew, ErrorStatusInvestigating, ErrorStatusFixed, ErrorStatusReportedToFiserv:
		return ErrorStatus(raw), nil
	}
	return "", fmt.Errorf("unknown error status %q", raw)
}

// Terminal reports whether the error reached a resolved state.
func (s ErrorStatus) Terminal() bool {
	return s == ErrorStatusFixed || s == ErrorStatusReportedToFiserv
}

// SystemError is one logged error from a monitored system.
//
// Invariants: DateResolved is set iff Status is terminal; ReportedToFiserv
// mirrors Status == "Reported to Fiserv"; FiservTicket is present iff
// ReportedToFiserv.
type SystemError struct {
	ID               string      `json:"id"`
	ErrorCode        string      `json:"error_code"`
	System           ErrorSystem `json:"system"`
	Severity         Severity    `json:"severity"`
	Description      string      `json:"description"`
	Status           ErrorStatus `json:"status"`
	ResolutionNotes  string      `json:"resolution_notes"`
	DateReported     Date        `json:"date_reported"`
	DateResolved     Date        `json:"date_resolved"`
	ReportedToFiserv bool        `json:"reported_to_fiserv"`
	FiservTicket     string      `json:"fiserv_ticket"`
}

// ErrorFilter is a conjunction of field-membership predicates over errors.
type ErrorFilter struct {
	Statuses   []ErrorStatus
	Severities []Severity
	Systems    []ErrorSystem
	// Escalated, when non-nil, keeps only records whose ReportedToFiserv
	// flag matches.
	Escalated *bool
}

// Match reports whether the error satisfies every populated predicate.
func (f ErrorFilter) Match(e SystemError) bool {
	if len(f.Statuses) > 0 && !containsErrorStatus(f.Statuses, e.Status) {
		return false
	}
	if len(f.Severities) > 0 && !containsPriority(f.Severities, e.Severity) {
		return false
	}
	if len(f.Systems) > 0 && !containsSystem(f.Systems, e.System) {
		return false
	}
	if f.Escalated != nil && e.ReportedToFiserv != *f.Escalated {
		return false
	}
	return true
}

func containsErrorStatus(set []ErrorStatus, v ErrorStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsSystem(set []ErrorSystem, v ErrorSystem) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
