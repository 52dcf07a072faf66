package models

import (
	"fmt"
	"strings"
)

// ProjectStatus is the project lifecycle vocabulary.
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "Planning"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusTesting    ProjectStatus = "Testing"
	ProjectStatusDeployed   ProjectStatus = "Deployed"
	ProjectStatusOnHold     ProjectStatus = "On Hold"
)

// ParseProjectStatus validates a project status value.
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	switch ProjectStatus(raw) {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusTesting, ProjectStatusDeployed, ProjectStatusOnHold:
		return ProjectStatus(raw), nil
	}
	return "", fmt.Errorf("unknown project status %q", raw)
}

// ActiveProjectStatuses are the statuses counted as in-flight work.
var ActiveProjectStatuses = []ProjectStatus{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusTesting,
}

// PhaseStatus is the state of a single SDLC phase.
type PhaseStatus string

const (
	PhasePending  PhaseStatus = "Pending"
	PhaseComplete PhaseStatus = "Complete"
)

// ParsePhaseStatus validates a phase status value.
func ParsePhaseStatus(raw string) (PhaseStatus, error) {
	switch PhaseStatus(raw) {
	case PhasePending, PhaseComplete:
		return PhaseStatus(raw), nil
	}
	return "", fmt.Errorf("unknown phase status %q", raw)
}

// SDLCPhases is the fixed, ordered six-phase compliance checklist. The
// order never changes and every project carries all six entries.
var SDLCPhases = [ChecklistLen]string{
	"Requirements Gathering",
	"Design & Architecture",
	"Development",
	"Testing & QA",
	"Deployment",
	"Post-Deployment Review",
}

// ChecklistLen is the mandatory number of checklist entries.
const ChecklistLen = 6

// ChecklistPhase pairs a phase name with its completion state.
type ChecklistPhase struct {
	Name   string      `json:"name"`
	Status PhaseStatus `json:"status"`
}

// Checklist is the ordered SDLC checklist. A nil checklist means the
// persisted field failed to decode; derived values are then undefined.
type Checklist []ChecklistPhase

// NewChecklist returns a fresh checklist with every phase Pending.
func NewChecklist() Checklist {
	c := make(Checklist, ChecklistLen)
	for i, name := range SDLCPhases {
		c[i] = ChecklistPhase{Name: name, Status: PhasePending}
	}
	return c
}

// Valid reports whether the checklist carries exactly the six fixed phases.
func (c Checklist) Valid() bool {
	return len(c) == ChecklistLen
}

// CurrentPhase returns the first Pending phase, or the last phase when all
// are complete. ok is false when the checklist is undefined.
func (c Checklist) CurrentPhase() (string, bool) {
	if !c.Valid() {
		return "", false
	}
	for _, phase := range c {
		if phase.Status == PhasePending {
			return phase.Name, true
		}
	}
	return c[ChecklistLen-1].Name, true
}

// CompletionPercent returns 100 * complete / 6. ok is false when the
// checklist is undefined.
func (c Checklist) CompletionPercent() (float64, bool) {
	if !c.Valid() {
		return 0, false
	}
	complete := 0
	for _, phase := range c {
		if phase.Status == PhaseComplete {
			complete++
		}
	}
	return 100 * float64(complete) / float64(ChecklistLen), true
}

// CompleteThrough marks the first n phases Complete and the rest Pending,
// advancing the derived current phase to phase n (zero-based).
func (c Checklist) CompleteThrough(n int) {
	for i := range c {
		if i < n {
			c[i].Status = PhaseComplete
		} else {
			c[i].Status = PhasePending
		}
	}
}

// Clone returns an independent copy of the checklist.
func (c Checklist) Clone() Checklist {
	if c == nil {
		return nil
	}
	out := make(Checklist, len(c))
	copy(out, c)
	return out
}

// Project is one tracked development project with SDLC compliance state.
//
// Invariants: ActualCompletion is set iff Status is Deployed; the persisted
// "Current Phase" column always equals the checklist's derived current phase.
type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Status           ProjectStatus `json:"status"`
	StartDate        Date          `json:"start_date"`
	TargetCompletion Date          `json:"target_completion"`
	ActualCompletion Date          `json:"actual_completion"`
	TeamMembers      []string      `json:"team_members"`
	Checklist        Checklist     `json:"checklist,omitempty"`
	LinkedRequests   []string      `json:"linked_requests"`
}

// ProjectFilter combines a status membership predicate with a free-text
// search over name and description.
type ProjectFilter struct {
	Statuses []ProjectStatus
	Search   string
}

// Match reports whether the project satisfies every populated predicate.
func (f ProjectFilter) Match(p Project) bool {
	if len(f.Statuses) > 0 && !containsProjectStatus(f.Statuses, p.Status) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func containsProjectStatus(set []ProjectStatus, v ProjectStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
