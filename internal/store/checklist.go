package store

import (
	"fmt"
	"strings"

	"github.com/appforge-labs/devopshub/internal/models"
	appErrors "github.com/appforge-labs/devopshub/pkg/errors"
)

const (
	checklistPhaseSep  = "|"
	checklistStatusSep = ":"
)

// EncodeChecklist renders the six-phase checklist into its persisted
// "Phase:Status|Phase:Status|..." form. Only a well-formed checklist can
// be encoded; an undefined one must never reach the writer.
func EncodeChecklist(c models.Checklist) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("checklist has %d phases, want %d", len(c), models.ChecklistLen)
	}
	parts := make([]string, len(c))
	for i, phase := range c {
		parts[i] = phase.Name + checklistStatusSep + string(phase.Status)
	}
	return strings.Join(parts, checklistPhaseSep), nil
}

// DecodeChecklist parses a persisted checklist field. Every failure mode
// (wrong phase count, missing separator, unknown phase name or status)
// comes back as a MalformedChecklist error so callers can keep the record
// with an undefined checklist instead of failing the whole load.
func DecodeChecklist(raw string) (models.Checklist, error) {
	entries := strings.Split(raw, checklistPhaseSep)
	if len(entries) != models.ChecklistLen {
		return nil, appErrors.WithCause(appErrors.ErrMalformedChecklist,
			fmt.Errorf("checklist has %d entries, want %d", len(entries), models.ChecklistLen))
	}
	out := make(models.Checklist, models.ChecklistLen)
	for i, entry := range entries {
		name, status, found := strings.Cut(entry, checklistStatusSep)
		if !found {
			return nil, appErrors.WithCause(appErrors.ErrMalformedChecklist,
				fmt.Errorf("checklist entry %q missing status separator", entry))
		}
		if name != models.SDLCPhases[i] {
			return nil, appErrors.WithCause(appErrors.ErrMalformedChecklist,
				fmt.Errorf("checklist entry %d is %q, want %q", i, name, models.SDLCPhases[i]))
		}
		parsed, err := models.ParsePhaseStatus(status)
		if err != nil {
			return nil, appErrors.WithCause(appErrors.ErrMalformedChecklist, err)
		}
		out[i] = models.ChecklistPhase{Name: name, Status: parsed}
	}
	return out, nil
}
