package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		ids    []string
		want   string
	}{
		{name: "empty table starts at one", prefix: "REQ-", ids: nil, want: "REQ-001"},
		{name: "increments past highest", prefix: "REQ-", ids: []string{"REQ-001", "REQ-007", "REQ-003"}, want: "REQ-008"},
		{name: "gaps are never reused", prefix: "ERR-", ids: []string{"ERR-001", "ERR-005"}, want: "ERR-006"},
		{name: "foreign prefixes ignored", prefix: "PROJ-", ids: []string{"REQ-040", "PROJ-002"}, want: "PROJ-003"},
		{name: "non-numeric suffixes skipped", prefix: "REQ-", ids: []string{"REQ-abc", "REQ-004"}, want: "REQ-005"},
		{name: "widens past three digits", prefix: "REQ-", ids: []string{"REQ-999"}, want: "REQ-1000"},
		{name: "stays wide above one thousand", prefix: "REQ-", ids: []string{"REQ-1042"}, want: "REQ-1043"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.prefix, tt.ids))
		})
	}
}

func TestNextFiservTicket(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		tickets []string
		want    string
	}{
		{name: "no tickets uses floor", year: 2026, tickets: nil, want: "FSV-2026-2000"},
		{name: "increments past highest", year: 2026, tickets: []string{"FSV-2024-1847", "FSV-2025-2103"}, want: "FSV-2026-2104"},
		{name: "sequence shared across years", year: 2026, tickets: []string{"FSV-2026-2500", "FSV-2023-2700"}, want: "FSV-2026-2701"},
		{name: "malformed tickets skipped", year: 2026, tickets: []string{"FSV-bad", "FSV-2025-2001"}, want: "FSV-2026-2002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextFiservTicket(tt.year, tt.tickets))
		})
	}
}
