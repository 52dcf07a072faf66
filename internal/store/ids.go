package store

import (
	"fmt"
	"strconv"
	"strings"
)

// NextID allocates the next record ID for a prefix: one past the highest
// numeric suffix already present, zero-padded to three digits. An empty
// table starts at 1. IDs whose suffix is not numeric are skipped, so the
// allocator stays a monotonic high-water mark even over dirty data.
func NextID(prefix string, ids []string) string {
	max := 0
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n <= max {
			continue
		}
		max = n
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}

// NextFiservTicket allocates the next escalation ticket, FSV-<year>-<n>,
// one past the highest numeric suffix across all existing tickets with a
// floor of 2000. The year reflects when the escalation happens, but the
// sequence is shared across years.
func NextFiservTicket(year int, tickets []string) string {
	max := 1999
	for _, ticket := range tickets {
		parts := strings.Split(ticket, "-")
		if len(parts) != 3 || parts[0] != "FSV" {
			continue
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= max {
			continue
		}
		max = n
	}
	return fmt.Sprintf("FSV-%d-%d", year, max+1)
}
