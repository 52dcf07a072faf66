package export

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"ID", "Title"},
		Rows:    [][]string{{"REQ-001", "Monthly GL extract"}},
	}, "Requests")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))

	_, err = exporter.Render(Dataset{}, "empty")
	assert.Error(t, err)
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short", 40))

	long := truncateCell("a description considerably longer than any narrow column", 16)
	assert.True(t, utf8.ValidString(long))
	assert.Contains(t, long, "…")

	// Multi-byte text truncates on rune boundaries, never mid-character.
	accented := truncateCell("Réconciliation générale des comptes du grand livre", 16)
	assert.True(t, utf8.ValidString(accented))
}
