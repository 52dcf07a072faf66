package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// readTable parses a persisted CSV table and verifies its header row.
// Callers treat any failure here as StorageUnavailable: the table must not
// be served partially.
func readTable(path string, wantHeader []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", filepath.Base(path), err)
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s missing header row", filepath.Base(path))
	}
	if err := checkHeader(records[0], wantHeader); err != nil {
		return nil, fmt.Errorf("table %s: %w", filepath.Base(path), err)
	}
	return records[1:], nil
}

// writeTable rewrites the whole table atomically: the new content lands in
// a temp file in the same directory and replaces the original via rename,
// so a crashed write never leaves a truncated table behind.
func writeTable(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(header)
	if writeErr == nil {
		writeErr = writer.WriteAll(rows)
	}
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write table %s: %w", filepath.Base(path), writeErr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace table %s: %w", filepath.Base(path), err)
	}
	return nil
}

// bootstrapTable creates a header-only table when none exists. It reports
// whether a file was created.
func bootstrapTable(path string, header []string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat table %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create data directory: %w", err)
	}
	if err := writeTable(path, header, nil); err != nil {
		return false, err
	}
	return true, nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("header has %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("header column %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
