// Package runlog keeps a CSV audit trail of import runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log: the outcome of a single import run.
type Entry struct {
	Timestamp      time.Time
	Source         string
	Imported       int
	SkippedPending int
	SkippedBadDate int
	MarkerSaved    bool
}

// Header is the CSV header for the run log.
const Header = "timestamp,source,imported,skipped_pending,skipped_bad_date,marker_saved"

const (
	numFields         = 6
	colTimestamp      = 0
	colSource         = 1
	colImported       = 2
	colSkippedPending = 3
	colSkippedBadDate = 4
	colMarkerSaved    = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colImported] = strconv.Itoa(e.Imported)
	row[colSkippedPending] = strconv.Itoa(e.SkippedPending)
	row[colSkippedBadDate] = strconv.Itoa(e.SkippedBadDate)
	row[colMarkerSaved] = strconv.FormatBool(e.MarkerSaved)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	imported, err := strconv.Atoi(record[colImported])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing imported %q: %w", record[colImported], err)
	}
	pending, err := strconv.Atoi(record[colSkippedPending])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing skipped_pending %q: %w", record[colSkippedPending], err)
	}
	badDate, err := strconv.Atoi(record[colSkippedBadDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing skipped_bad_date %q: %w", record[colSkippedBadDate], err)
	}
	saved, err := strconv.ParseBool(record[colMarkerSaved])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing marker_saved %q: %w", record[colMarkerSaved], err)
	}

	return Entry{
		Timestamp:      ts,
		Source:         record[colSource],
		Imported:       imported,
		SkippedPending: pending,
		SkippedBadDate: badDate,
		MarkerSaved:    saved,
	}, nil
}

// Append writes entries to the run log, creating the file and header if
// needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from the run log. A missing file yields an empty
// slice.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
