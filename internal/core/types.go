package core

import (
	"bytes"
	"encoding/json"
	"time"
)

// Attendance CSV column names. Matching is case-sensitive.
const (
	ColRollno    = "Rollno"
	ColPRN       = "PRN"
	ColFirstName = "FirstName"
	ColLastName  = "LastName"
	ColDivision  = "Division"
	ColTime      = "Time"
	ColClassroom = "classroom"
)

// AttendanceColumns lists the columns the dashboard reads, in display order.
var AttendanceColumns = []string{
	ColRollno, ColPRN, ColFirstName, ColLastName, ColDivision, ColTime, ColClassroom,
}

// Record is one CSV data row: a mapping from column name to cell value.
// Values are never coerced; "42" stays a string.
//
// A Record shares its column slice with the RecordSet it belongs to and is
// read-only once built.
type Record struct {
	cols []string
	vals []string
}

// NewRecord builds a record from a header and a row of the same length.
// The row is copied; cols is retained.
func NewRecord(cols, vals []string) Record {
	v := make([]string, len(vals))
	copy(v, vals)
	return Record{cols: cols, vals: v}
}

// RecordFromMap builds a record with columns in the order given by cols,
// taking values from m. Columns absent from m are left out of the record.
func RecordFromMap(cols []string, m map[string]string) Record {
	var rc, rv []string
	for _, c := range cols {
		if v, ok := m[c]; ok {
			rc = append(rc, c)
			rv = append(rv, v)
		}
	}
	return Record{cols: rc, vals: rv}
}

// Get returns the value for field and whether the record has that column.
func (r Record) Get(field string) (string, bool) {
	for i, c := range r.cols {
		if c == field {
			return r.vals[i], true
		}
	}
	return "", false
}

// Value returns the value for field, or "" if the column is absent.
func (r Record) Value(field string) string {
	v, _ := r.Get(field)
	return v
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.vals) }

// Columns returns a copy of the record's column names in header order.
func (r Record) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Values returns a copy of the record's values in header order.
func (r Record) Values() []string {
	out := make([]string, len(r.vals))
	copy(out, r.vals)
	return out
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.cols))
	for i, c := range r.cols {
		m[c] = r.vals[i]
	}
	return m
}

// MarshalJSON encodes the record as an object with keys in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Rows is the read-only view shared by RecordSet and FilteredSet.
type Rows interface {
	Len() int
	At(i int) Record
}

// RecordSet is the full, ordered collection of ingested records.
// Order is CSV row order. It is never modified after ingestion.
type RecordSet struct {
	header  []string
	records []Record
}

// NewRecordSet builds a RecordSet from already-validated rows.
func NewRecordSet(header []string, records []Record) RecordSet {
	h := make([]string, len(header))
	copy(h, header)
	return RecordSet{header: h, records: records}
}

// Header returns a copy of the column names.
func (rs RecordSet) Header() []string {
	out := make([]string, len(rs.header))
	copy(out, rs.header)
	return out
}

// Len returns the number of records.
func (rs RecordSet) Len() int { return len(rs.records) }

// At returns the i-th record.
func (rs RecordSet) At(i int) Record { return rs.records[i] }

// Records returns the records as a new slice.
func (rs RecordSet) Records() []Record {
	out := make([]Record, len(rs.records))
	copy(out, rs.records)
	return out
}

// FilteredSet is the subsequence of a RecordSet that matched a search.
// Indices are positions in the source RecordSet, strictly increasing.
type FilteredSet struct {
	header  []string
	indices []int
	records []Record
}

// Len returns the number of matching records.
func (fs FilteredSet) Len() int { return len(fs.records) }

// At returns the i-th matching record.
func (fs FilteredSet) At(i int) Record { return fs.records[i] }

// Header returns a copy of the column names of the source RecordSet.
func (fs FilteredSet) Header() []string {
	out := make([]string, len(fs.header))
	copy(out, fs.header)
	return out
}

// Records returns the matching records as a new slice.
func (fs FilteredSet) Records() []Record {
	out := make([]Record, len(fs.records))
	copy(out, fs.records)
	return out
}

// Indices returns the RecordSet positions of the matching records.
func (fs FilteredSet) Indices() []int {
	out := make([]int, len(fs.indices))
	copy(out, fs.indices)
	return out
}

// LoadReport summarizes one ingestion run.
type LoadReport struct {
	Source         string              // Source name shown to users
	Rows           int                 // Data rows accepted
	Skipped        []MalformedRowError // Rows dropped for a wrong field count
	MissingColumns []string            // AttendanceColumns absent from the header
	BytesRead      int64
	Duration       time.Duration
}

// SkippedCount returns how many rows were dropped.
func (r LoadReport) SkippedCount() int { return len(r.Skipped) }

// Dataset is the outcome of ingestion: the records plus how they were loaded.
// A failed ingestion still yields a Dataset with an empty RecordSet and Err set.
type Dataset struct {
	Records  RecordSet
	Report   LoadReport
	Err      error
	LoadedAt time.Time
}
