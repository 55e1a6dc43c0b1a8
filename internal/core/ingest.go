package core

// ingest.go turns CSV text into a RecordSet.
//
// Policy for rows whose field count differs from the header: the row is
// skipped and recorded as a MalformedRowError in the LoadReport. Ingestion
// only fails as a whole (IngestionError) when the source cannot be read or
// the text is not parseable as CSV.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

var (
	// ErrDuplicateColumn is returned when the header names a column twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrNoAttendanceColumns is returned by Loader.Load when the header has
	// none of the AttendanceColumns, which is how prose or other non-CSV text
	// parses (one column named after the first line).
	ErrNoAttendanceColumns = errors.New("not attendance csv: header has none of the expected columns")
)

// DefaultMaxSourceBytes caps how much CSV text a single load may read (32MB).
const DefaultMaxSourceBytes int64 = 32 * 1024 * 1024

// MalformedRowError describes a data row that was skipped because its field
// count did not match the header. It is recoverable: ingestion continues.
type MalformedRowError struct {
	Line     int // 1-indexed line where the row starts
	Expected int
	Got      int
}

func (e MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row at line %d: expected %d fields, got %d", e.Line, e.Expected, e.Got)
}

// IngestionError reports a load that produced no data.
type IngestionError struct {
	Source string // Source name
	Op     string // "fetch" or "parse"
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Loader reads a Source and parses it into a RecordSet.
type Loader struct {
	// MaxBytes caps the raw CSV size. Zero means DefaultMaxSourceBytes;
	// negative disables the cap.
	MaxBytes int64

	// Timeout bounds the whole fetch-and-parse. Zero means no timeout.
	Timeout time.Duration

	// Logger receives load diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Load fetches src with a default Loader.
func Load(ctx context.Context, src Source) (RecordSet, LoadReport, error) {
	return (&Loader{}).Load(ctx, src)
}

// Load fetches src and parses its CSV text.
//
// On failure the returned RecordSet is empty and the error is an
// *IngestionError. Malformed rows never fail the load; see LoadReport.Skipped.
func (l *Loader) Load(ctx context.Context, src Source) (RecordSet, LoadReport, error) {
	start := time.Now()
	logger := l.logger().With("source", src.Name())
	report := LoadReport{Source: src.Name()}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	rc, err := src.Open(ctx)
	if err != nil {
		report.Duration = time.Since(start)
		logger.Error("attendance fetch failed", "error", err)
		return RecordSet{}, report, &IngestionError{Source: src.Name(), Op: "fetch", Err: err}
	}
	defer rc.Close()

	text, counter := WrapForParsing(rc, l.maxBytes())
	rs, report, err := parse(text, report)
	report.BytesRead = counter.BytesRead
	report.Duration = time.Since(start)

	if err == nil && len(rs.Header()) > 0 && len(report.MissingColumns) == len(AttendanceColumns) {
		err = fmt.Errorf("%w: %q", ErrNoAttendanceColumns, rs.Header())
		report.MissingColumns = nil
	}

	if err != nil {
		op := "parse"
		if errors.Is(err, ErrSourceTooLarge) || errors.Is(err, ErrSourceRead) || ctx.Err() != nil {
			op = "fetch"
		}
		logger.Error("attendance load failed", "op", op, "error", err)
		return RecordSet{}, report, &IngestionError{Source: src.Name(), Op: op, Err: err}
	}

	if len(report.MissingColumns) > 0 {
		logger.Warn("attendance columns missing", "columns", report.MissingColumns)
	}
	for _, skipped := range report.Skipped {
		logger.Warn("skipped malformed row",
			"line", skipped.Line,
			"expected_fields", skipped.Expected,
			"got_fields", skipped.Got,
		)
	}
	logger.Info("attendance loaded",
		"rows", report.Rows,
		"skipped", report.SkippedCount(),
		"bytes", report.BytesRead,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return rs, report, nil
}

// Parse reads CSV text from r. It does not strip a BOM or sanitize UTF-8,
// and it accepts any header; use Loader.Load for raw attendance sources.
func Parse(r io.Reader) (RecordSet, LoadReport, error) {
	return parse(r, LoadReport{})
}

func parse(r io.Reader, report LoadReport) (RecordSet, LoadReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // field counts are checked per row below

	header, err := cr.Read()
	if err == io.EOF {
		// Empty body: nothing to show, but not an error.
		return RecordSet{}, report, nil
	}
	if err != nil {
		return RecordSet{}, report, readError("invalid csv header", err)
	}
	if err := checkHeader(header); err != nil {
		return RecordSet{}, report, err
	}
	report.MissingColumns = MissingColumns(header)

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RecordSet{}, report, readError("invalid csv", err)
		}

		if len(row) != len(header) {
			line, _ := cr.FieldPos(0)
			report.Skipped = append(report.Skipped, MalformedRowError{
				Line:     line,
				Expected: len(header),
				Got:      len(row),
			})
			continue
		}
		records = append(records, Record{cols: header, vals: row})
	}

	report.Rows = len(records)
	return RecordSet{header: header, records: records}, report, nil
}

// checkHeader rejects headers that cannot key a record unambiguously.
func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return fmt.Errorf("%w %q in header", ErrDuplicateColumn, name)
		}
		seen[name] = true
	}
	return nil
}

// readError wraps a csv.Reader error. Failures of the underlying source
// pass through unchanged so they are not reported as bad CSV.
func readError(prefix string, err error) error {
	if errors.Is(err, ErrSourceRead) {
		return err
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// MissingColumns returns the attendance columns absent from header.
// The dashboard still renders with some columns missing; the result is kept
// in LoadReport.MissingColumns and shown as a notice.
func MissingColumns(header []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range AttendanceColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func (l *Loader) maxBytes() int64 {
	switch {
	case l.MaxBytes == 0:
		return DefaultMaxSourceBytes
	case l.MaxBytes < 0:
		return 0
	default:
		return l.MaxBytes
	}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
