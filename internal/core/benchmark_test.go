package core

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"testing"
)

// ============================================================================
// Ingestion Benchmarks
// ============================================================================

// BenchmarkParse benchmarks parsing an attendance CSV of typical class size.
func BenchmarkParse(b *testing.B) {
	data := generateAttendanceCSV(100)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(bytes.NewReader(data))
	}
}

// BenchmarkParse_Large benchmarks a term's worth of records.
func BenchmarkParse_Large(b *testing.B) {
	data := generateAttendanceCSV(10000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(bytes.NewReader(data))
	}
}

// BenchmarkWrapForParsing measures the BOM, UTF-8 and counting layers alone.
func BenchmarkWrapForParsing(b *testing.B) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, generateAttendanceCSV(1000)...)

	b.ResetTimer()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		r, _ := WrapForParsing(bytes.NewReader(data), 0)
		io.Copy(io.Discard, r)
	}
}

// ============================================================================
// Search and Aggregation Benchmarks
// ============================================================================

func benchmarkSet(b *testing.B, rows int) RecordSet {
	b.Helper()
	rs, _, err := Parse(bytes.NewReader(generateAttendanceCSV(rows)))
	if err != nil {
		b.Fatal(err)
	}
	return rs
}

// BenchmarkSearch covers the empty term fast path, a selective term and a
// term that matches nothing (worst case: every field of every record).
func BenchmarkSearch(b *testing.B) {
	rs := benchmarkSet(b, 5000)

	for _, term := range []string{"", "FY", "student-4999", "no-such-value"} {
		b.Run("term="+term, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Search(rs, term)
			}
		})
	}
}

// BenchmarkAggregateBy benchmarks counting one field over the full set.
func BenchmarkAggregateBy(b *testing.B) {
	fs := Search(benchmarkSet(b, 5000), "")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		AggregateBy(fs, DivisionField)
	}
}

// BenchmarkSessionSearchParallel benchmarks many sessions sharing one dataset.
func BenchmarkSessionSearchParallel(b *testing.B) {
	ds := Dataset{Records: benchmarkSet(b, 2000)}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		s := NewSession()
		s.Attach(ds)
		for pb.Next() {
			s.Search("SY")
		}
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

var (
	benchDivisions  = []string{"FY", "SY", "TY"}
	benchClassrooms = []string{"A101", "A102", "B201", "B202", "C301", "C302", "LAB1"}
)

// generateAttendanceCSV generates an attendance CSV with the given number of rows.
func generateAttendanceCSV(rows int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write(AttendanceColumns)
	for i := 0; i < rows; i++ {
		n := strconv.Itoa(i)
		w.Write([]string{
			n,
			"PRN" + n,
			"student-" + n,
			"Surname",
			benchDivisions[i%len(benchDivisions)],
			"2024-01-15 09:" + strconv.Itoa(10+i%50),
			benchClassrooms[i%len(benchClassrooms)],
		})
	}
	w.Flush()

	return buf.Bytes()
}
