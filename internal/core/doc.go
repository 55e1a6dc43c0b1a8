// Package core provides the attendance data pipeline.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the attendctl CLI and tests without
// modification.
//
// # Pipeline
//
// The pipeline is linear:
//
//  1. A [Source] yields raw CSV text (file, HTTP GET, or Postgres COPY).
//  2. [Loader.Load] parses it into an immutable [RecordSet], using the first
//     row as the header. Rows with the wrong field count are skipped and
//     reported as [MalformedRowError] values in the [LoadReport].
//  3. [Search] derives a [FilteredSet] from the full RecordSet.
//  4. [AggregateBy] counts distinct values of one field over the FilteredSet.
//
// # Session
//
// A [Session] owns the pipeline state for one viewer: the RecordSet, the
// current search term, the FilteredSet and the Division and classroom
// aggregates. Aggregates are recomputed immediately after ingestion and after
// every search, never lazily.
//
//	sess := core.NewSession()
//	sess.Attach(dataset)
//	snap := sess.Search("fymca")
//	for _, p := range snap.Divisions.Pairs() {
//	    fmt.Println(p.Name, p.Value)
//	}
//
// # Error Handling
//
// Ingestion failures are returned as [IngestionError] and leave the session
// in the empty Ready state. Technical errors are mapped to user-facing
// messages with [MapError]:
//
//   - SRC001-SRC006: source errors (missing file, bad status, too large)
//   - CSV001-CSV004: parse errors (invalid CSV, duplicate columns, bad rows)
//   - REQ001-REQ005: cancellation, timeouts, bad requests and unknown routes
//   - RATE001: rate limiting
package core
