package core

import (
	"context"
	"sync"
	"time"
)

// SessionState is the pipeline state of a Session.
type SessionState string

const (
	// StateIdle means no ingestion has completed yet.
	StateIdle SessionState = "idle"
	// StateReady means ingestion finished, successfully or not.
	// A failed load leaves an empty but usable Ready session.
	StateReady SessionState = "ready"
)

// Snapshot is a consistent copy of a Session's outputs.
type Snapshot struct {
	State      SessionState
	Term       string
	Total      int // Size of the full RecordSet
	Filtered   FilteredSet
	Divisions  Aggregate
	Classrooms Aggregate
	Report     LoadReport
	LoadErr    error
	LoadedAt   time.Time
}

// Session owns the dashboard state for one viewer: the full RecordSet, the
// current search term, the FilteredSet and both aggregates. All mutation goes
// through Attach, Ingest and Search, which recompute the aggregates before
// returning.
type Session struct {
	mu         sync.RWMutex
	state      SessionState
	dataset    Dataset
	term       string
	filtered   FilteredSet
	divisions  Aggregate
	classrooms Aggregate
	lastUsed   time.Time
}

// NewSession returns an Idle session.
func NewSession() *Session {
	s := &Session{state: StateIdle, lastUsed: time.Now()}
	s.recompute()
	return s
}

// Ingest loads src with loader and attaches the result. A load failure is
// returned and also retained for display; the session becomes Ready with no
// records either way.
func (s *Session) Ingest(ctx context.Context, loader *Loader, src Source) error {
	if loader == nil {
		loader = &Loader{}
	}
	rs, report, err := loader.Load(ctx, src)
	s.Attach(Dataset{Records: rs, Report: report, Err: err, LoadedAt: time.Now()})
	return err
}

// Attach installs a dataset, resets the search term and recomputes the
// FilteredSet and aggregates. The RecordSet is shared, never copied, so many
// sessions can attach the same dataset.
func (s *Session) Attach(ds Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds.Err != nil {
		ds.Records = RecordSet{}
	}
	s.dataset = ds
	s.state = StateReady
	s.term = ""
	s.lastUsed = time.Now()
	s.filtered = Search(ds.Records, "")
	s.recompute()
}

// Search filters the full RecordSet by term and recomputes the aggregates.
// On an Idle session, or one whose load failed, it only records the term.
func (s *Session) Search(term string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.lastUsed = time.Now()
	s.filtered = Search(s.dataset.Records, term)
	s.recompute()
	return s.snapshot()
}

// recompute derives both aggregates from the current FilteredSet.
// Callers hold s.mu.
func (s *Session) recompute() {
	s.divisions = AggregateBy(s.filtered, DivisionField)
	s.classrooms = AggregateBy(s.filtered, ClassroomField)
}

// Snapshot returns a consistent copy of the session outputs.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot copies the outputs. Callers hold s.mu.
func (s *Session) snapshot() Snapshot {
	return Snapshot{
		State:      s.state,
		Term:       s.term,
		Total:      s.dataset.Records.Len(),
		Filtered:   s.filtered,
		Divisions:  s.divisions,
		Classrooms: s.classrooms,
		Report:     s.dataset.Report,
		LoadErr:    s.dataset.Err,
		LoadedAt:   s.dataset.LoadedAt,
	}
}

// State returns the pipeline state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Records returns the full RecordSet.
func (s *Session) Records() RecordSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset.Records
}

// Filtered returns the current FilteredSet.
func (s *Session) Filtered() FilteredSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered
}

// Term returns the last search term.
func (s *Session) Term() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

// Divisions returns the count-by-Division aggregate of the FilteredSet.
func (s *Session) Divisions() Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.divisions
}

// Classrooms returns the count-by-classroom aggregate of the FilteredSet.
func (s *Session) Classrooms() Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classrooms
}

// LoadError returns the ingestion error, if any.
func (s *Session) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset.Err
}

// Report returns the ingestion report.
func (s *Session) Report() LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset.Report
}

// LastUsed returns when the session was last attached or searched.
func (s *Session) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}
