package web

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/attendance/internal/chart"
	"github.com/JonMunkholm/attendance/internal/core"
	"github.com/JonMunkholm/attendance/internal/logging"
	"github.com/JonMunkholm/attendance/internal/web/views"
)

// maxFormBytes caps search request bodies.
const maxFormBytes = 64 << 10

// Point is one aggregate entry as served to clients.
type Point struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}

// AggregatesResponse is the body of GET /api/aggregates and POST /api/search.
type AggregatesResponse struct {
	Term       string  `json:"term"`
	Total      int     `json:"total"`
	Count      int     `json:"count"`
	Divisions  []Point `json:"divisions"`
	Classrooms []Point `json:"classrooms"`
}

// RecordsResponse is the body of GET /api/records.
type RecordsResponse struct {
	Term    string        `json:"term"`
	Total   int           `json:"total"`
	Count   int           `json:"count"`
	Columns []string      `json:"columns"`
	Records []core.Record `json:"records"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	State     string    `json:"state"`
	Source    string    `json:"source"`
	Records   int       `json:"records"`
	Skipped   int       `json:"skipped"`
	LoadedAt  time.Time `json:"loaded_at"`
	ErrorCode string    `json:"error_code,omitempty"`
	Sessions  int       `json:"sessions"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Term string `json:"term"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.session(w, r).Snapshot()

	data := views.DashboardData{Snapshot: snap}
	if snap.LoadErr != nil {
		msg := core.MapError(snap.LoadErr)
		data.Error = &views.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleSearchForm applies the submitted term and redirects back to the
// dashboard so a reload does not resubmit.
func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}

	snap := s.session(w, r).Search(r.PostForm.Get("term"))
	logSearch(r, snap)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSearchAPI(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}

	snap := s.session(w, r).Search(req.Term)
	logSearch(r, snap)
	writeJSON(w, r, aggregatesResponse(snap))
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, aggregatesResponse(s.session(w, r).Snapshot()))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	snap := s.session(w, r).Snapshot()
	records := snap.Filtered.Records()
	if records == nil {
		records = []core.Record{}
	}
	columns := snap.Filtered.Header()
	if columns == nil {
		columns = []string{}
	}

	writeJSON(w, r, RecordsResponse{
		Term:    snap.Term,
		Total:   snap.Total,
		Count:   snap.Filtered.Len(),
		Columns: columns,
		Records: records,
	})
}

// handleExport downloads the current FilteredSet as CSV in header order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.session(w, r).Snapshot()

	filename := fmt.Sprintf("attendance_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	header := snap.Filtered.Header()
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			logging.FromContext(r.Context()).Error("export write", "error", err)
			return
		}
	}
	for _, rec := range snap.Filtered.Records() {
		if err := cw.Write(rec.Values()); err != nil {
			logging.FromContext(r.Context()).Error("export write", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Error("export flush", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		State:    string(core.StateReady),
		Source:   s.dataset.Report.Source,
		Records:  s.dataset.Records.Len(),
		Skipped:  s.dataset.Report.SkippedCount(),
		LoadedAt: s.dataset.LoadedAt,
		Sessions: s.sessions.Len(),
	}
	if s.dataset.Err != nil {
		resp.Status = "degraded"
		resp.ErrorCode = core.MapError(s.dataset.Err).Code
	}
	writeJSON(w, r, resp)
}

func aggregatesResponse(snap core.Snapshot) AggregatesResponse {
	resp := AggregatesResponse{
		Term:       snap.Term,
		Total:      snap.Total,
		Count:      snap.Filtered.Len(),
		Divisions:  []Point{},
		Classrooms: []Point{},
	}
	for _, p := range snap.Divisions.Pairs() {
		resp.Divisions = append(resp.Divisions, Point{Name: p.Name, Value: p.Value, Color: chart.BarFill})
	}
	for i, p := range snap.Classrooms.Pairs() {
		resp.Classrooms = append(resp.Classrooms, Point{Name: p.Name, Value: p.Value, Color: chart.Color(i)})
	}
	return resp
}

func logSearch(r *http.Request, snap core.Snapshot) {
	logging.WithFields(r.Context(), "term", snap.Term).Debug("search",
		"matched", snap.Filtered.Len(),
		"total", snap.Total,
	)
}
