package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/attendance/internal/core"
	"github.com/a-h/templ"
)

// Alert is a user-facing message shown above the dashboard.
type Alert struct {
	Message string
	Action  string
	Code    string
}

// DashboardData is everything the dashboard page displays.
type DashboardData struct {
	Snapshot core.Snapshot
	Error    *Alert // Load failure, if any
}

// Table columns in display order. Name joins FirstName and LastName.
var tableHeadings = []string{"Roll No", "PRN", "Name", "Division", "Time", "Classroom"}

// Dashboard renders the full dashboard page.
func Dashboard(d DashboardData) templ.Component {
	return Page("Attendance Dashboard", dashboardBody(d))
}

func dashboardBody(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		snap := d.Snapshot
		h := &html{w: w}
		h.raw(`<h1>Attendance Dashboard</h1>`)

		if d.Error != nil {
			h.render(ctx, Banner("error", d.Error.Message, d.Error.Action, d.Error.Code))
		}
		if n := snap.Report.SkippedCount(); n > 0 {
			h.render(ctx, Banner("notice", skippedNotice(snap.Report), "", ""))
		}
		if missing := snap.Report.MissingColumns; len(missing) > 0 {
			h.render(ctx, Banner("notice", MissingColumnsNotice(missing), "", ""))
		}

		h.render(ctx, SearchForm(snap.Term))

		h.raw(`<div class="charts"><section class="card"><h2>Attendance by Division</h2>`)
		h.render(ctx, DivisionChart(snap.Divisions.Pairs()))
		h.raw(`</section><section class="card"><h2>Classroom Distribution</h2>`)
		h.render(ctx, ClassroomChart(snap.Classrooms.Pairs()))
		h.raw(`</section></div>`)

		h.render(ctx, RecordsTable(snap.Filtered))
		return h.err
	})
}

func skippedNotice(r core.LoadReport) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(r.SkippedCount()))
	if r.SkippedCount() == 1 {
		b.WriteString(" row was")
	} else {
		b.WriteString(" rows were")
	}
	b.WriteString(" skipped because the field count did not match the header (line")
	if r.SkippedCount() > 1 {
		b.WriteString("s")
	}
	for i, m := range r.Skipped {
		if i == 5 {
			b.WriteString(", ...")
			break
		}
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(m.Line))
	}
	b.WriteString(").")
	return b.String()
}

// MissingColumnsNotice describes attendance columns the source did not have.
func MissingColumnsNotice(missing []string) string {
	noun := "column"
	if len(missing) > 1 {
		noun = "columns"
	}
	return "Missing attendance " + noun + ": " + strings.Join(missing, ", ") + "."
}

// SearchForm posts the term to /search. The term is applied only on submit.
func SearchForm(term string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<form class="search" method="post" action="/search">`)
		h.raw(`<input type="text" name="term" placeholder="Search by any field..." value="`)
		h.text(term)
		h.raw(`" aria-label="Search term"><button type="submit">Search</button></form>`)
		return h.err
	})
}

// RecordsTable renders the filtered records and their count.
func RecordsTable(fs core.FilteredSet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<section class="records"><header><h2>Attendance Records</h2><p>Total Records: `)
		h.raw(strconv.Itoa(fs.Len()))
		h.raw(`</p></header><div class="wrap"><table><thead><tr>`)
		for _, th := range tableHeadings {
			h.raw(`<th>`)
			h.text(th)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, rec := range fs.Records() {
			h.raw(`<tr>`)
			for _, cell := range rowCells(rec) {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		if fs.Len() == 0 {
			h.rawf(`<tr><td class="empty" colspan="%d">No records</td></tr>`, len(tableHeadings))
		}
		h.raw(`</tbody></table></div></section>`)
		return h.err
	})
}

func rowCells(rec core.Record) []string {
	return []string{
		rec.Value(core.ColRollno),
		rec.Value(core.ColPRN),
		rec.Value(core.ColFirstName) + " " + rec.Value(core.ColLastName),
		rec.Value(core.ColDivision),
		rec.Value(core.ColTime),
		rec.Value(core.ColClassroom),
	}
}
