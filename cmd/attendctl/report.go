package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/attendance/internal/app"
	"github.com/JonMunkholm/attendance/internal/chart"
	"github.com/JonMunkholm/attendance/internal/core"
	"github.com/JonMunkholm/attendance/internal/logging"
	"github.com/JonMunkholm/attendance/internal/web/views"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	reportSearch string
	reportLimit  int
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print records and aggregates for a search term",
	Long: `Load the attendance source, apply the search term and print the
matching records followed by counts per Division and per classroom.

Examples:
  attendctl report --source attendance.csv --search FY
  attendctl report -s https://example.com/attendance.csv --format json`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportSearch, "search", "q", "", "Search term (case-insensitive, any field)")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 50, "Maximum records to print (0 for all)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format: table or json")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reportFormat != "table" && reportFormat != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", reportFormat)
	}

	// Diagnostics go to stderr so stdout stays clean for piping.
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.FetchTimeout)
	defer cancel()

	ds, err := app.LoadDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sess := core.NewSession()
	sess.Attach(ds)
	snap := sess.Search(reportSearch)

	out := cmd.OutOrStdout()
	if reportFormat == "json" {
		if err := writeReportJSON(out, snap); err != nil {
			return err
		}
	} else {
		writeReport(out, snap, reportLimit)
	}

	if snap.LoadErr != nil {
		return fmt.Errorf("%s", core.FormatUserError(snap.LoadErr))
	}
	return nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4338ca"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b91c1c"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a16207"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#818cf8"))
)

// writeReport renders the snapshot as styled terminal tables.
func writeReport(w io.Writer, snap core.Snapshot, limit int) {
	fmt.Fprintln(w, titleStyle.Render("Attendance Dashboard"))
	if snap.Report.Source != "" {
		fmt.Fprintln(w, mutedStyle.Render("source: "+snap.Report.Source))
	}
	if snap.LoadErr != nil {
		msg := core.MapError(snap.LoadErr)
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%s (%s)", msg.Message, msg.Code)))
		if msg.Action != "" {
			fmt.Fprintln(w, msg.Action)
		}
	}
	if n := snap.Report.SkippedCount(); n > 0 {
		fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf("%d malformed row(s) skipped", n)))
	}
	if missing := snap.Report.MissingColumns; len(missing) > 0 {
		fmt.Fprintln(w, noticeStyle.Render(views.MissingColumnsNotice(missing)))
	}
	if snap.Term != "" {
		fmt.Fprintf(w, "search: %q\n", snap.Term)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Attendance by Division"))
	fmt.Fprintln(w, divisionTable(snap.Divisions.Pairs()))
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Classroom Distribution"))
	fmt.Fprintln(w, classroomTable(snap.Classrooms.Pairs()))
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Attendance Records"))
	fmt.Fprintf(w, "Total Records: %d of %d\n", snap.Filtered.Len(), snap.Total)
	if snap.Filtered.Len() > 0 {
		fmt.Fprintln(w, recordsTable(snap.Filtered, limit))
		if limit > 0 && snap.Filtered.Len() > limit {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("... %d more", snap.Filtered.Len()-limit)))
		}
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func divisionTable(pairs []core.Pair) string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(chart.BarFill))
	maxVal := 0
	for _, p := range pairs {
		maxVal = max(maxVal, p.Value)
	}

	t := newTable("Division", "Count", "")
	for _, p := range pairs {
		width := 0
		if maxVal > 0 {
			width = p.Value * 30 / maxVal
		}
		t.Row(chart.Label(p.Name), strconv.Itoa(p.Value), bar.Render(strings.Repeat("█", width)))
	}
	return t.String()
}

func classroomTable(pairs []core.Pair) string {
	pie := chart.Pie(pairs, 0, 0, 1)
	t := newTable("Classroom", "Count", "Share")
	for _, s := range pie.Slices {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("●")
		t.Row(swatch+" "+chart.Label(s.Name), strconv.Itoa(s.Value), strconv.Itoa(s.Percent)+"%")
	}
	return t.String()
}

func recordsTable(fs core.FilteredSet, limit int) string {
	t := newTable("Roll No", "PRN", "Name", "Division", "Time", "Classroom")
	for i, rec := range fs.Records() {
		if limit > 0 && i >= limit {
			break
		}
		t.Row(
			rec.Value(core.ColRollno),
			rec.Value(core.ColPRN),
			rec.Value(core.ColFirstName)+" "+rec.Value(core.ColLastName),
			rec.Value(core.ColDivision),
			rec.Value(core.ColTime),
			rec.Value(core.ColClassroom),
		)
	}
	return t.String()
}

type jsonReport struct {
	Source     string        `json:"source"`
	Term       string        `json:"term"`
	Total      int           `json:"total"`
	Count      int           `json:"count"`
	Skipped    int           `json:"skipped"`
	Missing    []string      `json:"missing_columns,omitempty"`
	Error      string        `json:"error,omitempty"`
	Divisions  []core.Pair   `json:"divisions"`
	Classrooms []core.Pair   `json:"classrooms"`
	Records    []core.Record `json:"records"`
}

func writeReportJSON(w io.Writer, snap core.Snapshot) error {
	rep := jsonReport{
		Source:     snap.Report.Source,
		Term:       snap.Term,
		Total:      snap.Total,
		Count:      snap.Filtered.Len(),
		Skipped:    snap.Report.SkippedCount(),
		Missing:    snap.Report.MissingColumns,
		Divisions:  append([]core.Pair{}, snap.Divisions.Pairs()...),
		Classrooms: append([]core.Pair{}, snap.Classrooms.Pairs()...),
		Records:    append([]core.Record{}, snap.Filtered.Records()...),
	}
	if snap.LoadErr != nil {
		rep.Error = core.MapError(snap.LoadErr).Code
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
