package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/attendance/internal/core"
)

const reportCSV = `Rollno,PRN,FirstName,LastName,Division,Time,classroom
1,P1,Asha,Rao,FY,09:00,A101
2,P2,Ravi,Kumar,SY,09:05,B202
3,P3,Meera,Iyer,FY,09:07,B202
`

func snapshot(t *testing.T, term string) core.Snapshot {
	t.Helper()
	rs, report, err := core.Parse(strings.NewReader(reportCSV))
	if err != nil {
		t.Fatal(err)
	}
	s := core.NewSession()
	s.Attach(core.Dataset{Records: rs, Report: report})
	return s.Search(term)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, snapshot(t, "fy"), 1)
	out := buf.String()

	for _, want := range []string{
		"Attendance by Division",
		"Classroom Distribution",
		"Total Records: 2 of 3",
		"Asha Rao",
		"50%",
		"... 1 more",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Meera Iyer") {
		t.Error("limit should cap printed records")
	}
	if strings.Contains(out, "SY") {
		t.Error("SY should be filtered out")
	}
}

func TestWriteReport_MissingColumns(t *testing.T) {
	rs, report, err := core.Parse(strings.NewReader("Division,Classroom\nFY,A101\n"))
	if err != nil {
		t.Fatal(err)
	}
	s := core.NewSession()
	s.Attach(core.Dataset{Records: rs, Report: report})

	var buf bytes.Buffer
	writeReport(&buf, s.Snapshot(), 10)
	if !strings.Contains(buf.String(), "Missing attendance columns:") {
		t.Errorf("report missing notice:\n%s", buf.String())
	}
}

func TestReportCommand_ProseSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("This is not a CSV file.\nJust some prose here.\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"report", "--env-file", writeEnv(t), "--source", path})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		source, envFile = "", ""
	})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "CSV004") {
		t.Fatalf("Execute() error = %v, want CSV004", err)
	}
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReportJSON(&buf, snapshot(t, "B202")); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Count      int         `json:"count"`
		Divisions  []core.Pair `json:"divisions"`
		Classrooms []core.Pair `json:"classrooms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Count != 2 {
		t.Errorf("Count = %d, want 2", got.Count)
	}
	want := []core.Pair{{Name: "SY", Value: 1}, {Name: "FY", Value: 1}}
	if len(got.Divisions) != 2 || got.Divisions[0] != want[0] || got.Divisions[1] != want[1] {
		t.Errorf("Divisions = %v, want %v", got.Divisions, want)
	}
}

func TestReportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	if err := os.WriteFile(path, []byte(reportCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"report", "--env-file", writeEnv(t), "--source", path, "--search", "SY", "--format", "json"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		source, reportSearch, reportFormat, envFile = "", "", "table", ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"count": 1`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestReportCommand_MissingSource(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"report", "--env-file", writeEnv(t), "--source", filepath.Join(t.TempDir(), "nope.csv")})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		source, envFile = "", ""
	})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "SRC001") {
		t.Fatalf("Execute() error = %v, want SRC001", err)
	}
}

// writeEnv writes an empty-ish env file so a stray .env in the working
// directory is not picked up.
func writeEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
