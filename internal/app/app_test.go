package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JonMunkholm/attendance/internal/config"
	"github.com/JonMunkholm/attendance/internal/core"
)

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(k string) string {
		switch k {
		case "ATTENDANCE_SOURCE":
			return source
		case "SERVER_HOST":
			return "127.0.0.1"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("config.LoadFrom() error = %v", err)
	}
	return cfg
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	csv := "Rollno,PRN,FirstName,LastName,Division,Time,classroom\n1,P1,Asha,Rao,FY,09:00,A101\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := LoadDataset(context.Background(), testConfig(t, path), quiet)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if ds.Err != nil || ds.Records.Len() != 1 {
		t.Errorf("dataset = %d records, err %v", ds.Records.Len(), ds.Err)
	}
	if ds.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestLoadDataset_MissingFileIsDegraded(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.csv"))

	ds, err := LoadDataset(context.Background(), cfg, quiet)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	var ingestErr *core.IngestionError
	if !errors.As(ds.Err, &ingestErr) || !errors.Is(ds.Err, core.ErrSourceNotFound) {
		t.Errorf("ds.Err = %v, want IngestionError wrapping ErrSourceNotFound", ds.Err)
	}
	if ds.Records.Len() != 0 {
		t.Errorf("Records.Len() = %d, want 0", ds.Records.Len())
	}
}

func TestLoadDataset_UnsupportedSource(t *testing.T) {
	cfg := testConfig(t, "ftp://user:pw@example.com/attendance.csv")

	_, err := LoadDataset(context.Background(), cfg, quiet)
	if !errors.Is(err, core.ErrUnsupportedSource) {
		t.Fatalf("LoadDataset() error = %v, want ErrUnsupportedSource", err)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "attendance.csv")
	cfg.Server.Port = 0 // any free port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg, core.Dataset{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
