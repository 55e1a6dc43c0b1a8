package core

// source.go provides the places attendance CSV text can come from.
//
// Every Source yields CSV text with a header row, so the parser does not
// care whether the bytes came from disk, an HTTP GET, or a Postgres COPY.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrSourceNotFound is returned when a file source does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceStatus is returned when an HTTP source answers with a non-2xx status.
	ErrSourceStatus = errors.New("unexpected source status")

	// ErrSourceRead wraps failures of a source after Open succeeded, such as
	// a COPY rejected by the database.
	ErrSourceRead = errors.New("source read failed")

	// ErrUnsupportedSource is returned by NewSource for unknown URI schemes.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// DefaultPostgresTable is the table read by a Postgres source when none is set.
const DefaultPostgresTable = "attendance"

// Source yields raw CSV text. Open may be called more than once; each call
// starts a fresh read.
type Source interface {
	// Name identifies the source in logs and on the dashboard. It must not
	// contain credentials.
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// SourceOptions configures sources built by NewSource.
type SourceOptions struct {
	HTTPClient    *http.Client // Nil means http.DefaultClient
	PostgresTable string       // Table (optionally schema-qualified) for postgres:// URIs
}

// NewSource picks a Source implementation from uri:
//
//	http://host/attendance.csv      -> HTTPSource
//	postgres://user@host/db         -> PostgresSource
//	file:///data/attendance.csv     -> FileSource
//	attendance.csv                  -> FileSource
func NewSource(uri string, opts SourceOptions) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedSource)
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths (including Windows drive letters) are files.
		return FileSource{Path: uri}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return HTTPSource{URL: uri, Client: opts.HTTPClient}, nil
	case "postgres", "postgresql":
		table := opts.PostgresTable
		if table == "" {
			table = DefaultPostgresTable
		}
		return PostgresSource{DSN: uri, Table: table}, nil
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + u.Path
		}
		return FileSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

// FileSource reads CSV from a local file.
type FileSource struct {
	Path string
}

// Name implements Source.
func (f FileSource) Name() string { return f.Path }

// Open implements Source.
func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, f.Path)
		}
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}

// HTTPSource fetches CSV with a single GET. There is no auth and no retry.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Name implements Source. Userinfo is stripped from the URL.
func (h HTTPSource) Name() string {
	return redactURL(h.URL)
}

// Open implements Source.
func (h HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", h.Name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", ErrSourceStatus, h.Name(), resp.Status)
	}
	return resp.Body, nil
}

// PostgresSource exports a table as CSV with COPY ... TO STDOUT.
// The connection is opened per Open call and closed with the reader.
type PostgresSource struct {
	DSN   string
	Table string // Optionally schema-qualified: "school.attendance"
}

// Name implements Source. Credentials are stripped from the DSN.
func (p PostgresSource) Name() string {
	return redactURL(p.DSN) + "#" + p.Table
}

// CopyQuery returns the COPY statement for the configured table.
func (p PostgresSource) CopyQuery() string {
	ident := pgx.Identifier(strings.Split(p.Table, "."))
	return fmt.Sprintf("COPY (SELECT * FROM %s) TO STDOUT WITH (FORMAT csv, HEADER true)", ident.Sanitize())
}

// Open implements Source.
func (p PostgresSource) Open(ctx context.Context) (io.ReadCloser, error) {
	conn, err := pgx.Connect(ctx, p.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", redactURL(p.DSN), err)
	}

	pr, pw := io.Pipe()
	go func() {
		_, err := conn.PgConn().CopyTo(ctx, pw, p.CopyQuery())
		// Close the connection with a fresh context: ctx may already be done.
		conn.Close(context.Background())
		pw.CloseWithError(copyError(p.Table, err))
	}()
	return pr, nil
}

// copyError marks a failed COPY as a source failure so Load reports it as a
// fetch error rather than invalid CSV.
func copyError(table string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: copy %s: %w", ErrSourceRead, table, err)
}

// redactURL removes the password from a URL for display.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
