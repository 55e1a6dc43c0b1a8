// Package views renders the dashboard HTML as templ components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// html writes escaped and raw fragments, keeping the first write error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) rawf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

// text writes s escaped for element content or a quoted attribute.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

const styles = `
body{margin:0;font-family:system-ui,sans-serif;background:linear-gradient(90deg,#eff6ff,#eef2ff);color:#1f2937}
main{max-width:80rem;margin:0 auto;padding:2rem}
h1{font-size:2.5rem;font-weight:800;text-align:center;color:#4338ca;margin:0 0 2rem}
h2{font-size:1.5rem;font-weight:600;color:#4338ca;margin:0 0 1rem}
.search{display:flex;justify-content:center;margin-bottom:2rem}
.search input{border:2px solid #818cf8;border-radius:.5rem 0 0 .5rem;padding:.75rem 1rem;width:24rem;font-size:1.1rem}
.search button{background:#4f46e5;color:#fff;border:0;border-radius:0 .5rem .5rem 0;padding:.75rem 1.5rem;font-size:1.1rem;cursor:pointer}
.charts{display:grid;grid-template-columns:repeat(auto-fit,minmax(22rem,1fr));gap:2rem;margin-bottom:2.5rem}
.card{background:#fff;border-radius:.5rem;box-shadow:0 4px 12px rgba(0,0,0,.08);padding:2rem}
.records{background:#fff;border-radius:.5rem;box-shadow:0 4px 12px rgba(0,0,0,.08);overflow:hidden}
.records header{padding:2rem 2rem 0}
.records .wrap{overflow-x:auto}
table{width:100%;border-collapse:collapse;font-size:.9rem;text-align:left}
thead{background:#4f46e5;color:#fff}
th,td{padding:.9rem 1.5rem}
tbody tr:nth-child(odd){background:#f3f4f6}
.banner{border-radius:.5rem;padding:1rem 1.25rem;margin-bottom:1.5rem}
.banner.error{background:#fee2e2;color:#991b1b}
.banner.notice{background:#fef9c3;color:#854d0e}
.banner code{font-size:.8rem;opacity:.8}
.empty{color:#6b7280;font-style:italic}
svg text{font-size:12px;fill:#374151}
`

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// Banner renders a message box. Kind is "error" or "notice".
func Banner(kind, message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="banner `)
		h.text(kind)
		h.raw(`" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` `)
			h.text(action)
		}
		if code != "" {
			h.raw(` <code>`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorPage is the full-page error response for browser requests.
func ErrorPage(status int, message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.rawf(`<h1>%d</h1>`, status)
		h.render(ctx, Banner("error", message, action, code))
		h.raw(`<p><a href="/">Back to the dashboard</a></p>`)
		return h.err
	})
	return Page("Attendance Dashboard - Error", body)
}
