package views

import (
	"context"
	"io"
	"strconv"

	"github.com/JonMunkholm/attendance/internal/chart"
	"github.com/JonMunkholm/attendance/internal/core"
	"github.com/a-h/templ"
)

const (
	barWidth   = 480
	barHeight  = 300
	pieWidth   = 480
	pieHeight  = 300
	pieRadius  = 80
	legendSize = 10
)

// DivisionChart draws the per-division counts as an SVG bar chart.
func DivisionChart(pairs []core.Pair) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		bc := chart.Bars(pairs, barWidth, barHeight)
		h := &html{w: w}
		h.rawf(`<svg viewBox="0 0 %d %d" width="100%%" role="img" aria-label="Attendance by Division">`, barWidth, barHeight)

		for _, t := range bc.Ticks {
			h.rawf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#e5e7eb"/>`, bc.PlotLeft, t.Y, bc.Width-10, t.Y)
			h.rawf(`<text x="%.2f" y="%.2f" text-anchor="end" dominant-baseline="middle">%d</text>`, bc.PlotLeft-6, t.Y, t.Value)
		}
		h.rawf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#6b7280"/>`, bc.PlotLeft, bc.PlotBottom, bc.Width-10, bc.PlotBottom)

		for _, b := range bc.Bars {
			h.rawf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>`, b.X, b.Y, b.Width, b.Height, b.Fill)
			h.text(chart.Label(b.Name) + ": " + strconv.Itoa(b.Value))
			h.raw(`</title></rect>`)
			h.rawf(`<text x="%.2f" y="%.2f" text-anchor="middle">`, b.X+b.Width/2, bc.PlotBottom+18)
			h.text(chart.Label(b.Name))
			h.raw(`</text>`)
		}
		if len(bc.Bars) == 0 {
			h.rawf(`<text x="%d" y="%d" text-anchor="middle" class="empty">No data</text>`, barWidth/2, barHeight/2)
		}
		h.raw(`</svg>`)

		// Legend
		h.rawf(`<p><svg width="%d" height="%d"><rect width="%d" height="%d" fill="%s"/></svg> value</p>`,
			legendSize, legendSize, legendSize, legendSize, chart.BarFill)
		return h.err
	})
}

// ClassroomChart draws the per-classroom counts as an SVG pie chart with
// "name NN%" labels.
func ClassroomChart(pairs []core.Pair) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pc := chart.Pie(pairs, pieWidth/2, pieHeight/2, pieRadius)
		h := &html{w: w}
		h.rawf(`<svg viewBox="0 0 %d %d" width="100%%" role="img" aria-label="Classroom Distribution">`, pieWidth, pieHeight)

		for _, s := range pc.Slices {
			if s.Path == "" {
				continue
			}
			h.raw(`<path d="`)
			h.raw(s.Path)
			h.raw(`" fill="`)
			h.raw(s.Color)
			h.raw(`" stroke="#fff"><title>`)
			h.text(chart.Label(s.Name) + ": " + strconv.Itoa(s.Value))
			h.raw(`</title></path>`)

			anchor := "start"
			if s.LabelX < pc.CX {
				anchor = "end"
			}
			h.rawf(`<text x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="middle" style="fill:%s">`, s.LabelX, s.LabelY, anchor, s.Color)
			h.text(s.Label())
			h.raw(`</text>`)
		}
		if pc.Total == 0 {
			h.rawf(`<text x="%d" y="%d" text-anchor="middle" class="empty">No data</text>`, pieWidth/2, pieHeight/2)
		}
		h.raw(`</svg>`)
		return h.err
	})
}
