// Package chart lays out the dashboard charts.
//
// Layout is a pure function of the aggregate pairs: no I/O, no markup. The
// views package turns the geometry into SVG.
package chart

import (
	"fmt"
	"math"

	"github.com/JonMunkholm/attendance/internal/core"
)

// Palette is the classroom slice palette. Slice i gets Palette[i mod len].
var Palette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#FF6666", "#82ca9d"}

// BarFill is the single fill used by the division bar chart.
const BarFill = "#82ca9d"

// BlankLabel is shown for the empty-string value.
const BlankLabel = "(blank)"

// Color returns the palette color for position i.
func Color(i int) string {
	n := len(Palette)
	return Palette[((i%n)+n)%n]
}

// Label returns the display label for an aggregate key.
func Label(name string) string {
	if name == "" {
		return BlankLabel
	}
	return name
}

// Margins around the bar chart plot area, in px.
const (
	marginTop    = 10
	marginRight  = 10
	marginBottom = 30
	marginLeft   = 40
	tickCount    = 4
)

// Bar is one bar of a BarChart.
type Bar struct {
	Name   string
	Value  int
	X, Y   float64
	Width  float64
	Height float64
	Fill   string
}

// Tick is one y-axis gridline.
type Tick struct {
	Value int
	Y     float64
}

// BarChart is the laid-out division chart.
type BarChart struct {
	Width, Height float64
	PlotLeft      float64
	PlotBottom    float64
	Top           int // Value at the top gridline
	Bars          []Bar
	Ticks         []Tick
}

// Bars lays out pairs as vertical bars in a width x height box.
func Bars(pairs []core.Pair, width, height float64) BarChart {
	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom

	maxVal := 0
	for _, p := range pairs {
		maxVal = max(maxVal, p.Value)
	}
	step := int(math.Ceil(float64(max(maxVal, 1)) / tickCount))
	top := step * tickCount

	bc := BarChart{
		Width:      width,
		Height:     height,
		PlotLeft:   marginLeft,
		PlotBottom: marginTop + plotH,
		Top:        top,
	}
	for k := 0; k <= tickCount; k++ {
		v := k * step
		bc.Ticks = append(bc.Ticks, Tick{Value: v, Y: bc.PlotBottom - plotH*float64(v)/float64(top)})
	}

	if len(pairs) == 0 {
		return bc
	}
	band := plotW / float64(len(pairs))
	for i, p := range pairs {
		h := plotH * float64(p.Value) / float64(top)
		bc.Bars = append(bc.Bars, Bar{
			Name:   p.Name,
			Value:  p.Value,
			X:      marginLeft + float64(i)*band + band*0.15,
			Y:      bc.PlotBottom - h,
			Width:  band * 0.7,
			Height: h,
			Fill:   BarFill,
		})
	}
	return bc
}

// Slice is one wedge of a PieChart. Angles are radians, clockwise from 12 o'clock.
type Slice struct {
	Name    string
	Value   int
	Color   string
	Percent int // Rounded share of the total
	Start   float64
	End     float64
	Path    string // SVG path data
	LabelX  float64
	LabelY  float64
}

// Label returns "name NN%".
func (s Slice) Label() string {
	return fmt.Sprintf("%s %d%%", Label(s.Name), s.Percent)
}

// PieChart is the laid-out classroom chart.
type PieChart struct {
	CX, CY, R float64
	Total     int
	Slices    []Slice
}

// Pie lays out pairs as wedges of a circle centered at (cx, cy).
// Zero-valued pairs keep their palette position but draw nothing.
func Pie(pairs []core.Pair, cx, cy, r float64) PieChart {
	pc := PieChart{CX: cx, CY: cy, R: r}
	for _, p := range pairs {
		pc.Total += p.Value
	}
	if pc.Total == 0 {
		return pc
	}

	angle := 0.0
	for i, p := range pairs {
		share := float64(p.Value) / float64(pc.Total)
		sweep := share * 2 * math.Pi
		s := Slice{
			Name:    p.Name,
			Value:   p.Value,
			Color:   Color(i),
			Percent: int(math.Round(share * 100)),
			Start:   angle,
			End:     angle + sweep,
		}

		mid := angle + sweep/2
		s.LabelX, s.LabelY = point(cx, cy, r*1.25, mid)
		s.Path = wedgePath(cx, cy, r, s.Start, s.End)

		pc.Slices = append(pc.Slices, s)
		angle += sweep
	}
	return pc
}

// point returns the coordinates at angle a (clockwise from 12 o'clock).
func point(cx, cy, r, a float64) (float64, float64) {
	return cx + r*math.Sin(a), cy - r*math.Cos(a)
}

func wedgePath(cx, cy, r, start, end float64) string {
	sweep := end - start
	if sweep <= 0 {
		return ""
	}
	// A single arc cannot draw a full circle; use two half arcs.
	if sweep >= 2*math.Pi-1e-9 {
		return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f Z",
			cx, cy-r, r, r, cx, cy+r, r, r, cx, cy-r)
	}

	x1, y1 := point(cx, cy, r, start)
	x2, y2 := point(cx, cy, r, end)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		cx, cy, x1, y1, r, r, large, x2, y2)
}
