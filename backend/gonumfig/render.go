package gonumfig

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var dashes = []vg.Length{vg.Points(6), vg.Points(4)}

// blankLabels keeps tick positions but drops their labels, the way a shared
// top panel hides its x tick labels.
type blankLabels struct{ plot.Ticker }

func (b blankLabels) Ticks(min, max float64) []plot.Tick {
	ticks := b.Ticker.Ticks(min, max)
	for i := range ticks {
		ticks[i].Label = ""
	}
	return ticks
}

func (f *Figure) build(a *axis) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = a.xlab
	p.Y.Label.Text = a.ylab

	fs := font.Length(f.fontSize)
	p.Title.TextStyle.Font.Size = fs
	p.X.Label.TextStyle.Font.Size = fs
	p.Y.Label.TextStyle.Font.Size = fs
	p.X.Tick.Label.Font.Size = fs
	p.Y.Tick.Label.Font.Size = fs
	p.Legend.TextStyle.Font.Size = fs

	if a.scale.LogXAxis() {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if a.scale.LogYAxis() {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	if a.grid {
		p.Add(plotter.NewGrid())
	}
	for _, l := range a.lines {
		p.Add(l)
	}
	if a.xlim != nil {
		p.X.Min, p.X.Max = a.xlim.lo, a.xlim.hi
	}
	if a.ylim != nil {
		p.Y.Min, p.Y.Max = a.ylim.lo, a.ylim.hi
	}
	return p
}

// render rebuilds every subplot and resolves the cross-axis bookkeeping:
// shared x ranges, guide lines and legends.
func (f *Figure) render() []*plot.Plot {
	f.ensure()
	plots := make([]*plot.Plot, len(f.axes))
	for i, a := range f.axes {
		plots[i] = f.build(a)
	}

	for i, a := range f.axes {
		if a.sharex < 0 {
			continue
		}
		p, q := plots[i], plots[a.sharex]
		lo, hi := math.Min(p.X.Min, q.X.Min), math.Max(p.X.Max, q.X.Max)
		if f.axes[a.sharex].xlim != nil {
			lo, hi = q.X.Min, q.X.Max
		}
		p.X.Min, p.X.Max = lo, hi
		q.X.Min, q.X.Max = lo, hi
	}

	for i, a := range f.axes {
		p := plots[i]
		sanitize(&p.X, a.scale.LogXAxis())
		sanitize(&p.Y, a.scale.LogYAxis())
		for _, g := range a.guides {
			var pts plotter.XYs
			if g.vertical {
				pts = plotter.XYs{{X: g.loc, Y: p.Y.Min}, {X: g.loc, Y: p.Y.Max}}
			} else {
				pts = plotter.XYs{{X: p.X.Min, Y: g.loc}, {X: p.X.Max, Y: g.loc}}
			}
			l, err := plotter.NewLine(pts)
			if err != nil {
				continue
			}
			l.LineStyle.Width = vg.Points(2)
			l.LineStyle.Color = color.Black
			l.LineStyle.Dashes = dashes
			p.Add(l)
		}
		if a.hideXTicks {
			p.X.Tick.Marker = blankLabels{p.X.Tick.Marker}
		}
		if a.legend {
			p.Legend.Top = a.legendLoc.Top()
			p.Legend.Left = a.legendLoc.Left()
			for j, l := range a.lines {
				if a.names[j] != "" {
					p.Legend.Add(a.names[j], l)
				}
			}
		}
	}
	return plots
}

// sanitize mirrors what gonum does to an axis range before drawing, so that
// the limits reported back are the ones that end up on the page.
func sanitize(a *plot.Axis, log bool) {
	if math.IsInf(a.Min, 0) {
		a.Min = 0
	}
	if math.IsInf(a.Max, 0) {
		a.Max = 0
	}
	if a.Min > a.Max {
		a.Min, a.Max = a.Max, a.Min
	}
	if a.Min == a.Max {
		if log {
			a.Min /= 10
			a.Max *= 10
			return
		}
		a.Min--
		a.Max++
	}
}

func (f *Figure) rendered(ax int) (*plot.Plot, error) {
	if _, err := f.axisAt(ax); err != nil {
		return nil, err
	}
	return f.render()[ax], nil
}

func (f *Figure) XLim(ax int) (float64, float64, error) {
	p, err := f.rendered(ax)
	if err != nil {
		return 0, 0, err
	}
	return p.X.Min, p.X.Max, nil
}

func (f *Figure) YLim(ax int) (float64, float64, error) {
	p, err := f.rendered(ax)
	if err != nil {
		return 0, 0, err
	}
	return p.Y.Min, p.Y.Max, nil
}

// XTicks returns the labelled (major) ticks gonum would draw on the x axis,
// ignoring any label hiding.
func (f *Figure) XTicks(ax int) ([]float64, error) {
	p, err := f.rendered(ax)
	if err != nil {
		return nil, err
	}
	marker := p.X.Tick.Marker
	if b, ok := marker.(blankLabels); ok {
		marker = b.Ticker
	}
	var out []float64
	for _, t := range marker.Ticks(p.X.Min, p.X.Max) {
		if t.Label != "" {
			out = append(out, t.Value)
		}
	}
	return out, nil
}

func (f *Figure) tiles() draw.Tiles {
	pad := vg.Points(16)
	if f.tighten {
		pad = vg.Points(4)
	}
	return draw.Tiles{
		Rows:      f.rows,
		Cols:      f.cols,
		PadX:      pad,
		PadY:      pad,
		PadTop:    pad / 2,
		PadBottom: pad / 2,
		PadLeft:   pad / 2,
		PadRight:  pad / 2,
	}
}

// paint draws the figure title and every subplot onto dc.
func (f *Figure) paint(dc draw.Canvas) {
	plots := f.render()

	if f.title != "" {
		sty := draw.TextStyle{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, font.Length(f.fontSize*1.2)),
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
			Handler: plot.DefaultTextHandler,
		}
		top := vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(4)}
		dc.FillText(sty, top, f.title)
		dc = draw.Crop(dc, 0, 0, 0, -(sty.Height(f.title) + vg.Points(8)))
	}

	grid := make([][]*plot.Plot, f.rows)
	for r := range grid {
		grid[r] = plots[r*f.cols : (r+1)*f.cols]
	}
	canvases := plot.Align(grid, f.tiles(), dc)
	for r := range grid {
		for c := range grid[r] {
			grid[r][c].Draw(canvases[r][c])
		}
	}
}

// Render writes the figure in the given format ("png", "svg", "pdf", ...)
// to w.
func (f *Figure) Render(w io.Writer, format string) error {
	c, err := draw.NewFormattedCanvas(vg.Length(f.width)*vg.Inch, vg.Length(f.height)*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("gonumfig: %w", err)
	}
	f.paint(draw.New(c))
	_, err = c.WriteTo(w)
	return err
}

// Save writes the figure to path, picking the format from its extension.
// The parent directory must exist.
func (f *Figure) Save(path string) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return fmt.Errorf("gonumfig: no file extension in %q", path)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Render(out, format); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}
