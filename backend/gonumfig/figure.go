// Package gonumfig is the static backend: every subplot is a gonum
// plot.Plot, and a figure is rendered by tiling them onto one canvas.
package gonumfig

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/HamletTheHamster/plotwrap/backend"
)

// Name is the registry name of this backend.
const Name = "gonum"

const (
	defaultFontSize  = 12
	defaultLineWidth = 2
	defaultWidth     = 8 // inches
	defaultHeight    = 6
)

func init() {
	backend.Register(Name, func(cfg backend.Config) (backend.Backend, error) {
		return New(cfg), nil
	})
}

type limits struct{ lo, hi float64 }

type guide struct {
	loc      float64
	vertical bool
}

// axis is everything needed to rebuild one subplot from scratch, so that a
// figure can be rendered any number of times.
type axis struct {
	lines      []*plotter.Line
	names      []string
	scale      backend.Scale
	xlab, ylab string
	xlim, ylim *limits
	guides     []guide
	sharex     int
	hideXTicks bool
	grid       bool
	legend     bool
	legendLoc  backend.Location
}

func newAxis() *axis { return &axis{sharex: -1} }

// Figure is a grid of subplots.
type Figure struct {
	title         string
	fontSize      float64
	lineWidth     float64
	width, height float64
	tighten       bool

	rows, cols int
	axes       []*axis
	cur        int
	colors     backend.Cycle
}

var _ backend.Backend = (*Figure)(nil)

// New creates a figure with a single subplot.
func New(cfg backend.Config) *Figure {
	f := &Figure{
		title:     cfg.Title,
		fontSize:  cfg.FontSize,
		lineWidth: cfg.LineWidth,
		width:     cfg.Width,
		height:    cfg.Height,
		tighten:   cfg.Tighten,
	}
	if f.fontSize <= 0 {
		f.fontSize = defaultFontSize
	}
	if f.lineWidth <= 0 {
		f.lineWidth = defaultLineWidth
	}
	if f.width <= 0 {
		f.width = defaultWidth
	}
	if f.height <= 0 {
		f.height = defaultHeight
	}
	f.CreateAxes(1, 1)
	return f
}

func (f *Figure) CreateAxes(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("gonumfig: invalid layout %dx%d", rows, cols)
	}
	f.rows, f.cols = rows, cols
	f.axes = make([]*axis, rows*cols)
	for i := range f.axes {
		f.axes[i] = newAxis()
	}
	f.cur = 0
	return nil
}

func (f *Figure) Axes() int { return len(f.axes) }
func (f *Figure) Axis() int { return f.cur }

func (f *Figure) SetAxis(i int) error {
	if i < 0 || i >= len(f.axes) {
		return fmt.Errorf("%w: %d of %d", backend.ErrAxisRange, i, len(f.axes))
	}
	f.cur = i
	return nil
}

func (f *Figure) Scale() backend.Scale {
	if len(f.axes) == 0 {
		return backend.Linear
	}
	return f.axes[f.cur].scale
}

// Clear drops every subplot. The next plot call starts a fresh 1x1 layout.
func (f *Figure) Clear() {
	f.axes = nil
	f.rows, f.cols = 0, 0
	f.cur = 0
	f.colors.Reset()
}

func (f *Figure) Title() string          { return f.title }
func (f *Figure) SetTitle(s string)      { f.title = s }
func (f *Figure) FontSize() float64      { return f.fontSize }
func (f *Figure) SetFontSize(fs float64) { f.fontSize = fs }
func (f *Figure) SetTighten(on bool)     { f.tighten = on }

func (f *Figure) Grid(on bool) {
	for _, a := range f.axes {
		a.grid = on
	}
}

func (f *Figure) axisAt(i int) (*axis, error) {
	if i < 0 || i >= len(f.axes) {
		return nil, fmt.Errorf("%w: %d of %d", backend.ErrAxisRange, i, len(f.axes))
	}
	return f.axes[i], nil
}

func (f *Figure) ensure() {
	if len(f.axes) == 0 {
		f.CreateAxes(1, 1)
	}
}

func (f *Figure) Plot(x, y []float64, o backend.LineOpts) error {
	return f.add(x, y, o, backend.Linear)
}

func (f *Figure) SemilogX(x, y []float64, o backend.LineOpts) error {
	return f.add(x, y, o, backend.LogX)
}

func (f *Figure) SemilogY(x, y []float64, o backend.LineOpts) error {
	return f.add(x, y, o, backend.LogY)
}

func (f *Figure) LogLog(x, y []float64, o backend.LineOpts) error {
	return f.add(x, y, o, backend.LogLog)
}

func (f *Figure) add(x, y []float64, o backend.LineOpts, s backend.Scale) error {
	f.ensure()
	a := f.axes[f.cur]

	// Log axes only accumulate: a linear call keeps the axis as it is.
	eff := a.scale.Union(s)
	if err := backend.CheckXY(x, y, eff); err != nil {
		return err
	}
	if eff != a.scale {
		if err := a.admits(eff); err != nil {
			return err
		}
	}

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("gonumfig: %w", err)
	}
	line.LineStyle.Width = vg.Points(f.lineWidth)
	if o.Width > 0 {
		line.LineStyle.Width = vg.Points(o.Width)
	}
	var col color.Color = o.Color
	if col == nil {
		col = f.colors.Next()
	}
	line.LineStyle.Color = col
	if o.Dashed {
		line.LineStyle.Dashes = dashes
	}

	a.lines = append(a.lines, line)
	a.names = append(a.names, o.Label)
	a.scale = eff
	a.grid = true
	return nil
}

// admits checks that everything already on the axis can be drawn with
// scale s: lines, explicit limits and guides.
func (a *axis) admits(s backend.Scale) error {
	for _, l := range a.lines {
		if err := backend.CheckXY(xs(l.XYs), ys(l.XYs), s); err != nil {
			return fmt.Errorf("existing line: %w", err)
		}
	}
	if s.LogXAxis() && a.xlim != nil && (a.xlim.lo <= 0 || a.xlim.hi <= 0) {
		return fmt.Errorf("%w: existing xlim [%g, %g]", backend.ErrNonPositive, a.xlim.lo, a.xlim.hi)
	}
	if s.LogYAxis() && a.ylim != nil && (a.ylim.lo <= 0 || a.ylim.hi <= 0) {
		return fmt.Errorf("%w: existing ylim [%g, %g]", backend.ErrNonPositive, a.ylim.lo, a.ylim.hi)
	}
	for _, g := range a.guides {
		if g.loc > 0 {
			continue
		}
		if g.vertical && s.LogXAxis() || !g.vertical && s.LogYAxis() {
			return fmt.Errorf("%w: existing guide at %g", backend.ErrNonPositive, g.loc)
		}
	}
	return nil
}

func xs(pts plotter.XYs) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.X
	}
	return out
}

func ys(pts plotter.XYs) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Y
	}
	return out
}

func (f *Figure) SetLabels(ax int, xlab, ylab string) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	if xlab != "" {
		a.xlab = xlab
	}
	if ylab != "" {
		a.ylab = ylab
	}
	return nil
}

func (f *Figure) XLabel(ax int) (string, error) {
	a, err := f.axisAt(ax)
	if err != nil {
		return "", err
	}
	return a.xlab, nil
}

func (f *Figure) SetXLim(lo, hi float64) error {
	f.ensure()
	a := f.axes[f.cur]
	if a.scale.LogXAxis() && (lo <= 0 || hi <= 0) {
		return fmt.Errorf("%w: xlim [%g, %g]", backend.ErrNonPositive, lo, hi)
	}
	a.xlim = &limits{lo, hi}
	return nil
}

func (f *Figure) SetYLim(ax int, lo, hi float64) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	if a.scale.LogYAxis() && (lo <= 0 || hi <= 0) {
		return fmt.Errorf("%w: ylim [%g, %g]", backend.ErrNonPositive, lo, hi)
	}
	a.ylim = &limits{lo, hi}
	return nil
}

func (f *Figure) AutoscaleY(ax int) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	a.ylim = nil
	return nil
}

func (f *Figure) ShareX(ax, with int) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	if _, err := f.axisAt(with); err != nil {
		return err
	}
	if ax == with {
		return nil
	}
	a.sharex = with
	return nil
}

func (f *Figure) HideXTickLabels(ax int) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	a.hideXTicks = true
	return nil
}

// AxLine draws a black dashed guide across the current subplot.
func (f *Figure) AxLine(loc float64, vertical bool) error {
	f.ensure()
	a := f.axes[f.cur]
	if vertical && a.scale.LogXAxis() && loc <= 0 {
		return fmt.Errorf("%w: axvline at %g", backend.ErrNonPositive, loc)
	}
	if !vertical && a.scale.LogYAxis() && loc <= 0 {
		return fmt.Errorf("%w: axhline at %g", backend.ErrNonPositive, loc)
	}
	a.guides = append(a.guides, guide{loc: loc, vertical: vertical})
	return nil
}

func (f *Figure) Legend(loc backend.Location) error {
	f.ensure()
	a := f.axes[f.cur]
	a.legend = true
	a.legendLoc = loc
	return nil
}

// Draw is a no-op: nothing is on screen until the figure is saved.
func (f *Figure) Draw() error { return nil }

// Show is unsupported, a static figure has no window.
func (f *Figure) Show() error { return backend.ErrUnsupported }

func (f *Figure) Close() error {
	f.Clear()
	return nil
}
