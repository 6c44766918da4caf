// Package gnuplotfig is the interactive backend. Each subplot is a
// persistent gnuplot window driven through glot; lines are redrawn as they
// are added, so the window tracks the data in real time.
//
// glot refuses to start without a gnuplot binary on PATH, so the backend is
// only registered in builds with the gnuplot tag:
//
//	go build -tags gnuplot ./cmd/plotfig
package gnuplotfig

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/HamletTheHamster/plotwrap/backend"
)

// Name is the registry name of this backend.
const Name = "gnuplot"

const defaultLineWidth = 1

// session is the part of *glot.Plot the backend drives.
type session interface {
	Cmd(format string, a ...interface{}) error
	AddPointGroup(name string, style string, data interface{}) error
	Close() error
}

// Opener starts a gnuplot session for one subplot.
type Opener func() (session, error)

type axis struct {
	s          session
	lines      int
	scale      backend.Scale
	xlab, ylab string
	xmin, xmax float64
	ymin       float64
	xlim       [2]float64
	hasXLim    bool
	ylim       [2]float64
	hasYLim    bool
	names      map[string]bool
}

// Figure is a set of gnuplot windows, one per subplot.
type Figure struct {
	open      Opener
	title     string
	fontSize  float64
	lineWidth float64

	axes   []*axis
	cur    int
	colors backend.Cycle
}

var _ backend.Backend = (*Figure)(nil)

// New opens a figure with one window. open is called once per subplot.
func New(cfg backend.Config, open Opener) (*Figure, error) {
	f := &Figure{
		open:      open,
		title:     cfg.Title,
		fontSize:  cfg.FontSize,
		lineWidth: cfg.LineWidth,
	}
	if f.lineWidth <= 0 {
		f.lineWidth = defaultLineWidth
	}
	if err := f.CreateAxes(1, 1); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Figure) newAxis() (*axis, error) {
	s, err := f.open()
	if err != nil {
		return nil, fmt.Errorf("gnuplotfig: %w", err)
	}
	a := &axis{s: s, xmin: math.Inf(1), xmax: math.Inf(-1), ymin: math.Inf(1), names: map[string]bool{}}
	cmds := []string{"unset key", "set grid"}
	if f.title != "" {
		cmds = append(cmds, fmt.Sprintf("set title %q", f.title))
	}
	if f.fontSize > 0 {
		cmds = append(cmds, fmt.Sprintf("set termoption font \",%g\"", f.fontSize))
	}
	for _, c := range cmds {
		if err := a.cmd(c); err != nil {
			s.Close()
			return nil, err
		}
	}
	return a, nil
}

func (f *Figure) closeAxes() error {
	var first error
	for _, a := range f.axes {
		if err := a.s.Close(); err != nil && first == nil {
			first = err
		}
	}
	f.axes = nil
	f.cur = 0
	return first
}

// CreateAxes closes every open window and opens rows*cols new ones.
func (f *Figure) CreateAxes(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("gnuplotfig: invalid layout %dx%d", rows, cols)
	}
	if err := f.closeAxes(); err != nil {
		return err
	}
	for i := 0; i < rows*cols; i++ {
		a, err := f.newAxis()
		if err != nil {
			f.closeAxes()
			return err
		}
		f.axes = append(f.axes, a)
	}
	return nil
}

func (f *Figure) Axes() int { return len(f.axes) }
func (f *Figure) Axis() int { return f.cur }

func (f *Figure) SetAxis(i int) error {
	if _, err := f.axisAt(i); err != nil {
		return err
	}
	f.cur = i
	return nil
}

func (f *Figure) axisAt(i int) (*axis, error) {
	if i < 0 || i >= len(f.axes) {
		return nil, fmt.Errorf("%w: %d of %d", backend.ErrAxisRange, i, len(f.axes))
	}
	return f.axes[i], nil
}

func (f *Figure) current() (*axis, error) {
	if len(f.axes) == 0 {
		if err := f.CreateAxes(1, 1); err != nil {
			return nil, err
		}
	}
	return f.axes[f.cur], nil
}

func (f *Figure) Scale() backend.Scale {
	if len(f.axes) == 0 {
		return backend.Linear
	}
	return f.axes[f.cur].scale
}

// Clear closes every window. The next plot call opens a fresh one.
func (f *Figure) Clear() {
	f.closeAxes()
	f.colors.Reset()
}

func (f *Figure) Title() string { return f.title }

func (f *Figure) SetTitle(s string) {
	f.title = s
	f.each(fmt.Sprintf("set title %q", s))
}

func (f *Figure) FontSize() float64 { return f.fontSize }

func (f *Figure) SetFontSize(fs float64) {
	f.fontSize = fs
	f.each(fmt.Sprintf("set termoption font \",%g\"", fs))
}

// SetTighten is a no-op, gnuplot lays out its own margins.
func (f *Figure) SetTighten(bool) {}

func (f *Figure) Grid(on bool) {
	if on {
		f.each("set grid")
	} else {
		f.each("unset grid")
	}
}

// each sends a command to every window and refreshes the ones with data.
func (f *Figure) each(cmd string) {
	for _, a := range f.axes {
		a.cmd(cmd)
		a.replot()
	}
}

// cmd sends one literal gnuplot command.
func (a *axis) cmd(c string) error {
	return a.s.Cmd("%s", c)
}

func (a *axis) replot() error {
	if a.lines == 0 {
		return nil
	}
	return a.cmd("replot")
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
	a, err := f.current()
	if err != nil {
		return err
	}
	eff := a.scale.Union(s)
	if err := backend.CheckXY(x, y, eff); err != nil {
		return err
	}
	if eff != a.scale {
		if err := a.setScale(eff); err != nil {
			return err
		}
	}

	col := o.Color
	if col == nil {
		col = f.colors.Next()
	}
	width := f.lineWidth
	if o.Width > 0 {
		width = o.Width
	}
	// gnuplot hands linetype n to the n-th curve of a plot command.
	lt := fmt.Sprintf("set linetype %d lc rgb %q lw %g", a.lines+1, backend.Hex(col), width)
	if o.Dashed {
		lt += " dt 2"
	} else {
		lt += " dt 1"
	}
	if err := a.cmd(lt); err != nil {
		return err
	}

	// glot keys point groups by name, so unlabelled lines get a placeholder
	// and repeated labels get the line number.
	name := o.Label
	if name == "" {
		name = fmt.Sprintf("line %d", a.lines+1)
	}
	if a.names[name] {
		name = fmt.Sprintf("%s (%d)", name, a.lines+1)
	}
	if err := a.s.AddPointGroup(name, "lines", [][]float64{x, y}); err != nil {
		return fmt.Errorf("gnuplotfig: %w", err)
	}
	a.names[name] = true
	a.lines++
	for _, v := range x {
		a.xmin = math.Min(a.xmin, v)
		a.xmax = math.Max(a.xmax, v)
	}
	for _, v := range y {
		a.ymin = math.Min(a.ymin, v)
	}
	return nil
}

// setScale replaces the window's log settings with those of sc.
func (a *axis) setScale(sc backend.Scale) error {
	if sc.LogXAxis() && a.xmin <= 0 || sc.LogYAxis() && a.ymin <= 0 {
		return fmt.Errorf("%w: existing data down to (%g, %g)", backend.ErrNonPositive, a.xmin, a.ymin)
	}
	if sc.LogXAxis() && a.hasXLim && (a.xlim[0] <= 0 || a.xlim[1] <= 0) {
		return fmt.Errorf("%w: existing xrange [%g:%g]", backend.ErrNonPositive, a.xlim[0], a.xlim[1])
	}
	if sc.LogYAxis() && a.hasYLim && (a.ylim[0] <= 0 || a.ylim[1] <= 0) {
		return fmt.Errorf("%w: existing yrange [%g:%g]", backend.ErrNonPositive, a.ylim[0], a.ylim[1])
	}
	cmds := []string{"unset logscale"}
	switch sc {
	case backend.LogX:
		cmds = append(cmds, "set logscale x")
	case backend.LogY:
		cmds = append(cmds, "set logscale y")
	case backend.LogLog:
		cmds = append(cmds, "set logscale xy")
	}
	for _, c := range cmds {
		if err := a.cmd(c); err != nil {
			return err
		}
	}
	a.scale = sc
	return nil
}

func (f *Figure) SetLabels(ax int, xlab, ylab string) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	if xlab != "" {
		a.xlab = xlab
		if err := a.cmd(fmt.Sprintf("set xlabel %q", xlab)); err != nil {
			return err
		}
	}
	if ylab != "" {
		a.ylab = ylab
		if err := a.cmd(fmt.Sprintf("set ylabel %q", ylab)); err != nil {
			return err
		}
	}
	return a.replot()
}

func (f *Figure) XLabel(ax int) (string, error) {
	a, err := f.axisAt(ax)
	if err != nil {
		return "", err
	}
	return a.xlab, nil
}

func (f *Figure) setXRange(a *axis, lo, hi float64) error {
	a.xlim, a.hasXLim = [2]float64{lo, hi}, true
	if err := a.cmd(fmt.Sprintf("set xrange [%g:%g]", lo, hi)); err != nil {
		return err
	}
	return a.replot()
}

func (f *Figure) SetXLim(lo, hi float64) error {
	a, err := f.current()
	if err != nil {
		return err
	}
	return f.setXRange(a, lo, hi)
}

func (f *Figure) SetYLim(ax int, lo, hi float64) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	a.ylim, a.hasYLim = [2]float64{lo, hi}, true
	if err := a.cmd(fmt.Sprintf("set yrange [%g:%g]", lo, hi)); err != nil {
		return err
	}
	return a.replot()
}

func (f *Figure) AutoscaleY(ax int) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	a.hasYLim = false
	if err := a.cmd("set autoscale y"); err != nil {
		return err
	}
	return a.replot()
}

// XLim reports the explicit x range, or the extent of the data when gnuplot
// is autoscaling.
func (f *Figure) XLim(ax int) (float64, float64, error) {
	a, err := f.axisAt(ax)
	if err != nil {
		return 0, 0, err
	}
	if a.hasXLim {
		return a.xlim[0], a.xlim[1], nil
	}
	if a.lines == 0 {
		return 0, 0, backend.ErrEmpty
	}
	return a.xmin, a.xmax, nil
}

// YLim only knows explicit ranges, gnuplot keeps its autoscaled one.
func (f *Figure) YLim(ax int) (float64, float64, error) {
	a, err := f.axisAt(ax)
	if err != nil {
		return 0, 0, err
	}
	if !a.hasYLim {
		return 0, 0, backend.ErrUnsupported
	}
	return a.ylim[0], a.ylim[1], nil
}

// XTicks is unsupported, tick placement lives inside gnuplot.
func (f *Figure) XTicks(int) ([]float64, error) {
	return nil, backend.ErrUnsupported
}

// ShareX pins both windows to the union of their x ranges.
func (f *Figure) ShareX(ax, with int) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	b, err := f.axisAt(with)
	if err != nil {
		return err
	}
	if ax == with {
		return nil
	}
	lo, hi, err := f.XLim(with)
	if err != nil {
		return err
	}
	if !b.hasXLim && a.lines > 0 {
		lo, hi = math.Min(lo, a.xmin), math.Max(hi, a.xmax)
	}
	if err := f.setXRange(a, lo, hi); err != nil {
		return err
	}
	return f.setXRange(b, lo, hi)
}

func (f *Figure) HideXTickLabels(ax int) error {
	a, err := f.axisAt(ax)
	if err != nil {
		return err
	}
	if err := a.cmd(`set format x ""`); err != nil {
		return err
	}
	return a.replot()
}

func (f *Figure) AxLine(loc float64, vertical bool) error {
	a, err := f.current()
	if err != nil {
		return err
	}
	var cmd string
	if vertical {
		cmd = fmt.Sprintf("set arrow from %g, graph 0 to %g, graph 1 nohead lc rgb \"black\" lw 2 dt 2", loc, loc)
	} else {
		cmd = fmt.Sprintf("set arrow from graph 0, first %g to graph 1, first %g nohead lc rgb \"black\" lw 2 dt 2", loc, loc)
	}
	if err := a.cmd(cmd); err != nil {
		return err
	}
	return a.replot()
}

var keyPositions = map[backend.Location]string{
	backend.Best:       "top right",
	backend.UpperRight: "top right",
	backend.UpperLeft:  "top left",
	backend.LowerLeft:  "bottom left",
	backend.LowerRight: "bottom right",
}

func (f *Figure) Legend(loc backend.Location) error {
	a, err := f.current()
	if err != nil {
		return err
	}
	if err := a.cmd("set key " + keyPositions[loc]); err != nil {
		return err
	}
	return a.replot()
}

// Draw refreshes every window.
func (f *Figure) Draw() error {
	for _, a := range f.axes {
		if err := a.replot(); err != nil {
			return err
		}
	}
	return nil
}

// Show redraws; the windows are persistent and stay up after exit.
func (f *Figure) Show() error { return f.Draw() }

var terminals = map[string]string{
	"png":  "pngcairo",
	"svg":  "svg",
	"pdf":  "pdfcairo",
	"eps":  "epscairo",
	"jpg":  "jpeg",
	"jpeg": "jpeg",
}

// Save writes the current subplot to path through a temporary terminal
// switch, leaving the window as it was.
func (f *Figure) Save(path string) error {
	a, err := f.current()
	if err != nil {
		return err
	}
	if a.lines == 0 {
		return backend.ErrEmpty
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	term, ok := terminals[ext]
	if !ok {
		return fmt.Errorf("%w: format %q", backend.ErrUnsupported, ext)
	}
	for _, c := range []string{
		"set terminal push",
		"set terminal " + term,
		fmt.Sprintf("set output %q", path),
		"replot",
		"unset output",
		"set terminal pop",
	} {
		if err := a.cmd(c); err != nil {
			return fmt.Errorf("gnuplotfig: %s: %w", c, err)
		}
	}
	return nil
}

func (f *Figure) Close() error { return f.closeAxes() }
