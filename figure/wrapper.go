// Package figure is the front end for making line charts: a Wrapper keeps a
// list of figures on some backend, routes plot calls to the current one,
// tracks legend and tick bookkeeping, and saves the result to disk.
//
//	w, err := figure.New(figure.WithOutfile("plots/decay.png"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer w.Close()
//	w.SlogY(t, counts, figure.Name("counts"))
//	w.SetLabels("time (s)", "counts", -1)
package figure

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/HamletTheHamster/plotwrap/backend"
	"github.com/HamletTheHamster/plotwrap/backend/gonumfig"
	"github.com/HamletTheHamster/plotwrap/internal/gifmaker"
	"github.com/HamletTheHamster/plotwrap/internal/savepath"
	"github.com/HamletTheHamster/plotwrap/internal/style"
)

// interactiveBackend is the registry name of the windowed backend, linked in
// by builds with the gnuplot tag.
const interactiveBackend = "gnuplot"

const resizePrompt = "Please resize the image as desired, then hit enter"

// Wrapper holds a list of figures and the current one.
type Wrapper struct {
	figs        []backend.Backend
	idx         int
	backendName string
	backendSet  bool
	style       style.Style

	fontSize      float64
	outfile       string
	makeLegend    bool
	legendLoc     backend.Location
	waitSave      bool
	interactive   bool
	showAtEnd     bool
	fixTicksAtEnd bool
	autoscale     bool
	tighten       bool
	tickUnit      string

	promptIn  *bufio.Reader
	promptOut io.Writer
	logger    *log.Logger
}

// New opens a wrapper with one empty figure.
func New(opts ...Option) (*Wrapper, error) {
	w := &Wrapper{
		style:    style.Default(),
		tickUnit: "µs",
		logger:   log.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	if !w.backendSet {
		w.backendName = w.style.Backend
		if w.backendName == "" {
			w.backendName = gonumfig.Name
		}
		if w.interactive {
			if slices.Contains(backend.Names(), interactiveBackend) {
				w.backendName = interactiveBackend
			} else {
				w.logger.Printf("%s backend not built in, drawing with %s", interactiveBackend, w.backendName)
			}
		}
	}
	if w.backendName == "" {
		w.backendName = gonumfig.Name
	}
	if w.promptIn == nil {
		w.promptIn = bufio.NewReader(os.Stdin)
		w.promptOut = os.Stdout
	}

	loc, err := backend.ParseLocation(w.style.LegendLoc)
	if err != nil {
		return nil, err
	}
	w.legendLoc = loc
	w.fontSize = w.style.FontSize

	fig, err := w.newFig()
	if err != nil {
		return nil, err
	}
	w.figs = []backend.Backend{fig}
	if w.interactive {
		w.logger.Printf("figure wrapper running interactively on %s", w.backendName)
	}
	return w, nil
}

func (w *Wrapper) newFig() (backend.Backend, error) {
	return backend.Open(w.backendName, backend.Config{
		FontSize:  w.style.FontSize,
		LineWidth: w.style.LineWidth,
		Width:     w.style.Width,
		Height:    w.style.Height,
		Tighten:   w.style.Tighten,
	})
}

// Fig returns the current figure.
func (w *Wrapper) Fig() backend.Backend { return w.figs[w.idx] }

// Figs is the number of open figures.
func (w *Wrapper) Figs() int { return len(w.figs) }

// FigIndex is the index of the current figure.
func (w *Wrapper) FigIndex() int { return w.idx }

// processArgs applies the per-call options to the wrapper and returns the
// line style to plot with.
func (w *Wrapper) processArgs(opts []CallOpt) (backend.LineOpts, error) {
	a := defaultArgs()
	for _, o := range opts {
		o(&a)
	}

	if a.legendLoc != "" {
		loc, err := backend.ParseLocation(a.legendLoc)
		if err != nil {
			return backend.LineOpts{}, err
		}
		w.legendLoc = loc
	}
	if a.plotLoc != -1 {
		if err := w.Fig().SetAxis(a.plotLoc - 1); err != nil {
			return backend.LineOpts{}, err
		}
	}
	if a.newPlot {
		fig, err := w.newFig()
		if err != nil {
			return backend.LineOpts{}, err
		}
		w.figs = append(w.figs, fig)
		w.idx = len(w.figs) - 1
	}
	if a.fig != -1 {
		if a.fig < 0 || a.fig >= len(w.figs) {
			return backend.LineOpts{}, fmt.Errorf("figure: no figure %d of %d", a.fig, len(w.figs))
		}
		w.idx = a.fig
	}
	if !a.hold {
		w.Fig().Clear()
	}
	if a.prompt {
		w.waitSave = true
	}
	if a.name != "" {
		w.makeLegend = true
	}
	if a.yy {
		return backend.LineOpts{}, fmt.Errorf("figure: twin y axis: %w", backend.ErrUnsupported)
	}

	lo := backend.LineOpts{
		Label:  a.name,
		Color:  a.color,
		Width:  a.width,
		Dashed: a.dashed,
	}
	if lo.Width == 0 {
		lo.Width = w.style.LineWidth
	}
	return lo, nil
}

func (w *Wrapper) line(s backend.Scale, x, y []float64, opts []CallOpt) error {
	lo, err := w.processArgs(opts)
	if err != nil {
		return err
	}
	fig := w.Fig()
	switch s {
	case backend.LogX:
		err = fig.SemilogX(x, y, lo)
	case backend.LogY:
		err = fig.SemilogY(x, y, lo)
	case backend.LogLog:
		err = fig.LogLog(x, y, lo)
	default:
		err = fig.Plot(x, y, lo)
	}
	if err != nil {
		return err
	}
	return w.draw()
}

// Plot draws y against x on linear axes.
func (w *Wrapper) Plot(x, y []float64, opts ...CallOpt) error {
	return w.line(backend.Linear, x, y, opts)
}

// SlogX draws with a logarithmic x axis.
func (w *Wrapper) SlogX(x, y []float64, opts ...CallOpt) error {
	return w.line(backend.LogX, x, y, opts)
}

// SlogY draws with a logarithmic y axis.
func (w *Wrapper) SlogY(x, y []float64, opts ...CallOpt) error {
	return w.line(backend.LogY, x, y, opts)
}

// LogLog draws with both axes logarithmic.
func (w *Wrapper) LogLog(x, y []float64, opts ...CallOpt) error {
	return w.line(backend.LogLog, x, y, opts)
}

// PFunc plots f evaluated at every x.
func (w *Wrapper) PFunc(x []float64, f func(float64) float64, opts ...CallOpt) error {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = f(v)
	}
	return w.Plot(x, y, opts...)
}

// Plot2 draws y1 and y2 against a shared x in two stacked panels. The x
// label goes on the bottom panel only. With adjustTicks the top panel's x
// tick labels are replaced, at save time, by a per-division note on the
// bottom label.
func (w *Wrapper) Plot2(
	x, y1, y2 []float64,
	xlab, ylab1, ylab2 string,
	adjustTicks bool,
	opts ...CallOpt,
) error {

	lo, err := w.processArgs(opts)
	if err != nil {
		return err
	}
	fig := w.Fig()
	if fig.Axes() < 2 {
		if err := fig.CreateAxes(2, 1); err != nil {
			return err
		}
	}

	if err := fig.SetAxis(0); err != nil {
		return err
	}
	if err := fig.Plot(x, y1, lo); err != nil {
		return err
	}
	if err := fig.SetLabels(0, "", ylab1); err != nil {
		return err
	}

	if err := fig.SetAxis(1); err != nil {
		return err
	}
	if err := fig.Plot(x, y2, lo); err != nil {
		return err
	}
	if err := fig.ShareX(1, 0); err != nil {
		return err
	}
	if err := fig.SetLabels(1, xlab, ylab2); err != nil {
		return err
	}

	if err := w.draw(); err != nil {
		return err
	}
	if adjustTicks {
		w.fixTicksAtEnd = true
	}
	return nil
}

// FixTicks blanks the top panel's x tick labels and appends the tick
// spacing to the bottom panel's x label, e.g. "time (0.5µs/division)".
func (w *Wrapper) FixTicks() error {
	fig := w.Fig()
	if fig.Axes() < 2 {
		return fmt.Errorf("figure: FixTicks needs two panels, have %d", fig.Axes())
	}
	ticks, err := fig.XTicks(0)
	if err != nil {
		return err
	}
	if len(ticks) < 2 {
		return fmt.Errorf("figure: FixTicks needs two x ticks, have %d", len(ticks))
	}
	x0 := round(ticks[0], 2)
	x1 := round(ticks[1], 2)
	delta := round(x1-x0, 3)

	if err := fig.HideXTickLabels(0); err != nil {
		return err
	}
	xlab, err := fig.XLabel(1)
	if err != nil {
		return err
	}
	return fig.SetLabels(1, fmt.Sprintf("%s (%s%s/division)", xlab, division(delta), w.tickUnit), "")
}

// division formats a tick spacing with at least one decimal place, so a
// whole spacing reads "2.0" and a fractional one "0.25".
func division(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// AxLine draws a dashed guide: vertical at loc when axis is "x",
// horizontal otherwise.
func (w *Wrapper) AxLine(loc float64, axis string) error {
	if err := w.Fig().AxLine(loc, axis == "x"); err != nil {
		return err
	}
	return w.draw()
}

// SetTitle titles the current figure.
func (w *Wrapper) SetTitle(t string) {
	w.Fig().SetTitle(t)
}

// SetLabels labels subplot ax, or the current one when ax is -1. Empty
// labels are left alone.
func (w *Wrapper) SetLabels(xlab, ylab string, ax int) error {
	fig := w.Fig()
	if ax == -1 {
		ax = fig.Axis()
	}
	if err := fig.SetLabels(ax, xlab, ylab); err != nil {
		return err
	}
	return w.draw()
}

// SetXLim fixes the x range of the current subplot.
func (w *Wrapper) SetXLim(left, right float64) error {
	if err := w.Fig().SetXLim(left, right); err != nil {
		return err
	}
	return w.draw()
}

// SetYLim fixes the y range of the current subplot.
func (w *Wrapper) SetYLim(bot, top float64) error {
	fig := w.Fig()
	if err := fig.SetYLim(fig.Axis(), bot, top); err != nil {
		return err
	}
	return w.draw()
}

// SetYLims takes either (bot, top), applied to the first subplot, or
// (axis, bot, top).
func (w *Wrapper) SetYLims(lims ...float64) error {
	var sel int
	var bot, top float64
	switch len(lims) {
	case 2:
		bot, top = lims[0], lims[1]
	case 3:
		sel, bot, top = int(lims[0]), lims[1], lims[2]
	default:
		return fmt.Errorf("figure: SetYLims wants 2 or 3 values, got %d", len(lims))
	}
	if err := w.Fig().SetYLim(sel, bot, top); err != nil {
		return err
	}
	return w.draw()
}

// XLim is the x range of the first subplot.
func (w *Wrapper) XLim() (float64, float64, error) {
	return w.Fig().XLim(0)
}

// YLim is the y range of every subplot, in order.
func (w *Wrapper) YLim() ([][2]float64, error) {
	fig := w.Fig()
	lims := make([][2]float64, fig.Axes())
	for i := range lims {
		lo, hi, err := fig.YLim(i)
		if err != nil {
			return nil, err
		}
		lims[i] = [2]float64{lo, hi}
	}
	return lims, nil
}

// SetFontSize sets the size of all text in the current figure.
func (w *Wrapper) SetFontSize(fs float64) error {
	w.fontSize = fs
	w.Fig().SetFontSize(fs)
	return w.draw()
}

// FontSize is the last font size set.
func (w *Wrapper) FontSize() float64 { return w.fontSize }

// SetAutoscale makes saves fit the y range to the data again.
func (w *Wrapper) SetAutoscale(on bool) error {
	w.autoscale = on
	if !on {
		return nil
	}
	fig := w.Fig()
	return fig.AutoscaleY(fig.Axis())
}

// Autoscale reports whether y autoscaling is on.
func (w *Wrapper) Autoscale() bool { return w.autoscale }

func (w *Wrapper) draw() error {
	if w.showAtEnd {
		return nil
	}
	return w.Fig().Draw()
}

// ask prints the resize prompt and waits for the user to hit enter.
func (w *Wrapper) ask() error {
	fmt.Fprint(w.promptOut, resizePrompt)
	if _, err := w.promptIn.ReadString('\n'); err != nil {
		return fmt.Errorf("figure: waiting for resize: %w", err)
	}
	return nil
}

// Save writes the current figure to path, making folders as needed. The
// format comes from the extension.
func (w *Wrapper) Save(path string, opts ...SaveOpt) error {
	a := saveArgs{tighten: true}
	for _, o := range opts {
		o(&a)
	}
	fig := w.Fig()
	fig.SetTighten(a.tighten)

	if w.fixTicksAtEnd {
		if err := w.FixTicks(); err != nil {
			if !errors.Is(err, backend.ErrUnsupported) {
				return err
			}
			w.logger.Printf("skipping tick fix: %v", err)
		}
		w.fixTicksAtEnd = false
	}
	if w.makeLegend {
		if err := fig.Legend(w.legendLoc); err != nil {
			return err
		}
	}
	if w.autoscale {
		if err := fig.AutoscaleY(fig.Axis()); err != nil {
			return err
		}
	}
	if w.waitSave || a.wait {
		if err := w.ask(); err != nil {
			return err
		}
	}

	abs, err := savepath.Create(path, w.logger)
	if err != nil {
		return err
	}
	return fig.Save(abs)
}

// SaveFrame saves the current figure as frame i of an animation in dir.
func (w *Wrapper) SaveFrame(dir, name string, i int) (string, error) {
	path := savepath.Frame(dir, name, i)
	return path, w.Save(path)
}

// Animate stitches saved frames into a GIF at out.
func (w *Wrapper) Animate(ctx context.Context, frames []string, out string, delay int) error {
	abs, err := savepath.Create(out, w.logger)
	if err != nil {
		return err
	}
	return gifmaker.Assemble(ctx, frames, abs, delay)
}

// Close finishes the session: grids on, show if asked, save to the outfile
// if one was given, then close every figure.
func (w *Wrapper) Close() error {
	var errs []error
	fig := w.Fig()
	fig.Grid(true)
	if w.showAtEnd {
		if err := fig.Show(); err != nil {
			if errors.Is(err, backend.ErrUnsupported) {
				w.logger.Printf("%s backend cannot show figures", w.backendName)
			} else {
				errs = append(errs, err)
			}
		}
	}
	if w.outfile != "" {
		if err := w.Save(w.outfile, WaitSave(w.waitSave), Tighten(w.tighten)); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range w.figs {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
