package figure

import (
	"bufio"
	"image/color"
	"io"
	"log"

	"github.com/HamletTheHamster/plotwrap/internal/style"
)

// Option configures a Wrapper at construction.
type Option func(*Wrapper)

// WithOutfile saves the current figure to path when the wrapper is closed.
func WithOutfile(path string) Option {
	return func(w *Wrapper) { w.outfile = path }
}

// WithInteractive is for exploratory sessions: figures draw as they are
// built and every save first waits for the user to resize the window. It
// selects the gnuplot backend unless WithBackend says otherwise.
func WithInteractive() Option {
	return func(w *Wrapper) {
		w.interactive = true
		w.showAtEnd = false
		w.waitSave = true
	}
}

// WithShow holds drawing back and shows the figure once, on Close.
func WithShow(show bool) Option {
	return func(w *Wrapper) {
		w.showAtEnd = show
		w.interactive = show
	}
}

// WithTighten tightens the layout of the figure saved on Close.
func WithTighten(on bool) Option {
	return func(w *Wrapper) { w.tighten = on }
}

// WithBackend picks the backend by registry name.
func WithBackend(name string) Option {
	return func(w *Wrapper) {
		w.backendName = name
		w.backendSet = true
	}
}

// WithStyle replaces the default style.
func WithStyle(s style.Style) Option {
	return func(w *Wrapper) { w.style = s }
}

// WithPrompt sets where resize prompts are written and answered.
func WithPrompt(in io.Reader, out io.Writer) Option {
	return func(w *Wrapper) {
		w.promptIn = bufio.NewReader(in)
		w.promptOut = out
	}
}

// WithLogger sets the logger for save progress and warnings.
func WithLogger(l *log.Logger) Option {
	return func(w *Wrapper) { w.logger = l }
}

// WithTickUnit sets the unit FixTicks puts in the per-division label.
func WithTickUnit(unit string) Option {
	return func(w *Wrapper) { w.tickUnit = unit }
}

// CallOpt adjusts a single plotting call.
type CallOpt func(*callArgs)

type callArgs struct {
	newPlot   bool
	hold      bool
	fig       int
	prompt    bool
	legendLoc string
	plotLoc   int
	name      string
	yy        bool
	color     color.Color
	width     float64
	dashed    bool
}

func defaultArgs() callArgs {
	return callArgs{hold: true, fig: -1, plotLoc: -1}
}

// NewPlot opens a new figure and makes it current before plotting.
func NewPlot() CallOpt { return func(a *callArgs) { a.newPlot = true } }

// Hold keeps what is already drawn. Hold(false) clears the current figure
// before plotting.
func Hold(on bool) CallOpt { return func(a *callArgs) { a.hold = on } }

// Fig switches to figure i before plotting.
func Fig(i int) CallOpt { return func(a *callArgs) { a.fig = i } }

// PromptForResize makes later saves wait for the user.
func PromptForResize() CallOpt { return func(a *callArgs) { a.prompt = true } }

// LegendLoc sets where the legend goes ("best", "upper left", ...).
func LegendLoc(loc string) CallOpt { return func(a *callArgs) { a.legendLoc = loc } }

// PlotLoc selects the subplot to draw into, counting from 1.
func PlotLoc(n int) CallOpt { return func(a *callArgs) { a.plotLoc = n } }

// Name labels the line and turns the legend on.
func Name(s string) CallOpt { return func(a *callArgs) { a.name = s } }

// YY asks for a twin y axis. No backend supports it yet.
func YY() CallOpt { return func(a *callArgs) { a.yy = true } }

// Color fixes the line colour instead of taking the next one in the cycle.
func Color(c color.Color) CallOpt { return func(a *callArgs) { a.color = c } }

// Width sets the line width in points.
func Width(w float64) CallOpt { return func(a *callArgs) { a.width = w } }

// Dashed draws a dashed line.
func Dashed() CallOpt { return func(a *callArgs) { a.dashed = true } }

// SaveOpt adjusts a single Save.
type SaveOpt func(*saveArgs)

type saveArgs struct {
	wait    bool
	tighten bool
}

// WaitSave prompts for a resize before saving.
func WaitSave(on bool) SaveOpt { return func(a *saveArgs) { a.wait = on } }

// Tighten controls the layout tightening of this save. It is on by default.
func Tighten(on bool) SaveOpt { return func(a *saveArgs) { a.tighten = on } }
