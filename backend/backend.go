// Package backend defines the protocol every plotting backend implements and
// the registry used to open one by name.
//
// A backend owns one figure: a grid of subplots ("axes"), a pointer to the
// current axis, a title, a font size and a colour cycle. Everything else,
// rendering, windows and file formats, belongs to the library the backend
// wraps.
package backend

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"sync"
)

var (
	ErrAxisRange   = errors.New("backend: requested an axis outside the current layout")
	ErrLength      = errors.New("backend: x and y have different lengths")
	ErrEmpty       = errors.New("backend: no data points")
	ErrNonPositive = errors.New("backend: non-positive value on a log axis")
	ErrUnsupported = errors.New("backend: operation not supported")
	ErrNoBackend   = errors.New("backend: unknown backend")
)

// Scale is the axis scaling of a subplot.
type Scale int

const (
	Linear Scale = iota
	LogX
	LogY
	LogLog
)

func (s Scale) String() string {
	switch s {
	case Linear:
		return "linear"
	case LogX:
		return "semilogx"
	case LogY:
		return "semilogy"
	case LogLog:
		return "loglog"
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// ParseScale maps the CLI spellings to a Scale.
func ParseScale(s string) (Scale, error) {
	switch s {
	case "", "linear", "plot":
		return Linear, nil
	case "semilogx", "slogx", "logx":
		return LogX, nil
	case "semilogy", "slogy", "logy":
		return LogY, nil
	case "loglog", "log":
		return LogLog, nil
	}
	return Linear, fmt.Errorf("unknown scale %q", s)
}

// LogXAxis reports whether the x axis is logarithmic.
func (s Scale) LogXAxis() bool { return s == LogX || s == LogLog }

// LogYAxis reports whether the y axis is logarithmic.
func (s Scale) LogYAxis() bool { return s == LogY || s == LogLog }

// Union is the scale with every axis logarithmic that is logarithmic in s
// or t. A semilogx call on a log-y axis gives loglog.
func (s Scale) Union(t Scale) Scale {
	x := s.LogXAxis() || t.LogXAxis()
	y := s.LogYAxis() || t.LogYAxis()
	switch {
	case x && y:
		return LogLog
	case x:
		return LogX
	case y:
		return LogY
	}
	return Linear
}

// LineOpts styles one plotted line. Zero values select the backend defaults:
// the next colour of the figure's cycle and the backend's default width.
type LineOpts struct {
	Label  string
	Color  color.Color
	Width  float64 // points
	Dashed bool
}

// Backend is one figure of a plotting library.
type Backend interface {
	Plot(x, y []float64, o LineOpts) error
	SemilogX(x, y []float64, o LineOpts) error
	SemilogY(x, y []float64, o LineOpts) error
	LogLog(x, y []float64, o LineOpts) error

	// CreateAxes replaces the layout with a rows×cols grid indexed row-major:
	//
	//	| 0 | 1 |
	//	| 2 | 3 |
	//
	// Existing subplots are erased and the current axis is reset to 0.
	CreateAxes(rows, cols int) error
	Axes() int
	Axis() int
	SetAxis(i int) error
	Scale() Scale
	Clear()

	Title() string
	SetTitle(s string)
	FontSize() float64
	SetFontSize(fs float64)
	SetTighten(on bool)
	Grid(on bool)

	SetLabels(ax int, xlab, ylab string) error
	XLabel(ax int) (string, error)
	SetXLim(lo, hi float64) error
	SetYLim(ax int, lo, hi float64) error
	AutoscaleY(ax int) error
	XLim(ax int) (lo, hi float64, err error)
	YLim(ax int) (lo, hi float64, err error)
	// XTicks returns the positions of the labelled x ticks of an axis.
	XTicks(ax int) ([]float64, error)
	ShareX(ax, with int) error
	HideXTickLabels(ax int) error

	AxLine(loc float64, vertical bool) error
	Legend(loc Location) error

	Draw() error
	Show() error
	Save(path string) error
	Close() error
}

// Config is handed to a Factory when a figure is opened.
type Config struct {
	Title     string
	FontSize  float64
	LineWidth float64
	// Width and Height of a saved figure, in inches.
	Width, Height float64
	Tighten       bool
}

// Factory opens a new figure.
type Factory func(cfg Config) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available by name. It panics on a duplicate name,
// which can only happen from a programming error in an init function.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	registry[name] = f
}

// Open creates a figure on the named backend.
func Open(name string, cfg Config) (Backend, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrNoBackend, name, Names())
	}
	return f(cfg)
}

// Names lists the registered backends.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckXY validates a pair of series before it is handed to a library.
func CheckXY(x, y []float64, s Scale) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d != %d", ErrLength, len(x), len(y))
	}
	if len(x) == 0 {
		return ErrEmpty
	}
	if s.LogXAxis() {
		for i, v := range x {
			if v <= 0 {
				return fmt.Errorf("%w: x[%d] = %g", ErrNonPositive, i, v)
			}
		}
	}
	if s.LogYAxis() {
		for i, v := range y {
			if v <= 0 {
				return fmt.Errorf("%w: y[%d] = %g", ErrNonPositive, i, v)
			}
		}
	}
	return nil
}
