package figure

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/HamletTheHamster/plotwrap/backend"
	"github.com/HamletTheHamster/plotwrap/internal/fit"
)

// Series is a named column of values over a named index, the shape a table
// column has once it is read in.
type Series struct {
	Name      string
	IndexName string
	Index     []float64
	Values    []float64
}

// Kind selects the plotting call PlotSeries forwards to.
type Kind int

const (
	KindPlot Kind = iota
	KindSlogX
	KindSlogY
	KindLogLog
	KindPlot2
)

// PlotSeries plots series with the chosen call. KindPlot2 takes two series
// over the same index and labels both panels from their names; every other
// kind plots the first series against its index.
func (w *Wrapper) PlotSeries(kind Kind, series []Series, opts ...CallOpt) error {
	if len(series) == 0 {
		return fmt.Errorf("figure: no series")
	}
	s := series[0]
	switch kind {
	case KindPlot2:
		if len(series) < 2 {
			return fmt.Errorf("figure: Plot2 needs two series, have %d", len(series))
		}
		return w.Plot2(s.Index, s.Values, series[1].Values, s.IndexName, s.Name, series[1].Name, false, opts...)
	case KindSlogX:
		return w.SlogX(s.Index, s.Values, opts...)
	case KindSlogY:
		return w.SlogY(s.Index, s.Values, opts...)
	case KindLogLog:
		return w.LogLog(s.Index, s.Values, opts...)
	}
	return w.Plot(s.Index, s.Values, opts...)
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// PlotFit plots the data, fits a Lorentzian peak to it and overlays the fit
// as a dashed line sampled ten times finer than the data.
func (w *Wrapper) PlotFit(x, y []float64, opts ...CallOpt) (fit.Params, error) {
	if err := backend.CheckXY(x, y, backend.Linear); err != nil {
		return fit.Params{}, err
	}
	if err := w.Plot(x, y, opts...); err != nil {
		return fit.Params{}, err
	}

	p, err := fit.Lorentz(x, y, nil, fit.Guess(x, y))
	if err != nil {
		return fit.Params{}, err
	}
	w.logger.Printf("fit: amp %.6f  width %.4f  center %.4f  offset %.4f", p.Amp, p.Wid, p.Cen, p.C)

	lo, hi := floats.Min(x), floats.Max(x)
	n := 10*len(x) + 1
	fx, fy := fit.Curve(p, lo, (hi-lo)/float64(n-1), n)
	if err := w.Plot(fx, fy, Name("fit"), Dashed()); err != nil {
		return fit.Params{}, err
	}
	return p, nil
}
