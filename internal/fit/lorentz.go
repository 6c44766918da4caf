// Package fit does least-squares Lorentzian fits for overlaying a fitted
// curve on plotted data.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/floats"
)

// Params of a Lorentzian peak on a constant background.
type Params struct {
	Amp float64 // peak height above the background
	Wid float64 // full width at half maximum
	Cen float64 // centre
	C   float64 // background
}

// Lorentzian evaluates the peak at x.
func Lorentzian(x float64, p Params) float64 {
	return .25*p.Amp*math.Pow(p.Wid, 2)/(math.Pow(x-p.Cen, 2)+(.25*math.Pow(p.Wid, 2))) + p.C
}

// Guess picks starting parameters from the data: the tallest point is the
// centre, the smallest value the background, and the half-maximum crossing
// points the width.
func Guess(x, y []float64) Params {
	imax := floats.MaxIdx(y)
	c := floats.Min(y)
	amp := y[imax] - c
	half := c + amp/2

	lo, hi := imax, imax
	for lo > 0 && y[lo] > half {
		lo--
	}
	for hi < len(y)-1 && y[hi] > half {
		hi++
	}
	wid := x[hi] - x[lo]
	if wid <= 0 {
		wid = (x[len(x)-1] - x[0]) / 10
	}
	return Params{Amp: amp, Wid: wid, Cen: x[imax], C: c}
}

// Lorentz fits a Lorentzian to (x, y). sigma weights each residual by
// 1/sigma[i] and may be nil.
func Lorentz(
	x, y, sigma []float64,
	guess Params,
) (
	Params, error,
) {

	if len(x) != len(y) {
		return Params{}, fmt.Errorf("fit: x and y lengths differ: %d != %d", len(x), len(y))
	}
	if len(x) < 4 {
		return Params{}, errors.New("fit: need at least 4 points for 4 parameters")
	}
	if sigma != nil && len(sigma) != len(x) {
		return Params{}, fmt.Errorf("fit: sigma length %d != %d", len(sigma), len(x))
	}

	f := func(dst, guess []float64) {

		p := Params{Amp: guess[0], Wid: guess[1], Cen: guess[2], C: guess[3]}

		for i := range x {
			w := 1.
			if sigma != nil && sigma[i] != 0 {
				w = 1. / sigma[i]
			}
			dst[i] = (Lorentzian(x[i], p) - y[i]) * w
		}
	}

	jacobian := lm.NumJac{Func: f}

	// Solve for fit
	toBeSolved := lm.LMProblem{
		Dim:        4,
		Size:       len(x),
		Func:       f,
		Jac:        jacobian.Jac,
		InitParams: []float64{guess.Amp, guess.Wid, guess.Cen, guess.C},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(toBeSolved, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	if err != nil {
		return Params{}, fmt.Errorf("fit: %w", err)
	}

	return Params{
		Amp: results.X[0],
		Wid: math.Abs(results.X[1]),
		Cen: results.X[2],
		C:   results.X[3],
	}, nil
}

// Curve samples the fitted peak at n points from x0 in steps of dx.
func Curve(
	p Params,
	x0, dx float64,
	n int,
) (
	[]float64, []float64,
) {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = x0 + float64(i)*dx
		y[i] = Lorentzian(x[i], p)
	}
	return x, y
}
