//go:build gnuplot

package gnuplotfig

import (
	"github.com/Arafatk/glot"

	"github.com/HamletTheHamster/plotwrap/backend"
)

func openGlot() (session, error) {
	dimensions := 2
	persist := true
	debug := false
	p, err := glot.NewPlot(dimensions, persist, debug)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func init() {
	backend.Register(Name, func(cfg backend.Config) (backend.Backend, error) {
		return New(cfg, openGlot)
	})
}
