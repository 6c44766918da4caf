// Command plotfig plots columns of a CSV file and saves the figure.
//
//	plotfig -x time -y signal,reference -scale semilogy -o decay.png data.csv
//	plotfig -x freq -y power -fit -note "run 3" scan.csv
//	plotfig -gif frame0.png,frame1.png,frame2.png -o sweep.gif
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HamletTheHamster/plotwrap/backend"
	"github.com/HamletTheHamster/plotwrap/figure"
	"github.com/HamletTheHamster/plotwrap/internal/csvdata"
	"github.com/HamletTheHamster/plotwrap/internal/savepath"
	"github.com/HamletTheHamster/plotwrap/internal/style"
)

type options struct {
	x, y       string
	scale      string
	two        bool
	out        string
	title      string
	xlab, ylab string
	backend    string
	config     string
	fit        bool
	legend     string
	gif        string
	delay      int
	note       string
	slide      bool
	tight      bool
	input      string
	root       string
}

func main() {

	o, err := flags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "plotfig: ", log.LstdFlags)
	path, err := run(context.Background(), o, logger, time.Now())
	if err != nil {
		logger.Fatalf("%v", err)
	}
	fmt.Println(path)
}

func flags(
	args []string,
	stderr io.Writer,
) (
	options, error,
) {

	var o options
	fs := flag.NewFlagSet("plotfig", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.x, "x", "0", "x column, by header name or 0-based index")
	fs.StringVar(&o.y, "y", "1", "comma-separated y columns")
	fs.StringVar(&o.scale, "scale", "linear", "linear, semilogx, semilogy or loglog")
	fs.BoolVar(&o.two, "two", false, "plot the first two y columns in stacked panels sharing x")
	fs.StringVar(&o.out, "o", "plot.png", "output file; the extension picks the format")
	fs.StringVar(&o.title, "title", "", "figure title")
	fs.StringVar(&o.xlab, "xlabel", "", "x label (default: the x column header)")
	fs.StringVar(&o.ylab, "ylabel", "", "y label (default: the y column header)")
	fs.StringVar(&o.backend, "backend", "", "backend: "+strings.Join(backend.Names(), ", "))
	fs.StringVar(&o.config, "config", "", "TOML style file")
	fs.BoolVar(&o.fit, "fit", false, "overlay a Lorentzian fit of the first y column")
	fs.StringVar(&o.legend, "legend", "", "legend location, e.g. \"upper left\"")
	fs.StringVar(&o.gif, "gif", "", "comma-separated PNG frames to assemble into the -o GIF")
	fs.IntVar(&o.delay, "delay", 10, "GIF frame delay in 100ths of a second")
	fs.StringVar(&o.note, "note", "", "save under plots/<date>/<time>: <note>")
	fs.BoolVar(&o.slide, "slide", false, "format figures for slide presentation")
	fs.BoolVar(&o.tight, "tight", true, "tighten the saved layout")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.root = "plots"

	if o.gif == "" {
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "usage: plotfig [flags] data.csv")
			return o, errors.New("plotfig: need exactly one CSV file")
		}
		o.input = fs.Arg(0)
	}
	if o.two && o.fit {
		fmt.Fprintln(stderr, "-two and -fit cannot be combined")
		return o, errors.New("plotfig: -two with -fit")
	}
	return o, nil
}

// run makes the figure described by o and returns where it was saved.
func run(
	ctx context.Context,
	o options,
	logger *log.Logger,
	now time.Time,
) (
	string, error,
) {

	out := o.out
	if o.note != "" {
		out = filepath.Join(savepath.Dated(o.root, o.note, now), filepath.Base(o.out))
	}

	st := style.Default()
	if o.config != "" {
		var err error
		if st, err = style.Load(o.config); err != nil {
			return "", err
		}
	}
	if o.slide {
		st.Slide = true
	}
	st = st.Resolve()
	if o.legend != "" {
		st.LegendLoc = o.legend
	}

	opts := []figure.Option{
		figure.WithStyle(st),
		figure.WithLogger(logger),
		figure.WithTighten(o.tight),
	}
	if o.backend != "" {
		opts = append(opts, figure.WithBackend(o.backend))
	}
	w, err := figure.New(opts...)
	if err != nil {
		return "", err
	}

	if o.gif != "" {
		if err := w.Animate(ctx, strings.Split(o.gif, ","), out, o.delay); err != nil {
			w.Close()
			return "", err
		}
		return out, w.Close()
	}

	if err := plotCSV(w, o); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Save(out, figure.Tighten(o.tight)); err != nil {
		w.Close()
		return "", err
	}
	return out, w.Close()
}

func plotCSV(w *figure.Wrapper, o options) error {

	t, err := csvdata.ReadFile(o.input)
	if err != nil {
		return err
	}
	x, xname, err := t.Column(o.x)
	if err != nil {
		return err
	}
	kind, err := kindOf(o.scale, o.two)
	if err != nil {
		return err
	}

	var series []figure.Series
	for _, key := range strings.Split(o.y, ",") {
		y, yname, err := t.Column(strings.TrimSpace(key))
		if err != nil {
			return err
		}
		series = append(series, figure.Series{Name: yname, IndexName: xname, Index: x, Values: y})
	}

	w.SetTitle(o.title)
	switch {
	case o.fit:
		p, err := w.PlotFit(x, series[0].Values, figure.Name(series[0].Name))
		if err != nil {
			return err
		}
		fmt.Printf("center %g  FWHM %g  amplitude %g  offset %g\n", p.Cen, p.Wid, p.Amp, p.C)
	case kind == figure.KindPlot2:
		if err := w.PlotSeries(kind, series); err != nil {
			return err
		}
	default:
		for _, s := range series {
			if err := w.PlotSeries(kind, []figure.Series{s}, figure.Name(s.Name)); err != nil {
				return err
			}
		}
	}

	xlab, ylab := o.xlab, o.ylab
	if xlab == "" {
		xlab = xname
	}
	if ylab == "" && len(series) == 1 {
		ylab = series[0].Name
	}
	if kind == figure.KindPlot2 {
		return w.SetLabels(xlab, "", 1)
	}
	return w.SetLabels(xlab, ylab, -1)
}

func kindOf(scale string, two bool) (figure.Kind, error) {
	s, err := backend.ParseScale(scale)
	if err != nil {
		return figure.KindPlot, err
	}
	if two {
		if s != backend.Linear {
			return figure.KindPlot, fmt.Errorf("-two draws linear panels only, not %s", s)
		}
		return figure.KindPlot2, nil
	}
	switch s {
	case backend.LogX:
		return figure.KindSlogX, nil
	case backend.LogY:
		return figure.KindSlogY, nil
	case backend.LogLog:
		return figure.KindLogLog, nil
	}
	return figure.KindPlot, nil
}
