package figure

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/plotwrap/backend"
	"github.com/HamletTheHamster/plotwrap/backend/gonumfig"
	"github.com/HamletTheHamster/plotwrap/internal/fit"
	"github.com/HamletTheHamster/plotwrap/internal/style"
)

func newWrapper(t *testing.T, prompt *bytes.Buffer, opts ...Option) *Wrapper {
	t.Helper()
	if prompt == nil {
		prompt = &bytes.Buffer{}
	}
	base := []Option{
		WithBackend(gonumfig.Name),
		WithPrompt(strings.NewReader("\n\n\n"), prompt),
		WithLogger(log.New(io.Discard, "", 0)),
	}
	w, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return w
}

func data(n int) (x, y []float64) {
	for i := 1; i <= n; i++ {
		x = append(x, float64(i))
		y = append(y, float64(i*i))
	}
	return x, y
}

func TestNew(t *testing.T) {
	w := newWrapper(t, nil)
	assert.Equal(t, 1, w.Figs())
	assert.Equal(t, 0, w.FigIndex())
	assert.Equal(t, 12.0, w.FontSize())
	assert.False(t, w.Autoscale())

	s := style.Default()
	s.LegendLoc = "middle"
	_, err := New(WithStyle(s), WithLogger(log.New(io.Discard, "", 0)))
	assert.Error(t, err)

	_, err = New(WithBackend("no-such-backend"))
	assert.ErrorIs(t, err, backend.ErrNoBackend)
}

func TestPlotScales(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(10)

	require.NoError(t, w.Plot(x, y))
	assert.Equal(t, backend.Linear, w.Fig().Scale())
	require.NoError(t, w.SlogX(x, y))
	assert.Equal(t, backend.LogX, w.Fig().Scale())
	require.NoError(t, w.SlogY(x, y, Hold(false)))
	assert.Equal(t, backend.LogY, w.Fig().Scale())
	require.NoError(t, w.LogLog(x, y, Hold(false)))
	assert.Equal(t, backend.LogLog, w.Fig().Scale())

	neg := []float64{-1, 2, 3}
	assert.ErrorIs(t, w.LogLog(neg, neg), backend.ErrNonPositive)
	assert.ErrorIs(t, w.Plot(x, y[:3]), backend.ErrLength)
}

func TestCallOptions(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(5)

	require.NoError(t, w.Plot(x, y, Name("first"), Color(color.Black), Width(3), Dashed()))
	assert.True(t, w.makeLegend)

	require.NoError(t, w.Plot(x, y, NewPlot()))
	assert.Equal(t, 2, w.Figs())
	assert.Equal(t, 1, w.FigIndex())

	require.NoError(t, w.Plot(x, y, Fig(0)))
	assert.Equal(t, 0, w.FigIndex())
	assert.Error(t, w.Plot(x, y, Fig(7)))

	require.NoError(t, w.Plot(x, y, LegendLoc("upper left")))
	assert.Equal(t, backend.UpperLeft, w.legendLoc)
	assert.Error(t, w.Plot(x, y, LegendLoc("nowhere")))

	require.NoError(t, w.Plot(x, y, PromptForResize()))
	assert.True(t, w.waitSave)

	assert.ErrorIs(t, w.Plot(x, y, YY()), backend.ErrUnsupported)
}

func TestPlotLoc(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(5)
	require.NoError(t, w.Fig().CreateAxes(2, 2))

	require.NoError(t, w.Plot(x, y, PlotLoc(4)))
	assert.Equal(t, 3, w.Fig().Axis())
	require.NoError(t, w.Plot(x, y, PlotLoc(1)))
	assert.Equal(t, 0, w.Fig().Axis())

	assert.ErrorIs(t, w.Plot(x, y, PlotLoc(5)), backend.ErrAxisRange)
	assert.ErrorIs(t, w.Plot(x, y, PlotLoc(0)), backend.ErrAxisRange)
}

func TestHoldClears(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(5)
	require.NoError(t, w.Fig().CreateAxes(2, 1))
	require.NoError(t, w.Plot(x, y, Hold(false)))
	assert.Equal(t, 1, w.Fig().Axes())
}

func TestPFunc(t *testing.T) {
	w := newWrapper(t, nil)
	x := Linspace(0, math.Pi, 50)
	require.Len(t, x, 50)
	assert.Equal(t, 0.0, x[0])
	assert.InDelta(t, math.Pi, x[49], 1e-12)
	assert.Equal(t, []float64{3}, Linspace(3, 4, 1))

	require.NoError(t, w.PFunc(x, math.Sin))
	lims, err := w.YLim()
	require.NoError(t, err)
	require.Len(t, lims, 1)
	assert.InDelta(t, 1, lims[0][1], 1e-2)
}

func TestPlot2(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(10)
	y2 := make([]float64, len(y))
	for i := range y {
		y2[i] = -y[i]
	}

	require.NoError(t, w.Plot2(x, y, y2, "time", "up", "down", true))
	fig := w.Fig()
	assert.Equal(t, 2, fig.Axes())
	assert.True(t, w.fixTicksAtEnd)

	lo0, hi0, err := fig.XLim(0)
	require.NoError(t, err)
	lo1, hi1, err := fig.XLim(1)
	require.NoError(t, err)
	assert.Equal(t, lo0, lo1)
	assert.Equal(t, hi0, hi1)

	out := filepath.Join(t.TempDir(), "two.png")
	require.NoError(t, w.Save(out))
	assert.False(t, w.fixTicksAtEnd)

	xlab, err := fig.XLabel(1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xlab, "time ("), xlab)
	assert.True(t, strings.HasSuffix(xlab, "µs/division)"), xlab)
	assert.FileExists(t, out)
}

func TestFixTicksNeedsTwoPanels(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(5)
	require.NoError(t, w.Plot(x, y))
	assert.Error(t, w.FixTicks())
}

func TestLimits(t *testing.T) {
	w := newWrapper(t, nil, WithTickUnit("ns"))
	x, y := data(10)
	require.NoError(t, w.Plot2(x, y, y, "", "", "", false))

	require.NoError(t, w.SetYLims(-5, 5))
	require.NoError(t, w.SetYLims(1, -1, 1))
	assert.Error(t, w.SetYLims(1))
	assert.ErrorIs(t, w.SetYLims(4, 0, 1), backend.ErrAxisRange)

	lims, err := w.YLim()
	require.NoError(t, err)
	require.Len(t, lims, 2)
	assert.Equal(t, [2]float64{-5, 5}, lims[0])
	assert.Equal(t, [2]float64{-1, 1}, lims[1])

	require.NoError(t, w.Fig().SetAxis(0))
	require.NoError(t, w.SetXLim(2, 8))
	lo, hi, err := w.XLim()
	require.NoError(t, err)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 8.0, hi)

	require.NoError(t, w.SetYLim(0, 50))
	require.NoError(t, w.SetAutoscale(true))
	assert.True(t, w.Autoscale())
	lims, err = w.YLim()
	require.NoError(t, err)
	assert.NotEqual(t, [2]float64{0, 50}, lims[0])
}

func TestLabelsAndText(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(5)
	require.NoError(t, w.Plot(x, y))

	w.SetTitle("growth")
	assert.Equal(t, "growth", w.Fig().Title())
	require.NoError(t, w.SetLabels("x", "y", -1))
	xlab, err := w.Fig().XLabel(0)
	require.NoError(t, err)
	assert.Equal(t, "x", xlab)
	assert.Error(t, w.SetLabels("x", "y", 3))

	require.NoError(t, w.SetFontSize(20))
	assert.Equal(t, 20.0, w.FontSize())
	assert.Equal(t, 20.0, w.Fig().FontSize())

	require.NoError(t, w.AxLine(3, "x"))
	require.NoError(t, w.AxLine(10, "y"))
}

func TestSave(t *testing.T) {
	var prompt bytes.Buffer
	w := newWrapper(t, &prompt)
	x, y := data(5)
	require.NoError(t, w.Plot(x, y, Name("squares")))

	out := filepath.Join(t.TempDir(), "a", "b", "c", "fig.svg")
	require.NoError(t, w.Save(out, Tighten(false)))
	assert.FileExists(t, out)
	assert.Empty(t, prompt.String())

	require.NoError(t, w.Save(out, WaitSave(true)))
	assert.Equal(t, resizePrompt, prompt.String())

	assert.Error(t, w.Save(filepath.Join(t.TempDir(), "fig.bmp")))
}

func TestClose(t *testing.T) {
	var prompt bytes.Buffer
	out := filepath.Join(t.TempDir(), "plots", "final.png")
	w := newWrapper(t, &prompt, WithOutfile(out), WithShow(true), WithTighten(true))
	x, y := data(5)
	require.NoError(t, w.SlogY(x, y, Name("squares"), LegendLoc("lower right")))

	require.NoError(t, w.Close())
	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	nothing := newWrapper(t, nil)
	assert.NoError(t, nothing.Close())
}

func TestInteractiveOptions(t *testing.T) {
	w := &Wrapper{style: style.Default()}
	WithInteractive()(w)
	assert.True(t, w.waitSave)
	assert.False(t, w.showAtEnd)

	w2 := &Wrapper{}
	WithInteractive()(w2)
	WithBackend(gonumfig.Name)(w2)
	assert.True(t, w2.backendSet)
	assert.Equal(t, gonumfig.Name, w2.backendName)
}

func TestPlotSeries(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(8)
	a := Series{Name: "up", IndexName: "t", Index: x, Values: y}
	b := Series{Name: "same", IndexName: "t", Index: x, Values: y}

	assert.Error(t, w.PlotSeries(KindPlot, nil))
	require.NoError(t, w.PlotSeries(KindLogLog, []Series{a}))
	assert.Equal(t, backend.LogLog, w.Fig().Scale())
	require.NoError(t, w.PlotSeries(KindSlogX, []Series{a}, NewPlot()))
	assert.Equal(t, backend.LogX, w.Fig().Scale())

	assert.Error(t, w.PlotSeries(KindPlot2, []Series{a}, NewPlot()))
	require.NoError(t, w.PlotSeries(KindPlot2, []Series{a, b}, NewPlot()))
	fig := w.Fig()
	assert.Equal(t, 2, fig.Axes())
	xlab, err := fig.XLabel(1)
	require.NoError(t, err)
	assert.Equal(t, "t", xlab)
}

func TestPlotFit(t *testing.T) {
	w := newWrapper(t, nil)
	want := fit.Params{Amp: 2, Wid: 0.5, Cen: 3, C: 0.1}
	x := Linspace(0, 6, 121)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = fit.Lorentzian(v, want)
	}

	got, err := w.PlotFit(x, y, Name("data"))
	require.NoError(t, err)
	assert.InDelta(t, want.Cen, got.Cen, 1e-3)
	assert.InDelta(t, want.Wid, got.Wid, 1e-3)
	assert.InDelta(t, want.Amp, got.Amp, 1e-3)

	_, err = w.PlotFit(x, y[:4])
	assert.ErrorIs(t, err, backend.ErrLength)
}

func TestAnimate(t *testing.T) {
	w := newWrapper(t, nil)
	dir := t.TempDir()
	x, y := data(6)

	var frames []string
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Plot(x, y, Hold(false)))
		require.NoError(t, w.SetYLim(0, float64(40*(i+1))))
		p, err := w.SaveFrame(dir, "frame", i)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "frame"+string(rune('0'+i))+".png"), p)
		frames = append(frames, p)
	}

	out := filepath.Join(dir, "gif", "anim.gif")
	require.NoError(t, w.Animate(context.Background(), frames, out, 10))
	assert.FileExists(t, out)
}

// fixedTicks is the gonum backend with the x tick positions pinned, so the
// per-division label does not depend on gonum's tick chooser.
type fixedTicks struct {
	*gonumfig.Figure
}

var (
	pinnedTicks    []float64
	pinnedTicksErr error
)

func (fixedTicks) XTicks(int) ([]float64, error) { return pinnedTicks, pinnedTicksErr }

const fixedTicksName = "figure-test-fixed-ticks"

func init() {
	backend.Register(fixedTicksName, func(cfg backend.Config) (backend.Backend, error) {
		return fixedTicks{gonumfig.New(cfg)}, nil
	})
}

func TestFixTicksSpacing(t *testing.T) {
	for _, tc := range []struct {
		ticks []float64
		want  string
	}{
		{[]float64{0, 2, 4, 6}, "time (2.0µs/division)"},
		{[]float64{0, 0.25, 0.5}, "time (0.25µs/division)"},
		{[]float64{1.004, 1.506}, "time (0.51µs/division)"},
		{[]float64{10, 30}, "time (20.0µs/division)"},
	} {
		pinnedTicks, pinnedTicksErr = tc.ticks, nil
		w := newWrapper(t, nil, WithBackend(fixedTicksName))
		x, y := data(10)
		require.NoError(t, w.Plot2(x, y, y, "time", "a", "b", true))
		require.NoError(t, w.Save(filepath.Join(t.TempDir(), "ticks.png")))

		xlab, err := w.Fig().XLabel(1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, xlab)
	}

	pinnedTicks = []float64{5}
	w := newWrapper(t, nil, WithBackend(fixedTicksName))
	x, y := data(10)
	require.NoError(t, w.Plot2(x, y, y, "time", "a", "b", false))
	assert.Error(t, w.FixTicks())
}

func TestFixTicksSkippedWhenUnsupported(t *testing.T) {
	pinnedTicks, pinnedTicksErr = nil, backend.ErrUnsupported
	defer func() { pinnedTicksErr = nil }()

	var logs bytes.Buffer
	w, err := New(
		WithBackend(fixedTicksName),
		WithPrompt(strings.NewReader(""), io.Discard),
		WithLogger(log.New(&logs, "", 0)),
	)
	require.NoError(t, err)
	x, y := data(10)
	require.NoError(t, w.Plot2(x, y, y, "time", "a", "b", true))

	out := filepath.Join(t.TempDir(), "skip.png")
	require.NoError(t, w.Save(out))
	assert.FileExists(t, out)
	assert.False(t, w.fixTicksAtEnd)
	assert.Contains(t, logs.String(), "skipping tick fix")

	xlab, err := w.Fig().XLabel(1)
	require.NoError(t, err)
	assert.Equal(t, "time", xlab)

	pinnedTicksErr = errors.New("broken ticker")
	require.NoError(t, w.Plot2(x, y, y, "time", "a", "b", true))
	assert.Error(t, w.Save(out))
}

func TestDivision(t *testing.T) {
	assert.Equal(t, "1.0", division(1))
	assert.Equal(t, "0.125", division(0.125))
	assert.Equal(t, "250.0", division(250))
}

func TestInteractiveWithoutGnuplot(t *testing.T) {
	require.NotContains(t, backend.Names(), interactiveBackend)

	var logs bytes.Buffer
	w, err := New(
		WithInteractive(),
		WithPrompt(strings.NewReader("\n"), io.Discard),
		WithLogger(log.New(&logs, "", 0)),
	)
	require.NoError(t, err)
	assert.Equal(t, gonumfig.Name, w.backendName)
	assert.Contains(t, logs.String(), "gnuplot backend not built in")

	x, y := data(5)
	require.NoError(t, w.Plot(x, y))
	out := filepath.Join(t.TempDir(), "static.png")
	require.NoError(t, w.Save(out))
	assert.FileExists(t, out)
}

func TestSaveWithoutAnswer(t *testing.T) {
	w, err := New(
		WithBackend(gonumfig.Name),
		WithPrompt(strings.NewReader(""), io.Discard),
		WithLogger(log.New(io.Discard, "", 0)),
	)
	require.NoError(t, err)
	x, y := data(5)
	require.NoError(t, w.Plot(x, y, PromptForResize()))

	out := filepath.Join(t.TempDir(), "never.png")
	assert.ErrorIs(t, w.Save(out), io.EOF)
	assert.NoFileExists(t, out)
}

func TestLogSwitchChecksState(t *testing.T) {
	w := newWrapper(t, nil)
	x, y := data(5)
	require.NoError(t, w.Plot(x, y))
	require.NoError(t, w.SetYLim(-5, 50))
	assert.ErrorIs(t, w.SlogY(x, y), backend.ErrNonPositive)
	assert.Equal(t, backend.Linear, w.Fig().Scale())
	assert.NotPanics(t, func() {
		require.NoError(t, w.Save(filepath.Join(t.TempDir(), "ylim.png")))
	})

	w = newWrapper(t, nil)
	require.NoError(t, w.Plot(x, y))
	require.NoError(t, w.AxLine(-1, "y"))
	assert.ErrorIs(t, w.SlogY(x, y), backend.ErrNonPositive)
	assert.NotPanics(t, func() {
		require.NoError(t, w.Save(filepath.Join(t.TempDir(), "guide.png")))
	})

	// semilogx on a log-y axis keeps y logarithmic
	w = newWrapper(t, nil)
	require.NoError(t, w.SlogY(x, y))
	require.NoError(t, w.SlogX(x, y))
	assert.Equal(t, backend.LogLog, w.Fig().Scale())
	assert.ErrorIs(t, w.Plot(x, []float64{-1, 1, 2, 3, 4}), backend.ErrNonPositive)
}
