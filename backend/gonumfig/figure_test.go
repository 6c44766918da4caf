package gonumfig

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/plotwrap/backend"
)

func ramp(n int, f func(float64) float64) (x, y []float64) {
	for i := 1; i <= n; i++ {
		x = append(x, float64(i))
		y = append(y, f(float64(i)))
	}
	return x, y
}

func TestLayout(t *testing.T) {
	f := New(backend.Config{Title: "layout"})
	assert.Equal(t, 1, f.Axes())
	assert.Equal(t, "layout", f.Title())
	assert.Equal(t, float64(defaultFontSize), f.FontSize())

	require.NoError(t, f.CreateAxes(2, 2))
	assert.Equal(t, 4, f.Axes())
	require.NoError(t, f.SetAxis(3))
	assert.Equal(t, 3, f.Axis())
	assert.ErrorIs(t, f.SetAxis(4), backend.ErrAxisRange)
	assert.ErrorIs(t, f.SetAxis(-1), backend.ErrAxisRange)
	assert.Error(t, f.CreateAxes(0, 1))

	// a new layout resets the pointer
	require.NoError(t, f.CreateAxes(2, 1))
	assert.Equal(t, 0, f.Axis())

	f.Clear()
	assert.Equal(t, 0, f.Axes())
	x, y := ramp(3, func(v float64) float64 { return v })
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	assert.Equal(t, 1, f.Axes())
}

func TestScales(t *testing.T) {
	f := New(backend.Config{})
	x, y := ramp(5, func(v float64) float64 { return v - 3 })

	assert.ErrorIs(t, f.SemilogY(x, y, backend.LineOpts{}), backend.ErrNonPositive)
	assert.Equal(t, backend.Linear, f.Scale())

	require.NoError(t, f.SemilogX(x, y, backend.LineOpts{}))
	assert.Equal(t, backend.LogX, f.Scale())

	// a plain call keeps the log axis
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	assert.Equal(t, backend.LogX, f.Scale())

	// switching to loglog must not leave the existing negative y behind
	assert.ErrorIs(t, f.LogLog(x, x, backend.LineOpts{}), backend.ErrNonPositive)

	assert.ErrorIs(t, f.Plot(x, y[:2], backend.LineOpts{}), backend.ErrLength)
	assert.ErrorIs(t, f.SetXLim(-1, 10), backend.ErrNonPositive)
}

func TestLogSwitchChecksState(t *testing.T) {
	x, y := ramp(5, func(v float64) float64 { return v * v })

	f := New(backend.Config{})
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	require.NoError(t, f.SetYLim(0, -5, 50))
	assert.ErrorIs(t, f.SemilogY(x, y, backend.LineOpts{}), backend.ErrNonPositive)
	assert.Equal(t, backend.Linear, f.Scale())
	assert.NotPanics(t, func() { require.NoError(t, f.Render(&bytes.Buffer{}, "png")) })

	f = New(backend.Config{})
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	require.NoError(t, f.SetXLim(-1, 6))
	assert.ErrorIs(t, f.SemilogX(x, y, backend.LineOpts{}), backend.ErrNonPositive)

	f = New(backend.Config{})
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	require.NoError(t, f.AxLine(-1, false))
	assert.ErrorIs(t, f.SemilogY(x, y, backend.LineOpts{}), backend.ErrNonPositive)
	// a vertical guide at -1 is no obstacle for a log y axis
	require.NoError(t, f.AxLine(2, true))
	assert.NotPanics(t, func() { require.NoError(t, f.Render(&bytes.Buffer{}, "png")) })

	f = New(backend.Config{})
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	require.NoError(t, f.AxLine(-1, true))
	require.NoError(t, f.SemilogY(x, y, backend.LineOpts{}))
	assert.NotPanics(t, func() { require.NoError(t, f.Render(&bytes.Buffer{}, "png")) })
}

func TestScaleUnion(t *testing.T) {
	f := New(backend.Config{})
	x, y := ramp(5, func(v float64) float64 { return v })
	require.NoError(t, f.SemilogY(x, y, backend.LineOpts{}))
	require.NoError(t, f.SemilogX(x, y, backend.LineOpts{}))
	assert.Equal(t, backend.LogLog, f.Scale())
	neg := []float64{-1, 1, 2, 3, 4}
	assert.ErrorIs(t, f.Plot(x, neg, backend.LineOpts{}), backend.ErrNonPositive)
}

func TestColorCycle(t *testing.T) {
	f := New(backend.Config{})
	x, y := ramp(3, func(v float64) float64 { return v })
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	require.NoError(t, f.Plot(x, y, backend.LineOpts{Width: 5}))

	lines := f.axes[0].lines
	assert.Equal(t, backend.Tab10[0], backend.Hex(lines[0].LineStyle.Color))
	assert.Equal(t, backend.Tab10[1], backend.Hex(lines[1].LineStyle.Color))
	assert.InDelta(t, defaultLineWidth, float64(lines[0].LineStyle.Width), 1e-9)
	assert.InDelta(t, 5, float64(lines[1].LineStyle.Width), 1e-9)

	f.Clear()
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))
	assert.Equal(t, backend.Tab10[0], backend.Hex(f.axes[0].lines[0].LineStyle.Color))
}

func TestLimits(t *testing.T) {
	f := New(backend.Config{})
	x, y := ramp(10, func(v float64) float64 { return 2 * v })
	require.NoError(t, f.Plot(x, y, backend.LineOpts{}))

	lo, hi, err := f.XLim(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 10.0, hi)

	require.NoError(t, f.SetXLim(0, 20))
	require.NoError(t, f.SetYLim(0, -5, 5))
	lo, hi, _ = f.XLim(0)
	assert.Equal(t, []float64{0, 20}, []float64{lo, hi})
	lo, hi, _ = f.YLim(0)
	assert.Equal(t, []float64{-5, 5}, []float64{lo, hi})

	require.NoError(t, f.AutoscaleY(0))
	lo, hi, _ = f.YLim(0)
	assert.Equal(t, []float64{2, 20}, []float64{lo, hi})

	_, _, err = f.YLim(1)
	assert.ErrorIs(t, err, backend.ErrAxisRange)
}

func TestShareX(t *testing.T) {
	f := New(backend.Config{})
	require.NoError(t, f.CreateAxes(2, 1))
	require.NoError(t, f.Plot([]float64{0, 1}, []float64{0, 1}, backend.LineOpts{}))
	require.NoError(t, f.SetAxis(1))
	require.NoError(t, f.Plot([]float64{0, 5}, []float64{3, 4}, backend.LineOpts{}))
	require.NoError(t, f.ShareX(1, 0))
	require.NoError(t, f.HideXTickLabels(0))

	for ax := 0; ax < 2; ax++ {
		lo, hi, err := f.XLim(ax)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 5}, []float64{lo, hi}, "axis %d", ax)
	}

	ticks, err := f.XTicks(0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(ticks), 2)
	assert.Less(t, ticks[0], ticks[1])

	plots := f.render()
	for _, tk := range plots[0].X.Tick.Marker.Ticks(0, 5) {
		assert.Empty(t, tk.Label)
	}

	assert.ErrorIs(t, f.ShareX(1, 2), backend.ErrAxisRange)
}

func TestLabels(t *testing.T) {
	f := New(backend.Config{})
	require.NoError(t, f.SetLabels(0, "time", "volts"))
	require.NoError(t, f.SetLabels(0, "", "amps"))
	xl, err := f.XLabel(0)
	require.NoError(t, err)
	assert.Equal(t, "time", xl)
	assert.Equal(t, "amps", f.axes[0].ylab)
	assert.ErrorIs(t, f.SetLabels(1, "a", "b"), backend.ErrAxisRange)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	f := New(backend.Config{Title: "saved", Width: 4, Height: 3})
	require.NoError(t, f.CreateAxes(2, 1))
	x, y := ramp(20, func(v float64) float64 { return v * v })
	require.NoError(t, f.SemilogY(x, y, backend.LineOpts{Label: "square"}))
	require.NoError(t, f.AxLine(10, true))
	require.NoError(t, f.AxLine(50, false))
	require.NoError(t, f.Legend(backend.UpperLeft))
	require.NoError(t, f.SetAxis(1))
	require.NoError(t, f.Plot(x, x, backend.LineOpts{Label: "line", Dashed: true}))
	require.NoError(t, f.ShareX(1, 0))

	for _, ext := range []string{"png", "svg", "pdf"} {
		path := filepath.Join(dir, "fig."+ext)
		require.NoError(t, f.Save(path), ext)
		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, st.Size(), int64(0), ext)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "fig.png"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())

	assert.Error(t, f.Save(filepath.Join(dir, "noext")))
	assert.Error(t, f.Save(filepath.Join(dir, "fig.bogus")))
	_, err = os.Stat(filepath.Join(dir, "fig.bogus"))
	assert.True(t, os.IsNotExist(err))
}

func TestRegistered(t *testing.T) {
	b, err := backend.Open(Name, backend.Config{Title: "reg"})
	require.NoError(t, err)
	assert.Equal(t, "reg", b.Title())
	assert.ErrorIs(t, b.Show(), backend.ErrUnsupported)
	assert.NoError(t, b.Draw())
	assert.NoError(t, b.Close())
}
