// Package style holds the figure defaults, loaded from a TOML file.
//
// A style file looks like:
//
//	font_size  = 12
//	line_width = 2
//	width      = 8
//	height     = 6
//	legend_loc = "best"
//	tighten    = false
//	slide      = false
//	backend    = "gonum"
package style

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Style is the set of defaults a figure wrapper starts from.
type Style struct {
	FontSize  float64 `toml:"font_size"`
	LineWidth float64 `toml:"line_width"`
	// Saved figure size, inches.
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	LegendLoc string  `toml:"legend_loc"`
	Tighten   bool    `toml:"tighten"`
	// Slide swaps in the presentation font sizes.
	Slide   bool   `toml:"slide"`
	Backend string `toml:"backend"`
}

// Default is the paper style.
func Default() Style {
	return Style{
		FontSize:  12,
		LineWidth: 2,
		Width:     8,
		Height:    6,
		LegendLoc: "best",
		Backend:   "gonum",
	}
}

// Presentation is the style for figures going on slides: bigger text,
// thicker lines, square canvas.
func Presentation() Style {
	s := Default()
	s.Slide = true
	return s.Resolve()
}

// Resolve applies the Slide switch.
func (s Style) Resolve() Style {
	if s.Slide {
		s.FontSize = 28
		s.LineWidth = 4
		s.Width, s.Height = 15, 15
	}
	return s
}

// Load reads a style file on top of the defaults. Unknown keys are an error.
func Load(path string) (Style, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Style{}, err
	}
	return Parse(raw)
}

// Parse decodes TOML on top of the defaults.
func Parse(raw []byte) (Style, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Style{}, fmt.Errorf("style: %w", err)
	}
	if err := s.validate(); err != nil {
		return Style{}, err
	}
	return s.Resolve(), nil
}

func (s Style) validate() error {
	switch {
	case s.FontSize <= 0:
		return fmt.Errorf("style: font_size must be positive, got %g", s.FontSize)
	case s.LineWidth <= 0:
		return fmt.Errorf("style: line_width must be positive, got %g", s.LineWidth)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("style: size must be positive, got %gx%g", s.Width, s.Height)
	}
	return nil
}

// Encode writes s as TOML.
func (s Style) Encode() ([]byte, error) {
	return toml.Marshal(s)
}
