package backend

import (
	"fmt"
	"image/color"
	"strings"
)

// Tab10 is the default colour cycle.
var Tab10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Cycle hands out the colours of a palette in order, wrapping at the end.
// The zero value cycles Tab10.
type Cycle struct {
	Palette []color.Color
	next    int
}

// NewCycle builds a cycle from hex strings.
func NewCycle(hex ...string) (*Cycle, error) {
	c := &Cycle{}
	for _, h := range hex {
		col, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		c.Palette = append(c.Palette, col)
	}
	return c, nil
}

// Next returns the next colour.
func (c *Cycle) Next() color.Color {
	if len(c.Palette) == 0 {
		for _, h := range Tab10 {
			col, _ := ParseHex(h)
			c.Palette = append(c.Palette, col)
		}
	}
	col := c.Palette[c.next]
	c.next = (c.next + 1) % len(c.Palette)
	return col
}

// Reset rewinds the cycle to its first colour.
func (c *Cycle) Reset() { c.next = 0 }

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("bad colour %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats a colour as "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
