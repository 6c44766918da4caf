//go:build gnuplot

package main

// Links the windowed backend; -backend gnuplot needs the gnuplot binary.
import _ "github.com/HamletTheHamster/plotwrap/backend/gnuplotfig"
