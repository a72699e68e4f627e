// Package chart reduces numeric series to screen coordinates for the small
// inline charts on the dashboard.
package chart

import (
	"strconv"
	"strings"
)

// Frame is the drawing area of a sparkline, in screen units.
type Frame struct {
	Width    float64
	Height   float64
	PaddingX float64
	PaddingY float64
}

// DefaultFrame is the frame of the dashboard heart-rate card.
var DefaultFrame = Frame{Width: 220, Height: 54, PaddingX: 6, PaddingY: 6}

// Point is a screen coordinate; y grows downwards.
type Point struct {
	X float64
	Y float64
}

// Path is an ordered polyline.
type Path struct {
	Points []Point
}

// Empty reports whether there is nothing to draw.
func (p Path) Empty() bool {
	return len(p.Points) == 0
}

// String renders the path as SVG path data ("M x y L x y ...").
// An empty path renders as "".
func (p Path) String() string {
	if p.Empty() {
		return ""
	}
	var b strings.Builder
	for i, pt := range p.Points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(pt.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(pt.Y))
	}
	return b.String()
}

// Sparkline spreads values evenly across the frame width and scales them
// between the observed min and max, higher values drawn higher. A flat series
// sits on the vertical center. Fewer than two values give an empty path.
func Sparkline(values []float64, f Frame) Path {
	if len(values) < 2 {
		return Path{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	innerW := f.Width - 2*f.PaddingX
	innerH := f.Height - 2*f.PaddingY
	step := innerW / float64(len(values)-1)

	y := func(v float64) float64 {
		if hi == lo {
			return f.PaddingY + innerH/2
		}
		t := (v - lo) / (hi - lo)
		return f.PaddingY + innerH - t*innerH
	}

	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{X: f.PaddingX + float64(i)*step, Y: y(v)}
	}
	return Path{Points: points}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
