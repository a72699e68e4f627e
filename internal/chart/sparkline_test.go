package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparkline_TooFewValues(t *testing.T) {
	assert.True(t, Sparkline(nil, DefaultFrame).Empty())
	assert.Equal(t, "", Sparkline([]float64{70}, DefaultFrame).String())
}

func TestSparkline_FlatSeriesAtVerticalCenter(t *testing.T) {
	p := Sparkline([]float64{5, 5, 5}, DefaultFrame)
	require.Len(t, p.Points, 3)
	for _, pt := range p.Points {
		assert.Equal(t, 27.0, pt.Y)
	}
	assert.Equal(t, "M 6 27 L 110 27 L 214 27", p.String())
}

func TestSparkline_HigherValuesAreHigherOnScreen(t *testing.T) {
	p := Sparkline([]float64{60, 100, 80}, Frame{Width: 100, Height: 50, PaddingX: 0, PaddingY: 5})
	require.Len(t, p.Points, 3)

	assert.Equal(t, Point{X: 0, Y: 45}, p.Points[0])
	assert.Equal(t, Point{X: 50, Y: 5}, p.Points[1])
	assert.Equal(t, Point{X: 100, Y: 25}, p.Points[2])
}

func TestSparkline_EvenHorizontalSpacing(t *testing.T) {
	p := Sparkline([]float64{1, 1000, 2, 3, 4}, DefaultFrame)
	require.Len(t, p.Points, 5)
	for i := 1; i < len(p.Points); i++ {
		assert.InDelta(t, 52.0, p.Points[i].X-p.Points[i-1].X, 1e-9)
	}
}
