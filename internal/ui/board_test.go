package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"

	"SyncBoard/internal/state"
)

func drag(b *BoardWidget, x, y, dx, dy float32) {
	b.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Dragged:    fyne.NewDelta(dx, dy),
	})
}

func TestDraggedProposesSegments(t *testing.T) {
	test.NewApp()
	b := NewBoardWidget()
	b.SetColor("#ff0000")
	b.SetStroke(5)

	var got []state.DrawCommand
	b.OnSegment = func(c state.DrawCommand) { got = append(got, c) }

	drag(b, 10, 10, 5, 5)
	drag(b, 20, 15, 10, 5)
	b.DragEnd()
	drag(b, 50, 50, 1, 1)

	require.Equal(t, []state.DrawCommand{
		{X0: 5, Y0: 5, X1: 10, Y1: 10, Color: "#ff0000", Size: 5},
		{X0: 10, Y0: 10, X1: 20, Y1: 15, Color: "#ff0000", Size: 5},
		{X0: 49, Y0: 49, X1: 50, Y1: 50, Color: "#ff0000", Size: 5},
	}, got)

	// Nothing is drawn until the authority sends it back.
	require.Empty(t, b.lines)
}

func TestBoardWidgetSurface(t *testing.T) {
	test.NewApp()
	b := NewBoardWidget()

	b.Reshape(320, 240)
	w, h := b.Bounds()
	require.Equal(t, 320, w)
	require.Equal(t, 240, h)

	b.DrawLine(state.DrawCommand{X0: 0, Y0: 0, X1: 10, Y1: 10, Color: "red", Size: 2})
	b.DrawLine(state.DrawCommand{X0: 0, Y0: 0, X1: 10, Y1: 10, Color: "bogus", Size: 2})
	require.Len(t, b.lines, 1)

	b.Clear()
	require.Empty(t, b.lines)
}

func TestCSSHex(t *testing.T) {
	require.Equal(t, "#ff8000", cssHex(color.NRGBA{R: 0xff, G: 0x80, A: 0xff}))
	require.Equal(t, "#0a0b0c", cssHex(color.RGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0xff}))

	c, err := state.ParseColor(cssHex(color.Gray{Y: 0x33}))
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}, c)
}

func TestToolbarPicksColor(t *testing.T) {
	a := test.NewApp()
	w := a.NewWindow("board")
	b := NewBoardWidget()
	bar := NewToolbar(b, w, func() {})
	require.NotNil(t, bar)

	var swatch *colorSwatch
	for _, o := range test.LaidOutObjects(bar) {
		if s, ok := o.(*colorSwatch); ok && s.token == Palette[1] {
			swatch = s
		}
	}
	require.NotNil(t, swatch)
	test.Tap(swatch)

	var got state.DrawCommand
	b.OnSegment = func(c state.DrawCommand) { got = c }
	drag(b, 10, 10, 1, 1)
	require.Equal(t, Palette[1], got.Color)
}
