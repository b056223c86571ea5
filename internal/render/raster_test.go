package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"SyncBoard/internal/state"
)

var white = color.RGBA{255, 255, 255, 255}

func TestDrawLine(t *testing.T) {
	r := NewRaster(50, 50, white)
	r.DrawLine(state.DrawCommand{X0: 5, Y0: 25, X1: 45, Y1: 25, Color: "#f00", Size: 4})

	require.Equal(t, color.RGBA{255, 0, 0, 255}, r.Image().RGBAAt(25, 25))
	require.Equal(t, color.RGBA{255, 0, 0, 255}, r.Image().RGBAAt(4, 25), "round cap")
	require.Equal(t, white, r.Image().RGBAAt(25, 10))
	require.Equal(t, white, r.Image().RGBAAt(49, 25))
}

func TestDrawDot(t *testing.T) {
	r := NewRaster(20, 20, white)
	r.DrawLine(state.DrawCommand{X0: 10, Y0: 10, X1: 10, Y1: 10, Color: "blue", Size: 6})
	require.Equal(t, color.RGBA{0, 0, 255, 255}, r.Image().RGBAAt(10, 10))
}

func TestLaterCommandsOnTop(t *testing.T) {
	r := NewRaster(30, 30, white)
	r.DrawLine(state.DrawCommand{X0: 0, Y0: 15, X1: 30, Y1: 15, Color: "red", Size: 6})
	r.DrawLine(state.DrawCommand{X0: 15, Y0: 0, X1: 15, Y1: 30, Color: "lime", Size: 6})
	require.Equal(t, color.RGBA{0, 255, 0, 255}, r.Image().RGBAAt(15, 15))
}

func TestOffSurfaceAndInvisible(t *testing.T) {
	r := NewRaster(10, 10, white)
	before := append([]uint8(nil), r.Image().Pix...)
	r.DrawLine(state.DrawCommand{X0: -500, Y0: -500, X1: -400, Y1: -400, Color: "#000", Size: 3})
	r.DrawLine(state.DrawCommand{X0: 0, Y0: 0, X1: 10, Y1: 10, Color: "transparent", Size: 3})
	r.DrawLine(state.DrawCommand{X0: 0, Y0: 0, X1: 10, Y1: 10, Color: "nonsense", Size: 3})
	require.Equal(t, before, r.Image().Pix)

	// Partially visible segments are clipped, not dropped.
	r.DrawLine(state.DrawCommand{X0: -100, Y0: 5, X1: 100, Y1: 5, Color: "#000", Size: 2})
	require.Equal(t, color.RGBA{0, 0, 0, 255}, r.Image().RGBAAt(5, 5))
}

func TestReplayIsIdempotent(t *testing.T) {
	cmds := []state.DrawCommand{
		{X0: 1, Y0: 1, X1: 30, Y1: 17, Color: "rgba(0, 0, 255, 0.4)", Size: 5},
		{X0: 30, Y0: 1, X1: 2, Y1: 29, Color: "#80808080", Size: 9},
		{X0: 12.5, Y0: 3.25, X1: 12.5, Y1: 3.25, Color: "orange", Size: 4},
	}
	r := NewRaster(32, 32, white)
	Replay(r, cmds)
	first := append([]uint8(nil), r.Image().Pix...)
	Replay(r, cmds)
	require.Equal(t, first, r.Image().Pix)
}

func TestResizeWipes(t *testing.T) {
	r := NewRaster(10, 10, white)
	r.DrawLine(state.DrawCommand{X0: 0, Y0: 5, X1: 10, Y1: 5, Color: "#000", Size: 4})
	r.Reshape(20, 8)
	w, h := r.Bounds()
	require.Equal(t, 20, w)
	require.Equal(t, 8, h)
	require.Equal(t, white, r.Image().RGBAAt(5, 5))

	r.Reshape(0, 0)
	r.DrawLine(state.DrawCommand{X0: 0, Y0: 0, X1: 1, Y1: 1, Color: "#000", Size: 1})
}
