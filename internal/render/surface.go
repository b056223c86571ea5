// Package render draws board commands onto pixel surfaces.
package render

import "SyncBoard/internal/state"

// Surface is something a board can be rendered onto.
type Surface interface {
	Bounds() (width, height int)
	// Reshape changes the dimensions and wipes the surface.
	Reshape(width, height int)
	Clear()
	DrawLine(cmd state.DrawCommand)
}

// Replay wipes s and draws cmds in order.
func Replay(s Surface, cmds []state.DrawCommand) {
	s.Clear()
	for _, c := range cmds {
		s.DrawLine(c)
	}
}
