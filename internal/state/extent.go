package state

import "math"

// Area is an axis-aligned rectangle in canvas pixel space.
type Area struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether the area covers nothing.
func (a Area) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Union returns the smallest area containing both a and b.
func (a Area) Union(b Area) Area {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	minX := math.Min(a.X, b.X)
	minY := math.Min(a.Y, b.Y)
	maxX := math.Max(a.X+a.Width, b.X+b.Width)
	maxY := math.Max(a.Y+a.Height, b.Y+b.Height)
	return Area{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Bounds returns the area a command paints, including its round caps.
func (c DrawCommand) Bounds() Area {
	pad := float64(c.Size) / 2
	minX, maxX := math.Min(c.X0, c.X1), math.Max(c.X0, c.X1)
	minY, maxY := math.Min(c.Y0, c.Y1), math.Max(c.Y0, c.Y1)
	return Area{
		X:      minX - pad,
		Y:      minY - pad,
		Width:  maxX - minX + 2*pad,
		Height: maxY - minY + 2*pad,
	}
}

// Extent is the union of the bounds of every command.
func Extent(cmds []DrawCommand) Area {
	var a Area
	for _, c := range cmds {
		a = a.Union(c.Bounds())
	}
	return a
}
