package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"SyncBoard/internal/state"
)

// capSegments is the number of edges used to approximate a round cap.
const capSegments = 24

// Raster is an in-memory RGBA surface. Segments are drawn with round caps and
// joins, anti-aliased, composited over what is already there. Drawing is
// fully deterministic: the same commands always yield the same pixels.
type Raster struct {
	img        *image.RGBA
	background color.Color
}

// NewRaster returns a width x height surface filled with background.
func NewRaster(width, height int, background color.Color) *Raster {
	r := &Raster{background: background}
	r.Reshape(width, height)
	return r
}

func (r *Raster) Bounds() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Reshape(width, height int) {
	r.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	r.Clear()
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
}

// Image exposes the rendered pixels. Callers must not modify it.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) DrawLine(c state.DrawCommand) {
	w, h := r.Bounds()
	if w == 0 || h == 0 {
		return
	}
	col, err := state.ParseColor(c.Color)
	if err != nil || col.A == 0 {
		return
	}
	half := math.Max(float64(c.Size), 1) / 2
	// Nothing to paint if the segment lies entirely off the surface.
	b := c.Bounds()
	if b.X > float64(w) || b.Y > float64(h) || b.X+b.Width < 0 || b.Y+b.Height < 0 {
		return
	}

	z := vector.NewRasterizer(w, h)
	addPolygon(z, circle(c.X0, c.Y0, half))
	if c.X0 != c.X1 || c.Y0 != c.Y1 {
		addPolygon(z, body(c.X0, c.Y0, c.X1, c.Y1, half))
		addPolygon(z, circle(c.X1, c.Y1, half))
	}
	z.Draw(r.img, r.img.Bounds(), image.NewUniform(col), image.Point{})
}

type point struct{ x, y float64 }

// body is the rectangle swept by the segment's width.
func body(x0, y0, x1, y1, half float64) []point {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	nx, ny := -dy/l*half, dx/l*half
	return []point{
		{x0 + nx, y0 + ny},
		{x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny},
		{x0 - nx, y0 - ny},
	}
}

func circle(cx, cy, radius float64) []point {
	pts := make([]point, capSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / capSegments
		pts[i] = point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	return pts
}

// addPolygon adds pts as a closed path. All polygons are added with the same
// winding so overlapping shapes merge instead of cancelling out.
func addPolygon(z *vector.Rasterizer, pts []point) {
	var area float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p.x*q.y - q.x*p.y
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	z.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.x), float32(p.y))
	}
	z.ClosePath()
}
