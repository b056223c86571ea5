package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SyncBoard/internal/state"
)

// BoardWidget is a fyne rendering surface for a board. It draws only what it
// is told to draw; pointer drags are reported as proposed segments through
// OnSegment and never drawn directly.
type BoardWidget struct {
	widget.BaseWidget

	mu     sync.RWMutex
	lines  []fyne.CanvasObject
	width  int
	height int

	drawing bool
	last    fyne.Position
	color   string
	stroke  int

	OnSegment func(state.DrawCommand)
	OnResize  func(width, height int)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget() *BoardWidget {
	b := &BoardWidget{
		color:  "#000000",
		stroke: 3,
	}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) SetColor(c string) {
	b.mu.Lock()
	b.color = c
	b.mu.Unlock()
}

func (b *BoardWidget) SetStroke(s int) {
	b.mu.Lock()
	b.stroke = s
	b.mu.Unlock()
}

func (b *BoardWidget) Bounds() (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width, b.height
}

func (b *BoardWidget) Reshape(width, height int) {
	b.mu.Lock()
	b.width, b.height = width, height
	b.lines = nil
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

func (b *BoardWidget) Clear() {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

func (b *BoardWidget) DrawLine(c state.DrawCommand) {
	col, err := state.ParseColor(c.Color)
	if err != nil {
		return
	}
	line := canvas.NewLine(col)
	line.StrokeWidth = float32(c.Size)
	line.Position1 = fyne.NewPos(float32(c.X0), float32(c.Y0))
	line.Position2 = fyne.NewPos(float32(c.X1), float32(c.Y1))

	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.mu.Lock()
	b.drawing = true
	b.last = e.Position
	b.mu.Unlock()
}

func (b *BoardWidget) MouseUp(*desktop.MouseEvent) {
	b.DragEnd()
}

// Dragged proposes the segment from the previous pointer position to the
// current one.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.mu.Lock()
	if !b.drawing {
		b.drawing = true
		b.last = e.Position.Subtract(e.Dragged)
	}
	from := b.last
	b.last = e.Position
	seg := state.DrawCommand{
		X0:    float64(from.X),
		Y0:    float64(from.Y),
		X1:    float64(e.Position.X),
		Y1:    float64(e.Position.Y),
		Color: b.color,
		Size:  b.stroke,
	}
	notify := b.OnSegment
	b.mu.Unlock()

	if notify != nil {
		notify(seg)
	}
}

func (b *BoardWidget) DragEnd() {
	b.mu.Lock()
	b.drawing = false
	b.mu.Unlock()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{
		board:      b,
		background: canvas.NewRectangle(color.White),
	}
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	r.board.mu.RLock()
	defer r.board.mu.RUnlock()
	objects := make([]fyne.CanvasObject, 0, len(r.board.lines)+1)
	objects = append(objects, r.background)
	return append(objects, r.board.lines...)
}

// Layout reports size changes so the whole board can be redrawn against the
// new dimensions.
func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	w, h := int(size.Width), int(size.Height)
	curW, curH := r.board.Bounds()
	if (w != curW || h != curH) && r.board.OnResize != nil {
		go r.board.OnResize(w, h)
	}
}

func (r *boardWidgetRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {}
