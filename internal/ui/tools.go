package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SyncBoard/internal/state"
)

// Palette is the set of colors offered by the toolbar, as CSS tokens.
var Palette = []string{"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00"}

const eraserColor = "#ffffff"

type colorSwatch struct {
	widget.BaseWidget
	token    string
	OnTapped func(string)
}

func newColorSwatch(token string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{token: token, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	c, err := state.ParseColor(s.token)
	if err != nil {
		c = color.NRGBA{A: 0xff}
	}
	rect := canvas.NewRectangle(c)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.token)
	}
}

// cssHex formats c as a #rrggbb token, dropping alpha.
func cssHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// NewToolbar builds the pen/eraser tools, the palette with a custom color
// picker, the brush size slider and the clear button. onClear asks for the
// board to be cleared for everyone.
func NewToolbar(board *BoardWidget, win fyne.Window, onClear func()) fyne.CanvasObject {
	lastColor := Palette[0]
	size := 3

	sizeLabel := widget.NewLabel(fmt.Sprint(size))
	strokeSlider := widget.NewSlider(1, 50)
	strokeSlider.Step = 1
	strokeSlider.SetValue(float64(size))
	strokeSlider.OnChanged = func(v float64) {
		size = int(v)
		board.SetStroke(size)
		sizeLabel.SetText(fmt.Sprint(size))
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			board.SetColor(lastColor)
			board.SetStroke(size)
		}),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			board.SetColor(eraserColor)
			board.SetStroke(20)
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), onClear),
	)

	pick := func(c string) {
		lastColor = c
		board.SetColor(c)
	}
	swatches := make([]fyne.CanvasObject, 0, len(Palette)+1)
	for _, token := range Palette {
		swatches = append(swatches, newColorSwatch(token, pick))
	}
	swatches = append(swatches, widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), func() {
		picker := dialog.NewColorPicker("Color", "Pick a pen color", func(c color.Color) {
			pick(cssHex(c))
		}, win)
		picker.Advanced = true
		picker.Show()
	}))

	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)
	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		container.NewHBox(swatches...),
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		sizeLabel,
		layout.NewSpacer(),
	)
}
