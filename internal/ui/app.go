// Package ui is the fyne desktop front end of a board participant.
package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the connection state and how many participants are on
// the board.
type StatusBar struct {
	status *widget.Label
	users  *widget.Label
}

func newStatusBar() *StatusBar {
	return &StatusBar{
		status: widget.NewLabel("Disconnected"),
		users:  widget.NewLabel("Users: 0"),
	}
}

// Set may be called from any goroutine.
func (s *StatusBar) Set(status string, users int) {
	fyne.Do(func() {
		s.status.SetText(status)
		s.users.SetText(fmt.Sprintf("Users: %d", users))
	})
}

// RunApp shows the board window and blocks until it is closed.
func RunApp(title string, board *BoardWidget, onClear func(), ready func(*StatusBar)) {
	a := app.New()
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1024, 768))

	bar := newStatusBar()
	footer := container.NewHBox(bar.status, widget.NewSeparator(), bar.users)
	w.SetContent(container.NewBorder(NewToolbar(board, w, onClear), footer, nil, nil, board))
	if ready != nil {
		ready(bar)
	}
	w.ShowAndRun()
}
