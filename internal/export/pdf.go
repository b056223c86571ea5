// Package export renders board snapshots to PDF.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"SyncBoard/internal/state"
)

const (
	marginMM = 10.0
	// pxToMM is the size of a CSS pixel on paper; drawings are never enlarged past it.
	pxToMM = 25.4 / 96
)

// WritePDF draws the snapshot, in log order, onto a single landscape A4 page
// scaled to fit the board's extent.
func WritePDF(w io.Writer, snap state.Snapshot) error {
	p := build(snap)
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportFile writes the snapshot to a PDF file at path.
func ExportFile(path string, snap state.Snapshot) error {
	p := build(snap)
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

func build(snap state.Snapshot) *gofpdf.Fpdf {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("SyncBoard", true)
	p.AddPage()
	pw, ph := p.GetPageSize()

	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(120, 120, 120)
	p.Text(marginMM, marginMM-3, fmt.Sprintf("epoch %d, %d segments", snap.Epoch, len(snap.Commands)))

	ext := state.Extent(snap.Commands)
	if ext.Empty() {
		return p
	}
	scale := math.Min((pw-2*marginMM)/ext.Width, (ph-2*marginMM)/ext.Height)
	scale = math.Min(scale, pxToMM)
	tx := func(x float64) float64 { return marginMM + (x-ext.X)*scale }
	ty := func(y float64) float64 { return marginMM + (y-ext.Y)*scale }

	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")
	for _, c := range snap.Commands {
		col, err := state.ParseColor(c.Color)
		if err != nil || col.A == 0 {
			continue
		}
		p.SetDrawColor(int(col.R), int(col.G), int(col.B))
		p.SetAlpha(float64(col.A)/255, "Normal")
		p.SetLineWidth(float64(c.Size) * scale)
		p.Line(tx(c.X0), ty(c.Y0), tx(c.X1), ty(c.Y1))
	}
	p.SetAlpha(1, "Normal")
	return p
}
