package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"SyncBoard/internal/state"
)

func TestWritePDF(t *testing.T) {
	snap := state.Snapshot{
		Epoch: 2,
		Commands: []state.DrawCommand{
			{X0: 0, Y0: 0, X1: 100, Y1: 100, Color: "#000", Size: 3},
			{X0: 100, Y0: 0, X1: 0, Y1: 100, Color: "rgba(255, 0, 0, 0.5)", Size: 8},
			{X0: 5, Y0: 5, X1: 6, Y1: 6, Color: "transparent", Size: 1},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, snap))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFEmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, state.Snapshot{Commands: []state.DrawCommand{}}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	require.NoError(t, ExportFile(path, state.Snapshot{Commands: []state.DrawCommand{
		{X0: 1, Y0: 1, X1: 2, Y1: 2, Color: "blue", Size: 2},
	}}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}
