package state

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want color.NRGBA
	}{
		{"#000", color.NRGBA{A: 255}},
		{"#f00", color.NRGBA{R: 255, A: 255}},
		{"#0f08", color.NRGBA{G: 255, A: 0x88}},
		{"#1a2B3c", color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}},
		{"#1a2b3c80", color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0x80}},
		{"red", color.NRGBA{R: 255, A: 255}},
		{"CornflowerBlue", color.NRGBA{R: 100, G: 149, B: 237, A: 255}},
		{"transparent", color.NRGBA{}},
		{"rgb(10, 20, 30)", color.NRGBA{R: 10, G: 20, B: 30, A: 255}},
		{"rgba(10,20,30,0.5)", color.NRGBA{R: 10, G: 20, B: 30, A: 128}},
		{"rgb(100% 0% 0% / 50%)", color.NRGBA{R: 255, A: 128}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseColorRejects(t *testing.T) {
	for _, in := range []string{
		"", "#", "#12", "#12345", "#ggg", "blurple", "rgb(1,2)", "rgb(256,0,0)",
		"rgba(0,0,0,2)", "rgb(0,0,0", "rgb(-1,0,0)", "hsl(0, 100%, 50%)",
	} {
		_, err := ParseColor(in)
		require.Error(t, err, in)
	}
}
