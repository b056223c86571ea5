package state

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errBadColor = errors.New("not a color token")

// ParseColor parses a CSS color token: #rgb, #rgba, #rrggbb, #rrggbbaa, a CSS
// named color, or rgb()/rgba() functional notation.
func ParseColor(s string) (color.NRGBA, error) {
	tok := strings.ToLower(strings.TrimSpace(s))
	switch {
	case tok == "":
		return color.NRGBA{}, errBadColor
	case tok == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(tok, "#"):
		return parseHex(tok[1:])
	case strings.HasPrefix(tok, "rgb(") || strings.HasPrefix(tok, "rgba("):
		return parseFunctional(tok)
	}
	if c, ok := colornames.Map[tok]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", errBadColor, s)
}

func parseHex(h string) (color.NRGBA, error) {
	var digits []uint8
	for i := 0; i < len(h); i++ {
		d, ok := hexDigit(h[i])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("%w: bad hex digit %q", errBadColor, h[i])
		}
		digits = append(digits, d)
	}
	c := color.NRGBA{A: 0xff}
	switch len(digits) {
	case 3, 4:
		c.R, c.G, c.B = digits[0]*17, digits[1]*17, digits[2]*17
		if len(digits) == 4 {
			c.A = digits[3] * 17
		}
	case 6, 8:
		c.R = digits[0]<<4 | digits[1]
		c.G = digits[2]<<4 | digits[3]
		c.B = digits[4]<<4 | digits[5]
		if len(digits) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
	default:
		return color.NRGBA{}, fmt.Errorf("%w: hex color of length %d", errBadColor, len(digits))
	}
	return c, nil
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

// parseFunctional accepts both the legacy comma form, rgb(255, 0, 0) and
// rgba(255, 0, 0, 0.5), and the space form rgb(255 0 0 / 50%).
func parseFunctional(tok string) (color.NRGBA, error) {
	open := strings.IndexByte(tok, '(')
	if !strings.HasSuffix(tok, ")") {
		return color.NRGBA{}, fmt.Errorf("%w: unterminated %q", errBadColor, tok)
	}
	body := strings.TrimSpace(tok[open+1 : len(tok)-1])

	var parts []string
	if strings.Contains(body, ",") {
		for _, p := range strings.Split(body, ",") {
			parts = append(parts, strings.TrimSpace(p))
		}
	} else {
		rgb, alpha, hasAlpha := strings.Cut(body, "/")
		parts = strings.Fields(rgb)
		if hasAlpha {
			parts = append(parts, strings.TrimSpace(alpha))
		}
	}
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: %d components in %q", errBadColor, len(parts), tok)
	}

	c := color.NRGBA{A: 0xff}
	ch := []*uint8{&c.R, &c.G, &c.B}
	for i, p := range parts[:3] {
		v, err := parseChannel(p)
		if err != nil {
			return color.NRGBA{}, err
		}
		*ch[i] = v
	}
	if len(parts) == 4 {
		a, err := parseAlpha(parts[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		c.A = a
	}
	return c, nil
}

func parseChannel(p string) (uint8, error) {
	if pct, ok := strings.CutSuffix(p, "%"); ok {
		v, err := parseUnit(pct, 100)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(v * 255 / 100)), nil
	}
	v, err := parseUnit(p, 255)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(v)), nil
}

func parseAlpha(p string) (uint8, error) {
	if pct, ok := strings.CutSuffix(p, "%"); ok {
		v, err := parseUnit(pct, 100)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(v * 255 / 100)), nil
	}
	v, err := parseUnit(p, 1)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(v * 255)), nil
}

func parseUnit(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > limit {
		return 0, fmt.Errorf("%w: component %q out of [0, %g]", errBadColor, s, limit)
	}
	return v, nil
}
