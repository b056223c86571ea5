package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedCommand is wrapped by every codec rejection.
var ErrMalformedCommand = errors.New("malformed draw command")

// Limits bounds what the codec accepts.
type Limits struct {
	MaxCoordinate float64 `mapstructure:"max-coordinate"`
	MaxSize       int     `mapstructure:"max-size"`
}

// DefaultLimits are wide enough for any realistic canvas.
func DefaultLimits() Limits {
	return Limits{
		MaxCoordinate: 1e6,
		MaxSize:       500,
	}
}

// Codec validates and normalizes proposed draw commands.
type Codec struct {
	limits Limits
}

func NewCodec(limits Limits) *Codec {
	return &Codec{limits: limits}
}

// Validate turns a raw proposal into a DrawCommand or explains why it cannot.
// A missing field is a rejection, never a default.
func (c *Codec) Validate(raw RawCommand) (DrawCommand, error) {
	coords := []struct {
		name string
		v    *float64
	}{
		{"x0", raw.X0}, {"y0", raw.Y0}, {"x1", raw.X1}, {"y1", raw.Y1},
	}
	for _, f := range coords {
		if f.v == nil {
			return DrawCommand{}, fmt.Errorf("%w: missing %s", ErrMalformedCommand, f.name)
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return DrawCommand{}, fmt.Errorf("%w: %s is not finite", ErrMalformedCommand, f.name)
		}
		if c.limits.MaxCoordinate > 0 && math.Abs(*f.v) > c.limits.MaxCoordinate {
			return DrawCommand{}, fmt.Errorf("%w: %s=%g outside canvas space", ErrMalformedCommand, f.name, *f.v)
		}
	}

	if raw.Size == nil {
		return DrawCommand{}, fmt.Errorf("%w: missing size", ErrMalformedCommand)
	}
	size := *raw.Size
	if math.IsNaN(size) || math.IsInf(size, 0) || size != math.Trunc(size) {
		return DrawCommand{}, fmt.Errorf("%w: size %v is not an integer", ErrMalformedCommand, size)
	}
	if size <= 0 {
		return DrawCommand{}, fmt.Errorf("%w: size %v must be positive", ErrMalformedCommand, size)
	}
	if c.limits.MaxSize > 0 && size > float64(c.limits.MaxSize) {
		return DrawCommand{}, fmt.Errorf("%w: size %v exceeds %d", ErrMalformedCommand, size, c.limits.MaxSize)
	}

	if raw.Color == nil {
		return DrawCommand{}, fmt.Errorf("%w: missing color", ErrMalformedCommand)
	}
	if _, err := ParseColor(*raw.Color); err != nil {
		return DrawCommand{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	return DrawCommand{
		X0:    *raw.X0,
		Y0:    *raw.Y0,
		X1:    *raw.X1,
		Y1:    *raw.Y1,
		Color: *raw.Color,
		Size:  int(size),
	}, nil
}

// Decode parses a JSON payload and validates it.
func (c *Codec) Decode(data []byte) (DrawCommand, error) {
	var raw RawCommand
	if err := json.Unmarshal(data, &raw); err != nil {
		return DrawCommand{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	return c.Validate(raw)
}
