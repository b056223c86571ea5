package state

// DrawCommand is one straight segment of a freehand stroke. It has no identity
// beyond its position in the session log.
type DrawCommand struct {
	X0    float64 `json:"x0"`
	Y0    float64 `json:"y0"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Color string  `json:"color"`
	Size  int     `json:"size"`
}

// RawCommand is a proposed command as it arrives from a participant. Pointer
// fields let the codec tell a missing field from a zero value.
type RawCommand struct {
	X0    *float64 `json:"x0"`
	Y0    *float64 `json:"y0"`
	X1    *float64 `json:"x1"`
	Y1    *float64 `json:"y1"`
	Color *string  `json:"color"`
	Size  *float64 `json:"size"`
}

// Raw turns an accepted command back into its proposal form.
func (c DrawCommand) Raw() RawCommand {
	size := float64(c.Size)
	color := c.Color
	return RawCommand{
		X0:    &c.X0,
		Y0:    &c.Y0,
		X1:    &c.X1,
		Y1:    &c.Y1,
		Color: &color,
		Size:  &size,
	}
}

// Snapshot is a point-in-time copy of the board and the epoch it belongs to.
type Snapshot struct {
	Commands []DrawCommand `json:"commands"`
	Epoch    uint64        `json:"epoch"`
}
