package light

import "fmt"

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// Black is all channels off.
var Black = Color{}

// RGB creates a Color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// CountRGBLight scales a channel by level as (ch*level + ch) >> 8.
func CountRGBLight(ch, level uint8) uint8 {
	return uint8((uint16(ch)*uint16(level) + uint16(ch)) >> 8)
}

// Dim scales all channels with CountRGBLight.
func (c Color) Dim(level uint8) Color {
	return Color{
		R: CountRGBLight(c.R, level),
		G: CountRGBLight(c.G, level),
		B: CountRGBLight(c.B, level),
	}
}

// Shr shifts all channels right.
func (c Color) Shr(n uint) Color {
	return Color{R: c.R >> n, G: c.G >> n, B: c.B >> n}
}

// IsBlack tells if all channels are off.
func (c Color) IsBlack() bool {
	return c == Black
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
