package light

// LEDCount is the number of LEDs on the strip.
const LEDCount = 12

// LED positions of the domains.
var (
	SideLEDs = []int{0, 1, 2, 3, 4}
	LogoLEDs = []int{5, 6, 7, 8, 9, 10, 11}
)

// Buffer holds the colors of the whole strip. It's written by the
// animators and overlays and pushed to the driver by the Flusher.
type Buffer [LEDCount]Color

// Set sets the color of LED i. Out of range indices are ignored.
func (b *Buffer) Set(i int, c Color) {
	if i >= 0 && i < LEDCount {
		b[i] = c
	}
}

// Fill sets all LEDs at indices to c.
func (b *Buffer) Fill(indices []int, c Color) {
	for _, i := range indices {
		b.Set(i, c)
	}
}

// Clear turns off all LEDs.
func (b *Buffer) Clear() {
	*b = Buffer{}
}
