package light

import "math"

// Table lengths.
const (
	FlowLen     = 224
	WaveLen     = 128
	SideWaveLen = 128
	BreatheLen  = 128
)

var (
	// FlowTable is the rainbow color wheel.
	FlowTable = flowTable(FlowLen)
	// WaveTable is a raised cosine intensity wave.
	WaveTable = cosineTable(WaveLen, 1)
	// SideWaveTable is a sharper wave with a narrow crest.
	SideWaveTable = cosineTable(SideWaveLen, 3)
	// BreatheTable is the intensity curve of breathing.
	BreatheTable = cosineTable(BreatheLen, 2)
)

// ColourCount is the number of user selectable palette colors.
const ColourCount = 8

// Palette holds the user selectable colors followed by white.
var Palette = [ColourCount + 1]Color{
	{0xff, 0x00, 0x00},
	{0xff, 0x80, 0x00},
	{0xff, 0xff, 0x00},
	{0x00, 0xff, 0x00},
	{0x00, 0xff, 0xff},
	{0x00, 0x00, 0xff},
	{0x80, 0x00, 0xff},
	{0xff, 0x00, 0xff},
	{0xff, 0xff, 0xff},
}

// White is the last palette entry.
var White = Palette[ColourCount]

func flowTable(n int) []Color {
	tab := make([]Color, n)
	for i := range tab {
		pos := i * 256 * 6 / n
		f := uint8(pos % 256)
		switch pos / 256 {
		case 0:
			tab[i] = Color{0xff, f, 0}
		case 1:
			tab[i] = Color{0xff - f, 0xff, 0}
		case 2:
			tab[i] = Color{0, 0xff, f}
		case 3:
			tab[i] = Color{0, 0xff - f, 0xff}
		case 4:
			tab[i] = Color{f, 0, 0xff}
		default:
			tab[i] = Color{0xff, 0, 0xff - f}
		}
	}
	return tab
}

// cosineTable is one period of ((1-cos)/2)^pow scaled to 0..255,
// starting and ending at 0 with the crest in the middle.
func cosineTable(n int, pow float64) []uint8 {
	tab := make([]uint8, n)
	for i := range tab {
		v := (1 - math.Cos(2*math.Pi*float64(i)/float64(n))) / 2
		tab[i] = uint8(math.Round(255 * math.Pow(v, pow)))
	}
	return tab
}
