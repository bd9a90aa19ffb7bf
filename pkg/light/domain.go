package light

// Wave configures a wave mode of a domain.
type Wave struct {
	// RainbowStride is the offset in FlowTable between adjacent LEDs.
	RainbowStride uint8
	// Table is the intensity wave of a single color.
	Table []uint8
	// Step is how far a single color wave moves per frame.
	Step uint8
	// Stride is the offset in Table between adjacent LEDs.
	Stride uint8
	// PulseStride, if not zero, modulates the rainbow with Table,
	// offset by PulseStride between adjacent LEDs.
	PulseStride uint8
	// Shift is the right shift of the final channel values.
	Shift uint
}

// Domain describes a group of LEDs animated together.
type Domain struct {
	Name  string
	LEDs  []int
	Waves [2]Wave
	// Shift is the right shift of the final channel values in the
	// modes other than waves.
	Shift uint
}

// Domains.
var (
	SideDomain = &Domain{
		Name: "side",
		LEDs: SideLEDs,
		Waves: [2]Wave{
			{RainbowStride: 8, Table: WaveTable, Step: 2, Stride: 12, Shift: 2},
			{RainbowStride: 16, Table: SideWaveTable, Step: 1, Stride: 24, PulseStride: 32},
		},
		Shift: 2,
	}
	LogoDomain = &Domain{
		Name: "logo",
		LEDs: LogoLEDs,
		Waves: [2]Wave{
			{RainbowStride: 5, Table: WaveTable, Step: 1, Stride: 12, Shift: 1},
			{RainbowStride: 16, Table: WaveTable, Step: 1, Stride: 12, Shift: 1},
		},
		Shift: 2,
	}
)
