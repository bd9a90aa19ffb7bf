package light

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the animation mode of a domain.
type Mode uint8

// Modes in cycling order.
const (
	ModeWaveA Mode = iota
	ModeWaveB
	ModeSpectrum
	ModeStatic
	ModeBreathe
	ModeOff
	ModeCount
)

var modeNames = [ModeCount]string{"wave-a", "wave-b", "spectrum", "static", "breathe", "off"}

func (m Mode) String() string {
	if m < ModeCount {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// IsWave tells if m is one of the wave modes.
func (m Mode) IsWave() bool {
	return m == ModeWaveA || m == ModeWaveB
}

// ParseMode parses the name of a mode.
func ParseMode(s string) (Mode, error) {
	for n, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(n), nil
		}
	}
	return ModeOff, fmt.Errorf("unknown mode %q", s)
}

// Limits of the context fields.
const (
	MaxLight = 5
	MaxSpeed = 4
)

// SpillLimit bounds the accumulated play time left after a frame.
// Anything above is dropped to avoid fast-forwarding after a stall.
const SpillLimit = 20 * time.Millisecond

// RateTable is the play time in ms consumed per frame by mode and speed.
// Speed 0 is the fastest.
var RateTable = [ModeCount][MaxSpeed + 1]uint8{
	ModeWaveA:    {24, 30, 36, 42, 50},
	ModeWaveB:    {24, 30, 36, 42, 50},
	ModeSpectrum: {14, 20, 28, 36, 50},
	ModeStatic:   {50, 50, 50, 50, 50},
	ModeBreathe:  {14, 20, 28, 36, 50},
	ModeOff:      {50, 50, 50, 50, 50},
}

// LightTable maps the light level to the brightness multiplier.
var LightTable = [MaxLight + 1]uint8{0, 22, 34, 55, 79, 106}
