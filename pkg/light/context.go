package light

import "time"

// Context is the animation state of one domain.
type Context struct {
	Mode   Mode
	Light  uint8
	Speed  uint8
	RGB    bool
	Colour uint8

	// Point is the play position in the table of the current mode.
	Point uint8
	// Pulse modulates the rainbow of the second wave mode.
	Pulse uint8
	// Breath is the play position of the breathe mode.
	Breath uint8
	// Played is the accumulated play time not consumed yet.
	Played time.Duration
}

// DefaultContext is the factory setting of a domain.
func DefaultContext() Context {
	return Context{Mode: ModeWaveA, Light: 3, Speed: 2, RGB: true}
}

// Accumulate adds elapsed time to the play time.
func (c *Context) Accumulate(d time.Duration) {
	if d > 0 {
		c.Played += d
	}
}

// Rate is the play time consumed per frame.
func (c *Context) Rate() time.Duration {
	mode, speed := c.Mode, c.Speed
	if mode >= ModeCount {
		mode = ModeOff
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	return time.Duration(RateTable[mode][speed]) * time.Millisecond
}

// Consume takes the play time of one frame. It returns false if not
// enough time has been accumulated.
func (c *Context) Consume() bool {
	rate := c.Rate()
	if c.Played <= rate {
		return false
	}
	c.Played -= rate
	if c.Played > SpillLimit {
		c.Played = 0
	}
	return true
}

// LightLevel is the brightness multiplier of the light level.
func (c *Context) LightLevel() uint8 {
	if c.Light > MaxLight {
		return LightTable[MaxLight]
	}
	return LightTable[c.Light]
}

// PaletteColor is the selected palette color.
func (c *Context) PaletteColor() Color {
	if int(c.Colour) < len(Palette) {
		return Palette[c.Colour]
	}
	return Palette[0]
}

// Brighten raises or lowers the light level by one step.
func (c *Context) Brighten(up bool) bool {
	if up {
		if c.Light >= MaxLight {
			return false
		}
		c.Light++
		return true
	}
	if c.Light == 0 {
		return false
	}
	c.Light--
	return true
}

// Faster changes the speed by one step. An out of range speed restarts
// from the middle.
func (c *Context) Faster(fast bool) bool {
	if c.Speed > MaxSpeed {
		c.Speed = MaxSpeed / 2
	}
	if fast {
		if c.Speed > 0 {
			c.Speed--
		}
	} else if c.Speed < MaxSpeed {
		c.Speed++
	}
	return true
}

// CycleColour moves to the next or previous color. The rainbow sits
// between the last and the first palette color and is only kept in
// the wave modes.
func (c *Context) CycleColour(next bool) bool {
	if !c.Mode.IsWave() && c.RGB {
		c.RGB, c.Colour = false, 0
	}
	if next {
		if c.RGB {
			c.RGB, c.Colour = false, 0
		} else if c.Colour++; c.Colour >= ColourCount {
			c.RGB, c.Colour = true, 0
		}
		return true
	}
	if c.RGB {
		c.RGB, c.Colour = false, ColourCount-1
	} else if c.Colour--; c.Colour >= ColourCount {
		c.RGB, c.Colour = true, 0
	}
	return true
}

// SetColour switches to the static mode showing palette color col.
func (c *Context) SetColour(col uint8) bool {
	if col >= ColourCount {
		return false
	}
	c.Mode, c.RGB, c.Colour = ModeStatic, false, col
	return true
}

// CycleMode moves to the next or previous mode and restarts the play
// position.
func (c *Context) CycleMode(next bool) bool {
	if next {
		if c.Mode++; c.Mode >= ModeCount {
			c.Mode = 0
		}
	} else if c.Mode > 0 && c.Mode < ModeCount {
		c.Mode--
	} else {
		c.Mode = ModeOff
	}
	c.Point = 0
	return true
}

// Reset restores the factory setting and restarts playing.
func (c *Context) Reset() {
	*c = DefaultContext()
}

// CapLight lowers the light level to at most max.
func (c *Context) CapLight(max uint8) {
	if c.Light > max {
		c.Light = max
	}
}
