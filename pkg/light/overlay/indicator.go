package overlay

import (
	"time"

	"github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
)

// HostIndicator shows caps lock. In wired mode the state comes from
// the host directly, otherwise from the radio.
type HostIndicator struct {
	Device *device.Device
	Buffer *light.Buffer
}

// CapsLock tells if caps lock is on.
func (h *HostIndicator) CapsLock() bool {
	dev := h.Device
	if dev.State.LinkMode.IsWired() {
		return dev.Switches.HostCapsLock
	}
	return dev.State.Indicator&device.IndicatorCapsLock != 0
}

// Render draws the indicator.
func (h *HostIndicator) Render() {
	if h.CapsLock() {
		setSide(h.Buffer, Cyan)
	}
}

// Flash timing.
const (
	FlashPeriod    = 500 * time.Millisecond
	FlashDuration  = 3*time.Second - 50*time.Millisecond
	FlashLingerEnd = 4 * time.Second
)

// Flash blinks a color on the side LEDs for a few seconds after
// being triggered.
type Flash struct {
	Buffer *light.Buffer
	// Color is evaluated when drawing.
	Color func() light.Color
	// Linger keeps the color solid after blinking until FlashLingerEnd.
	Linger bool

	triggered bool
	active    bool
	start     time.Time
}

// NewSystemIndicator flashes gray for the Mac layout and blue otherwise.
func NewSystemIndicator(dev *device.Device, buf *light.Buffer, linger bool) *Flash {
	return &Flash{
		Buffer: buf,
		Linger: linger,
		Color: func() light.Color {
			if dev.Switches.MacOS {
				return Gray
			}
			return Blue
		},
	}
}

// NewSleepIndicator flashes green when sleep is enabled and red otherwise.
func NewSleepIndicator(dev *device.Device, buf *light.Buffer) *Flash {
	return &Flash{
		Buffer: buf,
		Color: func() light.Color {
			if dev.Switches.SleepEnabled {
				return Green
			}
			return Red
		},
	}
}

// Trigger starts flashing from the next Render.
func (f *Flash) Trigger() {
	f.triggered = true
}

// Active tells if the flash is being shown.
func (f *Flash) Active() bool {
	return f.active || f.triggered
}

// Render draws the flash.
func (f *Flash) Render(now time.Time) {
	if f.triggered {
		f.triggered = false
		f.active = true
		f.start = now
	}
	if !f.active {
		return
	}
	c := f.Color()
	elapsed := now.Sub(f.start)
	if (elapsed/FlashPeriod)%2 == 0 {
		setSide(f.Buffer, c)
	} else {
		setSide(f.Buffer, light.Black)
	}
	if elapsed >= FlashDuration {
		if f.Linger && elapsed <= FlashLingerEnd {
			setSide(f.Buffer, c)
		} else {
			f.active = false
		}
	}
}
