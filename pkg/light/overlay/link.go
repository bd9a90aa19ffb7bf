package overlay

import (
	"time"

	"github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
)

// Link blink periods.
const (
	LinkBlinkPeriod   = 500 * time.Millisecond
	PairBlinkPeriod   = 250 * time.Millisecond
	LinkMarchPeriod   = 200 * time.Millisecond
	PairMarchPeriod   = 100 * time.Millisecond
	linkMarchSeed     = 0x04
	linkMarchComplete = 0x7f
)

// LinkColor is the indicator color of a link mode.
func LinkColor(m device.LinkMode) light.Color {
	switch {
	case m == device.LinkRF24:
		return Green
	case m.IsWired():
		return Yellow
	}
	return Blue
}

// Link shows the link mode. It blinks the armed number of blinks,
// then stays solid while the link show window is open.
type Link struct {
	Device *device.Device
	Buffer *light.Buffer
	// March shows blinks as a bar growing from the middle.
	March bool

	started  bool
	blinking bool
	blinkAt  time.Time
	marchAt  time.Time
	mask     uint16
}

// Render draws the indicator.
func (l *Link) Render(now time.Time) {
	dev := l.Device
	show := &dev.Show
	c := LinkColor(dev.State.LinkMode)
	if !l.started {
		// a wired device starts without showing the link
		if dev.State.LinkMode.IsWired() && show.Showing() {
			return
		}
		l.started = true
		l.mask = linkMarchSeed
	}
	switch {
	case show.BlinkCount > 0:
		if l.March {
			l.renderMarch(now, c)
		} else {
			l.renderBlink(now, c)
		}
	case show.Showing():
		l.blinking = false
		setSide(l.Buffer, c)
	default:
		l.blinking = false
	}
}

func (l *Link) renderBlink(now time.Time, c light.Color) {
	show := &l.Device.Show
	period := LinkBlinkPeriod
	if l.Device.State.ConnState == device.ConnPairing {
		period = PairBlinkPeriod
	}
	if !l.blinking {
		l.blinking = true
		l.blinkAt = now
	}
	elapsed := now.Sub(l.blinkAt)
	if elapsed > period/2 {
		c = light.Black
	}
	if elapsed >= period {
		show.BlinkCount--
		l.blinkAt = now
	}
	setSide(l.Buffer, c)
}

func (l *Link) renderMarch(now time.Time, c light.Color) {
	period := LinkMarchPeriod
	if l.Device.State.ConnState == device.ConnPairing {
		period = PairMarchPeriod
	}
	if now.Sub(l.marchAt) > period {
		l.marchAt = now
		l.mask |= l.mask<<1 | l.mask>>1 | linkMarchSeed
		if l.mask == linkMarchComplete {
			l.mask = 0
		}
	}
	setSideMask(l.Buffer, l.mask, c.Shr(SideShift))
}
