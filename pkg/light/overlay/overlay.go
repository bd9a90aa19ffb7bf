// Package overlay draws the indicators shown on top of the side
// animation: battery, caps lock, system, sleep and link.
package overlay

import (
	"time"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/light"
)

// Indicator colors before the side shift.
var (
	Red    = light.RGB(0x80, 0, 0)
	Orange = light.RGB(0x80, 0x40, 0)
	Yellow = light.RGB(0x80, 0x80, 0)
	Green  = light.RGB(0, 0x80, 0)
	Cyan   = light.RGB(0, 0x80, 0x80)
	Blue   = light.RGB(0, 0, 0x80)
	Gray   = light.RGB(0x80, 0x80, 0x80)
)

// SideShift is applied to indicator colors on the side LEDs.
const SideShift = 2

func setSide(buf *light.Buffer, c light.Color) {
	buf.Fill(light.SideLEDs, c.Shr(SideShift))
}

// setSideMask lights side LED i with c if bit i of mask is set.
func setSideMask(buf *light.Buffer, mask uint16, c light.Color) {
	for n, i := range light.SideLEDs {
		if mask&(1<<uint(n)) != 0 {
			buf.Set(i, c)
		} else {
			buf.Set(i, light.Black)
		}
	}
}

// Options selects the alternative renderings.
type Options struct {
	// ChargeMarch shows charging as a marching bar instead of breathing.
	ChargeMarch bool
	// LinkMarch shows link blinks as a growing bar.
	LinkMarch bool
	// SystemLinger keeps the system indicator solid up to 4s.
	SystemLinger bool
}

// Overlays renders all indicators in priority order. Later ones
// overwrite earlier ones.
type Overlays struct {
	Battery *Battery
	Host    *HostIndicator
	System  *Flash
	Sleep   *Flash
	Link    *Link
}

// New creates Overlays drawing into buf.
func New(dev *device.Device, buf *light.Buffer, side, logo *light.Context, opts Options) *Overlays {
	return &Overlays{
		Battery: &Battery{Device: dev, Buffer: buf, Side: side, Logo: logo, March: opts.ChargeMarch},
		Host:    &HostIndicator{Device: dev, Buffer: buf},
		System:  NewSystemIndicator(dev, buf, opts.SystemLinger),
		Sleep:   NewSleepIndicator(dev, buf),
		Link:    &Link{Device: dev, Buffer: buf, March: opts.LinkMarch},
	}
}

// Control implements Controller.
func (o *Overlays) Control(cc fx.ControlContext) error {
	o.Render(cc.Time())
	return nil
}

// Render draws all indicators.
func (o *Overlays) Render(now time.Time) {
	o.Battery.Render(now)
	o.Host.Render()
	o.System.Render(now)
	o.Sleep.Render(now)
	o.Link.Render(now)
}
