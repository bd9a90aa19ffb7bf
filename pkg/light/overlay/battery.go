package overlay

import (
	"time"

	"github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
)

// Battery indicator timing.
const (
	BatteryShowTime   = 5 * time.Second
	BatteryDebounce   = time.Second
	LowBattery        = 10
	LowBatteryBlinks  = 6
	LowBatteryPeriod  = 500 * time.Millisecond
	LowBatteryLight   = 1
	chargeBreathStep  = 10 * time.Millisecond
	chargeMarchPeriod = 100 * time.Millisecond
)

// BatteryTier is the display of a battery percentage band.
type BatteryTier struct {
	// Max is the highest percentage of the band.
	Max   uint8
	Color light.Color
	// LEDs is the number of lit LEDs.
	LEDs int
}

// BatteryTiers are the bands from low to high.
var BatteryTiers = []BatteryTier{
	{20, Red, 1},
	{40, Orange, 2},
	{50, Orange, 3},
	{80, Yellow, 4},
	{100, Green, 5},
}

// TierOf returns the band of percent.
func TierOf(percent uint8) BatteryTier {
	for _, tier := range BatteryTiers {
		if percent <= tier.Max {
			return tier
		}
	}
	return BatteryTiers[len(BatteryTiers)-1]
}

// Battery shows the battery level for a while after start-up or when
// charging starts, and forces the display when the battery is low.
// A low battery also caps the light levels of both domains.
type Battery struct {
	Device     *device.Device
	Buffer     *light.Buffer
	Side, Logo *light.Context
	// March shows charging as a marching bar.
	March bool

	started         bool
	showing         bool
	charging        bool
	shownAt         time.Time
	chargeDebounce  time.Time
	percentDebounce time.Time
	charge          byte
	percent         uint8

	lowBlinks uint8
	lowActive bool
	lowAt     time.Time

	breath   uint8
	breathAt time.Time
	march    marcher
}

// Percent is the debounced battery percentage.
func (b *Battery) Percent() uint8 {
	return b.percent
}

// Charging tells if charging is being shown.
func (b *Battery) Charging() bool {
	return b.charging
}

// Showing tells if the battery level is being displayed.
func (b *Battery) Showing() bool {
	return b.showing || b.Device.Switches.BatteryHold
}

// Render draws the battery indicator.
func (b *Battery) Render(now time.Time) {
	dev := b.Device
	st := &dev.State
	if !st.LinkMode.IsWired() && (dev.Show.Showing() || !st.IsConnected()) {
		return
	}
	if !b.started {
		b.started = true
		b.showing, b.charging = true, true
		b.shownAt = now
		b.charge, b.percent = st.Charge, st.Battery
		b.lowBlinks = LowBatteryBlinks
	}

	if b.charge != st.Charge {
		if now.Sub(b.chargeDebounce) > BatteryDebounce {
			if b.charge&device.ChargePowered == 0 && st.Charge&device.ChargePowered != 0 {
				b.showing, b.charging = true, true
				b.shownAt = now
			}
			b.charge = st.Charge
		}
	} else {
		b.chargeDebounce = now
		if now.Sub(b.shownAt) > BatteryShowTime {
			b.showing, b.charging = false, false
		}
		if b.charge == device.ChargeCharging {
			b.charging = true
		} else if b.charge&device.ChargePowered == 0 {
			b.charging = false
		}
	}

	if b.percent != st.Battery {
		if now.Sub(b.percentDebounce) > BatteryDebounce {
			b.percent = st.Battery
		}
	} else {
		b.percentDebounce = now
		low := b.percent < LowBattery && b.charge&device.ChargePowered == 0
		dev.Switches.LowBattery = low
		if low {
			b.showing = true
			b.shownAt = now
			b.capLights()
		}
	}

	if b.Showing() {
		b.renderPercent(now)
	}
}

func (b *Battery) capLights() {
	if b.Side != nil {
		b.Side.CapLight(LowBatteryLight)
	}
	if b.Logo != nil {
		b.Logo.CapLight(LowBatteryLight)
	}
}

func (b *Battery) renderPercent(now time.Time) {
	tier := TierOf(b.percent)
	switch {
	case b.charging:
		b.resetLow()
		if b.March {
			if now.Sub(b.march.at) > chargeMarchPeriod {
				b.march.at = now
				b.march.bounce(tier.LEDs - 1)
			}
			setSideMask(b.Buffer, b.march.mask, tier.Color.Shr(SideShift))
		} else {
			if now.Sub(b.breathAt) > chargeBreathStep {
				b.breathAt = now
				b.breath = light.StepPoint(b.breath, false, 1, light.BreatheLen)
			}
			setSide(b.Buffer, Orange.Dim(light.BreatheTable[b.breath]))
		}
	case b.percent < LowBattery:
		b.renderLow(now)
	default:
		b.resetLow()
		c := tier.Color.Shr(SideShift)
		for n, i := range light.SideLEDs {
			if n < tier.LEDs {
				b.Buffer.Set(i, c)
			} else {
				b.Buffer.Set(i, light.Black)
			}
		}
	}
}

func (b *Battery) resetLow() {
	b.lowBlinks = LowBatteryBlinks
	b.lowActive = false
}

// renderLow blinks red a few times, then stays solid.
func (b *Battery) renderLow(now time.Time) {
	if !b.lowActive {
		b.lowActive = true
		b.lowAt = now
	}
	c := Red
	if b.lowBlinks > 0 {
		elapsed := now.Sub(b.lowAt)
		if elapsed > LowBatteryPeriod/2 {
			c = light.Black
		}
		if elapsed >= LowBatteryPeriod {
			b.lowAt = now
			b.lowBlinks--
		}
	}
	setSide(b.Buffer, c)
}

// marcher fills a bar up to 7 bits and empties it down to a floor.
type marcher struct {
	at   time.Time
	mask uint16
	down bool
}

func (m *marcher) bounce(end int) {
	if m.down {
		m.mask >>= 1
		if m.mask <= 0x1f>>uint(len(light.SideLEDs)-end) {
			m.down = false
		}
		return
	}
	m.mask = m.mask<<1 | 1
	if m.mask == 0x7f {
		m.down = true
	}
}
