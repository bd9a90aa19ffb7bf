package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
)

var t0 = time.Unix(5000, 0)

type overlayTestCtx struct {
	t    *testing.T
	dev  *device.Device
	buf  *light.Buffer
	side *light.Context
	logo *light.Context
	o    *Overlays
}

func newOverlayTestCtx(t *testing.T, opts Options) *overlayTestCtx {
	c := &overlayTestCtx{
		t:    t,
		dev:  device.New(),
		buf:  &light.Buffer{},
		side: &light.Context{Light: 3},
		logo: &light.Context{Light: 4},
	}
	c.o = New(c.dev, c.buf, c.side, c.logo, opts)
	return c
}

func (c *overlayTestCtx) at(d time.Duration) time.Time {
	return t0.Add(d)
}

// paint marks the buffer so untouched LEDs can be detected.
func (c *overlayTestCtx) paint() {
	for n := range c.buf {
		c.buf[n] = light.White
	}
}

func (c *overlayTestCtx) requireSide(colors ...light.Color) {
	c.t.Helper()
	if len(colors) == 1 {
		for len(colors) < len(light.SideLEDs) {
			colors = append(colors, colors[0])
		}
	}
	for n, i := range light.SideLEDs {
		require.Equal(c.t, colors[n], c.buf[i], "led %d", i)
	}
}

func (c *overlayTestCtx) requireUntouched() {
	c.t.Helper()
	c.requireSide(light.White)
}

func TestBatteryTiers(t *testing.T) {
	cases := []struct {
		percent uint8
		color   light.Color
		leds    int
	}{
		{0, Red, 1}, {20, Red, 1}, {21, Orange, 2}, {40, Orange, 2}, {45, Orange, 3},
		{50, Orange, 3}, {51, Yellow, 4}, {80, Yellow, 4}, {81, Green, 5}, {100, Green, 5},
	}
	for _, tc := range cases {
		tier := TierOf(tc.percent)
		assert.Equal(t, tc.color, tier.Color, "%d%%", tc.percent)
		assert.Equal(t, tc.leds, tier.LEDs, "%d%%", tc.percent)
	}
}

func TestBatteryHiddenWhileLinkShown(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkBT1
	c.dev.State.ConnState = device.ConnConnected
	c.paint()
	c.o.Battery.Render(t0)
	c.requireUntouched()

	c.dev.Show.ShownFor = device.LinkShowWindow
	c.dev.State.ConnState = device.ConnDisconnected
	c.o.Battery.Render(t0)
	c.requireUntouched()

	c.dev.State.ConnState = device.ConnConnected
	c.o.Battery.Render(t0)
	assert.True(t, c.o.Battery.Showing())
}

func TestBatteryShownAtStart(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkWired
	c.dev.State.Battery = 60
	c.paint()
	c.o.Battery.Render(t0)
	y := Yellow.Shr(SideShift)
	c.requireSide(y, y, y, y, light.Black)
	assert.False(t, c.o.Battery.Charging())

	c.paint()
	c.o.Battery.Render(c.at(BatteryShowTime))
	c.requireSide(y, y, y, y, light.Black)
	c.paint()
	c.o.Battery.Render(c.at(BatteryShowTime + time.Millisecond))
	c.requireUntouched()

	c.dev.Switches.BatteryHold = true
	c.o.Battery.Render(c.at(BatteryShowTime + 2*time.Millisecond))
	c.requireSide(y, y, y, y, light.Black)
}

func TestBatteryChargingStart(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkWired
	c.dev.State.Battery = 60
	c.o.Battery.Render(t0)

	c.dev.State.Charge = device.ChargeCharging
	c.o.Battery.Render(c.at(500 * time.Millisecond))
	assert.False(t, c.o.Battery.Charging())

	c.o.Battery.Render(c.at(1500 * time.Millisecond))
	assert.True(t, c.o.Battery.Charging())
	c.requireSide(Orange.Dim(light.BreatheTable[light.BreatheLen-1]).Shr(SideShift))

	// still charging after the show time, but no longer displayed
	c.paint()
	c.o.Battery.Render(c.at(7 * time.Second))
	assert.True(t, c.o.Battery.Charging())
	c.requireUntouched()

	c.dev.State.Charge = 0
	c.o.Battery.Render(c.at(8100 * time.Millisecond))
	c.o.Battery.Render(c.at(8200 * time.Millisecond))
	assert.False(t, c.o.Battery.Charging())
}

func TestBatteryChargingMarch(t *testing.T) {
	c := newOverlayTestCtx(t, Options{ChargeMarch: true})
	c.dev.State.LinkMode = device.LinkWired
	c.dev.State.Battery = 60
	c.dev.State.Charge = device.ChargeCharging
	c.o.Battery.Render(t0)
	require.True(t, c.o.Battery.Charging())
	y := Yellow.Shr(SideShift)
	c.requireSide(y, light.Black, light.Black, light.Black, light.Black)

	c.o.Battery.Render(c.at(50 * time.Millisecond))
	c.requireSide(y, light.Black, light.Black, light.Black, light.Black)
	c.o.Battery.Render(c.at(101 * time.Millisecond))
	c.requireSide(y, y, light.Black, light.Black, light.Black)
}

func TestBatteryLow(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkWired
	c.dev.State.Battery = 50
	c.o.Battery.Render(t0)
	require.EqualValues(t, 50, c.o.Battery.Percent())

	c.dev.State.Battery = 8
	c.o.Battery.Render(c.at(500 * time.Millisecond))
	assert.EqualValues(t, 50, c.o.Battery.Percent())
	c.o.Battery.Render(c.at(1100 * time.Millisecond))
	assert.EqualValues(t, 8, c.o.Battery.Percent())
	assert.False(t, c.dev.Switches.LowBattery)

	start := 1200 * time.Millisecond
	c.o.Battery.Render(c.at(start))
	assert.True(t, c.dev.Switches.LowBattery)
	assert.EqualValues(t, LowBatteryLight, c.side.Light)
	assert.EqualValues(t, LowBatteryLight, c.logo.Light)
	red := Red.Shr(SideShift)
	c.requireSide(red)

	c.o.Battery.Render(c.at(start + 300*time.Millisecond))
	c.requireSide(light.Black)
	for step := start + 310*time.Millisecond; step < start+LowBatteryBlinks*LowBatteryPeriod+100*time.Millisecond; step += 10 * time.Millisecond {
		c.o.Battery.Render(c.at(step))
	}
	for _, d := range []time.Duration{0, 300, 600} {
		c.o.Battery.Render(c.at(start + 4*time.Second + d*time.Millisecond))
		c.requireSide(red)
	}

	// a low battery on external power isn't low
	c.dev.State.Charge = device.ChargePowered
	c.o.Battery.Render(c.at(8 * time.Second))
	c.o.Battery.Render(c.at(8100 * time.Millisecond))
	assert.False(t, c.dev.Switches.LowBattery)
}

func TestHostIndicator(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	cyan := Cyan.Shr(SideShift)

	c.paint()
	c.dev.Switches.HostCapsLock = true
	c.o.Host.Render()
	c.requireUntouched()

	c.dev.State.Indicator = device.IndicatorCapsLock
	c.o.Host.Render()
	c.requireSide(cyan)

	c.paint()
	c.dev.State.LinkMode = device.LinkWired
	c.dev.Switches.HostCapsLock = false
	c.o.Host.Render()
	c.requireUntouched()
	c.dev.Switches.HostCapsLock = true
	c.o.Host.Render()
	c.requireSide(cyan)
}

func TestSystemFlash(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	f := c.o.System
	c.paint()
	f.Render(t0)
	c.requireUntouched()

	f.Trigger()
	assert.True(t, f.Active())
	blue := Blue.Shr(SideShift)
	steps := []struct {
		at    time.Duration
		color light.Color
	}{
		{0, blue}, {499, blue}, {500, light.Black}, {999, light.Black}, {1000, blue}, {2499, blue}, {2949, light.Black},
	}
	for _, s := range steps {
		f.Render(c.at(s.at * time.Millisecond))
		c.requireSide(s.color)
	}
	f.Render(c.at(2950 * time.Millisecond))
	assert.False(t, f.Active())
	c.paint()
	f.Render(c.at(3 * time.Second))
	c.requireUntouched()

	c.dev.Switches.MacOS = true
	f.Trigger()
	f.Render(c.at(10 * time.Second))
	c.requireSide(Gray.Shr(SideShift))
}

func TestSystemFlashLinger(t *testing.T) {
	c := newOverlayTestCtx(t, Options{SystemLinger: true})
	f := c.o.System
	f.Trigger()
	f.Render(t0)
	blue := Blue.Shr(SideShift)
	for _, ms := range []time.Duration{2950, 3500, 3999, 4000} {
		f.Render(c.at(ms * time.Millisecond))
		c.requireSide(blue)
		assert.True(t, f.Active())
	}
	f.Render(c.at(4001 * time.Millisecond))
	assert.False(t, f.Active())
}

func TestSleepFlash(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.o.Sleep.Trigger()
	c.o.Sleep.Render(t0)
	c.requireSide(Green.Shr(SideShift))

	c.dev.Switches.SleepEnabled = false
	c.o.Sleep.Render(c.at(100 * time.Millisecond))
	c.requireSide(Red.Shr(SideShift))
}

func TestLinkSolidWhileShown(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkBT2
	c.paint()
	c.o.Link.Render(t0)
	c.requireSide(Blue.Shr(SideShift))

	c.paint()
	c.dev.Show.ShownFor = device.LinkShowWindow
	c.o.Link.Render(t0)
	c.requireUntouched()

	c.dev.State.LinkMode = device.LinkRF24
	c.dev.Show.ShownFor = 0
	c.o.Link.Render(t0)
	c.requireSide(Green.Shr(SideShift))
}

func TestLinkBlink(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkBT1
	c.dev.Show.BlinkCount = 3
	c.dev.Show.ShownFor = device.LinkShowWindow
	blue := Blue.Shr(SideShift)

	start := time.Second
	c.o.Link.Render(c.at(start))
	c.requireSide(blue)
	c.o.Link.Render(c.at(start + 251*time.Millisecond))
	c.requireSide(light.Black)
	c.o.Link.Render(c.at(start + 500*time.Millisecond))
	assert.EqualValues(t, 2, c.dev.Show.BlinkCount)
	c.o.Link.Render(c.at(start + 600*time.Millisecond))
	c.requireSide(blue)
	c.o.Link.Render(c.at(start + time.Second))
	c.o.Link.Render(c.at(start + 1500*time.Millisecond))
	assert.Zero(t, c.dev.Show.BlinkCount)

	c.paint()
	c.o.Link.Render(c.at(start + 1600*time.Millisecond))
	c.requireUntouched()
}

func TestLinkPairingBlink(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkBT3
	c.dev.State.ConnState = device.ConnPairing
	c.dev.Show.BlinkCount = 2
	c.o.Link.Render(t0)
	c.o.Link.Render(c.at(126 * time.Millisecond))
	c.requireSide(light.Black)
	c.o.Link.Render(c.at(250 * time.Millisecond))
	assert.EqualValues(t, 1, c.dev.Show.BlinkCount)
}

func TestLinkMarch(t *testing.T) {
	c := newOverlayTestCtx(t, Options{LinkMarch: true})
	c.dev.State.LinkMode = device.LinkRF24
	c.dev.State.ConnState = device.ConnLinking
	c.dev.Show.BlinkCount = 3
	g := Green.Shr(SideShift)
	c.o.Link.Render(t0)
	c.requireSide(light.Black, g, g, g, light.Black)
	c.o.Link.Render(c.at(150 * time.Millisecond))
	c.requireSide(light.Black, g, g, g, light.Black)
	c.o.Link.Render(c.at(201 * time.Millisecond))
	c.requireSide(g)
	assert.EqualValues(t, 3, c.dev.Show.BlinkCount)
}

func TestLinkWiredPowerOn(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkWired
	c.paint()
	c.o.Link.Render(t0)
	c.requireUntouched()

	c.dev.Show.ShownFor = device.LinkShowWindow
	c.o.Link.Render(t0)
	c.requireUntouched()

	c.dev.Show.ShownFor = 0
	c.o.Link.Render(t0)
	c.requireSide(Yellow.Shr(SideShift))
}

func TestOverlayOrder(t *testing.T) {
	c := newOverlayTestCtx(t, Options{})
	c.dev.State.LinkMode = device.LinkWired
	c.dev.State.Battery = 90
	c.dev.Switches.HostCapsLock = true
	c.dev.Show.ShownFor = device.LinkShowWindow
	c.o.Render(t0)
	c.requireSide(Cyan.Shr(SideShift))

	c.o.Sleep.Trigger()
	c.o.Render(c.at(10 * time.Millisecond))
	c.requireSide(Green.Shr(SideShift))

	c.dev.Show.ShownFor = 0
	c.o.Render(c.at(20 * time.Millisecond))
	c.requireSide(Yellow.Shr(SideShift))
	for _, i := range light.LogoLEDs {
		assert.True(t, c.buf[i].IsBlack())
	}
}
