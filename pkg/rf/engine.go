package rf

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/rf/frame"
)

const (
	// FrameTimeout drops a partial frame when the stream stalls this long.
	FrameTimeout = 5 * time.Millisecond
	// MismatchLimit is the number of consecutive status-sync replies for
	// another link mode before the link selection is resent.
	MismatchLimit = 5

	initAttempts = 10
	initDelay    = 20 * time.Millisecond
	initSettle   = 5 * time.Millisecond
	curveSettle  = 50 * time.Millisecond
)

// Engine sends commands to the radio and dispatches what it receives.
// It's the only writer of device.State.
type Engine struct {
	Device    *device.Device
	Transport Transport
	Clock     fx.Clock
	Metrics   *Metrics

	DeviceName     string
	DongleName     string
	PowerDownDelay byte

	parser     frame.Parser
	ack        bool
	missed     uint8
	mismatches uint8
	lastByte   time.Time
}

// NewEngine creates an Engine.
func NewEngine(dev *device.Device, t Transport, clock fx.Clock) *Engine {
	if clock == nil {
		clock = fx.SystemClock
	}
	return &Engine{
		Device:    dev,
		Transport: t,
		Clock:     clock,
	}
}

// AddToLoop implements LoopAdder.
func (e *Engine) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, fx.ControlFunc(func(fx.ControlContext) error {
		e.Poll()
		return nil
	}))
}

// Acked tells if a frame arrived since the last transmission.
func (e *Engine) Acked() bool {
	return e.ack
}

// Send builds the payload of cmd from the device state, transmits it
// and waits for the acknowledge according to opts.
func (e *Engine) Send(cmd Command, opts SendOptions) error {
	if opts.Delay > 0 {
		e.Clock.Sleep(opts.Delay)
	}
	payload, err := e.payloadFor(cmd)
	if err != nil {
		return err
	}
	return e.transmit(cmd, payload, opts)
}

// SendPayload transmits cmd with a caller supplied payload.
func (e *Engine) SendPayload(cmd Command, payload []byte, opts SendOptions) error {
	if opts.Delay > 0 {
		e.Clock.Sleep(opts.Delay)
	}
	return e.transmit(cmd, payload, opts)
}

func (e *Engine) transmit(cmd Command, payload []byte, opts SendOptions) error {
	b, err := frame.Build(byte(cmd), payload)
	if err != nil {
		return err
	}
	attempts := opts.Attempts
	if attempts <= 0 || opts.Timeout <= 0 {
		e.ack = false
		return e.write(cmd, b)
	}
	poller := Poller{Clock: e.Clock}
	for i := 0; i < attempts; i++ {
		e.ack = false
		if err := e.write(cmd, b); err != nil {
			return err
		}
		if poller.Poll(opts.Timeout, e.pollAck) {
			return nil
		}
		glog.V(2).Infof("%s: no ack in %v (attempt %d/%d)", cmd, opts.Timeout, i+1, attempts)
	}
	e.Metrics.timeout(cmd)
	return &TimeoutError{Cmd: cmd, Attempts: attempts}
}

func (e *Engine) write(cmd Command, b []byte) error {
	glog.V(3).Infof("TX %s % x", cmd, b)
	e.Metrics.sent(cmd)
	return e.Transport.Send(b)
}

func (e *Engine) pollAck() bool {
	e.Poll()
	return e.ack
}

// Poll drains received bytes and dispatches complete frames.
func (e *Engine) Poll() {
	now := e.Clock.Time()
	received := false
	for {
		b, ok := e.Transport.TryReceive()
		if !ok {
			break
		}
		received = true
		e.apply(e.parser.Parse(b))
	}
	if received {
		e.lastByte = now
	} else if e.parser.State() == frame.StateReceiving && now.Sub(e.lastByte) >= FrameTimeout {
		e.apply(e.parser.Timeout())
	}
}

func (e *Engine) apply(pr frame.ParseResult) {
	if pr.Err != nil {
		glog.V(2).Infof("RX rejected: %v", pr.Err)
		e.Metrics.frameError(pr.Err)
	}
	for _, f := range pr.Frames {
		e.HandleFrame(f)
	}
}

// HandleFrame dispatches a valid frame received from the radio.
func (e *Engine) HandleFrame(f *frame.Frame) {
	glog.V(3).Infof("RX %s", f)
	e.Metrics.received()
	e.ack = true
	e.missed = 0
	if f.IsAck() {
		return
	}
	flags := &e.Device.Flags
	switch Command(f.Cmd) {
	case CmdHandshake:
		flags.HandshakeOK = true
	case CmdSleepRequest:
		flags.SleepRequested = true
	case CmdNewAdvertise:
		flags.PairingComplete = true
	case CmdStatusSync:
		e.handleStatusSync(f.Payload)
		flags.StatusSyncOK = true
	case CmdReadData:
		e.handleReadData(f.Payload)
	}
}

// status-sync reply: [link mode, conn state, indicator, charge, battery]
func (e *Engine) handleStatusSync(p []byte) {
	if len(p) < 5 {
		return
	}
	st := &e.Device.State
	if device.LinkMode(p[0]) != st.LinkMode {
		if st.ConnState != device.ConnInvalid {
			if e.mismatches++; e.mismatches >= MismatchLimit {
				e.mismatches = 0
				e.Device.Flags.ResendRequested = true
				e.Metrics.resend()
				glog.Warningf("radio reports link %v while %v is selected, resend link", device.LinkMode(p[0]), st.LinkMode)
			}
		}
		return
	}
	e.mismatches = 0
	if st.ConnState != device.ConnState(p[1]) {
		glog.V(1).Infof("radio %v: %v -> %v", st.LinkMode, st.ConnState, device.ConnState(p[1]))
	}
	st.ConnState = device.ConnState(p[1])
	if st.ConnState == device.ConnConnected && p[2]&0xf8 == 0 {
		st.Indicator = p[2]
	}
	st.Charge = p[3]
	if p[4] <= 100 {
		st.Battery = p[4]
	}
	if st.IsPowered() {
		st.Battery = 100
	}
}

// read-data reply: the configuration table, link mode at 4,
// radio channel at 5 and Bluetooth channel at 6.
func (e *Engine) handleReadData(p []byte) {
	st := &e.Device.State
	copy(st.Config[:], p)
	if len(p) > 4 && device.LinkMode(p[4]).IsValid() {
		st.LinkMode = device.LinkMode(p[4])
	}
	if len(p) > 5 && device.LinkMode(p[5]) < device.LinkWired {
		st.RadioChannel = device.LinkMode(p[5])
	}
	if len(p) > 6 && device.LinkMode(p[6]).IsBluetooth() {
		st.BLEChannel = device.LinkMode(p[6])
	}
	e.Device.Flags.ReadDataOK = true
}

// MissHeartbeat records a supervisor tick and returns the number of
// ticks since the last frame received.
func (e *Engine) MissHeartbeat() uint8 {
	if e.missed < 0xff {
		e.missed++
	}
	return e.missed
}

// ResetHeartbeat clears the missed heartbeat counter.
func (e *Engine) ResetHeartbeat() {
	e.missed = 0
}

// Init brings up the radio: handshake, read the configuration, sync the
// status, then write the battery curve and names. Each of the first three
// steps is tried up to 10 times. It returns false if any of them failed.
func (e *Engine) Init() bool {
	steps := []struct {
		cmd  Command
		done *bool
	}{
		{CmdHandshake, &e.Device.Flags.HandshakeOK},
		{CmdReadData, &e.Device.Flags.ReadDataOK},
		{CmdStatusSync, &e.Device.Flags.StatusSyncOK},
	}
	ok := true
	for _, step := range steps {
		*step.done = false
		for i := 0; i < initAttempts && !*step.done; i++ {
			if err := e.Send(step.cmd, SendOptions{Delay: initDelay}); err != nil {
				glog.Errorf("init %s: %v", step.cmd, err)
			}
			e.Clock.Sleep(initSettle)
			e.Poll()
		}
		if !*step.done {
			glog.Warningf("init %s: no reply from radio", step.cmd)
			ok = false
		}
	}
	if err := e.Send(CmdBatteryCurve, FireAndForget); err != nil {
		glog.Errorf("write battery curve: %v", err)
	}
	e.Clock.Sleep(curveSettle)
	nameOpts := SendOptions{Attempts: 1, Timeout: 10 * time.Millisecond, Delay: initDelay}
	if err := e.Send(CmdSetName, nameOpts); err != nil {
		glog.Warningf("set device name: %v", err)
	}
	if err := e.Send(CmdSetDongleName, nameOpts); err != nil {
		glog.Warningf("set dongle name: %v", err)
	}
	glog.Infof("radio ready: link %v channel %v ble %v", e.Device.State.LinkMode, e.Device.State.RadioChannel, e.Device.State.BLEChannel)
	return ok
}

// SelectLink switches the link mode. The supervisor sends the selection
// to the radio on its next tick.
func (e *Engine) SelectLink(mode device.LinkMode) {
	if !mode.IsValid() {
		return
	}
	e.Device.State.LinkMode = mode
	e.Device.Show.ShownFor = 0
	if !mode.IsWired() {
		e.Device.Flags.ResendRequested = true
	}
}

// StartPairing starts advertising for a new host on the current radio link.
func (e *Engine) StartPairing() error {
	if e.Device.State.LinkMode.IsWired() {
		return ErrWired
	}
	e.Device.Show.ShownFor = 0
	return e.Send(CmdNewAdvertise, LinkOptions)
}

// ClearPairings forgets all paired hosts.
func (e *Engine) ClearPairings() error {
	return e.Send(CmdClearDevice, LinkOptions)
}

// EnterBootloader reboots the radio into its bootloader.
func (e *Engine) EnterBootloader() error {
	return e.Send(CmdBootloader, LinkOptions)
}

// RequestSleep asks the radio to sleep.
func (e *Engine) RequestSleep() error {
	return e.Send(CmdSleep, LinkOptions)
}
