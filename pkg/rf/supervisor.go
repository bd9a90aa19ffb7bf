package rf

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
)

// HostDriver selects where input reports go.
type HostDriver int

// Host drivers.
const (
	HostNone HostDriver = iota
	HostWired
	HostRadio
)

func (d HostDriver) String() string {
	switch d {
	case HostWired:
		return "wired"
	case HostRadio:
		return "radio"
	}
	return "none"
}

// HostSwitch switches the active host report driver. Implementations
// release all pressed keys on the previous driver.
type HostSwitch interface {
	SwitchHost(HostDriver)
}

const (
	// SupervisorPeriod is the interval between supervisor ticks.
	SupervisorPeriod = 200 * time.Millisecond
	// DisconnectTicks is the number of ticks disconnected before blinking.
	DisconnectTicks = 10
	// DisconnectBlinks is the number of blinks armed while disconnected.
	DisconnectBlinks = 3
	// HeartbeatLimit is the number of ticks without any frame before
	// the radio is reset.
	HeartbeatLimit = 5

	resetSettle = 100 * time.Millisecond
	resetPulse  = 50 * time.Millisecond
	resetWake   = 50 * time.Millisecond
)

// Supervisor keeps the radio link healthy. Every SupervisorPeriod it
// resets a stuck radio, resends the link selection on request, keeps the
// host driver and link indicator in line with the link state and sends
// the status-sync heartbeat.
type Supervisor struct {
	Engine *Engine
	Reset  Line
	Host   HostSwitch
	Period time.Duration

	last      time.Time
	host      HostDriver
	connected bool
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(e *Engine, reset Line, host HostSwitch) *Supervisor {
	return &Supervisor{Engine: e, Reset: reset, Host: host, Period: SupervisorPeriod}
}

// AddToLoop implements LoopAdder.
func (s *Supervisor) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvTop, fx.ControlFunc(s.keepTime))
	loop.AddController(fx.PrLvControl, s)
}

func (s *Supervisor) keepTime(cc fx.ControlContext) error {
	s.Engine.Device.Show.Advance(cc.Elapsed())
	return nil
}

// Control implements Controller.
func (s *Supervisor) Control(cc fx.ControlContext) error {
	now := cc.Time()
	period := s.Period
	if period <= 0 {
		period = SupervisorPeriod
	}
	if !s.last.IsZero() && now.Sub(s.last) < period {
		return nil
	}
	s.last = now
	return s.Tick()
}

// Tick runs one supervisor cycle.
func (s *Supervisor) Tick() error {
	e, dev := s.Engine, s.Engine.Device
	var err error
	switch {
	case dev.Flags.ResetRequested:
		dev.Flags.ResetRequested = false
		err = s.resetRadio()
	case dev.Flags.ResendRequested:
		dev.Flags.ResendRequested = false
		if !dev.State.LinkMode.IsWired() {
			if err = e.Send(CmdSetLink, LinkOptions); err != nil {
				glog.Warningf("resend link %v: %v", dev.State.LinkMode, err)
			}
		}
	}

	if dev.State.LinkMode.IsWired() {
		s.switchHost(HostWired)
		dev.Show.BlinkCount = 0
	} else {
		s.switchHost(HostRadio)
		s.trackRadio(dev)
	}

	if serr := e.Send(CmdStatusSync, StatusSyncOptions); serr != nil {
		glog.V(2).Infof("status-sync: %v", serr)
	}

	if !dev.State.LinkMode.IsWired() {
		if e.MissHeartbeat() >= HeartbeatLimit {
			e.ResetHeartbeat()
			dev.Flags.ResetRequested = true
			glog.Warning("radio silent, reset requested")
		}
	}
	return err
}

func (s *Supervisor) trackRadio(dev *device.Device) {
	show := &dev.Show
	if !dev.State.IsConnected() {
		s.connected = false
		if show.DisconnectDebounce >= DisconnectTicks {
			show.BlinkCount = DisconnectBlinks
			show.ShownFor = 0
		} else {
			show.DisconnectDebounce++
		}
		return
	}
	show.LinkingFor = 0
	show.DisconnectDebounce = 0
	show.BlinkCount = 0
	if !s.connected {
		s.connected = true
		show.ShownFor = 0
		glog.Infof("radio connected on %v", dev.State.LinkMode)
		if dev.State.LinkMode == device.LinkRF24 {
			if err := s.Engine.Send(CmdSetDongleName, NameOptions); err != nil {
				glog.Warningf("set dongle name: %v", err)
			}
		}
	}
}

func (s *Supervisor) switchHost(d HostDriver) {
	if s.host == d {
		return
	}
	glog.Infof("host driver %v -> %v", s.host, d)
	s.host = d
	if s.Host != nil {
		s.Host.SwitchHost(d)
	}
}

func (s *Supervisor) resetRadio() error {
	glog.Warning("resetting radio")
	s.Engine.Metrics.reset()
	clock := s.Engine.Clock
	clock.Sleep(resetSettle)
	if s.Reset == nil {
		return nil
	}
	if err := s.Reset.Set(false); err != nil {
		return err
	}
	clock.Sleep(resetPulse)
	if err := s.Reset.Set(true); err != nil {
		return err
	}
	clock.Sleep(resetWake)
	return nil
}
