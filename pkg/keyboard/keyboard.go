// Package keyboard assembles the radio link, the light animations and
// the indicators into one control loop.
package keyboard

import (
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/light/overlay"
	"github.com/robotalks/rflight/pkg/remote"
	"github.com/robotalks/rflight/pkg/rf"
	"github.com/robotalks/rflight/pkg/settings"
)

// SaveDelay is how long settings stay unchanged before they are saved.
const SaveDelay = 500 * time.Millisecond

// Options are the collaborators of a Keyboard.
type Options struct {
	Transport rf.Transport
	// Reset is the radio reset line, optional.
	Reset rf.Line
	// Driver shows the LEDs.
	Driver light.Driver
	Store  settings.Store
	Clock  fx.Clock
	// Metrics is optional.
	Metrics *rf.Metrics
	Overlay overlay.Options

	DeviceName string
	DongleName string
}

// Keyboard is the device core. All fields are owned by the loop
// goroutine once added to a loop.
type Keyboard struct {
	Device     *device.Device
	Engine     *rf.Engine
	Supervisor *rf.Supervisor
	Reports    *rf.ReportSender
	Buffer     light.Buffer
	Side       light.Context
	Logo       light.Context
	SideAnim   *light.Animator
	LogoAnim   *light.Animator
	Overlays   *overlay.Overlays
	Flusher    *light.Flusher
	Store      settings.Store
	Clock      fx.Clock

	// Sleeping keeps the LEDs dark after the radio asked to sleep.
	Sleeping bool

	initialized bool
	dirty       bool
	changedAt   time.Time
}

// New creates a Keyboard in its power-on state.
func New(opts Options) *Keyboard {
	clock := opts.Clock
	if clock == nil {
		clock = fx.SystemClock
	}
	store := opts.Store
	if store == nil {
		store = &settings.MemoryStore{}
	}
	k := &Keyboard{
		Device: device.New(),
		Side:   light.DefaultContext(),
		Logo:   light.DefaultContext(),
		Store:  store,
		Clock:  clock,
	}
	k.Engine = rf.NewEngine(k.Device, opts.Transport, clock)
	k.Engine.Metrics = opts.Metrics
	k.Engine.DeviceName = opts.DeviceName
	k.Engine.DongleName = opts.DongleName
	k.Reports = rf.NewReportSender(k.Engine)
	k.Supervisor = rf.NewSupervisor(k.Engine, opts.Reset, k.Reports)
	k.SideAnim = light.NewAnimator(light.SideDomain, &k.Side, &k.Buffer)
	k.LogoAnim = light.NewAnimator(light.LogoDomain, &k.Logo, &k.Buffer)
	k.Overlays = overlay.New(k.Device, &k.Buffer, &k.Side, &k.Logo, opts.Overlay)
	drv := opts.Driver
	if drv == nil {
		drv = light.DriverFunc(func(*light.Buffer) error { return nil })
	}
	k.Flusher = light.NewFlusher(&k.Buffer, drv)
	return k
}

// Restore loads the saved settings. Without saved settings the
// defaults are kept.
func (k *Keyboard) Restore() error {
	rec, err := k.Store.Load()
	if errors.Is(err, settings.ErrNotFound) {
		glog.Info("no saved settings, using defaults")
		return nil
	}
	if err != nil {
		return err
	}
	if !rec.Initialized() {
		glog.Warning("saved settings not initialized, using defaults")
		return nil
	}
	rec.Apply(k.Device, &k.Side, &k.Logo)
	glog.Infof("settings restored: %v", rec)
	return nil
}

// AddToLoop implements LoopAdder.
func (k *Keyboard) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, fx.ControlFunc(k.initRadio))
	k.Engine.AddToLoop(loop)
	k.Supervisor.AddToLoop(loop)
	loop.AddController(fx.PrLvControl, k, k.Reports)
	loop.AddController(fx.PrLvRender, k.SideAnim, k.Overlays, k.LogoAnim, fx.ControlFunc(k.blank))
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(k.persist), k.Flusher)
}

// initRadio brings up the radio in the first iteration, once the
// transport reader runs.
func (k *Keyboard) initRadio(cc fx.ControlContext) error {
	if k.initialized {
		return nil
	}
	k.initialized = true
	if !k.Engine.Init() {
		glog.Warning("radio init incomplete, the supervisor keeps trying")
	}
	return nil
}

// Control implements Controller. It handles user and remote commands
// and the requests raised by the radio.
func (k *Keyboard) Control(cc fx.ControlContext) error {
	flags := &k.Device.Flags
	if flags.SleepRequested {
		flags.SleepRequested = false
		if k.Device.Switches.SleepEnabled && !k.Sleeping {
			glog.Info("radio requested sleep")
			k.Sleeping = true
		}
	}
	if flags.PairingComplete {
		flags.PairingComplete = false
		glog.Infof("pairing complete on %v", k.Device.State.LinkMode)
		k.changed(cc.Time())
	}
	var errs fx.AggregatedError
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		var err error
		switch msg := mctx.CurrentMessage().(type) {
		case *light.ControlEvent:
			k.applyLight(cc, msg)
		case *remote.LightControl:
			var ev *light.ControlEvent
			if ev, err = msg.Event(); err == nil {
				k.applyLight(cc, ev)
			}
		case *remote.LinkSelect:
			var mode device.LinkMode
			if mode, err = msg.Link(); err == nil {
				k.Engine.SelectLink(mode)
				k.changed(cc.Time())
			}
		case *remote.PairStart:
			err = k.Engine.StartPairing()
		case *remote.SwitchSet:
			k.setSwitch(cc, msg)
		case *remote.DeviceOp:
			err = k.deviceOp(cc, remote.Op(msg.Op))
		default:
			return
		}
		mctx.MessageTaken()
		k.Sleeping = false
		if err != nil {
			glog.Warningf("%v: %v", mctx.CurrentMessage(), err)
		}
		errs.Add(err)
	}))
	return errs.Aggregate()
}

func (k *Keyboard) context(t light.Target) *light.Context {
	if t == light.TargetLogo {
		return &k.Logo
	}
	return &k.Side
}

func (k *Keyboard) applyLight(cc fx.ControlContext, ev *light.ControlEvent) {
	ctx := k.context(ev.Target)
	if k.Device.Switches.LowBattery && ev.Action == light.ActionBrighter && ctx.Light >= overlay.LowBatteryLight {
		glog.V(1).Info("low battery, brightness capped")
		return
	}
	if ctx.Apply(ev.Action, ev.Value) {
		glog.V(1).Infof("light %s: %s l%d s%d", ev, ctx.Mode, ctx.Light, ctx.Speed)
		k.changed(cc.Time())
	}
}

func (k *Keyboard) setSwitch(cc fx.ControlContext, msg *remote.SwitchSet) {
	if !msg.Apply(k.Device) {
		return
	}
	switch remote.Switch(msg.Switch) {
	case remote.SwitchMacOS:
		k.Overlays.System.Trigger()
	case remote.SwitchSleep:
		k.Overlays.Sleep.Trigger()
	}
	glog.Infof("switch %v: %v", remote.Switch(msg.Switch), msg.On)
	k.changed(cc.Time())
}

func (k *Keyboard) deviceOp(cc fx.ControlContext, op remote.Op) error {
	glog.Infof("device operation %v", op)
	switch op {
	case remote.OpFactoryReset:
		return k.FactoryReset()
	case remote.OpClearPairings:
		return k.Engine.ClearPairings()
	case remote.OpBootloader:
		return k.Engine.EnterBootloader()
	case remote.OpSleep:
		return k.Engine.RequestSleep()
	}
	return errors.New("unknown operation")
}

// FactoryReset restores and saves the default settings, keeping the
// selected link, then blinks all LEDs.
func (k *Keyboard) FactoryReset() error {
	rec := settings.Defaults()
	rec.LinkMode = uint32(k.Device.State.LinkMode)
	rec.Apply(k.Device, &k.Side, &k.Logo)
	k.Device.Switches.LowBattery = false
	k.dirty = false
	var errs fx.AggregatedError
	errs.Add(k.Store.Save(rec))
	errs.Add(light.ShowReset(&k.Buffer, k.Flusher.Driver, k.Clock))
	return errs.Aggregate()
}

func (k *Keyboard) changed(now time.Time) {
	k.dirty, k.changedAt = true, now
}

// persist saves the settings once they stop changing for SaveDelay.
func (k *Keyboard) persist(cc fx.ControlContext) error {
	if !k.dirty || cc.Time().Sub(k.changedAt) < SaveDelay {
		return nil
	}
	k.dirty = false
	rec := settings.Capture(k.Device, &k.Side, &k.Logo)
	if err := k.Store.Save(rec); err != nil {
		glog.Errorf("save settings: %v", err)
		return err
	}
	return nil
}

func (k *Keyboard) blank(cc fx.ControlContext) error {
	if k.Sleeping {
		k.Buffer.Clear()
	}
	return nil
}

// Post queues a user control event, e.g. from a key press.
func Post(ctl fx.LoopControl, ev *light.ControlEvent) {
	ctl.PostMessage(ev)
	ctl.TriggerNext()
}
