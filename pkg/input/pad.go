package input

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/input/js"
)

// RetryInterval is the wait before looking for the gamepad again.
const RetryInterval = time.Second

// Pad posts the messages bound to gamepad events into the loop.
type Pad struct {
	// DeviceIndex selects /dev/input/jsN, -1 for the first found.
	DeviceIndex int
	Keymap      *Keymap
	// Open is replaced in tests.
	Open func(index int) (js.Device, error)
}

// NewPad creates a Pad with the default keymap.
func NewPad(index int) *Pad {
	return &Pad{DeviceIndex: index, Keymap: &DefaultKeymap}
}

// AddToLoop implements LoopAdder.
func (p *Pad) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("gamepad", p))
}

func (p *Pad) open() (js.Device, error) {
	if p.Open != nil {
		return p.Open(p.DeviceIndex)
	}
	if p.DeviceIndex >= 0 {
		return js.Open(p.DeviceIndex)
	}
	return js.Detect()
}

// Run implements Runnable. A lost gamepad is reopened after RetryInterval.
func (p *Pad) Run(ctx context.Context) error {
	ctl := fx.LoopCtlFrom(ctx)
	for {
		dev, err := p.open()
		switch {
		case err == js.ErrUnsupported:
			glog.Warning(err)
			return nil
		case err != nil:
			glog.V(1).Infof("open gamepad: %v", err)
		case dev != nil:
			glog.Infof("gamepad %d %q opened", dev.Index(), dev.Name())
			err = fx.RunWithContextCloser(ctx, dev, func() error {
				return p.read(dev, ctl)
			})
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Warningf("gamepad %d lost: %v", dev.Index(), err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RetryInterval):
		}
	}
}

func (p *Pad) read(dev js.Device, ctl fx.LoopControl) error {
	keymap := p.Keymap
	if keymap == nil {
		keymap = &DefaultKeymap
	}
	m := newMapper(keymap)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			return err
		}
		glog.V(3).Infof("gamepad %v", ev)
		if msg := m.Map(ev); msg != nil {
			ctl.PostMessage(msg)
			ctl.TriggerNext()
		}
	}
}
