package hw

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// Init loads the periph host drivers once.
func Init() error {
	hostOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			hostErr = fmt.Errorf("periph host init: %w", err)
			return
		}
		glog.V(1).Infof("periph drivers loaded: %d", len(state.Loaded))
	})
	return hostErr
}

// Pin is a GPIO output implementing rf.Line.
type Pin struct {
	gpio.PinIO
	ActiveLow bool
}

// OpenPin looks up a GPIO by name, e.g. "GPIO17".
func OpenPin(name string, activeLow bool) (*Pin, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown GPIO %q", name)
	}
	return &Pin{PinIO: p, ActiveLow: activeLow}, nil
}

// Set drives the line.
func (p *Pin) Set(high bool) error {
	return p.Out(gpio.Level(high != p.ActiveLow))
}
