package light

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// Driver pushes the colors to the LEDs. It must not retain the buffer.
type Driver interface {
	Show(*Buffer) error
}

// DriverFunc is the func form of Driver.
type DriverFunc func(*Buffer) error

// Show implements Driver.
func (f DriverFunc) Show(b *Buffer) error {
	return f(b)
}

// FlushInterval is the minimum interval between two flushes.
const FlushInterval = 50 * time.Millisecond

// Flusher pushes the buffer to the driver, at most once per Interval.
type Flusher struct {
	Buffer   *Buffer
	Driver   Driver
	Interval time.Duration

	last time.Time
}

// NewFlusher creates a Flusher.
func NewFlusher(buf *Buffer, drv Driver) *Flusher {
	return &Flusher{Buffer: buf, Driver: drv, Interval: FlushInterval}
}

// Control implements Controller.
func (f *Flusher) Control(cc fx.ControlContext) error {
	_, err := f.Flush(cc.Time())
	return err
}

// Flush pushes the buffer if the interval has passed since the last
// flush. It returns whether the driver was invoked.
func (f *Flusher) Flush(now time.Time) (bool, error) {
	interval := f.Interval
	if interval <= 0 {
		interval = FlushInterval
	}
	if !f.last.IsZero() && now.Sub(f.last) <= interval {
		return false, nil
	}
	f.last = now
	if err := f.Driver.Show(f.Buffer); err != nil {
		glog.V(1).Infof("LED flush: %v", err)
		return true, err
	}
	return true, nil
}

// MultiDriver shows the buffer on all drivers.
type MultiDriver []Driver

// Show implements Driver.
func (d MultiDriver) Show(b *Buffer) error {
	var errs fx.AggregatedError
	for _, drv := range d {
		errs.Add(drv.Show(b))
	}
	return errs.Aggregate()
}
