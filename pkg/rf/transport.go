package rf

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// Transport is the byte link to the radio.
type Transport interface {
	// Send transmits a whole frame.
	Send([]byte) error
	// TryReceive returns the next received byte without blocking.
	TryReceive() (byte, bool)
}

// Line is a digital output, e.g. a GPIO pin.
type Line interface {
	Set(high bool) error
}

// StreamTransport implements Transport over an io.ReadWriter, e.g. a
// serial port. Bytes are read in the background by Run.
type StreamTransport struct {
	ReadWriter io.ReadWriter
	// Wake, if set, is pulled low around each transmission to wake the radio.
	Wake  Line
	Clock fx.Clock

	rxCh chan byte
	lock sync.Mutex
}

// DefaultRxBuffer is the number of bytes buffered before Run blocks.
const DefaultRxBuffer = 1024

// NewStreamTransport creates a StreamTransport.
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	return &StreamTransport{
		ReadWriter: rw,
		Clock:      fx.SystemClock,
		rxCh:       make(chan byte, DefaultRxBuffer),
	}
}

// Send implements Transport.
func (t *StreamTransport) Send(b []byte) (err error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.Wake != nil {
		if err = t.Wake.Set(false); err != nil {
			return err
		}
		t.Clock.Sleep(50 * time.Microsecond)
		defer func() {
			if e := t.Wake.Set(true); e != nil && err == nil {
				err = e
			}
		}()
	}
	if _, err = t.ReadWriter.Write(b); err != nil {
		return err
	}
	if t.Wake != nil {
		// keep the radio awake until the bytes are on the wire
		t.Clock.Sleep(time.Duration(50+30*len(b)) * time.Microsecond)
	}
	return nil
}

// TryReceive implements Transport.
func (t *StreamTransport) TryReceive() (byte, bool) {
	select {
	case b := <-t.rxCh:
		return b, true
	default:
		return 0, false
	}
}

// Run implements Runnable.
func (t *StreamTransport) Run(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		n, err := t.ReadWriter.Read(buf)
		for _, b := range buf[:n] {
			select {
			case t.rxCh <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			if err == io.EOF {
				glog.Warning("radio stream closed")
			}
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
