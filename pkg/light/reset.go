package light

import (
	"time"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// Factory reset feedback.
const (
	ResetBlinks   = 3
	ResetBlinkOn  = 200 * time.Millisecond
	ResetBlinkOff = 200 * time.Millisecond
)

// ResetColor is shown on all LEDs while blinking after a factory reset.
var ResetColor = Color{0x10, 0x10, 0x10}

// ShowReset blinks all LEDs directly on the driver, bypassing the
// Flusher. It blocks for the whole sequence and leaves the buffer dark.
func ShowReset(buf *Buffer, drv Driver, clock fx.Clock) error {
	for i := 0; i < ResetBlinks; i++ {
		for n := range buf {
			buf[n] = ResetColor
		}
		if err := drv.Show(buf); err != nil {
			return err
		}
		clock.Sleep(ResetBlinkOn)
		buf.Clear()
		if err := drv.Show(buf); err != nil {
			return err
		}
		clock.Sleep(ResetBlinkOff)
	}
	return nil
}
