package rf

import (
	"encoding/binary"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// NKROBytes is the size of the bitmap keyboard report.
const NKROBytes = 16

// Report keep-alive timing.
const (
	KeepAlivePeriod = 300 * time.Millisecond
	KeepAliveIdle   = 2 * time.Second
)

// ReportSender is the radio host driver forwarding input reports to the
// radio. Reports are only sent while the radio link is up.
//
// Bitmap reports are folded into the 6-key report. Only keys not
// fitting there go out in the bitmap report.
type ReportSender struct {
	Engine *Engine

	active   bool
	keyboard [8]byte
	bits     [NKROBytes]byte
	overflow [NKROBytes]byte
	// bitActive is set once a bitmap report is sent, and cleared
	// after KeepAliveIdle without input.
	bitActive bool
	inputAt   time.Time
	aliveAt   time.Time
}

// NewReportSender creates a ReportSender.
func NewReportSender(e *Engine) *ReportSender {
	return &ReportSender{Engine: e}
}

// SwitchHost implements HostSwitch. Pressed keys are released on
// the radio before it's deactivated.
func (r *ReportSender) SwitchHost(d HostDriver) {
	if r.active && d != HostRadio {
		r.ReleaseAll()
	}
	r.active = d == HostRadio
}

// Active tells if the radio is the selected host driver.
func (r *ReportSender) Active() bool {
	return r.active
}

func (r *ReportSender) send(cmd Command, payload []byte) error {
	st := &r.Engine.Device.State
	if st.LinkMode.IsWired() {
		return ErrWired
	}
	if !st.IsConnected() {
		return ErrNotConnected
	}
	return r.Engine.SendPayload(cmd, payload, FireAndForget)
}

// Keyboard sends a boot keyboard report.
func (r *ReportSender) Keyboard(mods byte, keys [6]byte) error {
	r.touch()
	r.keyboard[0], r.keyboard[1] = mods, 0
	copy(r.keyboard[2:], keys[:])
	return r.send(CmdReportKeyboard, r.keyboard[:])
}

// NKRO sends a bitmap keyboard report. bits[0] holds the modifiers and
// bit j of bits[i] is key code (i-1)*8+j.
func (r *ReportSender) NKRO(bits [NKROBytes]byte) error {
	r.touch()
	prev := r.bits
	r.bits = bits
	var byteSend, bitSend bool
	if prev[0] != bits[0] {
		r.keyboard[0] = bits[0]
		byteSend = true
	}
	for i := 1; i < NKROBytes; i++ {
		changed := prev[i] ^ bits[i]
		for j := uint(0); j < 8; j++ {
			mask := byte(1) << j
			if changed&mask == 0 {
				continue
			}
			code := byte((i-1)*8) + byte(j)
			if bits[i]&mask != 0 {
				if r.place(code, 0) {
					byteSend = true
				} else {
					r.overflow[i] |= mask
					bitSend = true
				}
			} else {
				if r.place(0, code) {
					byteSend = true
				} else {
					r.overflow[i] &^= mask
					bitSend = true
				}
			}
		}
	}
	var err error
	if bitSend {
		r.bitActive = true
		err = r.send(CmdReportNKRO, r.overflow[:])
	}
	if byteSend {
		if e := r.send(CmdReportKeyboard, r.keyboard[:]); err == nil {
			err = e
		}
	}
	return err
}

// place replaces the first key slot holding old with code.
func (r *ReportSender) place(code, old byte) bool {
	for n := 2; n < len(r.keyboard); n++ {
		if r.keyboard[n] == old {
			r.keyboard[n] = code
			return true
		}
	}
	return false
}

func (r *ReportSender) touch() {
	r.inputAt = r.Engine.Clock.Time()
}

// Control implements Controller. While active, the keyboard reports
// are resent every KeepAlivePeriod until input stops for KeepAliveIdle.
func (r *ReportSender) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if !r.active || now.Sub(r.aliveAt) <= KeepAlivePeriod {
		return nil
	}
	r.aliveAt = now
	if now.Sub(r.inputAt) > KeepAliveIdle {
		r.bitActive = false
		return nil
	}
	if err := r.send(CmdReportKeyboard, r.keyboard[:]); err != nil {
		glog.V(1).Infof("keep-alive keyboard: %v", err)
		return nil
	}
	if r.bitActive {
		r.Engine.Clock.Sleep(200 * time.Microsecond)
		if err := r.send(CmdReportNKRO, r.overflow[:]); err != nil {
			glog.V(1).Infof("keep-alive nkro: %v", err)
		}
	}
	return nil
}

// Consumer sends a consumer control usage.
func (r *ReportSender) Consumer(usage uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], usage)
	return r.send(CmdReportConsumer, b[:])
}

// System sends a system control usage.
func (r *ReportSender) System(usage uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], usage)
	return r.send(CmdReportSystem, b[:])
}

// Mouse sends a mouse report.
func (r *ReportSender) Mouse(buttons byte, x, y, v, h int8) error {
	return r.send(CmdReportMouse, []byte{buttons, byte(x), byte(y), byte(v), byte(h)})
}

// ReleaseAll sends empty reports for everything pressed.
func (r *ReportSender) ReleaseAll() {
	r.bits = [NKROBytes]byte{}
	if r.overflow != [NKROBytes]byte{} {
		r.overflow = [NKROBytes]byte{}
		if err := r.send(CmdReportNKRO, r.overflow[:]); err != nil {
			glog.V(1).Infof("release nkro: %v", err)
		}
	}
	if r.keyboard != [8]byte{} {
		r.keyboard = [8]byte{}
		if err := r.send(CmdReportKeyboard, r.keyboard[:]); err != nil {
			glog.V(1).Infof("release keyboard: %v", err)
		}
	}
	r.bitActive = false
}
