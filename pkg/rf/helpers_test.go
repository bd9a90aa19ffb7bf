package rf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/rf/frame"
)

type fakeRadio struct {
	t     *testing.T
	sent  []*frame.Frame
	rx    []byte
	reply func(f *frame.Frame) []byte
}

func (r *fakeRadio) Send(b []byte) error {
	f, err := frame.Parse(b)
	require.NoError(r.t, err)
	require.Equal(r.t, frame.FlagNeedAck, f.Flags)
	r.sent = append(r.sent, f)
	if r.reply != nil {
		r.rx = append(r.rx, r.reply(f)...)
	}
	return nil
}

func (r *fakeRadio) TryReceive() (byte, bool) {
	if len(r.rx) == 0 {
		return 0, false
	}
	b := r.rx[0]
	r.rx = r.rx[1:]
	return b, true
}

func (r *fakeRadio) inject(b []byte) {
	r.rx = append(r.rx, b...)
}

func (r *fakeRadio) sentCmds() []Command {
	cmds := make([]Command, len(r.sent))
	for n, f := range r.sent {
		cmds[n] = Command(f.Cmd)
	}
	return cmds
}

func (r *fakeRadio) clear() {
	r.sent = nil
}

func mustFrame(t *testing.T, cmd Command, payload ...byte) []byte {
	b, err := frame.Build(byte(cmd), payload)
	require.NoError(t, err)
	return b
}

func statusFrame(t *testing.T, mode device.LinkMode, state device.ConnState, ind, charge, battery byte) []byte {
	return mustFrame(t, CmdStatusSync, byte(mode), byte(state), ind, charge, battery)
}

type engineTestCtx struct {
	t      *testing.T
	clock  *fx.ManualClock
	radio  *fakeRadio
	dev    *device.Device
	engine *Engine
}

var testStart = time.Unix(1000, 0)

func newEngineTestCtx(t *testing.T) *engineTestCtx {
	c := &engineTestCtx{
		t:     t,
		clock: fx.NewManualClock(testStart),
		radio: &fakeRadio{t: t},
		dev:   device.New(),
	}
	c.engine = NewEngine(c.dev, c.radio, c.clock)
	return c
}

// replyStatus makes the radio answer status-sync with the given state.
func (c *engineTestCtx) replyStatus(mode device.LinkMode, state device.ConnState, battery byte) *engineTestCtx {
	c.radio.reply = func(f *frame.Frame) []byte {
		switch Command(f.Cmd) {
		case CmdStatusSync:
			return statusFrame(c.t, mode, state, 0, 0, battery)
		default:
			return []byte{frame.Header, f.Cmd, frame.FlagAck}
		}
	}
	return c
}

func (c *engineTestCtx) silent() *engineTestCtx {
	c.radio.reply = nil
	return c
}
