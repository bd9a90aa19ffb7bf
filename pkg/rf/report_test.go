package rf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
)

func TestReportGating(t *testing.T) {
	c := newEngineTestCtx(t).silent()
	r := NewReportSender(c.engine)

	assert.Equal(t, ErrNotConnected, r.Consumer(0xE9))
	c.dev.State.LinkMode = device.LinkWired
	assert.Equal(t, ErrWired, r.Consumer(0xE9))
	assert.Empty(t, c.radio.sent)

	c.dev.State.LinkMode = device.LinkBT1
	c.dev.State.ConnState = device.ConnConnected
	require.NoError(t, r.Consumer(0x00E9))
	require.NoError(t, r.System(0x0181))
	require.NoError(t, r.Mouse(1, -1, 2, 0, 0))
	assert.Equal(t, []Command{CmdReportConsumer, CmdReportSystem, CmdReportMouse}, c.radio.sentCmds())
	assert.Equal(t, []byte{0xE9, 0x00}, c.radio.sent[0].Payload)
	assert.Equal(t, []byte{0x81, 0x01}, c.radio.sent[1].Payload)
	assert.Equal(t, []byte{1, 0xff, 2, 0, 0}, c.radio.sent[2].Payload)
}

func TestReportReleaseOnSwitch(t *testing.T) {
	c := newEngineTestCtx(t).silent()
	c.dev.State.ConnState = device.ConnConnected
	r := NewReportSender(c.engine)
	r.SwitchHost(HostRadio)
	require.True(t, r.Active())

	require.NoError(t, r.Keyboard(0x02, [6]byte{0x04}))
	assert.Equal(t, []byte{0x02, 0, 0x04, 0, 0, 0, 0, 0}, c.radio.sent[0].Payload)

	c.radio.clear()
	r.SwitchHost(HostWired)
	assert.False(t, r.Active())
	assert.Equal(t, []Command{CmdReportKeyboard}, c.radio.sentCmds())
	assert.Equal(t, make([]byte, 8), c.radio.sent[0].Payload)

	c.radio.clear()
	r.SwitchHost(HostNone)
	assert.Empty(t, c.radio.sent)
}

func keyBits(codes ...byte) (bits [NKROBytes]byte) {
	for _, code := range codes {
		bits[1+code/8] |= 1 << (code % 8)
	}
	return
}

func TestReportNKROFolding(t *testing.T) {
	c := newEngineTestCtx(t).silent()
	c.dev.State.ConnState = device.ConnConnected
	r := NewReportSender(c.engine)
	r.SwitchHost(HostRadio)

	bits := keyBits(4, 5)
	bits[0] = 0x01
	require.NoError(t, r.NKRO(bits))
	require.Equal(t, []Command{CmdReportKeyboard}, c.radio.sentCmds())
	assert.Equal(t, []byte{0x01, 0, 4, 5, 0, 0, 0, 0}, c.radio.sent[0].Payload)

	// the 7th key overflows into the bitmap report
	c.radio.clear()
	bits = keyBits(4, 5, 6, 7, 8, 9, 40)
	require.NoError(t, r.NKRO(bits))
	require.Equal(t, []Command{CmdReportNKRO, CmdReportKeyboard}, c.radio.sentCmds())
	assert.Equal(t, keyBits(40), [NKROBytes]byte(c.radio.sent[0].Payload))
	assert.Equal(t, []byte{0, 0, 4, 5, 6, 7, 8, 9}, c.radio.sent[1].Payload)

	// releasing a folded key frees its slot
	c.radio.clear()
	bits = keyBits(5, 6, 7, 8, 9, 40)
	require.NoError(t, r.NKRO(bits))
	require.Equal(t, []Command{CmdReportKeyboard}, c.radio.sentCmds())
	assert.Equal(t, []byte{0, 0, 0, 5, 6, 7, 8, 9}, c.radio.sent[0].Payload)

	// releasing the overflowed key clears its bit
	c.radio.clear()
	bits = keyBits(5, 6, 7, 8, 9)
	require.NoError(t, r.NKRO(bits))
	require.Equal(t, []Command{CmdReportNKRO}, c.radio.sentCmds())
	assert.Equal(t, make([]byte, NKROBytes), c.radio.sent[0].Payload)
}

func TestReportKeepAlive(t *testing.T) {
	c := newEngineTestCtx(t).silent()
	c.dev.State.ConnState = device.ConnConnected
	r := NewReportSender(c.engine)
	r.SwitchHost(HostRadio)
	loop := fx.NewLoop()
	loop.Clock = c.clock
	loop.AddController(fx.PrLvControl, r)
	step := func(d time.Duration) {
		c.clock.Advance(d)
		loop.Step(context.Background(), c.clock.Time())
	}

	require.NoError(t, r.NKRO(keyBits(1, 2, 3, 4, 5, 6, 7)))
	c.radio.clear()
	step(KeepAlivePeriod + time.Millisecond)
	assert.Equal(t, []Command{CmdReportKeyboard, CmdReportNKRO}, c.radio.sentCmds())
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 4, 5, 6}, c.radio.sent[0].Payload)

	c.radio.clear()
	step(100 * time.Millisecond)
	assert.Empty(t, c.radio.sent)

	for i := 0; i < 10; i++ {
		step(KeepAlivePeriod + time.Millisecond)
	}
	c.radio.clear()
	step(KeepAlivePeriod + time.Millisecond)
	assert.Empty(t, c.radio.sent)

	r.SwitchHost(HostWired)
	c.radio.clear()
	require.NoError(t, r.Keyboard(0, [6]byte{}))
	step(KeepAlivePeriod + time.Millisecond)
	assert.Equal(t, []Command{CmdReportKeyboard}, c.radio.sentCmds())
}
