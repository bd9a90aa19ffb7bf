package input

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/input/js"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/remote"
)

func button(n uint8, v int16) js.Event { return js.Event{Kind: js.Button, Number: n, Value: v} }
func axis(n uint8, v int16) js.Event   { return js.Event{Kind: js.Axis, Number: n, Value: v} }

func TestMapButtons(t *testing.T) {
	m := newMapper(&DefaultKeymap)
	assert.Nil(t, m.Map(js.Event{Kind: js.Button | js.Init, Number: 0, Value: 1}))
	assert.Nil(t, m.Map(button(0, 0)))
	assert.Nil(t, m.Map(button(42, 1)))
	assert.Equal(t, &light.ControlEvent{Target: light.TargetLogo, Action: light.ActionBrighter}, m.Map(button(2, 1)))
	assert.Equal(t, &remote.PairStart{}, m.Map(button(8, 1)))
	// each press creates a new message
	assert.NotSame(t, m.Map(button(1, 1)), m.Map(button(1, 1)))
}

func TestMapAxes(t *testing.T) {
	m := newMapper(&DefaultKeymap)
	next := &light.ControlEvent{Target: light.TargetSide, Action: light.ActionColourNext}
	prev := &light.ControlEvent{Target: light.TargetSide, Action: light.ActionColourPrev}
	assert.Equal(t, next, m.Map(axis(6, 32767)))
	assert.Nil(t, m.Map(axis(6, 30000)), "held")
	assert.Nil(t, m.Map(axis(6, 0)))
	assert.Equal(t, next, m.Map(axis(6, 20000)))
	assert.Equal(t, prev, m.Map(axis(6, -32767)))
	assert.Nil(t, m.Map(axis(6, -AxisThreshold+1)))
	assert.Nil(t, m.Map(axis(0, 32767)), "unbound")
	assert.Nil(t, m.Map(js.Event{Kind: js.Axis | js.Init, Number: 7, Value: 32767}))
	assert.Nil(t, m.Map(axis(7, 32767)), "init position held")
}

type fakePad struct {
	events chan js.Event
	once   sync.Once
	closed chan struct{}
}

func (d *fakePad) Index() int   { return 0 }
func (d *fakePad) Name() string { return "fake" }
func (d *fakePad) Close() error {
	d.once.Do(func() { close(d.closed) })
	return nil
}

func (d *fakePad) ReadEvent() (js.Event, error) {
	select {
	case ev, ok := <-d.events:
		if !ok {
			return js.Event{}, io.EOF
		}
		return ev, nil
	case <-d.closed:
		return js.Event{}, io.ErrClosedPipe
	}
}

func TestPadPostsMessages(t *testing.T) {
	dev := &fakePad{events: make(chan js.Event, 4), closed: make(chan struct{})}
	opened := make(chan struct{}, 4)
	p := NewPad(-1)
	p.Open = func(int) (js.Device, error) {
		opened <- struct{}{}
		return dev, nil
	}

	loop := fx.NewLoop()
	var got []fx.Message
	var lock sync.Mutex
	loop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			lock.Lock()
			got = append(got, mctx.CurrentMessage())
			lock.Unlock()
			mctx.MessageTaken()
		}))
		return nil
	}))
	p.AddToLoop(loop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- loop.Run(ctx) }()

	<-opened
	dev.events <- button(4, 1)
	dev.events <- button(4, 0)
	dev.events <- button(5, 1)
	require.Eventually(t, func() bool {
		lock.Lock()
		defer lock.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
	lock.Lock()
	assert.Equal(t, &light.ControlEvent{Target: light.TargetSide, Action: light.ActionModeNext}, got[0])
	assert.Equal(t, &light.ControlEvent{Target: light.TargetLogo, Action: light.ActionModeNext}, got[1])
	lock.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
