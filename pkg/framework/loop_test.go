package framework

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func TestLoopStepOrder(t *testing.T) {
	var order []int
	loop := NewLoop()
	for _, lv := range []int{PrLvPostProc, PrLvTop, PrLvRender, PrLvSense, PrLvControl} {
		level := lv
		loop.AddController(level, ControlFunc(func(cc ControlContext) error {
			require.Equal(t, level, cc.PriorityLevel())
			order = append(order, level)
			return nil
		}))
	}
	loop.Step(context.Background(), time.Unix(100, 0))
	require.Equal(t, []int{PrLvTop, PrLvSense, PrLvControl, PrLvRender, PrLvPostProc}, order)
}

func TestLoopElapsed(t *testing.T) {
	var elapsed []time.Duration
	loop := NewLoop()
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		elapsed = append(elapsed, cc.Elapsed())
		return nil
	}))
	start := time.Unix(100, 0)
	loop.Step(context.Background(), start)
	loop.Step(context.Background(), start.Add(10*time.Millisecond))
	loop.Step(context.Background(), start.Add(25*time.Millisecond))
	require.Equal(t, []time.Duration{0, 10 * time.Millisecond, 15 * time.Millisecond}, elapsed)
}

func TestLoopMessages(t *testing.T) {
	loop := NewLoop()
	var taken []int
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if msg, ok := mctx.CurrentMessage().(*testMsg); ok && msg.val%2 == 0 {
				mctx.MessageTaken()
				taken = append(taken, msg.val)
			}
		}))
		return nil
	}))
	var left []int
	loop.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			mctx.MessageTaken()
			left = append(left, mctx.CurrentMessage().(*testMsg).val)
		}))
		return nil
	}))
	for i := 1; i <= 4; i++ {
		loop.PostMessage(&testMsg{val: i})
	}
	loop.Step(context.Background(), time.Unix(1, 0))
	require.Equal(t, []int{2, 4}, taken)
	require.Equal(t, []int{1, 3}, left)

	taken, left = nil, nil
	loop.Step(context.Background(), time.Unix(2, 0))
	require.Empty(t, taken)
	require.Empty(t, left)
}

func TestLoopPostRunHooks(t *testing.T) {
	loop := NewLoop()
	var calls int
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		if calls == 0 {
			cc.PostRun(ControlFunc(func(ControlContext) error {
				calls += 10
				return nil
			}))
		}
		calls++
		return nil
	}))
	loop.Step(context.Background(), time.Unix(1, 0))
	require.Equal(t, 11, calls)
	loop.Step(context.Background(), time.Unix(2, 0))
	require.Equal(t, 12, calls)
}

func TestManualClock(t *testing.T) {
	start := time.Unix(5, 0)
	clk := NewManualClock(start)
	var woke []time.Time
	clk.OnSleep = func(t time.Time) { woke = append(woke, t) }
	clk.Sleep(time.Millisecond)
	clk.Sleep(2 * time.Millisecond)
	require.Equal(t, start.Add(3*time.Millisecond), clk.Time())
	require.Equal(t, []time.Time{start.Add(time.Millisecond), start.Add(3 * time.Millisecond)}, woke)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	errs.Add(context.Canceled, nil, context.DeadlineExceeded)
	err := errs.Aggregate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "context canceled")
	require.Len(t, errs.Errors, 2)
}
