package light

import (
	"time"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// Animator renders the base animation of a domain into the buffer.
type Animator struct {
	Domain *Domain
	Ctx    *Context
	Buffer *Buffer
}

// NewAnimator creates an Animator.
func NewAnimator(d *Domain, ctx *Context, buf *Buffer) *Animator {
	return &Animator{Domain: d, Ctx: ctx, Buffer: buf}
}

// Control implements Controller.
func (a *Animator) Control(cc fx.ControlContext) error {
	a.Render(cc.Elapsed())
	return nil
}

// Render accumulates elapsed time and renders a frame if a frame's worth
// of time has been played. It returns whether the buffer was written.
func (a *Animator) Render(elapsed time.Duration) bool {
	ctx := a.Ctx
	ctx.Accumulate(elapsed)
	if !ctx.Consume() {
		return false
	}
	switch ctx.Mode {
	case ModeWaveA:
		a.renderWave(&a.Domain.Waves[0])
	case ModeWaveB:
		a.renderWave(&a.Domain.Waves[1])
	case ModeSpectrum:
		ctx.Point = StepPoint(ctx.Point, true, 1, FlowLen)
		a.fill(FlowTable[ctx.Point].Dim(ctx.LightLevel()))
	case ModeBreathe:
		ctx.Breath = StepPoint(ctx.Breath, false, 1, BreatheLen)
		a.fill(ctx.PaletteColor().Dim(BreatheTable[ctx.Breath]).Dim(ctx.LightLevel()))
	case ModeStatic:
		if ctx.Point >= ColourCount {
			ctx.Point = 0
		}
		a.fill(ctx.PaletteColor().Dim(ctx.LightLevel()))
	default:
		a.fill(Black)
	}
	return true
}

func (a *Animator) fill(c Color) {
	a.Buffer.Fill(a.Domain.LEDs, c.Shr(a.Domain.Shift))
}

func (a *Animator) renderWave(w *Wave) {
	ctx := a.Ctx
	tableLen := uint8(len(w.Table))
	if ctx.RGB {
		ctx.Point = StepPoint(ctx.Point, false, 1, FlowLen)
		if w.PulseStride > 0 {
			ctx.Pulse = StepPoint(ctx.Pulse, false, 1, tableLen)
		}
	} else {
		ctx.Point = StepPoint(ctx.Point, false, w.Step, tableLen)
	}

	index, pulse := ctx.Point, ctx.Pulse
	for _, led := range a.Domain.LEDs {
		var c Color
		if ctx.RGB {
			c = FlowTable[index]
			index = StepPoint(index, true, w.RainbowStride, FlowLen)
			if w.PulseStride > 0 {
				pulse = StepPoint(pulse, true, w.PulseStride, tableLen)
				c = c.Dim(w.Table[pulse])
			}
		} else {
			c = ctx.PaletteColor()
			index = StepPoint(index, true, w.Stride, tableLen)
			c = c.Dim(w.Table[index])
		}
		a.Buffer.Set(led, c.Dim(ctx.LightLevel()).Shr(w.Shift))
	}
}
