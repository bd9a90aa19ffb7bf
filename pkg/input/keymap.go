// Package input turns gamepad buttons into keyboard commands, standing
// in for the function layer keys on a bench setup.
package input

import (
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/input/js"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/remote"
)

// Binding creates the message posted for a key press.
type Binding func() fx.Message

// LightKey controls a light domain.
func LightKey(t light.Target, a light.Action) Binding {
	return func() fx.Message {
		return &light.ControlEvent{Target: t, Action: a}
	}
}

// PairKey starts pairing.
func PairKey() fx.Message {
	return &remote.PairStart{}
}

// Keymap binds buttons and axis ends.
type Keymap struct {
	Buttons map[uint8]Binding
	// Axes holds the bindings of the negative and positive ends.
	Axes map[uint8][2]Binding
}

// AxisThreshold is how far an axis moves before it counts as pressed.
const AxisThreshold = 16384

// DefaultKeymap fits a common gamepad: face buttons set the light
// levels, shoulders cycle the modes and the hat cycles the colors.
var DefaultKeymap = Keymap{
	Buttons: map[uint8]Binding{
		0: LightKey(light.TargetSide, light.ActionBrighter),
		1: LightKey(light.TargetSide, light.ActionDimmer),
		2: LightKey(light.TargetLogo, light.ActionBrighter),
		3: LightKey(light.TargetLogo, light.ActionDimmer),
		4: LightKey(light.TargetSide, light.ActionModeNext),
		5: LightKey(light.TargetLogo, light.ActionModeNext),
		6: LightKey(light.TargetSide, light.ActionFaster),
		7: LightKey(light.TargetSide, light.ActionSlower),
		8: PairKey,
	},
	Axes: map[uint8][2]Binding{
		6: {LightKey(light.TargetSide, light.ActionColourPrev), LightKey(light.TargetSide, light.ActionColourNext)},
		7: {LightKey(light.TargetLogo, light.ActionColourNext), LightKey(light.TargetLogo, light.ActionColourPrev)},
	},
}

// mapper tracks axis positions to fire once per push.
type mapper struct {
	keymap *Keymap
	axes   map[uint8]int
}

func newMapper(k *Keymap) *mapper {
	return &mapper{keymap: k, axes: make(map[uint8]int)}
}

func axisDir(v int16) int {
	switch {
	case v <= -AxisThreshold:
		return -1
	case v >= AxisThreshold:
		return 1
	}
	return 0
}

// Map returns the message for ev, or nil.
func (m *mapper) Map(ev js.Event) fx.Message {
	switch {
	case ev.IsButton():
		if ev.IsInit() || ev.Value == 0 {
			return nil
		}
		if b := m.keymap.Buttons[ev.Number]; b != nil {
			return b()
		}
	case ev.IsAxis():
		dir := axisDir(ev.Value)
		prev := m.axes[ev.Number]
		m.axes[ev.Number] = dir
		if ev.IsInit() || dir == 0 || dir == prev {
			return nil
		}
		ends, ok := m.keymap.Axes[ev.Number]
		if !ok {
			return nil
		}
		b := ends[0]
		if dir > 0 {
			b = ends[1]
		}
		if b != nil {
			return b()
		}
	}
	return nil
}
