package light

import (
	"fmt"
	"strings"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// Target selects the domain a control event applies to.
type Target uint8

// Targets.
const (
	TargetSide Target = iota
	TargetLogo
)

func (t Target) String() string {
	if t == TargetLogo {
		return "logo"
	}
	return "side"
}

// ParseTarget parses the name of a domain.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "side":
		return TargetSide, nil
	case "logo":
		return TargetLogo, nil
	}
	return TargetSide, fmt.Errorf("unknown domain %q", s)
}

// Action is a user control on a domain.
type Action uint8

// Actions.
const (
	ActionBrighter Action = iota
	ActionDimmer
	ActionFaster
	ActionSlower
	ActionColourNext
	ActionColourPrev
	ActionColourSet
	ActionModeNext
	ActionModePrev
	ActionDefaults
)

var actionNames = []string{
	"brighter", "dimmer", "faster", "slower",
	"colour-next", "colour-prev", "colour-set",
	"mode-next", "mode-prev", "defaults",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction parses the name of an action.
func ParseAction(s string) (Action, error) {
	for n, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(n), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ControlEvent is a user control posted to the loop.
type ControlEvent struct {
	Target Target
	Action Action
	// Value is the palette index of ActionColourSet.
	Value uint8
}

// NewMessage implements Message.
func (e *ControlEvent) NewMessage() fx.Message {
	return &ControlEvent{}
}

func (e *ControlEvent) String() string {
	if e.Action == ActionColourSet {
		return fmt.Sprintf("%s %s %d", e.Target, e.Action, e.Value)
	}
	return fmt.Sprintf("%s %s", e.Target, e.Action)
}

// Apply applies the action to c. It returns whether c was changed and
// needs to be persisted.
func (c *Context) Apply(a Action, value uint8) bool {
	switch a {
	case ActionBrighter:
		return c.Brighten(true)
	case ActionDimmer:
		return c.Brighten(false)
	case ActionFaster:
		return c.Faster(true)
	case ActionSlower:
		return c.Faster(false)
	case ActionColourNext:
		return c.CycleColour(true)
	case ActionColourPrev:
		return c.CycleColour(false)
	case ActionColourSet:
		return c.SetColour(value)
	case ActionModeNext:
		return c.CycleMode(true)
	case ActionModePrev:
		return c.CycleMode(false)
	case ActionDefaults:
		c.Reset()
		return true
	}
	return false
}
