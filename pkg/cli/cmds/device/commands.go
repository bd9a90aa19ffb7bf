package device

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rflight/pkg/cli/sh"
	dev "github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/remote"
)

var (
	// LightCmd exposes LightControl command.
	LightCmd = ishell.Cmd{
		Name:    "light",
		Aliases: []string{"lt"},
		Help:    "side|logo ACTION [COLOUR]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("domain and action required"))
				return
			}
			ev, err := parseLight(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, remote.NewLightControl(ev))
		}),
	}

	// LinkCmd exposes LinkSelect command.
	LinkCmd = ishell.Cmd{
		Name:    "link",
		Aliases: []string{"ln"},
		Help:    "2.4G|BT1|BT2|BT3|wired",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("link mode required"))
				return
			}
			mode, err := dev.ParseLinkMode(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &remote.LinkSelect{Mode: uint32(mode)})
		}),
	}

	// PairCmd exposes PairStart command.
	PairCmd = ishell.Cmd{
		Name: "pair",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &remote.PairStart{})
		}),
	}

	// SwitchCmd exposes SwitchSet command.
	SwitchCmd = ishell.Cmd{
		Name:    "switch",
		Aliases: []string{"sw"},
		Help:    "mac-os|sleep|battery-hold on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("switch and position required"))
				return
			}
			sw, err := remote.ParseSwitch(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			on, err := parseOnOff(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &remote.SwitchSet{Switch: uint32(sw), On: on})
		}),
	}

	// OpCmd exposes DeviceOp command.
	OpCmd = ishell.Cmd{
		Name: "op",
		Help: "factory-reset|clear-pairings|bootloader|sleep",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("operation required"))
				return
			}
			op, err := remote.ParseOp(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &remote.DeviceOp{Op: uint32(op)})
		}),
	}
)

func parseLight(args []string) (*light.ControlEvent, error) {
	var ev light.ControlEvent
	var err error
	if ev.Target, err = light.ParseTarget(args[0]); err != nil {
		return nil, err
	}
	if ev.Action, err = light.ParseAction(args[1]); err != nil {
		return nil, err
	}
	if ev.Action == light.ActionColourSet {
		if len(args) < 3 {
			return nil, fmt.Errorf("COLOUR required")
		}
		val, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil || val >= light.ColourCount {
			return nil, fmt.Errorf("invalid COLOUR %q, expect 0-%d", args[2], light.ColourCount-1)
		}
		ev.Value = uint8(val)
	}
	return &ev, nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func init() {
	sh.AddCmds(
		&LightCmd,
		&LinkCmd,
		&PairCmd,
		&SwitchCmd,
		&OpCmd,
	)
}
