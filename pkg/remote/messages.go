package remote

import (
	"fmt"
	"strings"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/rflight/pkg/device"
	fx "github.com/robotalks/rflight/pkg/framework"
	"github.com/robotalks/rflight/pkg/light"
	"github.com/robotalks/rflight/pkg/settings"
)

// Status is the event reflecting device status.
type Status struct {
	LinkMode     uint32           `protobuf:"varint,1,opt,name=link_mode,proto3" json:"link_mode,omitempty"`
	ConnState    uint32           `protobuf:"varint,2,opt,name=conn_state,proto3" json:"conn_state,omitempty"`
	Battery      uint32           `protobuf:"varint,3,opt,name=battery,proto3" json:"battery,omitempty"`
	Charge       uint32           `protobuf:"varint,4,opt,name=charge,proto3" json:"charge,omitempty"`
	Indicator    uint32           `protobuf:"varint,5,opt,name=indicator,proto3" json:"indicator,omitempty"`
	Side         *settings.Domain `protobuf:"bytes,6,opt,name=side,proto3" json:"side,omitempty"`
	Logo         *settings.Domain `protobuf:"bytes,7,opt,name=logo,proto3" json:"logo,omitempty"`
	MacOs        bool             `protobuf:"varint,8,opt,name=mac_os,proto3" json:"mac_os,omitempty"`
	SleepEnabled bool             `protobuf:"varint,9,opt,name=sleep_enabled,proto3" json:"sleep_enabled,omitempty"`
	BatteryHold  bool             `protobuf:"varint,10,opt,name=battery_hold,proto3" json:"battery_hold,omitempty"`
	LowBattery   bool             `protobuf:"varint,11,opt,name=low_battery,proto3" json:"low_battery,omitempty"`
	BleChannel   uint32           `protobuf:"varint,12,opt,name=ble_channel,proto3" json:"ble_channel,omitempty"`
}

// StatusOf captures the status of the device.
func StatusOf(dev *device.Device, side, logo *light.Context) *Status {
	return &Status{
		LinkMode:     uint32(dev.State.LinkMode),
		ConnState:    uint32(dev.State.ConnState),
		Battery:      uint32(dev.State.Battery),
		Charge:       uint32(dev.State.Charge),
		Indicator:    uint32(dev.State.Indicator),
		Side:         settings.DomainOf(side),
		Logo:         settings.DomainOf(logo),
		MacOs:        dev.Switches.MacOS,
		SleepEnabled: dev.Switches.SleepEnabled,
		BatteryHold:  dev.Switches.BatteryHold,
		LowBattery:   dev.Switches.LowBattery,
		BleChannel:   uint32(dev.State.BLEChannel),
	}
}

// Summary formats the status for humans.
func (m *Status) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "link=%s state=%s battery=%d%%",
		device.LinkMode(m.LinkMode), device.ConnState(m.ConnState), m.Battery)
	if m.Charge&uint32(device.ChargePowered) != 0 {
		sb.WriteString(" powered")
	}
	if m.LowBattery {
		sb.WriteString(" low")
	}
	if m.Indicator&uint32(device.IndicatorCapsLock) != 0 {
		sb.WriteString(" caps")
	}
	for _, d := range []struct {
		name string
		dom  *settings.Domain
	}{{"side", m.Side}, {"logo", m.Logo}} {
		if d.dom != nil {
			fmt.Fprintf(&sb, " %s=%s/l%d/s%d", d.name, light.Mode(d.dom.Mode), d.dom.Light, d.dom.Speed)
		}
	}
	return sb.String()
}

// NewMessage implements Message.
func (m *Status) NewMessage() fx.Message { return &Status{} }

// TypeID implements SerializableMessage.
func (m *Status) TypeID() uint32 { return StatusTypeID }

// Serializable implements SerializableMessage.
func (m *Status) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

// LightControl is the remote form of light.ControlEvent.
type LightControl struct {
	Target uint32 `protobuf:"varint,1,opt,name=target,proto3" json:"target,omitempty"`
	Action uint32 `protobuf:"varint,2,opt,name=action,proto3" json:"action,omitempty"`
	Value  uint32 `protobuf:"varint,3,opt,name=value,proto3" json:"value,omitempty"`
}

// NewLightControl creates a LightControl.
func NewLightControl(ev *light.ControlEvent) *LightControl {
	return &LightControl{Target: uint32(ev.Target), Action: uint32(ev.Action), Value: uint32(ev.Value)}
}

// Event converts to a light.ControlEvent.
func (m *LightControl) Event() (*light.ControlEvent, error) {
	if m.Target > uint32(light.TargetLogo) {
		return nil, fmt.Errorf("invalid target %d", m.Target)
	}
	if m.Action > uint32(light.ActionDefaults) {
		return nil, fmt.Errorf("invalid action %d", m.Action)
	}
	if m.Value > 0xff {
		return nil, fmt.Errorf("invalid value %d", m.Value)
	}
	return &light.ControlEvent{
		Target: light.Target(m.Target),
		Action: light.Action(m.Action),
		Value:  uint8(m.Value),
	}, nil
}

// NewMessage implements Message.
func (m *LightControl) NewMessage() fx.Message { return &LightControl{} }

// TypeID implements SerializableMessage.
func (m *LightControl) TypeID() uint32 { return LightControlTypeID }

// Serializable implements SerializableMessage.
func (m *LightControl) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *LightControl) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LightControl) Reset() { *m = LightControl{} }

// String implements proto.Message.
func (m *LightControl) String() string { return proto.CompactTextString(m) }

// LinkSelect switches the link mode.
type LinkSelect struct {
	Mode uint32 `protobuf:"varint,1,opt,name=mode,proto3" json:"mode,omitempty"`
}

// Link validates and returns the requested mode.
func (m *LinkSelect) Link() (device.LinkMode, error) {
	if m.Mode > uint32(device.LinkWired) {
		return 0, fmt.Errorf("invalid link mode %d", m.Mode)
	}
	return device.LinkMode(m.Mode), nil
}

// NewMessage implements Message.
func (m *LinkSelect) NewMessage() fx.Message { return &LinkSelect{} }

// TypeID implements SerializableMessage.
func (m *LinkSelect) TypeID() uint32 { return LinkSelectTypeID }

// Serializable implements SerializableMessage.
func (m *LinkSelect) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *LinkSelect) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkSelect) Reset() { *m = LinkSelect{} }

// String implements proto.Message.
func (m *LinkSelect) String() string { return proto.CompactTextString(m) }

// PairStart starts pairing on the current link.
type PairStart struct {
}

// NewMessage implements Message.
func (m *PairStart) NewMessage() fx.Message { return &PairStart{} }

// TypeID implements SerializableMessage.
func (m *PairStart) TypeID() uint32 { return PairStartTypeID }

// Serializable implements SerializableMessage.
func (m *PairStart) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PairStart) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PairStart) Reset() { *m = PairStart{} }

// String implements proto.Message.
func (m *PairStart) String() string { return proto.CompactTextString(m) }

// Switch names a user switch.
type Switch uint32

// Switches
const (
	SwitchMacOS Switch = iota
	SwitchSleep
	SwitchBatteryHold
)

var switchNames = []string{"mac-os", "sleep", "battery-hold"}

func (s Switch) String() string {
	if int(s) < len(switchNames) {
		return switchNames[s]
	}
	return fmt.Sprintf("switch(%d)", uint32(s))
}

// ParseSwitch parses a switch name.
func ParseSwitch(s string) (Switch, error) {
	for n, name := range switchNames {
		if strings.EqualFold(s, name) {
			return Switch(n), nil
		}
	}
	return 0, fmt.Errorf("unknown switch %q", s)
}

// SwitchSet turns a switch on or off.
type SwitchSet struct {
	Switch uint32 `protobuf:"varint,1,opt,name=switch,proto3" json:"switch,omitempty"`
	On     bool   `protobuf:"varint,2,opt,name=on,proto3" json:"on,omitempty"`
}

// Apply sets the switch on dev. It returns false when the switch is
// unknown or already in the requested position.
func (m *SwitchSet) Apply(dev *device.Device) bool {
	var sw *bool
	switch Switch(m.Switch) {
	case SwitchMacOS:
		sw = &dev.Switches.MacOS
	case SwitchSleep:
		sw = &dev.Switches.SleepEnabled
	case SwitchBatteryHold:
		sw = &dev.Switches.BatteryHold
	default:
		return false
	}
	if *sw == m.On {
		return false
	}
	*sw = m.On
	return true
}

// NewMessage implements Message.
func (m *SwitchSet) NewMessage() fx.Message { return &SwitchSet{} }

// TypeID implements SerializableMessage.
func (m *SwitchSet) TypeID() uint32 { return SwitchSetTypeID }

// Serializable implements SerializableMessage.
func (m *SwitchSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwitchSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwitchSet) Reset() { *m = SwitchSet{} }

// String implements proto.Message.
func (m *SwitchSet) String() string { return proto.CompactTextString(m) }

// Op is a device maintenance operation.
type Op uint32

// Ops
const (
	OpFactoryReset Op = iota
	OpClearPairings
	OpBootloader
	OpSleep
)

var opNames = []string{"factory-reset", "clear-pairings", "bootloader", "sleep"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint32(o))
}

// ParseOp parses an operation name.
func ParseOp(s string) (Op, error) {
	for n, name := range opNames {
		if strings.EqualFold(s, name) {
			return Op(n), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// DeviceOp requests a maintenance operation.
type DeviceOp struct {
	Op uint32 `protobuf:"varint,1,opt,name=op,proto3" json:"op,omitempty"`
}

// NewMessage implements Message.
func (m *DeviceOp) NewMessage() fx.Message { return &DeviceOp{} }

// TypeID implements SerializableMessage.
func (m *DeviceOp) TypeID() uint32 { return DeviceOpTypeID }

// Serializable implements SerializableMessage.
func (m *DeviceOp) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DeviceOp) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DeviceOp) Reset() { *m = DeviceOp{} }

// String implements proto.Message.
func (m *DeviceOp) String() string { return proto.CompactTextString(m) }
