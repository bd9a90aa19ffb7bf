// Package settings persists user settings across restarts.
package settings

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
)

// DefaultBrightnessFlag marks a record as initialized. Records without
// it are ignored on restore.
const DefaultBrightnessFlag = 0xA5

// Domain is the persisted part of a light.Context.
type Domain struct {
	Mode   uint32 `protobuf:"varint,1,opt,name=mode,proto3" json:"mode,omitempty"`
	Light  uint32 `protobuf:"varint,2,opt,name=light,proto3" json:"light,omitempty"`
	Speed  uint32 `protobuf:"varint,3,opt,name=speed,proto3" json:"speed,omitempty"`
	Rgb    bool   `protobuf:"varint,4,opt,name=rgb,proto3" json:"rgb,omitempty"`
	Colour uint32 `protobuf:"varint,5,opt,name=colour,proto3" json:"colour,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Domain) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Domain) Reset() { *m = Domain{} }

// String implements proto.Message.
func (m *Domain) String() string { return proto.CompactTextString(m) }

// Record is the flat settings record.
type Record struct {
	Side              *Domain `protobuf:"bytes,1,opt,name=side,proto3" json:"side,omitempty"`
	Logo              *Domain `protobuf:"bytes,2,opt,name=logo,proto3" json:"logo,omitempty"`
	SleepEnabled      bool    `protobuf:"varint,3,opt,name=sleep_enabled,proto3" json:"sleep_enabled,omitempty"`
	BatteryHold       bool    `protobuf:"varint,4,opt,name=battery_hold,proto3" json:"battery_hold,omitempty"`
	MacOs             bool    `protobuf:"varint,5,opt,name=mac_os,proto3" json:"mac_os,omitempty"`
	LinkMode          uint32  `protobuf:"varint,6,opt,name=link_mode,proto3" json:"link_mode,omitempty"`
	DefaultBrightness uint32  `protobuf:"varint,7,opt,name=default_brightness,proto3" json:"default_brightness,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Record) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Record) Reset() { *m = Record{} }

// String implements proto.Message.
func (m *Record) String() string { return proto.CompactTextString(m) }

// DomainOf captures the persisted fields of ctx.
func DomainOf(ctx *light.Context) *Domain {
	return &Domain{
		Mode:   uint32(ctx.Mode),
		Light:  uint32(ctx.Light),
		Speed:  uint32(ctx.Speed),
		Rgb:    ctx.RGB,
		Colour: uint32(ctx.Colour),
	}
}

// ApplyTo restores ctx. Out of range fields keep the value in ctx.
func (m *Domain) ApplyTo(ctx *light.Context) {
	if m == nil {
		return
	}
	if m.Mode < uint32(light.ModeCount) {
		ctx.Mode = light.Mode(m.Mode)
	}
	if m.Light <= light.MaxLight {
		ctx.Light = uint8(m.Light)
	}
	if m.Speed <= light.MaxSpeed {
		ctx.Speed = uint8(m.Speed)
	}
	if m.Colour < light.ColourCount {
		ctx.Colour = uint8(m.Colour)
	}
	ctx.RGB = m.Rgb
	ctx.Point, ctx.Pulse, ctx.Breath, ctx.Played = 0, 0, 0, 0
}

// Capture builds a Record from the current state.
func Capture(dev *device.Device, side, logo *light.Context) *Record {
	return &Record{
		Side:         DomainOf(side),
		Logo:         DomainOf(logo),
		SleepEnabled: dev.Switches.SleepEnabled,
		BatteryHold:  dev.Switches.BatteryHold,
		MacOs:        dev.Switches.MacOS,
		LinkMode:     uint32(dev.State.LinkMode),

		DefaultBrightness: DefaultBrightnessFlag,
	}
}

// Initialized tells if the record carries DefaultBrightnessFlag.
func (m *Record) Initialized() bool {
	return m != nil && m.DefaultBrightness == DefaultBrightnessFlag
}

// Apply restores the state from the record.
func (m *Record) Apply(dev *device.Device, side, logo *light.Context) {
	m.Side.ApplyTo(side)
	m.Logo.ApplyTo(logo)
	dev.Switches.SleepEnabled = m.SleepEnabled
	dev.Switches.BatteryHold = m.BatteryHold
	dev.Switches.MacOS = m.MacOs
	if m.LinkMode <= uint32(device.LinkWired) {
		dev.State.LinkMode = device.LinkMode(m.LinkMode)
	}
}

// Defaults is the record after a factory reset.
func Defaults() *Record {
	ctx := light.DefaultContext()
	return &Record{
		Side:              DomainOf(&ctx),
		Logo:              DomainOf(&ctx),
		SleepEnabled:      true,
		DefaultBrightness: DefaultBrightnessFlag,
	}
}
