// Package device holds the state shared between the radio link
// and the LED renderers.
//
// State and Flags are written by the link engine only. Every other
// component reads them, or clears a flag it consumes.
package device

import (
	"fmt"
	"time"
)

// LinkMode is the active host link.
type LinkMode uint8

// Link modes as encoded on the wire.
const (
	LinkRF24  LinkMode = 0
	LinkBT1   LinkMode = 1
	LinkBT2   LinkMode = 2
	LinkBT3   LinkMode = 3
	LinkWired LinkMode = 4
)

// IsWired tells if the host is connected by cable.
func (m LinkMode) IsWired() bool { return m == LinkWired }

// IsBluetooth tells if m is one of the Bluetooth channels.
func (m LinkMode) IsBluetooth() bool { return m >= LinkBT1 && m <= LinkBT3 }

// IsValid tells if m is a known mode.
func (m LinkMode) IsValid() bool { return m <= LinkWired }

func (m LinkMode) String() string {
	switch m {
	case LinkRF24:
		return "2.4G"
	case LinkBT1, LinkBT2, LinkBT3:
		return fmt.Sprintf("BT%d", m)
	case LinkWired:
		return "wired"
	}
	return fmt.Sprintf("LinkMode(%d)", m)
}

// ParseLinkMode parses the String form of a LinkMode.
func ParseLinkMode(s string) (LinkMode, error) {
	for m := LinkRF24; m <= LinkWired; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown link mode %q", s)
}

// ConnState is the radio connection state reported by the radio.
type ConnState uint8

// Connection states as encoded on the wire.
const (
	ConnIdle         ConnState = 0
	ConnDisconnected ConnState = 1
	ConnLinking      ConnState = 2
	ConnConnected    ConnState = 3
	ConnPairing      ConnState = 4
	ConnInvalid      ConnState = 5
)

func (s ConnState) String() string {
	switch s {
	case ConnIdle:
		return "idle"
	case ConnDisconnected:
		return "disconnected"
	case ConnLinking:
		return "linking"
	case ConnConnected:
		return "connected"
	case ConnPairing:
		return "pairing"
	case ConnInvalid:
		return "invalid"
	}
	return fmt.Sprintf("ConnState(%d)", s)
}

// Charge bits reported by the radio.
const (
	// ChargePowered is set while external power is present.
	ChargePowered byte = 0x01
	// ChargeInProgress is set while the battery is being charged.
	ChargeInProgress byte = 0x02
	// ChargeCharging is powered and charging.
	ChargeCharging = ChargePowered | ChargeInProgress
)

// IndicatorCapsLock is the caps lock bit of the host indicator mask.
const IndicatorCapsLock byte = 0x02

// ConfigTableSize is the size of the configuration table read from the radio.
const ConfigTableSize = 32

// State is the device state.
type State struct {
	LinkMode LinkMode
	// RadioChannel is the radio's current channel, a LinkMode below LinkWired.
	RadioChannel LinkMode
	// BLEChannel is the last selected Bluetooth channel.
	BLEChannel LinkMode
	ConnState  ConnState
	// Indicator is the host LED mask relayed over the radio.
	Indicator byte
	Charge    byte
	// Battery is the battery percentage, 0 to 100.
	Battery uint8
	// Config is the table last read from the radio.
	Config [ConfigTableSize]byte
}

// IsConnected tells if the radio link is up.
func (s *State) IsConnected() bool {
	return s.ConnState == ConnConnected
}

// IsPowered tells if external power is reported.
func (s *State) IsPowered() bool {
	return s.Charge&ChargePowered != 0
}

// Flags are one-shot flags. The engine sets them and their
// consumers clear them.
type Flags struct {
	HandshakeOK    bool
	ReadDataOK     bool
	StatusSyncOK   bool
	SleepRequested bool
	// PairingComplete is cleared when pairing starts.
	PairingComplete bool
	// ResetRequested asks the supervisor to pulse the radio reset line.
	ResetRequested bool
	// ResendRequested asks the supervisor to resend the link selection.
	ResendRequested bool
}

// LinkShow holds the timers behind the link indicator. The supervisor
// arms them and the link indicator consumes the blink count.
type LinkShow struct {
	// BlinkCount is the number of remaining blinks.
	BlinkCount uint8
	// ShownFor is the time since the link indicator was last reset.
	ShownFor time.Duration
	// LinkingFor is the time since linking started.
	LinkingFor time.Duration
	// DisconnectDebounce counts supervisor ticks spent disconnected.
	DisconnectDebounce uint8
}

// LinkShowWindow is how long the link indicator stays on after a reset.
const LinkShowWindow = 3 * time.Second

// Showing tells if the link indicator window is still open.
func (s *LinkShow) Showing() bool {
	return s.ShownFor < LinkShowWindow
}

// Advance moves the timers forward, saturating at one hour.
func (s *LinkShow) Advance(d time.Duration) {
	const limit = time.Hour
	if s.ShownFor += d; s.ShownFor > limit {
		s.ShownFor = limit
	}
	if s.LinkingFor += d; s.LinkingFor > limit {
		s.LinkingFor = limit
	}
}

// Switches are user controlled settings affecting indicators.
type Switches struct {
	// MacOS selects the Mac layout, shown by the system indicator.
	MacOS bool
	// SleepEnabled allows the device to sleep, shown by the sleep indicator.
	SleepEnabled bool
	// BatteryHold keeps the battery level displayed.
	BatteryHold bool
	// LowBattery is raised when light levels were capped for low battery.
	LowBattery bool
	// HostCapsLock is the caps lock state from a wired host.
	HostCapsLock bool
}

// Device aggregates everything describing the device.
type Device struct {
	State    State
	Flags    Flags
	Show     LinkShow
	Switches Switches
}

// New creates a Device in its power-on state.
func New() *Device {
	return &Device{
		State: State{
			LinkMode:     LinkRF24,
			RadioChannel: LinkRF24,
			BLEChannel:   LinkBT1,
			ConnState:    ConnDisconnected,
			Battery:      100,
		},
		Switches: Switches{SleepEnabled: true},
	}
}
