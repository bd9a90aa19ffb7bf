package rf

import (
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/robotalks/rflight/pkg/device"
)

// Command is the command byte of a frame.
type Command byte

// Commands exchanged with the radio.
const (
	CmdSleep          Command = 0xF1
	CmdHandshake      Command = 0xF2
	CmdSleepRequest   Command = 0xF4
	CmdReportMouse    Command = 0xE0
	CmdReportKeyboard Command = 0xE1
	CmdReportNKRO     Command = 0xE2
	CmdReportConsumer Command = 0xE3
	CmdReportSystem   Command = 0xE4
	CmdReadData       Command = 0xD1
	CmdSetLink        Command = 0xC0
	CmdStatusSync     Command = 0xC1
	CmdSetConfig      Command = 0xC2
	CmdClearDevice    Command = 0xC4
	CmdNewAdvertise   Command = 0xC7
	CmdSetName        Command = 0xC8
	CmdSetDongleName  Command = 0xC9
	CmdBootloader     Command = 0xB1
	CmdBatteryCurve   Command = 0xB5
)

var commandNames = map[Command]string{
	CmdSleep:          "sleep",
	CmdHandshake:      "handshake",
	CmdSleepRequest:   "sleep-request",
	CmdReportMouse:    "report-mouse",
	CmdReportKeyboard: "report-keyboard",
	CmdReportNKRO:     "report-nkro",
	CmdReportConsumer: "report-consumer",
	CmdReportSystem:   "report-system",
	CmdReadData:       "read-data",
	CmdSetLink:        "set-link",
	CmdStatusSync:     "status-sync",
	CmdSetConfig:      "set-config",
	CmdClearDevice:    "clear-device",
	CmdNewAdvertise:   "new-advertise",
	CmdSetName:        "set-name",
	CmdSetDongleName:  "set-dongle-name",
	CmdBootloader:     "bootloader",
	CmdBatteryCurve:   "battery-curve",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("cmd(0x%02x)", byte(c))
}

// SendOptions controls how a command is sent.
type SendOptions struct {
	// Attempts is the number of transmissions. Zero sends once without waiting.
	Attempts int
	// Timeout is the time waiting for the acknowledge per attempt.
	// Zero sends once without waiting.
	Timeout time.Duration
	// Delay is slept before the first transmission.
	Delay time.Duration
}

// Predefined send options.
var (
	// FireAndForget sends without waiting.
	FireAndForget = SendOptions{}
	// StatusSyncOptions is used by the supervisor heartbeat.
	StatusSyncOptions = SendOptions{Attempts: 1, Timeout: time.Millisecond, Delay: time.Millisecond}
	// LinkOptions is used when (re)selecting the link.
	LinkOptions = SendOptions{Attempts: 3, Timeout: 10 * time.Millisecond, Delay: 10 * time.Millisecond}
	// NameOptions is used when pushing names.
	NameOptions = SendOptions{Attempts: 1, Timeout: 10 * time.Millisecond, Delay: 30 * time.Millisecond}
)

const (
	// readDataLen is the number of configuration bytes requested.
	readDataLen = 32
	// maxDeviceName is the longest device name accepted by the radio.
	maxDeviceName = 16
	// maxDongleName keeps the string descriptor within a length byte.
	maxDongleName = 126
)

// payloadFor builds the payload of cmd and applies its side effects on
// the device state.
func (e *Engine) payloadFor(cmd Command) ([]byte, error) {
	st := &e.Device.State
	switch cmd {
	case CmdSleep, CmdHandshake, CmdClearDevice, CmdBootloader:
		return []byte{0}, nil
	case CmdStatusSync:
		return []byte{byte(st.LinkMode)}, nil
	case CmdSetLink:
		st.ConnState = device.ConnLinking
		e.Device.Show.LinkingFor = 0
		e.Device.Show.DisconnectDebounce = 0xff
		return []byte{byte(st.LinkMode)}, nil
	case CmdNewAdvertise:
		st.ConnState = device.ConnPairing
		e.Device.Show.LinkingFor = 0
		e.Device.Show.DisconnectDebounce = 0xff
		e.Device.Flags.PairingComplete = false
		return []byte{byte(st.LinkMode), 1, byte(st.LinkMode) + 1}, nil
	case CmdSetConfig:
		return []byte{e.PowerDownDelay}, nil
	case CmdReadData:
		return []byte{0, readDataLen}, nil
	case CmdSetName:
		return DeviceNamePayload(e.DeviceName), nil
	case CmdSetDongleName:
		return DongleNamePayload(e.DongleName), nil
	case CmdBatteryCurve:
		return BatteryCurve[:], nil
	}
	return nil, fmt.Errorf("%s has no predefined payload", cmd)
}

// DeviceNamePayload encodes the Bluetooth device name.
// Only the first 16 ASCII characters are used.
func DeviceNamePayload(name string) []byte {
	b := make([]byte, 0, maxDeviceName+2)
	b = append(b, 1, 0)
	for i := 0; i < len(name) && len(b) < maxDeviceName+2; i++ {
		if c := name[i]; c >= 0x20 && c < 0x7f {
			b = append(b, c)
		}
	}
	b[1] = byte(len(b) - 2)
	return b
}

// DongleNamePayload encodes the name reported by the USB dongle
// as a USB string descriptor.
func DongleNamePayload(name string) []byte {
	units := utf16.Encode([]rune(name))
	if len(units) > maxDongleName {
		units = units[:maxDongleName]
	}
	b := make([]byte, 2, 2+len(units)*2)
	b[0], b[1] = byte(2+len(units)*2), 3
	for _, u := range units {
		b = append(b, byte(u), byte(u>>8))
	}
	return b
}

// BatteryCurve is the fuel gauge configuration written at start-up.
var BatteryCurve = [80]byte{
	0x50, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xB4, 0xC2, 0xB4, 0xA8, 0x9B, 0x96, 0xF8, 0xF2,
	0xF3, 0xC3, 0xA8, 0x8A, 0x65, 0x55, 0x49, 0x41,
	0x39, 0x34, 0x2E, 0xA9, 0xAE, 0xD3, 0x28, 0xFF,
	0xFF, 0xF1, 0xD3, 0xCE, 0xCB, 0xC8, 0xC3, 0xB8,
	0xAE, 0xA7, 0xA8, 0xA6, 0x82, 0x6D, 0x65, 0x63,
	0x69, 0x79, 0x8D, 0xA4, 0xB7, 0xC8, 0xA4, 0x16,
	0x20, 0x00, 0xA7, 0x10, 0x00, 0xB1, 0x28, 0x00,
	0x00, 0x00, 0x64, 0x43, 0xC0, 0x53, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x81,
}
