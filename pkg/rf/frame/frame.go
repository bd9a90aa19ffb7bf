// Package frame implements the framing of the serial link to the radio.
//
// A frame is laid out as
//
//	[Header][Cmd][Flags][Len][Payload ...][Checksum]
//
// where Checksum is the byte-wise sum of the payload XOR'ed with Header.
// The radio may also reply with a 3-byte acknowledge [Header][Cmd][FlagAck]
// which carries neither length nor checksum.
package frame

import (
	"errors"
	"fmt"
)

const (
	// Header is the sentinel byte starting every frame.
	Header byte = 0x5A
	// FlagNeedAck is set in frames built by this side.
	FlagNeedAck byte = 0x01
	// FlagAck marks a short acknowledge frame.
	FlagAck byte = 0xA0

	// Overhead is the number of bytes around the payload.
	Overhead = 5
	// MaxPayload is the largest payload a frame can carry.
	MaxPayload = 0xff
)

var (
	// ErrLengthMismatch indicates LEN doesn't match the bytes present.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrChecksumMismatch indicates the checksum byte is wrong.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrBadHeader indicates the first byte isn't Header.
	ErrBadHeader = errors.New("bad header")
	// ErrShortFrame indicates fewer bytes than the minimum frame.
	ErrShortFrame = errors.New("short frame")
	// ErrPayloadTooLarge is returned by Build.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// FrameError is returned when a frame is rejected.
type FrameError struct {
	Cmd byte
	Err error
}

// Error implements error.
func (e *FrameError) Error() string {
	return fmt.Sprintf("frame 0x%02x: %v", e.Cmd, e.Err)
}

// Unwrap supports errors.Is.
func (e *FrameError) Unwrap() error {
	return e.Err
}

// Frame is a decoded frame.
type Frame struct {
	Cmd     byte
	Flags   byte
	Payload []byte
}

// IsAck tells if it's a short acknowledge frame.
func (f *Frame) IsAck() bool {
	return f.Flags == FlagAck
}

// Bytes encodes the frame.
func (f *Frame) Bytes() []byte {
	if f.IsAck() {
		return []byte{Header, f.Cmd, FlagAck}
	}
	b := make([]byte, len(f.Payload)+Overhead)
	b[0], b[1], b[2], b[3] = Header, f.Cmd, f.Flags, byte(len(f.Payload))
	copy(b[4:], f.Payload)
	b[len(b)-1] = Checksum(f.Payload)
	return b
}

// String implements fmt.Stringer.
func (f *Frame) String() string {
	if f.IsAck() {
		return fmt.Sprintf("ACK(0x%02x)", f.Cmd)
	}
	return fmt.Sprintf("CMD(0x%02x) flags=%d % x", f.Cmd, f.Flags, f.Payload)
}

// Checksum calculates the checksum of payload.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum ^ Header
}

// Build encodes cmd and payload into a frame requesting acknowledge.
func Build(cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, &FrameError{Cmd: cmd, Err: ErrPayloadTooLarge}
	}
	f := &Frame{Cmd: cmd, Flags: FlagNeedAck, Payload: payload}
	return f.Bytes(), nil
}

// Parse decodes a complete frame.
func Parse(b []byte) (*Frame, error) {
	if len(b) < 3 {
		return nil, &FrameError{Err: ErrShortFrame}
	}
	if b[0] != Header {
		return nil, &FrameError{Cmd: b[1], Err: ErrBadHeader}
	}
	if b[2] == FlagAck && len(b) == 3 {
		return &Frame{Cmd: b[1], Flags: FlagAck}, nil
	}
	if len(b) < Overhead {
		return nil, &FrameError{Cmd: b[1], Err: ErrShortFrame}
	}
	size := int(b[3])
	if size != len(b)-Overhead {
		return nil, &FrameError{Cmd: b[1], Err: ErrLengthMismatch}
	}
	payload := b[4 : 4+size]
	if Checksum(payload) != b[len(b)-1] {
		return nil, &FrameError{Cmd: b[1], Err: ErrChecksumMismatch}
	}
	return &Frame{
		Cmd:     b[1],
		Flags:   b[2],
		Payload: append([]byte(nil), payload...),
	}, nil
}
