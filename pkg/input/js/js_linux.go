//go:build linux

package js

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"
)

const (
	iocGNAME   uint = 0x80ff6a13
	eventBytes      = 8
	maxDevices      = 32
)

type device struct {
	file  *os.File
	index int
	name  string
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	var buf [256]byte
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uintptr(iocGNAME), uintptr(unsafe.Pointer(&buf))); errno != 0 {
		f.Close()
		return nil, errno
	}
	if pos := bytes.IndexByte(buf[:], 0); pos >= 0 {
		d.name = string(buf[:pos])
	} else {
		d.name = string(buf[:])
	}
	return d, nil
}

// Detect opens the first joystick present. It returns nil without an
// error if there is none.
func Detect() (Device, error) {
	for index := 0; index < maxDevices; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

func (d *device) Index() int    { return d.index }
func (d *device) Name() string  { return d.name }
func (d *device) Close() error { return d.file.Close() }

// ReadEvent blocks until the next event.
func (d *device) ReadEvent() (Event, error) {
	return decode(d.file)
}

// struct js_event: u32 time, s16 value, u8 type, u8 number
func decode(r io.Reader) (Event, error) {
	var buf [eventBytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Event{}, err
	}
	return Event{
		Value:  int16(binary.LittleEndian.Uint16(buf[4:6])),
		Kind:   Kind(buf[6]),
		Number: buf[7],
	}, nil
}
