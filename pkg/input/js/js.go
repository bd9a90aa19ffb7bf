// Package js reads the Linux joystick interface, /dev/input/jsN.
package js

import (
	"errors"
	"fmt"
)

// Kind is the kind of an Event.
type Kind uint8

// Event kinds.
const (
	Button Kind = 0x01
	Axis   Kind = 0x02
	// Init marks the synthetic events reporting the initial state.
	Init Kind = 0x80
)

// Event is a button or axis change.
type Event struct {
	Kind   Kind
	Number uint8
	// Value is 0 or 1 for buttons and -32767 to 32767 for axes.
	Value int16
}

// IsInit tells if the event reports the state when opened.
func (e Event) IsInit() bool {
	return e.Kind&Init != 0
}

// IsButton tells if a button changed.
func (e Event) IsButton() bool {
	return e.Kind&^Init == Button
}

// IsAxis tells if an axis moved.
func (e Event) IsAxis() bool {
	return e.Kind&^Init == Axis
}

func (e Event) String() string {
	var prefix string
	if e.IsInit() {
		prefix = "[init] "
	}
	switch {
	case e.IsButton():
		return fmt.Sprintf("%sbutton %d: %d", prefix, e.Number, e.Value)
	case e.IsAxis():
		return fmt.Sprintf("%saxis %d: %d", prefix, e.Number, e.Value)
	}
	return fmt.Sprintf("%sevent(%#x) %d: %d", prefix, uint8(e.Kind), e.Number, e.Value)
}

// Device is an opened joystick.
type Device interface {
	Index() int
	Name() string
	ReadEvent() (Event, error)
	Close() error
}

// ErrUnsupported is returned where the joystick interface is missing.
var ErrUnsupported = errors.New("joystick not supported on this platform")
