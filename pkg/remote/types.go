// Package remote defines the messages exchanged with remote
// controllers and monitors.
//
// Every message travels wrapped in an Envelope carrying a type ID.
// Commands flow towards the device, events flow out of it.
package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
)

// Message Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// TypeID Groups
const (
	GroupDevice uint32 = 0x00010000
	GroupLight  uint32 = 0x00020000
	GroupLink   uint32 = 0x00030000
)

// TypeIDs
const (
	StatusTypeID       uint32 = TypeIDKindEvent | GroupDevice | 0x0000
	SwitchSetTypeID    uint32 = GroupDevice | 0x0001
	DeviceOpTypeID     uint32 = GroupDevice | 0x0002
	LightControlTypeID uint32 = GroupLight | 0x0000
	LinkSelectTypeID   uint32 = GroupLink | 0x0000
	PairStartTypeID    uint32 = GroupLink | 0x0001
)

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrNotCommand indicates an event was received where a command is expected.
	ErrNotCommand = errors.New("not a command")
)

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes maps type IDs to messages.
var MessageTypes = map[uint32]SerializableMessage{
	StatusTypeID:       (*Status)(nil),
	SwitchSetTypeID:    (*SwitchSet)(nil),
	DeviceOpTypeID:     (*DeviceOp)(nil),
	LightControlTypeID: (*LightControl)(nil),
	LinkSelectTypeID:   (*LinkSelect)(nil),
	PairStartTypeID:    (*PairStart)(nil),
}

// Envelope wraps an encoded message with its type.
type Envelope struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Envelope) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// Wrap creates an Envelope from a serializable message.
func Wrap(msg fx.Message) (*Envelope, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Envelope{TypeId: s.TypeID(), Message: data}, nil
}

// Encode wraps msg and encodes the Envelope.
func Encode(msg fx.Message) ([]byte, error) {
	env, err := Wrap(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(env)
}

// DecodeEnvelope decodes bytes into an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Decode decodes the wrapped message.
func (m *Envelope) Decode() (fx.Message, error) {
	msgType, ok := MessageTypes[m.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: m.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(m.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// IsCommand determines if the message is a command.
func (m *Envelope) IsCommand() bool {
	return m.TypeId&TypeIDMaskKind == TypeIDKindCommand
}

// IsEvent determines if the message is an event.
func (m *Envelope) IsEvent() bool {
	return m.TypeId&TypeIDMaskKind == TypeIDKindEvent
}

// DecodeCommand decodes data expecting a command.
func DecodeCommand(data []byte) (fx.Message, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if !env.IsCommand() {
		return nil, ErrNotCommand
	}
	return env.Decode()
}

// Ref identifies a device on the broker.
type Ref struct {
	Type string
	ID   string
}

// DeviceType is the default Ref.Type.
const DeviceType = "rflight"

// Name is the topic path of the device.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ParseRef parses "type/id".
func ParseRef(s string) (Ref, error) {
	typ, id, _ := strings.Cut(s, "/")
	if ref := (Ref{Type: typ, ID: id}); ref.IsValid() && !strings.Contains(id, "/") {
		return ref, nil
	}
	return Ref{}, fmt.Errorf("invalid device reference %q", s)
}

// Topics under a device.
const (
	TopicMeta    = "meta"
	TopicStatus  = "status"
	TopicControl = "control"
)

// Topic returns the topic of sub under the device.
func (r Ref) Topic(sub string) string {
	return r.Name() + "/" + sub
}

// Meta is published as JSON while the device is online.
type Meta struct {
	Description string            `json:"description,omitempty"`
	DeviceName  string            `json:"device_name,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}
