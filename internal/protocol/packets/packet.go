// Package packets holds the typed protocol messages generated from the
// message template, the global PacketType enumeration, and the factory that
// reconstructs typed messages from raw datagrams.
//
// The per-message types in packets.gen.go are produced by the generator in
// internal/protocol/codegen (see the generate command); this file carries
// the hand-written surface they plug into.
package packets

import (
	"github.com/gridlink/gridlink/internal/protocol/protoerr"
	"github.com/gridlink/gridlink/internal/protocol/template"
	"github.com/gridlink/gridlink/internal/protocol/wire"
)

// MTU is the application-level maximum transmission unit: the largest
// datagram the circuit layer will put on the wire.
const MTU = 1200

// splitAckHeadroom is the budget ToBytesMultiple reserves in every fragment
// for piggybacked acks (ten 4-byte acks plus the count byte).
const splitAckHeadroom = 41

// PacketType identifies a message globally: the frequency class lives in
// the upper byte so ids from different classes never collide.
type PacketType uint32

// MakeType combines a frequency class and a message id into a PacketType.
func MakeType(freq template.Frequency, id uint16) PacketType {
	return PacketType(freq)<<24 | PacketType(id)
}

// Freq returns the frequency class component.
func (t PacketType) Freq() template.Frequency {
	return template.Frequency(t >> 24)
}

// ID returns the message id component.
func (t PacketType) ID() uint16 {
	return uint16(t & 0xFFFF)
}

// String returns the message name, or a frequency/id form for unknown types.
func (t PacketType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return t.Freq().String() + "/" + itoa(int(t.ID()))
}

// Packet is the contract every generated message satisfies.
type Packet interface {
	// Type returns the global type tag.
	Type() PacketType

	// Header exposes the mutable datagram header. The circuit layer fills
	// in the sequence number and reliability flags before transmission.
	Header() *wire.Header

	// Length returns the encoded size in bytes: header, message id, and
	// body, excluding zero-coding and any appended-ack tail.
	Length() int

	// ToBytes serializes header, message id, and body in declaration
	// order. Zero-coding and ack appending are the circuit layer's job.
	ToBytes() ([]byte, error)

	// ToBytesMultiple splits the message into MTU-sized datagrams when a
	// variable-multiplicity block overflows, duplicating all fixed blocks
	// into every fragment. Messages that fit return a single datagram.
	ToBytesMultiple() ([][]byte, error)

	// decode fills the message from a header and an already zero-decoded
	// body that excludes the message id bytes.
	decode(head wire.Header, body []byte) error
}

// BodyStart returns the offset of the payload region (past the header and
// message id) in a datagram produced by ToBytes for this type.
func BodyStart(h *wire.Header, t PacketType) int {
	return h.Len() + t.Freq().IDWidth()
}

// New builds an empty instance of the given type, or nil for unknown types.
func New(t PacketType) Packet {
	ctor, ok := factory[t]
	if !ok {
		return nil
	}
	return ctor()
}

// TypeByName resolves a message name to its type tag.
func TypeByName(name string) (PacketType, bool) {
	t, ok := typesByName[name]
	return t, ok
}

// FromBytes reconstructs a typed message from a complete datagram: header
// parse, ack-tail strip, zero-decode of the payload region, message id
// lookup, and body decode.
func FromBytes(data []byte) (Packet, error) {
	head, bodyStart, bodyEnd, err := wire.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[bodyStart:bodyEnd]

	freq, id, idLen, err := wire.ReadID(body)
	if err != nil {
		return nil, err
	}
	payload := body[idLen:]
	if head.Zerocoded {
		payload, err = wire.ZeroDecode(payload)
		if err != nil {
			return nil, err
		}
	}

	t := MakeType(freq, id)
	p := New(t)
	if p == nil {
		return nil, protoerr.Malformed("unknown message %s id %d", freq, id)
	}
	if err := p.decode(head, payload); err != nil {
		return nil, err
	}
	return p, nil
}

// appendFrame appends the header and message id framing for p to an empty
// buffer sized for the full encoding.
func appendFrame(p Packet) []byte {
	h := p.Header()
	buf := h.AppendTo(make([]byte, 0, p.Length()))
	t := p.Type()
	return wire.WriteID(buf, t.Freq(), t.ID())
}

// singleDatagram wraps a ToBytes result for messages that never split.
func singleDatagram(p Packet) ([][]byte, error) {
	b, err := p.ToBytes()
	if err != nil {
		return nil, err
	}
	return [][]byte{b}, nil
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}
