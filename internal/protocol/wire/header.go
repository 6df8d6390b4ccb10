// Package wire implements the per-datagram framing shared by every circuit:
// the flag/sequence header, the frequency-dependent message id, the
// appended-ack tail, and zero-coding of the payload region.
//
// Datagram layout:
//
//	byte 0      flags (0x80 zerocoded, 0x40 reliable, 0x20 resent, 0x10 appended acks)
//	bytes 1..4  sequence number, big-endian
//	byte 5      extra-header length e
//	e bytes     opaque extra header data
//	1/2/4 bytes message id, width per frequency class
//	...         payload region (zerocoded when flagged)
//	4n bytes    appended acks, big-endian, when flagged
//	1 byte      appended-ack count n, when flagged
package wire

import (
	"encoding/binary"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
	"github.com/gridlink/gridlink/internal/protocol/template"
)

// Header flag bits.
const (
	FlagZerocoded    = 0x80
	FlagReliable     = 0x40
	FlagResent       = 0x20
	FlagAppendedAcks = 0x10
)

// MinHeaderLen is the wire size of a header with no extra bytes.
const MinHeaderLen = 6

// Header is the decoded per-datagram header plus the appended-ack tail.
type Header struct {
	Zerocoded    bool
	Reliable     bool
	Resent       bool
	AppendedAcks bool

	Sequence uint32
	Extra    []byte

	// AckList holds the sequence numbers from the appended-ack tail, in
	// wire order. Populated on decode; on encode it is written back out
	// when AppendedAcks is set.
	AckList []uint32
}

// Flags returns the flag byte for the header's current state.
func (h *Header) Flags() byte {
	var f byte
	if h.Zerocoded {
		f |= FlagZerocoded
	}
	if h.Reliable {
		f |= FlagReliable
	}
	if h.Resent {
		f |= FlagResent
	}
	if h.AppendedAcks {
		f |= FlagAppendedAcks
	}
	return f
}

// Len returns the encoded header size (flags, sequence, extra length, and
// extra bytes; the message id is not part of the header proper).
func (h *Header) Len() int {
	return MinHeaderLen + len(h.Extra)
}

// AppendTo appends the encoded header to dst and returns the result.
func (h *Header) AppendTo(dst []byte) []byte {
	dst = append(dst, h.Flags())
	dst = binary.BigEndian.AppendUint32(dst, h.Sequence)
	dst = append(dst, byte(len(h.Extra)))
	dst = append(dst, h.Extra...)
	return dst
}

// ParseHeader decodes the header at the front of a datagram and the
// appended-ack tail at its back. It returns the header, the offset of the
// message id, and the end of the payload region (the start of the ack tail,
// or len(data) when no acks are appended).
func ParseHeader(data []byte) (h Header, bodyStart, bodyEnd int, err error) {
	if len(data) < MinHeaderLen {
		return h, 0, 0, protoerr.Malformed("datagram %d bytes, header needs %d", len(data), MinHeaderLen)
	}

	flags := data[0]
	h.Zerocoded = flags&FlagZerocoded != 0
	h.Reliable = flags&FlagReliable != 0
	h.Resent = flags&FlagResent != 0
	h.AppendedAcks = flags&FlagAppendedAcks != 0
	h.Sequence = binary.BigEndian.Uint32(data[1:5])

	extraLen := int(data[5])
	bodyStart = MinHeaderLen + extraLen
	if len(data) < bodyStart {
		return h, 0, 0, protoerr.Malformed("extra header %d bytes overruns %d-byte datagram", extraLen, len(data))
	}
	if extraLen > 0 {
		h.Extra = append([]byte(nil), data[MinHeaderLen:bodyStart]...)
	}

	bodyEnd = len(data)
	if h.AppendedAcks {
		if bodyEnd < bodyStart+1 {
			return h, 0, 0, protoerr.Malformed("appended-acks flag on empty body")
		}
		count := int(data[bodyEnd-1])
		tail := 1 + 4*count
		if bodyEnd-bodyStart < tail {
			return h, 0, 0, protoerr.Malformed("ack tail %d bytes overruns body", tail)
		}
		bodyEnd -= tail
		h.AckList = make([]uint32, count)
		for i := 0; i < count; i++ {
			h.AckList[i] = binary.BigEndian.Uint32(data[bodyEnd+4*i:])
		}
	}

	return h, bodyStart, bodyEnd, nil
}

// AppendAckTail appends the ack tail (4 bytes per ack, big-endian, then the
// count byte) to dst and returns the result. Callers set the appended-acks
// flag themselves; at most 255 acks fit.
func AppendAckTail(dst []byte, acks []uint32) []byte {
	for _, a := range acks {
		dst = binary.BigEndian.AppendUint32(dst, a)
	}
	return append(dst, byte(len(acks)))
}

// AckTailSize returns the wire cost of appending n acks.
func AckTailSize(n int) int { return 4*n + 1 }

// WriteID appends the message id for the given frequency class: High one
// byte, Medium 0xFF + one byte, Low 0xFF 0xFF + big-endian id, Fixed
// 0xFF 0xFF 0xFF + low id byte.
func WriteID(dst []byte, freq template.Frequency, id uint16) []byte {
	switch freq {
	case template.High:
		return append(dst, byte(id))
	case template.Medium:
		return append(dst, 0xFF, byte(id))
	case template.Low:
		dst = append(dst, 0xFF, 0xFF)
		return binary.BigEndian.AppendUint16(dst, id)
	default: // Fixed
		return append(dst, 0xFF, 0xFF, 0xFF, byte(id))
	}
}

// ReadID decodes a message id from the front of the payload region and
// returns the frequency class, the id, and the number of bytes consumed.
func ReadID(body []byte) (template.Frequency, uint16, int, error) {
	if len(body) < 1 {
		return 0, 0, 0, protoerr.Malformed("empty body, no message id")
	}
	if body[0] != 0xFF {
		return template.High, uint16(body[0]), 1, nil
	}
	if len(body) < 2 {
		return 0, 0, 0, protoerr.Malformed("truncated message id")
	}
	if body[1] != 0xFF {
		return template.Medium, uint16(body[1]), 2, nil
	}
	if len(body) < 4 {
		return 0, 0, 0, protoerr.Malformed("truncated message id")
	}
	if body[2] != 0xFF {
		return template.Low, binary.BigEndian.Uint16(body[2:4]), 4, nil
	}
	return template.Fixed, uint16(body[3]), 4, nil
}
