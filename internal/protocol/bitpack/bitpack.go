// Package bitpack implements the sub-byte codec used by terrain and texture
// layer payloads. Bits are packed MSB-first within each byte.
//
// Byte-aligned operations (strings, raw byte runs) require the bit cursor to
// sit on a byte boundary and fail with a misalignment error otherwise.
package bitpack

import (
	"math"

	"github.com/google/uuid"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
	"github.com/gridlink/gridlink/internal/protocol/types"
)

// Packer reads and writes bit fields over a caller-owned buffer.
type Packer struct {
	data   []byte
	pos    int // byte index
	bitPos int // bit index within data[pos], 0..7, MSB first
}

// New returns a Packer over buf positioned at the start.
func New(buf []byte) *Packer {
	return &Packer{data: buf}
}

// Buffer returns the underlying byte buffer.
func (p *Packer) Buffer() []byte { return p.data }

// BytePos returns the current byte index.
func (p *Packer) BytePos() int { return p.pos }

// BitPos returns the bit index within the current byte, 0..7.
func (p *Packer) BitPos() int { return p.bitPos }

// Seek repositions the cursor. bit is clamped to [0,7]. When bit is nonzero
// the top bit bits of the target byte are cleared so subsequent writes OR
// into a known-zero region; callers that seek mid-byte forfeit round-trip
// of the clobbered bits unless their writes are bit-contiguous.
func (p *Packer) Seek(pos, bit int) {
	if bit < 0 {
		bit = 0
	} else if bit > 7 {
		bit = 7
	}
	p.pos = pos
	p.bitPos = bit
	if bit != 0 && pos < len(p.data) {
		p.data[pos] &= 0xFF >> bit
	}
}

func (p *Packer) packByteBits(b byte, count int) error {
	// b carries count bits right-aligned; shift them to the top first.
	b <<= uint(8 - count)
	for i := 0; i < count; i++ {
		if p.pos >= len(p.data) {
			return protoerr.CapacityExceeded("bit buffer full at byte %d", p.pos)
		}
		if b&0x80 != 0 {
			p.data[p.pos] |= 0x80 >> uint(p.bitPos)
		} else {
			p.data[p.pos] &^= 0x80 >> uint(p.bitPos)
		}
		b <<= 1
		p.bitPos++
		if p.bitPos == 8 {
			p.bitPos = 0
			p.pos++
		}
	}
	return nil
}

// PackBit writes a single bit.
func (p *Packer) PackBit(b bool) error {
	var v byte
	if b {
		v = 1
	}
	return p.packByteBits(v, 1)
}

// PackBitsFromByte writes the low count bits of b, count <= 8.
func (p *Packer) PackBitsFromByte(b byte, count int) error {
	if count < 0 || count > 8 {
		return protoerr.CapacityExceeded("bit count %d exceeds 8", count)
	}
	return p.packByteBits(b, count)
}

// PackBits writes the low count bits of value, count <= 32, most
// significant bit first.
func (p *Packer) PackBits(value uint32, count int) error {
	if count < 0 || count > 32 {
		return protoerr.CapacityExceeded("bit count %d exceeds 32", count)
	}
	for count > 0 {
		n := count % 8
		if n == 0 {
			n = 8
		}
		if err := p.packByteBits(byte(value>>uint(count-n)), n); err != nil {
			return err
		}
		count -= n
	}
	return nil
}

// PackFloat writes the 32 bits of an IEEE 754 single.
func (p *Packer) PackFloat(f float32) error {
	return p.PackBits(math.Float32bits(f), 32)
}

// PackFixed writes value as a fixed-point integer with the given layout.
// The wire integer is (value + 2^intBits when signed) * 2^fracBits, clamped
// to [0, 2^totalBits-1] where totalBits = intBits + fracBits + sign bit.
// totalBits must be 32 or fewer.
func (p *Packer) PackFixed(value float32, signed bool, intBits, fracBits int) error {
	total := intBits + fracBits
	if signed {
		total++
	}
	if total > 32 {
		return protoerr.CapacityExceeded("fixed-point width %d exceeds 32 bits", total)
	}
	v := float64(value)
	if signed {
		v += float64(uint32(1) << uint(intBits))
	}
	v *= float64(uint32(1) << uint(fracBits))
	max := float64(uint64(1)<<uint(total) - 1)
	if v < 0 {
		v = 0
	} else if v > max {
		v = max
	}
	return p.PackBits(uint32(v), total)
}

// PackUUID writes a 16-byte identifier. Byte-aligned.
func (p *Packer) PackUUID(u uuid.UUID) error {
	return p.PackBytes(u[:])
}

// PackColor4 writes the four color components. Byte-aligned.
func (p *Packer) PackColor4(c types.Color4) error {
	return p.PackBytes([]byte{c.R, c.G, c.B, c.A})
}

// PackBytes writes raw bytes. Byte-aligned.
func (p *Packer) PackBytes(b []byte) error {
	if p.bitPos != 0 {
		return protoerr.Misaligned("byte write at bit position %d", p.bitPos)
	}
	if p.pos+len(b) > len(p.data) {
		return protoerr.CapacityExceeded("bit buffer full at byte %d", p.pos)
	}
	copy(p.data[p.pos:], b)
	p.pos += len(b)
	return nil
}

// PackString writes raw UTF-8 bytes. Byte-aligned.
func (p *Packer) PackString(s string) error {
	return p.PackBytes([]byte(s))
}

func (p *Packer) unpackByteBits(count int) (byte, error) {
	var out byte
	for i := 0; i < count; i++ {
		if p.pos >= len(p.data) {
			return 0, protoerr.Malformed("bit buffer exhausted at byte %d", p.pos)
		}
		out <<= 1
		if p.data[p.pos]&(0x80>>uint(p.bitPos)) != 0 {
			out |= 1
		}
		p.bitPos++
		if p.bitPos == 8 {
			p.bitPos = 0
			p.pos++
		}
	}
	return out, nil
}

// UnpackBit reads a single bit.
func (p *Packer) UnpackBit() (bool, error) {
	b, err := p.unpackByteBits(1)
	return b != 0, err
}

// UnpackBitsToByte reads count bits into the low bits of a byte, count <= 8.
func (p *Packer) UnpackBitsToByte(count int) (byte, error) {
	if count < 0 || count > 8 {
		return 0, protoerr.CapacityExceeded("bit count %d exceeds 8", count)
	}
	return p.unpackByteBits(count)
}

// UnpackBits reads count bits, count <= 32, most significant bit first.
func (p *Packer) UnpackBits(count int) (uint32, error) {
	if count < 0 || count > 32 {
		return 0, protoerr.CapacityExceeded("bit count %d exceeds 32", count)
	}
	var out uint32
	for count > 0 {
		n := count % 8
		if n == 0 {
			n = 8
		}
		b, err := p.unpackByteBits(n)
		if err != nil {
			return 0, err
		}
		out = out<<uint(n) | uint32(b)
		count -= n
	}
	return out, nil
}

// UnpackFloat reads a 32-bit IEEE 754 single.
func (p *Packer) UnpackFloat() (float32, error) {
	v, err := p.UnpackBits(32)
	return math.Float32frombits(v), err
}

// UnpackFixed is the inverse of PackFixed with the same parameters.
func (p *Packer) UnpackFixed(signed bool, intBits, fracBits int) (float32, error) {
	total := intBits + fracBits
	if signed {
		total++
	}
	if total > 32 {
		return 0, protoerr.CapacityExceeded("fixed-point width %d exceeds 32 bits", total)
	}
	raw, err := p.UnpackBits(total)
	if err != nil {
		return 0, err
	}
	v := float64(raw) / float64(uint32(1)<<uint(fracBits))
	if signed {
		v -= float64(uint32(1) << uint(intBits))
	}
	return float32(v), nil
}

// UnpackUUID reads a 16-byte identifier. Byte-aligned.
func (p *Packer) UnpackUUID() (uuid.UUID, error) {
	var u uuid.UUID
	b, err := p.UnpackBytes(16)
	if err != nil {
		return u, err
	}
	copy(u[:], b)
	return u, nil
}

// UnpackColor4 reads four color components. Byte-aligned.
func (p *Packer) UnpackColor4() (types.Color4, error) {
	b, err := p.UnpackBytes(4)
	if err != nil {
		return types.Color4{}, err
	}
	return types.Color4{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// UnpackBytes reads n raw bytes. Byte-aligned.
func (p *Packer) UnpackBytes(n int) ([]byte, error) {
	if p.bitPos != 0 {
		return nil, protoerr.Misaligned("byte read at bit position %d", p.bitPos)
	}
	if p.pos+n > len(p.data) {
		return nil, protoerr.Malformed("bit buffer exhausted at byte %d", p.pos)
	}
	out := make([]byte, n)
	copy(out, p.data[p.pos:])
	p.pos += n
	return out, nil
}

// UnpackString reads n raw UTF-8 bytes. Byte-aligned.
func (p *Packer) UnpackString(n int) (string, error) {
	b, err := p.UnpackBytes(n)
	return string(b), err
}
