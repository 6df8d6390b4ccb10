package osd

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"

	"github.com/gridlink/gridlink/internal/protocol/primitives"
	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

// binaryHeader prefixes binary serializations so the format sniffer can
// route them.
const binaryHeader = "<? llsd/binary ?>\n"

// SerializeBinary renders v in the length-framed big-endian binary format
// with one-byte type tags, prefixed with the binary header line.
func SerializeBinary(v Value) []byte {
	out := append([]byte(nil), binaryHeader...)
	return appendBinary(out, v)
}

func appendBinary(out []byte, v Value) []byte {
	switch v.t {
	case TypeNull:
		return append(out, '!')
	case TypeBool:
		if v.b {
			return append(out, '1')
		}
		return append(out, '0')
	case TypeInt:
		out = append(out, 'i')
		return binary.BigEndian.AppendUint32(out, uint32(int32(v.i)))
	case TypeReal:
		out = append(out, 'r')
		return binary.BigEndian.AppendUint64(out, math.Float64bits(v.r))
	case TypeString:
		out = append(out, 's')
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.s)))
		return append(out, v.s...)
	case TypeUUID:
		out = append(out, 'u')
		return append(out, v.u[:]...)
	case TypeDate:
		out = append(out, 'd')
		return binary.BigEndian.AppendUint64(out, math.Float64bits(primitives.DateToF64(v.tm)))
	case TypeURI:
		out = append(out, 'l')
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.s)))
		return append(out, v.s...)
	case TypeBinary:
		out = append(out, 'b')
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.bin)))
		return append(out, v.bin...)
	case TypeArray:
		out = append(out, '[')
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.a)))
		for _, e := range v.a {
			out = appendBinary(out, e)
		}
		return append(out, ']')
	case TypeMap:
		out = append(out, '{')
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.m)))
		for k, e := range v.m {
			out = append(out, 'k')
			out = binary.BigEndian.AppendUint32(out, uint32(len(k)))
			out = append(out, k...)
			out = appendBinary(out, e)
		}
		return append(out, '}')
	default:
		return append(out, '!')
	}
}

// ParseBinary decodes the binary format, tolerating an optional header
// line and trailing whitespace.
func ParseBinary(data []byte) (Value, error) {
	d := &binaryDecoder{data: skipBinaryHeader(data)}
	v, err := d.value()
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func skipBinaryHeader(data []byte) []byte {
	for len(data) > 0 && (data[0] == ' ' || data[0] == '\t' || data[0] == '\r' || data[0] == '\n') {
		data = data[1:]
	}
	if len(data) >= 2 && data[0] == '<' && data[1] == '?' {
		for i, b := range data {
			if b == '\n' {
				return data[i+1:]
			}
		}
		return nil
	}
	return data
}

type binaryDecoder struct {
	data []byte
	pos  int
}

func (d *binaryDecoder) byte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, protoerr.Malformed("binary llsd: truncated at %d", d.pos)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *binaryDecoder) take(n int) ([]byte, error) {
	if len(d.data)-d.pos < n {
		return nil, protoerr.Malformed("binary llsd: need %d bytes at %d", n, d.pos)
	}
	out := d.data[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *binaryDecoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *binaryDecoder) value() (Value, error) {
	tag, err := d.byte()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case '!':
		return Null(), nil
	case '1':
		return FromBool(true), nil
	case '0':
		return FromBool(false), nil
	case 'i':
		v, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		return FromInt(int32(v)), nil
	case 'r':
		b, err := d.take(8)
		if err != nil {
			return Value{}, err
		}
		return FromReal(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case 's', 'l':
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		b, err := d.take(int(n))
		if err != nil {
			return Value{}, err
		}
		if tag == 'l' {
			return FromURI(string(b)), nil
		}
		return FromString(string(b)), nil
	case 'u':
		b, err := d.take(16)
		if err != nil {
			return Value{}, err
		}
		var u uuid.UUID
		copy(u[:], b)
		return FromUUID(u), nil
	case 'd':
		b, err := d.take(8)
		if err != nil {
			return Value{}, err
		}
		secs := math.Float64frombits(binary.BigEndian.Uint64(b))
		return FromDate(primitives.F64ToDate(secs)), nil
	case 'b':
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		b, err := d.take(int(n))
		if err != nil {
			return Value{}, err
		}
		return FromBinary(append([]byte(nil), b...)), nil
	case '[':
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		arr := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			e, err := d.value()
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, e)
		}
		if end, err := d.byte(); err != nil {
			return Value{}, err
		} else if end != ']' {
			return Value{}, protoerr.Malformed("binary llsd: array terminator 0x%02x", end)
		}
		return FromArray(arr), nil
	case '{':
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		m := make(map[string]Value, n)
		for i := uint32(0); i < n; i++ {
			kt, err := d.byte()
			if err != nil {
				return Value{}, err
			}
			if kt != 'k' {
				return Value{}, protoerr.Malformed("binary llsd: map key tag 0x%02x", kt)
			}
			kl, err := d.u32()
			if err != nil {
				return Value{}, err
			}
			kb, err := d.take(int(kl))
			if err != nil {
				return Value{}, err
			}
			e, err := d.value()
			if err != nil {
				return Value{}, err
			}
			m[string(kb)] = e
		}
		if end, err := d.byte(); err != nil {
			return Value{}, err
		} else if end != '}' {
			return Value{}, protoerr.Malformed("binary llsd: map terminator 0x%02x", end)
		}
		return FromMap(m), nil
	default:
		return Value{}, protoerr.Malformed("binary llsd: unknown tag 0x%02x at %d", tag, d.pos-1)
	}
}
