// Package primitives implements the scalar wire codec shared by the
// generated packet encoders and the hand-written wire layer.
//
// Protocol integers are little-endian except for port fields and the framing
// integers handled by the header codec (sequence numbers, Low message ids,
// appended acks), which are big-endian. Reads and
// writes go through an explicit cursor so the generated code advances
// positions without slice reslicing at every field.
package primitives

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
	"github.com/gridlink/gridlink/internal/protocol/types"
)

// Reader decodes scalars from a byte slice with an advancing cursor.
// All methods return a malformed-data error on truncation and leave the
// cursor unchanged when they fail.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader over data starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) need(n int) error {
	if len(r.data)-r.pos < n {
		return protoerr.Malformed("need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
	}
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// S8 reads a signed byte.
func (r *Reader) S8() (int8, error) {
	b, err := r.U8()
	return int8(b), err
}

// Bool reads a one-byte boolean (nonzero is true).
func (r *Reader) Bool() (bool, error) {
	b, err := r.U8()
	return b != 0, err
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// S16 reads a little-endian int16.
func (r *Reader) S16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U16BE reads a big-endian uint16. Port fields use this.
func (r *Reader) U16BE() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// S32 reads a little-endian int32.
func (r *Reader) S32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// S64 reads a little-endian int64.
func (r *Reader) S64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// F32 reads a little-endian IEEE 754 single.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// F64 reads a little-endian IEEE 754 double.
func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}

// IPAddr reads a 4-byte address in the order it appears on the wire.
// The bytes are opaque; no swapping is applied.
func (r *Reader) IPAddr() ([4]byte, error) {
	var a [4]byte
	if err := r.need(4); err != nil {
		return a, err
	}
	copy(a[:], r.data[r.pos:r.pos+4])
	r.pos += 4
	return a, nil
}

// UUID reads a 16-byte identifier.
func (r *Reader) UUID() (uuid.UUID, error) {
	var u uuid.UUID
	if err := r.need(16); err != nil {
		return u, err
	}
	copy(u[:], r.data[r.pos:r.pos+16])
	r.pos += 16
	return u, nil
}

// Vector3 reads three little-endian singles.
func (r *Reader) Vector3() (types.Vector3, error) {
	if err := r.need(12); err != nil {
		return types.Vector3{}, err
	}
	v := types.GetVector3(r.data, r.pos)
	r.pos += 12
	return v, nil
}

// Vector3d reads three little-endian doubles.
func (r *Reader) Vector3d() (types.Vector3d, error) {
	if err := r.need(24); err != nil {
		return types.Vector3d{}, err
	}
	v := types.GetVector3d(r.data, r.pos)
	r.pos += 24
	return v, nil
}

// Vector4 reads four little-endian singles.
func (r *Reader) Vector4() (types.Vector4, error) {
	if err := r.need(16); err != nil {
		return types.Vector4{}, err
	}
	v := types.GetVector4(r.data, r.pos)
	r.pos += 16
	return v, nil
}

// Quaternion reads a packed three-float rotation and reconstructs W.
func (r *Reader) Quaternion() (types.Quaternion, error) {
	if err := r.need(12); err != nil {
		return types.Quaternion{}, err
	}
	q := types.GetQuaternion(r.data, r.pos)
	r.pos += 12
	return q, nil
}

// Fixed reads exactly n raw bytes.
func (r *Reader) Fixed(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Variable reads a length-prefixed byte field. prefix is the width of the
// length prefix in bytes (1 or 2, little-endian for 2).
func (r *Reader) Variable(prefix int) ([]byte, error) {
	start := r.pos
	var n int
	switch prefix {
	case 1:
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		n = int(b)
	case 2:
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		n = int(v)
	default:
		return nil, protoerr.Malformed("variable field prefix width %d", prefix)
	}
	out, err := r.Fixed(n)
	if err != nil {
		r.pos = start
		return nil, err
	}
	return out, nil
}

// Writer encodes scalars into a growable byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity hinted at size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Wrap returns a Writer that appends to an existing buffer, so callers can
// prefix framing bytes before handing off to field encoders.
func Wrap(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 writes one byte.
func (w *Writer) U8(v byte) { w.buf = append(w.buf, v) }

// S8 writes a signed byte.
func (w *Writer) S8(v int8) { w.buf = append(w.buf, byte(v)) }

// Bool writes a one-byte boolean.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// S16 writes a little-endian int16.
func (w *Writer) S16(v int16) { w.U16(uint16(v)) }

// U16BE writes a big-endian uint16. Port fields use this.
func (w *Writer) U16BE(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// U32 writes a little-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// S32 writes a little-endian int32.
func (w *Writer) S32(v int32) { w.U32(uint32(v)) }

// U64 writes a little-endian uint64.
func (w *Writer) U64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// S64 writes a little-endian int64.
func (w *Writer) S64(v int64) { w.U64(uint64(v)) }

// F32 writes a little-endian IEEE 754 single.
func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// F64 writes a little-endian IEEE 754 double.
func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

// IPAddr writes a 4-byte address verbatim.
func (w *Writer) IPAddr(a [4]byte) { w.buf = append(w.buf, a[:]...) }

// UUID writes a 16-byte identifier.
func (w *Writer) UUID(u uuid.UUID) { w.buf = append(w.buf, u[:]...) }

// Vector3 writes three little-endian singles.
func (w *Writer) Vector3(v types.Vector3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}

// Vector3d writes three little-endian doubles.
func (w *Writer) Vector3d(v types.Vector3d) {
	w.F64(v.X)
	w.F64(v.Y)
	w.F64(v.Z)
}

// Vector4 writes four little-endian singles.
func (w *Writer) Vector4(v types.Vector4) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
	w.F32(v.W)
}

// Quaternion writes the X, Y, Z components; W is not transmitted.
func (w *Writer) Quaternion(q types.Quaternion) {
	w.F32(q.X)
	w.F32(q.Y)
	w.F32(q.Z)
}

// Fixed writes raw bytes, failing if v is not exactly n bytes.
func (w *Writer) Fixed(v []byte, n int) error {
	if len(v) != n {
		return protoerr.CapacityExceeded("fixed field wants %d bytes, got %d", n, len(v))
	}
	w.buf = append(w.buf, v...)
	return nil
}

// Variable writes a length-prefixed byte field. prefix is the width of the
// length prefix in bytes (1 or 2).
func (w *Writer) Variable(v []byte, prefix int) error {
	switch prefix {
	case 1:
		if len(v) > 0xFF {
			return protoerr.CapacityExceeded("variable field %d bytes exceeds 1-byte prefix", len(v))
		}
		w.U8(byte(len(v)))
	case 2:
		if len(v) > 0xFFFF {
			return protoerr.CapacityExceeded("variable field %d bytes exceeds 2-byte prefix", len(v))
		}
		w.U16(uint16(len(v)))
	default:
		return protoerr.Malformed("variable field prefix width %d", prefix)
	}
	w.buf = append(w.buf, v...)
	return nil
}

// DateToF64 converts a timestamp to seconds since the Unix epoch as carried
// by binary OSD.
func DateToF64(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// F64ToDate converts Unix seconds back to a UTC timestamp.
func F64ToDate(secs float64) time.Time {
	return time.Unix(0, int64(secs*float64(time.Second))).UTC()
}

// FormatDate renders a timestamp for the text OSD serializations:
// yyyy-MM-ddTHH:mm:ssZ, with a fractional .fff part only when the value has
// sub-second precision.
func FormatDate(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02T15:04:05.000Z")
	}
	return t.Format("2006-01-02T15:04:05Z")
}

// ParseDate accepts the formats produced by FormatDate. Unparseable input
// yields the epoch, matching the total-conversion rule for OSD dates.
func ParseDate(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Unix(0, 0).UTC()
}

// EncodeBase64 renders binary data for the JSON and XML serializations.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 is the inverse of EncodeBase64. Invalid input yields an
// empty byte sequence, matching the total-conversion rule for OSD binary.
func DecodeBase64(s string) []byte {
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return []byte{}
	}
	return out
}
