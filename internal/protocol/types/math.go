// Package types holds the vector, quaternion, and color value types carried
// by protocol message fields, together with their wire serialization.
//
// All components are little-endian IEEE 754 on the wire. Quaternions are
// packed as three floats; W is reconstructed on decode from the unit-length
// constraint and is always non-negative.
package types

import (
	"encoding/binary"
	"math"
)

// Vector3 is a triple of 32-bit floats (12 wire bytes).
type Vector3 struct {
	X, Y, Z float32
}

// Vector3d is a triple of 64-bit floats (24 wire bytes).
type Vector3d struct {
	X, Y, Z float64
}

// Vector4 is a quadruple of 32-bit floats (16 wire bytes).
type Vector4 struct {
	X, Y, Z, W float32
}

// Quaternion is a rotation. On the wire only X, Y, Z are carried (12 bytes);
// W is derived on decode as +sqrt(max(0, 1-x^2-y^2-z^2)).
type Quaternion struct {
	X, Y, Z, W float32
}

// Color4 is an RGBA color with byte components (4 wire bytes).
type Color4 struct {
	R, G, B, A byte
}

// PutVector3 writes v at b[off:] and returns the new offset.
func PutVector3(b []byte, off int, v Vector3) int {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[off+4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[off+8:], math.Float32bits(v.Z))
	return off + 12
}

// GetVector3 reads a Vector3 at b[off:].
func GetVector3(b []byte, off int) Vector3 {
	return Vector3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[off:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[off+8:])),
	}
}

// PutVector3d writes v at b[off:] and returns the new offset.
func PutVector3d(b []byte, off int, v Vector3d) int {
	binary.LittleEndian.PutUint64(b[off:], math.Float64bits(v.X))
	binary.LittleEndian.PutUint64(b[off+8:], math.Float64bits(v.Y))
	binary.LittleEndian.PutUint64(b[off+16:], math.Float64bits(v.Z))
	return off + 24
}

// GetVector3d reads a Vector3d at b[off:].
func GetVector3d(b []byte, off int) Vector3d {
	return Vector3d{
		X: math.Float64frombits(binary.LittleEndian.Uint64(b[off:])),
		Y: math.Float64frombits(binary.LittleEndian.Uint64(b[off+8:])),
		Z: math.Float64frombits(binary.LittleEndian.Uint64(b[off+16:])),
	}
}

// PutVector4 writes v at b[off:] and returns the new offset.
func PutVector4(b []byte, off int, v Vector4) int {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[off+4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[off+8:], math.Float32bits(v.Z))
	binary.LittleEndian.PutUint32(b[off+12:], math.Float32bits(v.W))
	return off + 16
}

// GetVector4 reads a Vector4 at b[off:].
func GetVector4(b []byte, off int) Vector4 {
	return Vector4{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[off:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[off+8:])),
		W: math.Float32frombits(binary.LittleEndian.Uint32(b[off+12:])),
	}
}

// PutQuaternion writes the X, Y, Z components of q at b[off:] and returns
// the new offset. W is not transmitted.
func PutQuaternion(b []byte, off int, q Quaternion) int {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(q.X))
	binary.LittleEndian.PutUint32(b[off+4:], math.Float32bits(q.Y))
	binary.LittleEndian.PutUint32(b[off+8:], math.Float32bits(q.Z))
	return off + 12
}

// GetQuaternion reads a packed quaternion at b[off:], reconstructing W from
// the unit-length constraint. W is never negative; the peer normalizes sign
// before encoding.
func GetQuaternion(b []byte, off int) Quaternion {
	q := Quaternion{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[off:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[off+8:])),
	}
	sq := 1 - float64(q.X)*float64(q.X) - float64(q.Y)*float64(q.Y) - float64(q.Z)*float64(q.Z)
	if sq > 0 {
		q.W = float32(math.Sqrt(sq))
	}
	return q
}

// Normalize returns q scaled to unit length. A zero quaternion becomes the
// identity rotation.
func (q Quaternion) Normalize() Quaternion {
	mag := math.Sqrt(float64(q.X)*float64(q.X) + float64(q.Y)*float64(q.Y) +
		float64(q.Z)*float64(q.Z) + float64(q.W)*float64(q.W))
	if mag == 0 {
		return Quaternion{W: 1}
	}
	inv := float32(1 / mag)
	return Quaternion{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// PutColor4 writes c at b[off:] and returns the new offset.
func PutColor4(b []byte, off int, c Color4) int {
	b[off] = c.R
	b[off+1] = c.G
	b[off+2] = c.B
	b[off+3] = c.A
	return off + 4
}

// GetColor4 reads a Color4 at b[off:].
func GetColor4(b []byte, off int) Color4 {
	return Color4{R: b[off], G: b[off+1], B: b[off+2], A: b[off+3]}
}
