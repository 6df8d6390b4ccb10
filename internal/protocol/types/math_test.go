package types

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuaternionRoundTrip(t *testing.T) {
	q := Quaternion{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5}

	buf := make([]byte, 12)
	off := PutQuaternion(buf, 0, q)
	require.Equal(t, 12, off)

	// The wire carries three 0.5 singles; W is never transmitted.
	for i := 0; i < 3; i++ {
		bits := binary.LittleEndian.Uint32(buf[4*i:])
		assert.Equal(t, float32(0.5), math.Float32frombits(bits))
	}

	got := GetQuaternion(buf, 0)
	assert.Equal(t, q.X, got.X)
	assert.Equal(t, q.Y, got.Y)
	assert.Equal(t, q.Z, got.Z)
	assert.InDelta(t, 0.5, float64(got.W), 1e-6)
}

func TestQuaternionWNeverNegative(t *testing.T) {
	// A rotation with negative W encodes as X,Y,Z only; the decoder must
	// reconstruct the positive root.
	q := Quaternion{X: 0.1, Y: 0.2, Z: 0.3, W: -0.927}.Normalize()
	buf := make([]byte, 12)
	PutQuaternion(buf, 0, q)
	got := GetQuaternion(buf, 0)
	assert.GreaterOrEqual(t, got.W, float32(0))
}

func TestQuaternionOverUnitLength(t *testing.T) {
	// Components whose squares exceed one must not produce NaN.
	buf := make([]byte, 12)
	PutQuaternion(buf, 0, Quaternion{X: 0.8, Y: 0.8, Z: 0.8})
	got := GetQuaternion(buf, 0)
	assert.False(t, math.IsNaN(float64(got.W)))
	assert.Equal(t, float32(0), got.W)
}

func TestNormalizeZero(t *testing.T) {
	q := Quaternion{}.Normalize()
	assert.Equal(t, Quaternion{W: 1}, q)
}

func TestVectorRoundTrips(t *testing.T) {
	buf := make([]byte, 64)

	v3 := Vector3{X: 1.5, Y: -2.25, Z: 1e10}
	require.Equal(t, 12, PutVector3(buf, 0, v3))
	assert.Equal(t, v3, GetVector3(buf, 0))

	v3d := Vector3d{X: 256.000244140625, Y: -1, Z: 1e100}
	require.Equal(t, 24, PutVector3d(buf, 0, v3d))
	assert.Equal(t, v3d, GetVector3d(buf, 0))

	v4 := Vector4{X: 0, Y: 1, Z: 2, W: 3}
	require.Equal(t, 16, PutVector4(buf, 0, v4))
	assert.Equal(t, v4, GetVector4(buf, 0))
}

func TestColor4RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	c := Color4{R: 1, G: 2, B: 3, A: 255}
	require.Equal(t, 6, PutColor4(buf, 2, c))
	assert.Equal(t, c, GetColor4(buf, 2))
}
