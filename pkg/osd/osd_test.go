package osd

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	assert.Equal(t, TypeNull, v.Type())
	assert.True(t, v.IsNull())
}

func TestBoolCoercions(t *testing.T) {
	assert.False(t, FromString("0").AsBool())
	assert.False(t, FromString("false").AsBool())
	assert.False(t, FromString("FALSE").AsBool())
	assert.False(t, FromString("").AsBool())
	assert.True(t, FromString("anything").AsBool())
	assert.True(t, FromString("1").AsBool())

	assert.False(t, FromArray(nil).AsBool())
	assert.True(t, FromArray([]Value{Null()}).AsBool())

	assert.False(t, FromBinary([]byte{0, 0}).AsBool())
	assert.True(t, FromBinary([]byte{0, 1}).AsBool())

	assert.False(t, Null().AsBool())
	assert.True(t, FromInt(-1).AsBool())
	assert.False(t, FromReal(0).AsBool())
}

func TestIntCoercions(t *testing.T) {
	assert.Equal(t, int32(42), FromInt(42).AsInt())
	assert.Equal(t, int32(1), FromBool(true).AsInt())
	assert.Equal(t, int32(0), Null().AsInt())

	// Strings take a leading decimal parse with floor.
	assert.Equal(t, int32(12), FromString("12abc").AsInt())
	assert.Equal(t, int32(3), FromString("3.9").AsInt())
	assert.Equal(t, int32(-4), FromString("-3.5").AsInt())
	assert.Equal(t, int32(0), FromString("junk").AsInt())

	// Out-of-range clamps.
	assert.Equal(t, int32(math.MaxInt32), FromReal(1e18).AsInt())
	assert.Equal(t, int32(math.MinInt32), FromReal(-1e18).AsInt())
	assert.Equal(t, int32(0), FromReal(math.NaN()).AsInt())

	// Binary folds its first four bytes big-endian.
	assert.Equal(t, int32(0x01020304), FromBinary([]byte{1, 2, 3, 4, 5}).AsInt())

	// Arrays fold their first four elements the same way.
	arr := FromArray([]Value{FromInt(1), FromInt(2), FromInt(3), FromInt(4)})
	assert.Equal(t, int32(0x01020304), arr.AsInt())
}

func TestLongCoercions(t *testing.T) {
	assert.Equal(t, int64(1<<40), FromLong(1<<40).AsLong())
	assert.Equal(t, int64(0x0102030405060708),
		FromBinary([]byte{1, 2, 3, 4, 5, 6, 7, 8}).AsLong())
}

func TestRealCoercions(t *testing.T) {
	assert.Equal(t, 2.5, FromReal(2.5).AsReal())
	assert.Equal(t, 1.0, FromBool(true).AsReal())
	assert.Equal(t, 2.5, FromString("2.5").AsReal())
	assert.Equal(t, 0.0, FromArray([]Value{FromInt(1)}).AsReal())
	assert.Equal(t, 0.0, FromBinary([]byte{1}).AsReal())
}

func TestStringCoercions(t *testing.T) {
	assert.Equal(t, "1", FromBool(true).AsString())
	assert.Equal(t, "0", FromBool(false).AsString())
	assert.Equal(t, "42", FromInt(42).AsString())
	assert.Equal(t, "2.5", FromReal(2.5).AsString())
	assert.Equal(t, "AQID", FromBinary([]byte{1, 2, 3}).AsString())
	assert.Equal(t, "", FromMap(nil).AsString())
}

func TestUUIDCoercions(t *testing.T) {
	u := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, u, FromUUID(u).AsUUID())
	assert.Equal(t, u, FromString(u.String()).AsUUID())
	assert.Equal(t, uuid.UUID{}, FromString("not a uuid").AsUUID())
	assert.Equal(t, uuid.UUID{}, FromArray(nil).AsUUID())
}

func TestDateCoercions(t *testing.T) {
	at := time.Date(2009, 3, 14, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, at, FromDate(at).AsDate())
	assert.Equal(t, at, FromString("2009-03-14T21:00:00Z").AsDate())
	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, epoch, FromArray(nil).AsDate())
	assert.Equal(t, epoch, FromString("garbage").AsDate())
}

func TestBinaryCoercions(t *testing.T) {
	assert.Equal(t, []byte("abc"), FromString("abc").AsBinary())
	assert.Equal(t, []byte{0, 0, 1, 44}, FromInt(300).AsBinary())
	assert.Equal(t, []byte{}, Null().AsBinary())
}

func TestMapAndArrayAccess(t *testing.T) {
	m := FromMap(map[string]Value{"a": FromInt(1)})
	assert.Equal(t, int32(1), m.Get("a").AsInt())
	assert.True(t, m.Get("missing").IsNull())
	assert.Nil(t, FromInt(1).AsMap())

	a := FromArray([]Value{FromInt(10), FromInt(20)})
	assert.Equal(t, int32(20), a.Index(1).AsInt())
	assert.True(t, a.Index(5).IsNull())
	assert.True(t, a.Index(-1).IsNull())
}

func TestCopyIsDeep(t *testing.T) {
	bin := []byte{1, 2, 3}
	orig := FromMap(map[string]Value{
		"b": FromBinary(bin),
		"a": FromArray([]Value{FromInt(1)}),
	})
	cp := orig.Copy()
	bin[0] = 99
	assert.Equal(t, byte(1), cp.Get("b").AsBinary()[0])
	assert.True(t, Equal(cp, cp))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Null(), Null()))
	assert.False(t, Equal(Null(), FromBool(false)))
	assert.True(t, Equal(FromReal(math.NaN()), FromReal(math.NaN())))
	assert.True(t, Equal(
		FromMap(map[string]Value{"x": FromInt(1)}),
		FromMap(map[string]Value{"x": FromInt(1)}),
	))
	assert.False(t, Equal(
		FromMap(map[string]Value{"x": FromInt(1)}),
		FromMap(map[string]Value{"y": FromInt(1)}),
	))
	assert.False(t, Equal(
		FromArray([]Value{FromInt(1), FromInt(2)}),
		FromArray([]Value{FromInt(2), FromInt(1)}),
	))
}
