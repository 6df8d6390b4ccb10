package osd

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlink/gridlink/internal/protocol/primitives"
)

func sampleValues() map[string]Value {
	return map[string]Value{
		"null":   Null(),
		"true":   FromBool(true),
		"false":  FromBool(false),
		"int":    FromInt(-42),
		"real":   FromReal(3.140625),
		"string": FromString("it's a \"test\" with \\slashes\\ and\nnewlines"),
		"uuid":   FromUUID(uuid.MustParse("97f4aeca-88a1-42a1-b385-b97b18abb255")),
		"date":   FromDate(time.Date(2009, 3, 14, 21, 0, 0, 0, time.UTC)),
		"uri":    FromURI("http://sim.example.test/cap/123"),
		"binary": FromBinary([]byte{0, 1, 2, 0xFF}),
		"empty-map":   FromMap(map[string]Value{}),
		"empty-array": FromArray([]Value{}),
		"nested": FromMap(map[string]Value{
			"list": FromArray([]Value{
				FromInt(1),
				FromString("two"),
				FromArray([]Value{FromBool(false)}),
				FromMap(map[string]Value{"k": FromReal(0.5)}),
			}),
		}),
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	for name, v := range sampleValues() {
		got, err := ParseBinary(SerializeBinary(v))
		require.NoError(t, err, name)
		assert.True(t, Equal(v, got), "%s: %v != %v", name, v.Type(), got.Type())
	}
}

func TestNotationRoundTrip(t *testing.T) {
	for name, v := range sampleValues() {
		got, err := ParseNotation(SerializeNotation(v))
		require.NoError(t, err, name)
		assert.True(t, Equal(v, got), "%s", name)
	}
}

func TestXMLRoundTrip(t *testing.T) {
	for name, v := range sampleValues() {
		got, err := ParseXML(SerializeXML(v))
		require.NoError(t, err, name)
		assert.True(t, Equal(v, got), "%s", name)
	}
}

func TestJSONRoundTripJSONTypes(t *testing.T) {
	// JSON carries only its native types losslessly; UUID, Date, URI, and
	// Binary degrade to strings by design.
	vals := map[string]Value{
		"null":  Null(),
		"bool":  FromBool(true),
		"int":   FromInt(7),
		"real":  FromReal(2.5),
		"str":   FromString("plain"),
		"array": FromArray([]Value{FromInt(1), FromBool(true), Null()}),
		"map":   FromMap(map[string]Value{"a": FromInt(1)}),
	}
	for name, v := range vals {
		data, err := SerializeJSON(v)
		require.NoError(t, err, name)
		got, err := ParseJSON(data)
		require.NoError(t, err, name)
		assert.True(t, Equal(v, got), "%s: got %s", name, got.Type())
	}
}

func TestJSONScenario(t *testing.T) {
	// {"a":[1,true,null]} parses to Map{"a" -> [Int 1, Bool true, Null]}
	// and re-emits equivalently.
	v, err := ParseJSON([]byte(`{"a":[1,true,null]}`))
	require.NoError(t, err)
	arr := v.Get("a").AsArray()
	require.Len(t, arr, 3)
	assert.Equal(t, TypeInt, arr[0].Type())
	assert.Equal(t, int32(1), arr[0].AsInt())
	assert.Equal(t, TypeBool, arr[1].Type())
	assert.True(t, arr[1].AsBool())
	assert.Equal(t, TypeNull, arr[2].Type())

	out, err := SerializeJSON(v)
	require.NoError(t, err)
	back, err := ParseJSON(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestJSONExtensions(t *testing.T) {
	u := uuid.MustParse("97f4aeca-88a1-42a1-b385-b97b18abb255")
	data, err := SerializeJSON(FromMap(map[string]Value{
		"id":  FromUUID(u),
		"bin": FromBinary([]byte{1, 2, 3}),
	}))
	require.NoError(t, err)

	got, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, u, got.Get("id").AsUUID())
	assert.Equal(t, []byte{1, 2, 3}, primitives.DecodeBase64(got.Get("bin").AsString()))
}

func TestJSONNumberDistinction(t *testing.T) {
	v, err := ParseJSON([]byte(`[1, 1.0, 1e3, -7]`))
	require.NoError(t, err)
	arr := v.AsArray()
	require.Len(t, arr, 4)
	assert.Equal(t, TypeInt, arr[0].Type())
	assert.Equal(t, TypeReal, arr[1].Type())
	assert.Equal(t, TypeReal, arr[2].Type())
	assert.Equal(t, TypeInt, arr[3].Type())
}

func TestSniff(t *testing.T) {
	cases := []struct {
		data   string
		format Format
	}{
		{`<?xml version="1.0"?><llsd><integer>1</integer></llsd>`, FormatXML},
		{`<llsd><undef/></llsd>`, FormatXML},
		{`<LLSD><undef/></LLSD>`, FormatXML},
		{"<? llsd/notation ?>\ni5", FormatNotation},
		{"<? LLSD/Binary ?>\n!", FormatBinary},
		{`{"a": 1}`, FormatJSON},
		{`  [1,2]`, FormatJSON},
		{"\n\t<llsd><undef/></llsd>", FormatXML},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.format, Sniff([]byte(tc.data)), "case %d", i)
	}
}

func TestParseRoutesByHeader(t *testing.T) {
	v := FromMap(map[string]Value{"n": FromInt(9)})
	for _, f := range []Format{FormatBinary, FormatNotation, FormatXML, FormatJSON} {
		data, err := Serialize(v, f)
		require.NoError(t, err, f.String())
		got, err := Parse(data)
		require.NoError(t, err, f.String())
		assert.True(t, Equal(v, got), f.String())
	}
}

func TestXMLEmptySentinel(t *testing.T) {
	got, err := ParseXML([]byte(`<?xml version="1.0"?><Empty></Empty>`))
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestNotationLegacyForms(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"!", Null()},
		{"true", FromBool(true)},
		{"FALSE", FromBool(false)},
		{"i-12", FromInt(-12)},
		{"r0.5", FromReal(0.5)},
		{`s(5)"hello"`, FromString("hello")},
		{`"double"`, FromString("double")},
		{`b16"01FF"`, FromBinary([]byte{0x01, 0xFF})},
		{`b(3)"abc"`, FromBinary([]byte("abc"))},
		{"[i1, i2 , i3]", FromArray([]Value{FromInt(1), FromInt(2), FromInt(3)})},
		{"{'a': i1}", FromMap(map[string]Value{"a": FromInt(1)})},
	}
	for _, tc := range cases {
		got, err := ParseNotation([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.True(t, Equal(tc.want, got), fmt.Sprintf("%s -> %s", tc.in, got.Type()))
	}
}

func TestParseErrors(t *testing.T) {
	_, err := ParseBinary([]byte{'i', 0, 0})
	assert.Error(t, err)
	_, err = ParseNotation([]byte("q"))
	assert.Error(t, err)
	_, err = ParseXML([]byte("<llsd><bogus/></llsd>"))
	assert.Error(t, err)
	_, err = ParseJSON([]byte("{broken"))
	assert.Error(t, err)
}
