package template

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestdata(t *testing.T, unused map[string]struct{}) *Template {
	t.Helper()
	f, err := os.Open("testdata/message_template.msg")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	tmpl, err := Parse(f, unused)
	require.NoError(t, err)
	return tmpl
}

func TestParseManifest(t *testing.T) {
	tmpl := parseTestdata(t, nil)
	assert.Equal(t, "2.0", tmpl.Version)
	assert.Len(t, tmpl.Messages, 23)

	m := tmpl.Lookup("TestMessage")
	require.NotNil(t, m)
	assert.Equal(t, Low, m.Freq)
	assert.Equal(t, uint16(1), m.ID)
	assert.False(t, m.Trusted)
	assert.True(t, m.Zerocoded)
	require.Len(t, m.Blocks, 2)

	assert.Equal(t, "TestBlock1", m.Blocks[0].Name)
	assert.Equal(t, Single, m.Blocks[0].Qty)
	require.Len(t, m.Blocks[0].Fields, 1)
	assert.Equal(t, TypeU32, m.Blocks[0].Fields[0].Type)

	nb := m.Blocks[1]
	assert.Equal(t, Multiple, nb.Qty)
	assert.Equal(t, 4, nb.Count)
	assert.Len(t, nb.Fields, 3)
}

func TestParseFixedID(t *testing.T) {
	tmpl := parseTestdata(t, nil)
	m := tmpl.Lookup("PacketAck")
	require.NotNil(t, m)
	assert.Equal(t, Fixed, m.Freq)
	// Only the low byte of 0xFFFFFFFB reaches the wire.
	assert.Equal(t, uint16(0xFB), m.ID)
}

func TestParseVariableFieldPrefix(t *testing.T) {
	tmpl := parseTestdata(t, nil)
	m := tmpl.Lookup("ImprovedTerseObjectUpdate")
	require.NotNil(t, m)
	od := m.Blocks[1]
	assert.Equal(t, Variable, od.Qty)
	assert.Equal(t, 1, od.Fields[0].Count)
	assert.Equal(t, 2, od.Fields[1].Count)
}

func TestUnusedFilter(t *testing.T) {
	unused := map[string]struct{}{"TestMessage": {}}
	tmpl := parseTestdata(t, unused)
	assert.Nil(t, tmpl.Lookup("TestMessage"))
	assert.Len(t, tmpl.Messages, 22)

	// The filtered id slot stays reserved: a manifest reusing it fails.
	_, err := ParseString(`
{
	TestMessage Low 1 NotTrusted Zerocoded
	{
		B	Single
		{	F	U32	}
	}
}
{
	Imposter Low 1 NotTrusted Unencoded
	{
		B	Single
		{	F	U32	}
	}
}
`, unused)
	assert.Error(t, err)
}

func TestDuplicateNameRejected(t *testing.T) {
	_, err := ParseString(`
{
	Twin Low 1 NotTrusted Unencoded
}
{
	Twin Low 2 NotTrusted Unencoded
}
`, nil)
	assert.Error(t, err)
}

func TestDuplicateIDSameFrequencyRejected(t *testing.T) {
	_, err := ParseString(`
{
	One Low 9 NotTrusted Unencoded
}
{
	Two Low 9 NotTrusted Unencoded
}
`, nil)
	assert.Error(t, err)

	// The same id in different frequency classes is legal.
	tmpl, err := ParseString(`
{
	One Low 9 NotTrusted Unencoded
}
{
	Two High 9 NotTrusted Unencoded
}
`, nil)
	require.NoError(t, err)
	assert.Len(t, tmpl.Messages, 2)
}

func TestBadMultipleCount(t *testing.T) {
	_, err := ParseString(`
{
	M Low 1 NotTrusted Unencoded
	{
		B	Multiple 1
		{	F	U32	}
	}
}
`, nil)
	assert.Error(t, err)
}

func TestBadVariablePrefix(t *testing.T) {
	_, err := ParseString(`
{
	M Low 1 NotTrusted Unencoded
	{
		B	Single
		{	F	Variable 3	}
	}
}
`, nil)
	assert.Error(t, err)
}

func TestUnknownDirectiveIgnored(t *testing.T) {
	tmpl, err := ParseString(`
version 2.0
flags extended
{
	M Low 1 NotTrusted Unencoded
}
`, nil)
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("M"))
}

func TestCommentsIgnored(t *testing.T) {
	tmpl, err := ParseString(`
// leading comment
{
	M Low 1 NotTrusted Unencoded // trailing comment
}
`, nil)
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("M"))
}

func TestFieldSizes(t *testing.T) {
	cases := map[FieldType]int{
		TypeBool:       1,
		TypeU8:         1,
		TypeS8:         1,
		TypeU16:        2,
		TypeS16:        2,
		TypeIPPort:     2,
		TypeU32:        4,
		TypeS32:        4,
		TypeF32:        4,
		TypeIPAddr:     4,
		TypeU64:        8,
		TypeS64:        8,
		TypeF64:        8,
		TypeVector3:    12,
		TypeQuaternion: 12,
		TypeVector4:    16,
		TypeUUID:       16,
		TypeVector3d:   24,
	}
	for ft, want := range cases {
		assert.Equal(t, want, ft.WireSize(), ft.String())
	}
	assert.Equal(t, -1, TypeFixed.WireSize())
	assert.Equal(t, -1, TypeVariable.WireSize())
}

func TestIDWidth(t *testing.T) {
	assert.Equal(t, 1, High.IDWidth())
	assert.Equal(t, 2, Medium.IDWidth())
	assert.Equal(t, 4, Low.IDWidth())
	assert.Equal(t, 4, Fixed.IDWidth())
}
