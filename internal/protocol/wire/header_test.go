package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
	"github.com/gridlink/gridlink/internal/protocol/template"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Zerocoded: true,
		Reliable:  true,
		Sequence:  0xA1B2C3D4,
	}
	enc := h.AppendTo(nil)
	require.Len(t, enc, MinHeaderLen)
	assert.Equal(t, byte(FlagZerocoded|FlagReliable), enc[0])
	// Sequence is big-endian on the wire.
	assert.Equal(t, []byte{0xA1, 0xB2, 0xC3, 0xD4}, enc[1:5])
	assert.Equal(t, byte(0), enc[5])

	got, bodyStart, bodyEnd, err := ParseHeader(enc)
	require.NoError(t, err)
	assert.True(t, got.Zerocoded)
	assert.True(t, got.Reliable)
	assert.False(t, got.Resent)
	assert.Equal(t, uint32(0xA1B2C3D4), got.Sequence)
	assert.Equal(t, MinHeaderLen, bodyStart)
	assert.Equal(t, len(enc), bodyEnd)
}

func TestHeaderExtraBytes(t *testing.T) {
	h := Header{Sequence: 7, Extra: []byte{0xAA, 0xBB}}
	enc := h.AppendTo(nil)
	enc = append(enc, 0x01) // message id

	got, bodyStart, _, err := ParseHeader(enc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, got.Extra)
	assert.Equal(t, MinHeaderLen+2, bodyStart)
}

func TestAppendedAcks(t *testing.T) {
	h := Header{Sequence: 1}
	enc := h.AppendTo(nil)
	enc = append(enc, 0x02)       // message id
	enc = append(enc, 0xDE, 0xAD) // payload
	payloadEnd := len(enc)

	enc = AppendAckTail(enc, []uint32{10, 20, 300})
	enc[0] |= FlagAppendedAcks

	got, bodyStart, bodyEnd, err := ParseHeader(enc)
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 20, 300}, got.AckList)
	assert.Equal(t, MinHeaderLen, bodyStart)
	assert.Equal(t, payloadEnd, bodyEnd)
	// The payload region is untouched by the ack tail.
	assert.Equal(t, []byte{0x02, 0xDE, 0xAD}, enc[bodyStart:bodyEnd])
}

func TestAckTailSize(t *testing.T) {
	assert.Equal(t, 1, AckTailSize(0))
	assert.Equal(t, 41, AckTailSize(10))
}

func TestHeaderTruncated(t *testing.T) {
	_, _, _, err := ParseHeader([]byte{0x40, 0, 0})
	assert.True(t, errors.Is(err, protoerr.ErrMalformed))

	// Extra length overruns the datagram.
	h := Header{Extra: []byte{1, 2, 3, 4}}
	enc := h.AppendTo(nil)
	_, _, _, err = ParseHeader(enc[:7])
	assert.True(t, errors.Is(err, protoerr.ErrMalformed))
}

func TestAckTailOverrun(t *testing.T) {
	h := Header{AppendedAcks: true}
	enc := h.AppendTo(nil)
	enc[0] |= FlagAppendedAcks
	enc = append(enc, 0x01) // id
	enc = append(enc, 9)    // claims nine acks that are not there
	_, _, _, err := ParseHeader(enc)
	assert.True(t, errors.Is(err, protoerr.ErrMalformed))
}

func TestMessageIDWidths(t *testing.T) {
	cases := []struct {
		freq  template.Frequency
		id    uint16
		bytes []byte
	}{
		{template.High, 4, []byte{0x04}},
		{template.Medium, 6, []byte{0xFF, 0x06}},
		{template.Low, 148, []byte{0xFF, 0xFF, 0x00, 0x94}},
		{template.Fixed, 0xFB, []byte{0xFF, 0xFF, 0xFF, 0xFB}},
	}
	for _, tc := range cases {
		enc := WriteID(nil, tc.freq, tc.id)
		assert.Equal(t, tc.bytes, enc, "%s %d", tc.freq, tc.id)

		freq, id, n, err := ReadID(enc)
		require.NoError(t, err)
		assert.Equal(t, tc.freq, freq)
		assert.Equal(t, tc.id, id)
		assert.Equal(t, len(tc.bytes), n)
	}
}

func TestReadIDTruncated(t *testing.T) {
	_, _, _, err := ReadID(nil)
	assert.Error(t, err)
	_, _, _, err = ReadID([]byte{0xFF})
	assert.Error(t, err)
	_, _, _, err = ReadID([]byte{0xFF, 0xFF, 0x00})
	assert.Error(t, err)
}
