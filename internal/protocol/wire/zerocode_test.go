package wire

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

func TestZeroEncodeScenario(t *testing.T) {
	// [1 0 0 0 2] collapses to [1 0 3 2] and expands back.
	enc := ZeroEncode([]byte{1, 0, 0, 0, 2})
	assert.Equal(t, []byte{1, 0, 3, 2}, enc)

	dec, err := ZeroDecode(enc)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 2}, dec)
}

func TestZeroEncodeLongRun(t *testing.T) {
	// A run longer than 255 splits into multiple count pairs.
	src := make([]byte, 600)
	src = append(src, 7)
	enc := ZeroEncode(src)
	assert.Equal(t, []byte{0, 255, 0, 255, 0, 90, 7}, enc)

	dec, err := ZeroDecode(enc)
	require.NoError(t, err)
	assert.Equal(t, src, dec)
}

func TestZeroDecodeMalformed(t *testing.T) {
	_, err := ZeroDecode([]byte{1, 0, 0, 2})
	assert.True(t, errors.Is(err, protoerr.ErrMalformed))

	_, err = ZeroDecode([]byte{1, 0})
	assert.True(t, errors.Is(err, protoerr.ErrMalformed))
}

func TestZeroCodeRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := rng.Intn(1200)
		src := make([]byte, n)
		for j := range src {
			// Skew toward zeros so runs actually happen.
			if rng.Intn(3) != 0 {
				src[j] = 0
			} else {
				src[j] = byte(rng.Intn(256))
			}
		}
		dec, err := ZeroDecode(ZeroEncode(src))
		require.NoError(t, err)
		if !bytes.Equal(src, dec) {
			t.Fatalf("round trip diverged for %d-byte input", n)
		}
	}
}

func TestZeroEncodeEmpty(t *testing.T) {
	assert.Empty(t, ZeroEncode(nil))
	dec, err := ZeroDecode(nil)
	require.NoError(t, err)
	assert.Empty(t, dec)
}
