package protoerr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := Malformed("truncated block at %d", 12)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, KindMalformed, KindOf(err))
	assert.Contains(t, err.Error(), "truncated block at 12")
}

func TestWrappedKindSurvives(t *testing.T) {
	err := fmt.Errorf("decode AgentUpdate: %w", Misaligned("bit position 3"))
	assert.True(t, errors.Is(err, ErrMisaligned))
	assert.Equal(t, KindMisaligned, KindOf(err))
}

func TestIOWrapsCause(t *testing.T) {
	err := IO(io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Nil(t, IO(nil))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(io.EOF))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKindStrings(t *testing.T) {
	for k, want := range map[Kind]string{
		KindMalformed:        "malformed",
		KindMisaligned:       "misaligned",
		KindTimeout:          "timeout",
		KindNotConnected:     "not connected",
		KindCapacityExceeded: "capacity exceeded",
		KindIO:               "io",
	} {
		assert.Equal(t, want, k.String())
	}
}
