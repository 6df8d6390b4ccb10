package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSizes(t *testing.T) {
	small := Get(100)
	assert.Len(t, small, 100)
	assert.Equal(t, DatagramSize, cap(small))
	Put(small)

	mid := Get(DatagramSize + 1)
	assert.Len(t, mid, DatagramSize+1)
	assert.Equal(t, JumboSize, cap(mid))
	Put(mid)

	big := Get(JumboSize + 1)
	assert.Len(t, big, JumboSize+1)
	Put(big) // not pooled, must not panic
}

func TestReuse(t *testing.T) {
	a := Get(64)
	for i := range a {
		a[i] = 0xAA
	}
	Put(a)

	// A pooled buffer comes back at the requested length regardless of
	// what the previous user left in it.
	b := Get(128)
	assert.Len(t, b, 128)
	Put(b)
}

func TestZeroLength(t *testing.T) {
	z := Get(0)
	assert.Len(t, z, 0)
	Put(z)
}
