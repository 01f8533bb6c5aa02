package abi

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct {
		ptr, length uint32
	}{
		{0, 0},
		{1, 0},
		{4096, 12},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0xFFFFFFFF},
	}
	for _, c := range cases {
		packed := Pack(c.ptr, c.length)
		gotPtr, gotLen := Unpack(packed)
		assert.Equal(t, c.ptr, gotPtr)
		assert.Equal(t, c.length, gotLen)
	}
}

func TestPackUnpackQuickCheck(t *testing.T) {
	f := func(ptr uint32) bool {
		if ptr == 0 {
			ptr = 1 // avoid the null-pointer/non-zero-length panic branch
		}
		length := uint32(1)
		p, l := Unpack(Pack(ptr, length))
		return p == ptr && l == length
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestUnpackOfPackIdentity(t *testing.T) {
	var v uint64 = (uint64(123456) << 32) | uint64(789)
	ptr, length := Unpack(v)
	assert.Equal(t, v, Pack(ptr, length))
}

func TestPackPanicsOnNullPointerNonZeroLength(t *testing.T) {
	assert.Panics(t, func() { Pack(0, 1) })
}

func TestUnpackPanicsOnNullPointerNonZeroLength(t *testing.T) {
	assert.Panics(t, func() { Unpack(uint64(1)) })
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(0))
	assert.False(t, IsEmpty(Pack(16, 4)))
}
