//go:build wasip1

package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDeallocateRoundTrip(t *testing.T) {
	FreeAll()

	data := []byte("hello world")
	packed := Put(data)
	require.NotZero(t, packed)

	got := Take(packed)
	assert.Equal(t, data, got)

	count, _ := Stats()
	assert.Equal(t, 1, count)

	Free(packed)
	count, total := Stats()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, total)
}

func TestPutEmptyReturnsZero(t *testing.T) {
	assert.Equal(t, uint64(0), Put(nil))
	assert.Nil(t, Take(0))
}

func TestDeallocateIsIdempotent(t *testing.T) {
	FreeAll()
	packed := Put([]byte("x"))
	Free(packed)
	assert.NotPanics(t, func() { Free(packed) })
}

func TestAllocationLimitPanics(t *testing.T) {
	FreeAll()
	Configure(WithMaxAllocBytes(8))
	defer Configure(WithMaxAllocBytes(DefaultMaxAllocBytes))

	assert.Panics(t, func() { Put(make([]byte, 9)) })
}
