package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindLoad:        "load",
		KindLink:        "link",
		KindDecode:      "decode",
		KindAlloc:       "allocation",
		KindMemory:      "memory",
		KindTrap:        "guest trap",
		KindDeallocLeak: "deallocation leak",
		KindNotFound:    "not found",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := newErr(KindTrap, "p1", "call", inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, KindTrap, err.Kind)
	assert.Equal(t, "p1", err.Plugin)
	assert.Contains(t, err.Error(), "trap")
	assert.Contains(t, err.Error(), "p1")
	assert.Contains(t, err.Error(), "boom")
}
