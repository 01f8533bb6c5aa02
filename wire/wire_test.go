package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Tags  []string
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []any{
		"hello",
		42,
		3.14,
		true,
		sample{Name: "ada", Count: 5, Tags: []string{"a", "b"}},
		map[string]any{"x": 1.0},
		nil,
	}
	for _, v := range values {
		data, err := Encode(v)
		require.NoError(t, err)

		switch want := v.(type) {
		case sample:
			var got sample
			require.NoError(t, Decode(data, &got))
			assert.Equal(t, want, got)
		default:
			// round-trip through any to sidestep exact numeric/type identity
			// concerns inherent to JSON (float64 vs int).
			var got any
			require.NoError(t, Decode(data, &got))
			assert.EqualValues(t, want, got)
		}
	}
}

func TestDecodeErrorKind(t *testing.T) {
	var out int
	err := Decode([]byte(`{not json`), &out)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "decode", de.Op)
}

func TestTupleRoundTrip(t *testing.T) {
	data, err := EncodeTuple(sample{Name: "r"}, "arg1", 7)
	require.NoError(t, err)

	var recv sample
	var a1 string
	var a2 int
	require.NoError(t, DecodeTuple(data, &recv, &a1, &a2))

	assert.Equal(t, "r", recv.Name)
	assert.Equal(t, "arg1", a1)
	assert.Equal(t, 7, a2)
}

func TestTupleArityMismatch(t *testing.T) {
	data, err := EncodeTuple("a", "b")
	require.NoError(t, err)

	var a string
	err = DecodeTuple(data, &a)
	require.Error(t, err)
}
