package wire

import (
	"encoding/json"
	"fmt"
)

// EncodeTuple serializes an ordered argument tuple (receiver, arg1, …,
// argN) as a single JSON array, matching the "argument tuple" layout
// spec.md §4.C requires every "_plugy_guest_*" export to accept.
func EncodeTuple(values ...any) ([]byte, error) {
	return Encode(values)
}

// DecodeTuple deserializes a JSON array produced by EncodeTuple into the
// given destination pointers, positionally. len(dst) must equal the
// number of values originally encoded.
func DecodeTuple(data []byte, dst ...any) error {
	var raw []json.RawMessage
	if err := Decode(data, &raw); err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return &DecodeError{Op: "decode-tuple", Err: fmt.Errorf("expected %d values, got %d", len(dst), len(raw))}
	}
	for i, d := range dst {
		if err := Decode(raw[i], d); err != nil {
			return err
		}
	}
	return nil
}
