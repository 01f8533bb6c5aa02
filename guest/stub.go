//go:build wasip1

package guest

import (
	"fmt"

	"github.com/plugyrt/plugy/wire"
)

// HandleCall implements the body every "_plugy_guest_<method>" export
// needs, per spec.md §4.C: deserialize the incoming (receiver, arg)
// tuple, invoke fn, serialize the result, free the input buffer, and
// return a freshly allocated output buffer's packed descriptor.
//
// The //go:wasmexport directive only binds to a literal named function, so
// generated or hand-written code declares one small wrapper per method
// (spec.md §9, dispatch option (a)) and has that wrapper call HandleCall —
// this is the one piece of guest-side plumbing every such wrapper shares.
func HandleCall[Recv, Arg, Result any](packed uint64, fn func(Recv, Arg) Result) uint64 {
	defer Free(packed)

	var recv Recv
	var arg Arg
	if err := wire.DecodeTuple(Take(packed), &recv, &arg); err != nil {
		return encodeOrPanic(callError{Message: fmt.Sprintf("decode argument tuple: %v", err)})
	}

	result := fn(recv, arg)
	return encodeOrPanic(result)
}

// callError is the minimal shape a guest can return when it cannot even
// decode its arguments; capability-specific error types build on top of
// this at the application layer, outside this package's scope.
type callError struct {
	Message string `json:"error"`
}

func encodeOrPanic(v any) uint64 {
	data, err := wire.Encode(v)
	if err != nil {
		// Encoding is specified as total for supported types (spec.md
		// §4.B); reaching here means the plugin tried to return an
		// unsupported type, which is a guest programming error.
		panic(fmt.Sprintf("guest: failed to encode result: %v", err))
	}
	return Put(data)
}
