//go:build wasip1

package guest

import "github.com/plugyrt/plugy/wire"

// CallContext performs the guest side of a "_plugy_context_<method>" round
// trip (spec.md §4.G, "guest side" paragraph): serialize the argument,
// allocate and write it locally, invoke the raw import, read back the
// result, free the returned region, and deserialize it.
//
// hostImport is the raw `//go:wasmimport env _plugy_context_<method>`
// declaration a generated or hand-written stub supplies — Go's
// go:wasmimport directive only binds to a literal declared function, so
// CallContext cannot declare the import itself; it only implements the
// marshalling around whichever import the caller passes in.
func CallContext[Arg, Result any](hostImport func(uint64) uint64, arg Arg) (Result, error) {
	var result Result

	data, err := wire.Encode(arg)
	if err != nil {
		return result, err
	}

	respPacked := hostImport(Put(data))
	respBytes := Take(respPacked)
	defer Free(respPacked)

	if respBytes == nil {
		return result, nil
	}
	if err := wire.Decode(respBytes, &result); err != nil {
		return result, err
	}
	return result, nil
}
