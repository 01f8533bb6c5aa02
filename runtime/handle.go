package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plugyrt/plugy/abi"
	"github.com/plugyrt/plugy/glue"
	"github.com/plugyrt/plugy/wire"
)

// PluginHandle is the cloneable, thread-safe façade over a loaded plugin
// spec.md §3 describes: it carries the shared store lock and the
// instance identity. Its lifetime is the Runtime's; PluginHandle itself
// holds no resources of its own, only a reference to the record the
// Runtime owns.
type PluginHandle[D any] struct {
	rt   *Runtime[D]
	rec  *record[D]
	name string
}

// Name returns the plugin's loader-assigned identifier.
func (h *PluginHandle[D]) Name() string { return h.name }

// Descriptor returns the application-chosen value this plugin was loaded
// with (spec.md §3, "Plugin descriptor D").
func (h *PluginHandle[D]) Descriptor() D { return h.rec.descriptor }

// Func is the typed function reference spec.md §4.F describes: a handle
// bound to one exported "_plugy_guest_<name>" symbol, parameterized by its
// compile-time input and output types. It is the only way to invoke guest
// code once a plugin is loaded.
//
// Func carries its own type parameters separate from PluginHandle's D, so
// it is produced by the package-level function GetFunc rather than a
// PluginHandle method — Go does not allow a method to add type parameters
// beyond its receiver's.
type Func[D, I, R any] struct {
	handle *PluginHandle[D]
	name   string
}

// GetFunc looks up the export "_plugy_guest_<name>" on h's instance and
// returns a typed Func bound to it (spec.md §4.F). The lookup is performed
// under h's write lock, mirroring the source's rationale that engines
// typically want exclusive access while resolving a typed export — even
// though wazero's ExportedFunction lookup itself is cheap and read-only,
// taking the same lock here keeps this step ordered with any in-flight
// call on the same instance.
func GetFunc[I, R, D any](h *PluginHandle[D], name string) (*Func[D, I, R], error) {
	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()

	fn := h.rec.instance.ExportedFunction(glue.GuestExportName(name))
	if fn == nil {
		return nil, newErr(KindNotFound, h.name, "get-func", fmt.Errorf("export %q not found", glue.GuestExportName(name)))
	}
	return &Func[D, I, R]{handle: h, name: name}, nil
}

// Call performs the full invocation protocol of spec.md §4.F, steps 1-9:
// acquire the instance's write lock, serialize input, allocate and write
// it into guest memory, call the guest export, read back and deserialize
// the result, and free the buffers the invariant in spec.md §3 assigns to
// the host.
func (f *Func[D, I, R]) Call(ctx context.Context, input *I) (R, error) {
	var zero R

	h := f.handle
	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()

	state := CallerState[D]{
		Memory:  h.rec.instance.Memory(),
		Alloc:   h.rec.alloc,
		Dealloc: h.rec.dealloc,
		Data:    h.rec.descriptor,
	}
	ctx = withCallerState(ctx, state)

	buf, err := wire.EncodeTuple(h.rec.descriptor, input)
	if err != nil {
		return zero, newErr(KindDecode, h.name, "serialize", err)
	}

	allocResults, err := h.rec.alloc.Call(ctx, uint64(len(buf)))
	if err != nil || len(allocResults) == 0 {
		return zero, newErr(KindAlloc, h.name, "alloc", combine(err, "guest allocate returned no result"))
	}
	ptr := uint32(allocResults[0])
	if ptr == 0 && len(buf) > 0 {
		return zero, newErr(KindAlloc, h.name, "alloc", fmt.Errorf("guest allocate returned a null pointer for a non-empty buffer"))
	}

	if len(buf) > 0 && !h.rec.instance.Memory().Write(ptr, buf) {
		if ptr != 0 {
			_, _ = h.rec.dealloc.Call(ctx, abi.Pack(ptr, uint32(len(buf))))
		}
		return zero, newErr(KindMemory, h.name, "write", fmt.Errorf("failed to write argument into guest memory"))
	}

	wasmFn := h.rec.instance.ExportedFunction(glue.GuestExportName(f.name))
	if wasmFn == nil {
		return zero, newErr(KindNotFound, h.name, "call", fmt.Errorf("export %q not found", glue.GuestExportName(f.name)))
	}

	results, err := wasmFn.Call(ctx, abi.Pack(ptr, uint32(len(buf))))
	if err != nil {
		// The guest stub owns the input buffer once the call begins
		// (spec.md §3); a trap means we cannot know whether it freed it,
		// so the host does not attempt a second free here.
		return zero, newErr(KindTrap, h.name, "call", err)
	}
	if len(results) == 0 {
		return zero, newErr(KindTrap, h.name, "call", fmt.Errorf("guest export returned no result"))
	}
	outPacked := results[0]

	optr, olen := abi.UnpackLenient(outPacked)
	var out []byte
	if olen > 0 {
		data, ok := h.rec.instance.Memory().Read(optr, olen)
		if !ok {
			return zero, newErr(KindMemory, h.name, "read", fmt.Errorf("failed to read result from guest memory"))
		}
		out = make([]byte, len(data))
		copy(out, data)
	}

	if _, err := h.rec.dealloc.Call(ctx, outPacked); err != nil {
		// Non-fatal per spec.md §7: the result is still returned, the
		// leak is only logged.
		slog.Warn("plugy: failed to free guest result buffer; memory is leaked for this call",
			"plugin", h.name, "method", f.name, "error", err)
	}

	var result R
	if len(out) > 0 {
		if err := wire.Decode(out, &result); err != nil {
			return zero, newErr(KindDecode, h.name, "deserialize", err)
		}
	}
	return result, nil
}

// MustCall is the convenience variant spec.md §4.F describes: it treats
// any error as a programming bug and panics. It exists only to keep
// calling code terse in tests or other paths that have already validated
// their inputs — never use it against untrusted plugin input.
func (f *Func[D, I, R]) MustCall(ctx context.Context, input *I) R {
	result, err := f.Call(ctx, input)
	if err != nil {
		panic(err)
	}
	return result
}

func combine(err error, fallback string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s", fallback)
}
