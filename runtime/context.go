package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plugyrt/plugy/abi"
	"github.com/plugyrt/plugy/glue"
	"github.com/plugyrt/plugy/wire"
	"github.com/tetratelabs/wazero/api"
)

// ContextHandler implements one host-exposed service method: the mirror of
// a guest's "_plugy_guest_*" handler, running on the host instead (spec.md
// §4.G). ctx carries the CallerState[D] for the instance that is calling
// in, retrievable with CallerStateFrom.
type ContextHandler[D any] func(ctx context.Context, payload []byte) ([]byte, error)

// ContextService declares the set of host functions a capability exposes
// to every guest (spec.md §4.G, "Context (host-exposed services)"). Each
// key becomes the import "_plugy_context_<key>" under the "env" namespace.
type ContextService[D any] interface {
	ContextMethods() map[string]ContextHandler[D]
}

// Context registers every method svc declares as a host import, so a guest
// loaded afterwards can call it. Must be called before any Load whose
// plugin references these imports (spec.md §4.E).
//
// Registering the same service value twice is a no-op (idempotent per
// service, per spec.md §4.E); registering two different services that
// declare the same method name fails fast rather than silently shadowing
// one of them.
func (rt *Runtime[D]) Context(svc ContextService[D]) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.envInstantiated {
		return newErr(KindLink, "", "context", fmt.Errorf("cannot register a context service after the first Load"))
	}

	key := fmt.Sprintf("%p", svc)
	if rt.registeredServices[key] {
		return nil
	}

	for name, handler := range svc.ContextMethods() {
		importName := glue.ContextImportPrefix + name
		if _, exists := rt.contextHandlers[importName]; exists {
			return newErr(KindLink, "", "context", fmt.Errorf("import %q already registered by another service", importName))
		}
		rt.contextHandlers[importName] = handler
	}
	rt.registeredServices[key] = true
	return nil
}

// buildEnvModule instantiates the "env" host module from every handler
// registered so far. Called once, lazily, by the first Load.
func (rt *Runtime[D]) buildEnvModule(ctx context.Context) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.envInstantiated {
		return nil
	}

	builder := rt.engine.NewHostModuleBuilder(glue.ImportModule)
	for name, handler := range rt.contextHandlers {
		h := handler
		builder.NewFunctionBuilder().
			WithFunc(func(ctx context.Context, mod api.Module, packed uint64) uint64 {
				return rt.invokeContextHandler(ctx, mod, h, packed)
			}).
			Export(name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return newErr(KindLink, "", "context", err)
	}
	rt.envInstantiated = true
	return nil
}

// invokeContextHandler implements spec.md §4.G steps 1-6: read and free
// the guest's argument buffer, run the handler, then allocate, write, and
// return the response in the calling guest's own memory.
func (rt *Runtime[D]) invokeContextHandler(ctx context.Context, mod api.Module, handler ContextHandler[D], packed uint64) uint64 {
	ptr, length := abi.UnpackLenient(packed)

	var payload []byte
	if length > 0 {
		data, ok := mod.Memory().Read(ptr, length)
		if !ok {
			slog.Error("plugy: context call argument out of bounds", "ptr", ptr, "len", length)
			return 0
		}
		payload = make([]byte, len(data))
		copy(payload, data)
	}

	if dealloc := mod.ExportedFunction("deallocate"); dealloc != nil && ptr != 0 {
		if _, err := dealloc.Call(ctx, packed); err != nil {
			slog.Warn("plugy: failed to free guest argument buffer", "error", err)
		}
	}

	respBytes, err := handler(ctx, payload)
	if err != nil {
		respBytes, _ = wire.Encode(contextErrorPayload{Error: err.Error()})
	}
	if len(respBytes) == 0 {
		return 0
	}

	alloc := mod.ExportedFunction("allocate")
	if alloc == nil {
		slog.Error("plugy: guest does not export allocate; cannot return context response")
		return 0
	}
	results, err := alloc.Call(ctx, uint64(len(respBytes)))
	if err != nil || len(results) == 0 {
		slog.Error("plugy: guest allocate trapped while returning context response", "error", err)
		return 0
	}
	respPtr := uint32(results[0])
	if !mod.Memory().Write(respPtr, respBytes) {
		slog.Error("plugy: failed to write context response into guest memory")
		return 0
	}
	return abi.Pack(respPtr, uint32(len(respBytes)))
}

type contextErrorPayload struct {
	Error string `json:"error"`
}

// NewJSONContextHandler adapts a typed request/response function into a
// ContextHandler, handling the wire codec's encode/decode step. This is
// the host-side analogue of guest.HandleCall.
func NewJSONContextHandler[D, Req, Resp any](fn func(ctx context.Context, req Req) (Resp, error)) ContextHandler[D] {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if len(payload) > 0 {
			if err := wire.Decode(payload, &req); err != nil {
				return nil, newErr(KindDecode, "", "context-decode", err)
			}
		}
		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}
		out, err := wire.Encode(resp)
		if err != nil {
			return nil, newErr(KindDecode, "", "context-encode", err)
		}
		return out, nil
	}
}
