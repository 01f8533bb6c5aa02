package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// CallerState is the bundle spec.md §4.D describes: the instance's memory,
// its typed allocate/deallocate exports, and the application-chosen
// descriptor D, reachable from inside a context-service import handler
// without a global lookup.
//
// Unlike the teacher's guest-side wasmcontext (a single global slot, valid
// because a Wasm guest instance is single-threaded), the host can have
// many instances calling concurrently, so CallerState travels on the
// context.Context of the specific call that is crossing into the guest —
// context.Context is exactly Go's idiomatic carrier for per-call,
// cross-boundary request-scoped values.
type CallerState[D any] struct {
	Memory  api.Memory
	Alloc   api.Function
	Dealloc api.Function
	Data    D
}

type callerStateKey struct{}

// withCallerState returns a copy of ctx carrying state, retrievable by a
// context-service handler via CallerStateFrom.
func withCallerState[D any](ctx context.Context, state CallerState[D]) context.Context {
	return context.WithValue(ctx, callerStateKey{}, state)
}

// CallerStateFrom recovers the CallerState a Runtime[D] attached to ctx.
// Context-service handlers call this to reach the instance's memory, its
// allocator, or the per-plugin descriptor D (spec.md §4.D, §9 "Plugin
// descriptor coupling").
//
// ok is false if ctx was not produced by a call through this runtime —
// which should never happen for a handler invoked through Runtime.Context,
// but is reported rather than panicking since a caller may have built ctx
// by hand (for example, from a unit test).
func CallerStateFrom[D any](ctx context.Context) (CallerState[D], bool) {
	state, ok := ctx.Value(callerStateKey{}).(CallerState[D])
	return state, ok
}
