//go:build wasip1

package guest

import (
	"context"
	"sync"
	"time"
)

// requestIDKey is the context key the host's execution context carries the
// request identifier under, if any.
type requestIDKey struct{}

// execContext holds the context the host set up for whichever
// "_plugy_guest_*" call is currently executing. A Wasm guest instance runs
// on a single thread, so — exactly as the teacher's wasmcontext package
// does — one global slot is enough; there is never more than one call
// in flight inside a given instance (spec.md §5).
var execContext = struct {
	ctx context.Context
	sync.RWMutex
}{ctx: context.Background()}

// SetCurrentContext installs the context for the call currently executing.
// Called once per "_plugy_guest_*" entry, before user code runs.
func SetCurrentContext(ctx context.Context) {
	execContext.Lock()
	defer execContext.Unlock()
	execContext.ctx = ctx
}

// CurrentContext returns the context set by SetCurrentContext, or
// context.Background() if none has been set yet.
func CurrentContext() context.Context {
	execContext.RLock()
	defer execContext.RUnlock()
	if execContext.ctx == nil {
		return context.Background()
	}
	return execContext.ctx
}

// ResetContext restores the background context. Guest entry-point wrappers
// defer this so a finished call never leaks its context into the next one.
func ResetContext() {
	SetCurrentContext(context.Background())
}

// ContextWire is the JSON shape a guest's execution context takes when it
// crosses a "_plugy_context_*" import, so a host-exposed service can see
// the caller's deadline and request id the same way the host sees them on
// its side of the call.
type ContextWire struct {
	Deadline  *time.Time `json:"deadline,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	TimeoutMs int64      `json:"timeout_ms,omitempty"`
}

// ToWire converts the current execution context into its wire form.
func ToWire(ctx context.Context) ContextWire {
	var wire ContextWire
	if deadline, ok := ctx.Deadline(); ok {
		wire.Deadline = &deadline
		if left := time.Until(deadline); left > 0 {
			wire.TimeoutMs = left.Milliseconds()
		}
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		wire.RequestID = id
	}
	return wire
}

// WithRequestID returns a copy of ctx carrying the given request id, for
// propagation into ToWire.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
