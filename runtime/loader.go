package runtime

import "context"

// Loader is the host-supplied object a Runtime instantiates a plugin from
// (spec.md §6, "Loader interface"). Name must be stable and unique within
// a Runtime; Descriptor performs the "loader → descriptor" coercion
// spec.md §4.E leaves to the caller, producing the application-chosen
// value later reachable from context-service handlers as
// CallerState[D].Data.
type Loader[D any] interface {
	// Bytes returns the compiled Wasm module's binary.
	Bytes(ctx context.Context) ([]byte, error)
	// Name returns this plugin's stable identifier.
	Name() string
	// Descriptor returns the per-instance application data to attach to
	// this plugin's caller state.
	Descriptor() D
}
