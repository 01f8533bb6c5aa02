package runtime

import (
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// record is the module record spec.md §3 describes: an immutable compiled
// module plus its mutable runtime state — one instance, and a lock
// standing in for the spec's "execution store" since wazero does not
// expose a separate Store type the way wasmtime does. Holding this lock in
// write mode for the duration of a call is what gives the instance
// spec.md §5's "at-most-one in-flight call" property: the lock, not a
// separate store object, is the thing serializing access.
type record[D any] struct {
	compiled   wazero.CompiledModule
	instance   api.Module
	alloc      api.Function
	dealloc    api.Function
	descriptor D
	typeName   string // canonical Go type name of the Loader that produced this record, for GetByType
	mu         sync.RWMutex
}
