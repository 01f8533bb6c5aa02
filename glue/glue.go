// Package glue documents and names the contract spec.md §4.H requires any
// code generator — or hand-written stub — to honor: the naming scheme
// linking a guest export to the host's typed Func, and a guest import to a
// registered ContextService method.
//
// The core runtime (package runtime) and the guest-side helpers (package
// guest) only require that these names and the (u64)->u64 signature are
// used; nothing in this package depends on a particular code-generation
// strategy. spec.md §1 puts the generator itself out of scope — this
// package is the seam a generator plugs into, not a generator.
package glue

// GuestExportPrefix is prepended to every guest-implemented capability
// method name to form its export symbol, e.g. method "echo" exports
// "_plugy_guest_echo".
const GuestExportPrefix = "_plugy_guest_"

// ContextImportPrefix is prepended to every host context-service method
// name to form its import symbol, e.g. method "fetch" imports
// "_plugy_context_fetch".
const ContextImportPrefix = "_plugy_context_"

// ImportModule is the Wasm import namespace every "_plugy_context_*"
// import lives under.
const ImportModule = "env"

// GuestExportName returns the export symbol for a guest method name.
func GuestExportName(method string) string { return GuestExportPrefix + method }

// ContextImportName returns the import symbol for a context service
// method name.
func ContextImportName(method string) string { return ContextImportPrefix + method }
