// Package runtime implements the host-side plugin runtime: the registry
// that owns loaded Wasm modules (spec.md §4.E), the typed handle and
// invocation machinery (§4.F), and the context mechanism that exposes
// host services to guests (§4.G). Together with package abi (the bitwise
// codec), package wire (the wire codec), and package guest (the guest-side
// ABI surface), this is the core this module implements.
package runtime

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Runtime owns the Wasm engine, the "env" host module built from
// registered ContextServices, and a name-indexed table of loaded plugins.
// D is the application-chosen plugin descriptor type (spec.md §3, "Plugin
// descriptor D"); a Runtime is generic over it rather than over the
// application's capability traits, which spec.md §1 puts out of scope.
//
// Apart from the package-level descriptor-schema cache (see
// DescriptorSchema), a Runtime has no global state: each application
// constructs its own.
type Runtime[D any] struct {
	engine wazero.Runtime

	mu                 sync.Mutex // guards contextHandlers/registeredServices/envInstantiated during setup
	contextHandlers    map[string]ContextHandler[D]
	registeredServices map[string]bool
	envInstantiated    bool

	records   sync.Map // name (string) -> *record
	typeIndex sync.Map // canonical loader type name (string) -> plugin name (string)
}

// New constructs a Runtime with an async-capable wazero engine and an
// empty registry. WASI preview 1 is instantiated unconditionally, since
// TinyGo and Go's own wasip1 target both assume it is present even for
// guests that never call into it.
func New[D any](ctx context.Context, opts ...Option[D]) (*Runtime[D], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	engine := wazero.NewRuntimeWithConfig(ctx, cfg.engineConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, engine); err != nil {
		_ = engine.Close(ctx)
		return nil, newErr(KindLoad, "", "new", fmt.Errorf("instantiate wasi_snapshot_preview1: %w", err))
	}

	return &Runtime[D]{
		engine:             engine,
		contextHandlers:    make(map[string]ContextHandler[D]),
		registeredServices: make(map[string]bool),
	}, nil
}

// Close releases the engine and every compiled module. It does not close
// individual instances separately; wazero tears them down with the
// runtime.
func (rt *Runtime[D]) Close(ctx context.Context) error {
	return rt.engine.Close(ctx)
}

// Load instantiates a plugin from loader and adds it to the registry,
// implementing the ten steps of spec.md §4.E in order. Any failure in
// steps (1)-(8) is fatal for this load and leaves the registry unchanged.
//
// Loading a second plugin under a name already present fails rather than
// silently replacing the previous record, resolving spec.md §9's open
// question (ii) in favor of rejecting the duplicate.
func (rt *Runtime[D]) Load(ctx context.Context, loader Loader[D]) (*PluginHandle[D], error) {
	name := loader.Name()

	if _, exists := rt.records.Load(name); exists {
		return nil, newErr(KindLoad, name, "load", fmt.Errorf("a plugin named %q is already loaded", name))
	}

	if err := rt.buildEnvModule(ctx); err != nil {
		return nil, err
	}

	bytes, err := loader.Bytes(ctx)
	if err != nil {
		return nil, newErr(KindLoad, name, "bytes", err)
	}

	compiled, err := rt.engine.CompileModule(ctx, bytes)
	if err != nil {
		return nil, newErr(KindLoad, name, "compile", err)
	}

	modCfg := wazero.NewModuleConfig().WithName(name)
	instance, err := rt.engine.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		_ = compiled.Close(ctx)
		if isLinkError(err) {
			return nil, newErr(KindLink, name, "instantiate", err)
		}
		return nil, newErr(KindLoad, name, "instantiate", err)
	}

	memory := instance.Memory()
	alloc := instance.ExportedFunction("allocate")
	dealloc := instance.ExportedFunction("deallocate")
	if memory == nil || alloc == nil || dealloc == nil {
		_ = instance.Close(ctx)
		_ = compiled.Close(ctx)
		return nil, newErr(KindLoad, name, "verify-exports",
			fmt.Errorf("module must export memory, allocate, and deallocate"))
	}

	rec := &record[D]{
		compiled:   compiled,
		instance:   instance,
		alloc:      alloc,
		dealloc:    dealloc,
		descriptor: loader.Descriptor(),
		typeName:   reflect.TypeOf(loader).String(),
	}

	rt.records.Store(name, rec)
	rt.typeIndex.Store(rec.typeName, name)

	return &PluginHandle[D]{name: name, rt: rt, rec: rec}, nil
}

// Get looks up an already-loaded plugin by the name its loader returned.
func (rt *Runtime[D]) Get(name string) (*PluginHandle[D], error) {
	v, ok := rt.records.Load(name)
	if !ok {
		return nil, newErr(KindNotFound, name, "get", fmt.Errorf("no plugin loaded under name %q", name))
	}
	rec := v.(*record[D])
	return &PluginHandle[D]{name: name, rt: rt, rec: rec}, nil
}

// GetByType looks up the plugin that was loaded from a Loader of type T,
// using T's canonical type name as the lookup key (spec.md §4.E). It is a
// package-level function rather than a method because Go does not allow a
// method to introduce its own type parameter beyond its receiver's.
func GetByType[T any, D any](rt *Runtime[D]) (*PluginHandle[D], error) {
	typeName := reflect.TypeOf((*T)(nil)).Elem().String()
	v, ok := rt.typeIndex.Load(typeName)
	if !ok {
		return nil, newErr(KindNotFound, "", "get-by-type", fmt.Errorf("no plugin loaded from loader type %s", typeName))
	}
	return rt.Get(v.(string))
}

// isLinkError reports whether err looks like wazero failing to resolve an
// import, as opposed to any other instantiation failure (e.g. a guest
// start function trapping). wazero does not export a typed sentinel for
// this, so the message is matched the way the teacher matches
// engine-specific strings elsewhere (e.g. hostfuncs error classification).
func isLinkError(err error) bool {
	msg := err.Error()
	for _, sub := range []string{"is not defined", "unknown import", "not exported"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
