package runtime

import "github.com/tetratelabs/wazero"

// Option configures a Runtime at construction, following the functional
// options idiom the teacher uses throughout (host/options.go,
// hostfuncs.RegistryOption, internal/abi.ManagerOption).
type Option[D any] func(*config)

type config struct {
	engineConfig wazero.RuntimeConfig
}

func defaultConfig() config {
	return config{engineConfig: wazero.NewRuntimeConfig()}
}

// WithRuntimeConfig overrides the wazero.RuntimeConfig used to build the
// engine, e.g. to switch between the compiler and interpreter, or to cap
// compiled-module cache size.
func WithRuntimeConfig[D any](cfg wazero.RuntimeConfig) Option[D] {
	return func(c *config) { c.engineConfig = cfg }
}
