package processor

import (
	"fmt"
	"sort"
	"sync"
)

// Builder constructs a bound backend instance from deployment config.
type Builder func(cfg Config) (Processor, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]Builder)
)

// Register makes a backend available under the given name. Called from the
// backend package's init; registering the same name twice panics because it
// is a programming error, not a deployment one.
func Register(name string, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("processor %q registered twice", name))
	}
	registry[name] = builder
}

// Resolve binds the single configured backend. An unrecognized name wraps
// ErrUnknownProcessor so the caller can fail startup.
func Resolve(name string, cfg Config) (Processor, error) {
	registryMu.Lock()
	builder, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownProcessor, name, Names())
	}
	return builder(cfg)
}

// Names lists registered backend names, sorted for stable error messages.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
