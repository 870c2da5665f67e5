package fontraster

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultBackend is the name of the backend used when none is requested.
const DefaultBackend = "ximage"

var (
	registryMu sync.RWMutex
	registry   = map[string]Backend{
		"ximage": ximageBackend{},
		"gotext": gotextBackend{},
	}
)

// Register makes a backend available under name, replacing any previous
// registration.
func Register(name string, b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := registry[name]
	return b, ok
}

// Open returns the backend registered under name, or DefaultBackend when
// name is empty.
func Open(name string) (Backend, error) {
	if name == "" {
		name = DefaultBackend
	}
	b, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return b, nil
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
