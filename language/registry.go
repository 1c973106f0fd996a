package language

import (
	"fmt"
	"sort"
	"sync"

	"github.com/broady/jsonmodel/model"
)

// Factory builds a backend. It returns a *model.Error with code
// CodeUnsupportedConfig when the options cannot be honored.
type Factory func(opts Options) (Language, error)

var (
	mu       sync.RWMutex
	backends = map[string]Factory{}
)

// Register makes a backend available by name. Backends call it from init.
// It panics on a duplicate name.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := backends[name]; dup {
		panic("language: Register called twice for " + name)
	}
	backends[name] = f
}

// New builds the named backend.
func New(name string, opts Options) (Language, error) {
	mu.RLock()
	f, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, model.Errorf(model.CodeUnsupportedConfig, "unknown language %q (available: %v)", name, Names())
	}
	lang, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("language %s: %w", name, err)
	}
	return lang, nil
}

// Names returns the registered backend names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
