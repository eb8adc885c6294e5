// internal/controller/registry.go
//
// A super-light registry: component packages call Register(ct) in an
// init() function or from their constructor, and the entry point mounts
// every registered controller on the router.
package controller

import "sync"

var (
	mu       sync.RWMutex
	registry = map[string]*Controller{}
)

// Register adds a controller under its name.  Last registration wins,
// which only matters in tests.
func Register(ct *Controller) {
	mu.Lock()
	registry[ct.name] = ct
	mu.Unlock()
}

// Lookup returns the named controller or nil.
func Lookup(name string) *Controller {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// All returns every registered controller in arbitrary order.
func All() []*Controller {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]*Controller, 0, len(registry))
	for _, ct := range registry {
		out = append(out, ct)
	}
	return out
}
