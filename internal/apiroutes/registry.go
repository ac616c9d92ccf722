// Package apiroutes keeps the list of public endpoints served at /api for discovery.
package apiroutes

import (
	"sort"
	"sync"
)

// APIRoute defines the structure for an API route entry.
type APIRoute struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

var (
	routeRegistry = make([]APIRoute, 0)
	registryMu    sync.RWMutex
)

// Register adds a new route to the API registry. Registering the same
// method and path again replaces the description.
func Register(path, method, description string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i, r := range routeRegistry {
		if r.Path == path && r.Method == method {
			routeRegistry[i].Description = description
			return
		}
	}
	routeRegistry = append(routeRegistry, APIRoute{
		Path:        path,
		Method:      method,
		Description: description,
	})
}

// Get retrieves a copy of the current API route registry, sorted by path.
func Get() []APIRoute {
	registryMu.RLock()
	defer registryMu.RUnlock()
	registryCopy := make([]APIRoute, len(routeRegistry))
	copy(registryCopy, routeRegistry)
	sort.SliceStable(registryCopy, func(i, j int) bool {
		if registryCopy[i].Path != registryCopy[j].Path {
			return registryCopy[i].Path < registryCopy[j].Path
		}
		return registryCopy[i].Method < registryCopy[j].Method
	})
	return registryCopy
}

// ClearForTesting removes all registered routes. For use in tests only.
func ClearForTesting() {
	registryMu.Lock()
	defer registryMu.Unlock()
	routeRegistry = make([]APIRoute, 0)
}
