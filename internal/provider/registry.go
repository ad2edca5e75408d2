package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe registry of company sources keyed by name.
// The first registered source becomes the default.
type Registry struct {
	mu         sync.RWMutex
	providers  map[string]CompanySource
	defaultKey string
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]CompanySource),
	}
}

// Register adds a provider to the registry. Credentials should be set via
// Init before calling Register. Duplicate registrations overwrite the
// previous entry.
func (r *Registry) Register(p CompanySource) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p
	if r.defaultKey == "" {
		r.defaultKey = info.Name
	}
	return nil
}

// Get returns a provider by name, or an error if not found.
func (r *Registry) Get(name string) (CompanySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// Default returns the default provider.
func (r *Registry) Default() (CompanySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.defaultKey]
	if !ok {
		return nil, &ErrProviderNotFound{Name: r.defaultKey}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, n := range r.sortedNames() {
		infos = append(infos, r.providers[n].Info())
	}
	return infos
}

// sortedNames must be called with mu held.
func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
