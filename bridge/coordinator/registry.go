package coordinator

import (
	"sync"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
)

// Registry tracks which entities are subscribed to which API, so polls can
// skip subsystems nothing listens to.
type Registry struct {
	logger client.Logger

	mu       sync.Mutex
	fetching map[string]map[string]struct{}
}

// NewRegistry builds an empty subscription registry.
func NewRegistry(logger client.Logger) *Registry {
	if logger == nil {
		logger = client.NopLogger
	}
	return &Registry{
		logger:   logger,
		fetching: map[string]map[string]struct{}{},
	}
}

// Subscribe records an entity under its capability key and returns the
// deregistration func invoked on entity teardown.
func (r *Registry) Subscribe(apiKey, uniqueID string) func() {
	r.logger.Debug("subscribe new entity", "unique_id", uniqueID, "api", apiKey)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fetching[apiKey]; !ok {
		r.fetching[apiKey] = map[string]struct{}{}
	}
	r.fetching[apiKey][uniqueID] = struct{}{}

	return func() {
		r.logger.Debug("unsubscribe entity", "unique_id", uniqueID, "api", apiKey)
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.fetching[apiKey], uniqueID)
		if len(r.fetching[apiKey]) == 0 {
			delete(r.fetching, apiKey)
		}
	}
}

// Active reports whether at least one entity needs the given API. Before any
// entity subscribed, everything is considered active so the initial poll
// fetches all subsystems.
func (r *Registry) Active(apiKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fetching) == 0 {
		return true
	}
	return len(r.fetching[apiKey]) > 0
}

// Count returns the number of entities subscribed to the given API.
func (r *Registry) Count(apiKey string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fetching[apiKey])
}
