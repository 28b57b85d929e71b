package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

// StoreFactory builds the store for a newly seen client.
type StoreFactory func(clientID string) *Store

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// Registry keeps one Store per browser client and forgets clients that stay
// idle longer than its TTL. A forgotten client starts UNINITIALIZED again on
// its next navigation.
type Registry struct {
	factory StoreFactory
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewRegistry returns a registry that creates stores with factory.
func NewRegistry(factory StoreFactory, ttl time.Duration) *Registry {
	if factory == nil {
		factory = func(string) *Store { return NewStore(nil) }
	}
	return &Registry{
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]*registryEntry{},
	}
}

// Store returns the client's store, creating it on first sight.
func (r *Registry) Store(clientID string) *Store {
	clientID = strings.TrimSpace(clientID)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[clientID]; ok {
		entry.lastSeen = now
		return entry.store
	}
	entry := &registryEntry{store: r.factory(clientID), lastSeen: now}
	r.entries[clientID] = entry
	return entry.store
}

// Forget drops the client's store.
func (r *Registry) Forget(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, strings.TrimSpace(clientID))
}

// Len returns the number of tracked clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops clients idle longer than the TTL as of now and returns how many
// were dropped. A non-positive TTL keeps every client.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.ttl {
			delete(r.entries, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.ttl <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}
