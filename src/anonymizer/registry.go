package anonymizer

import "sync"

// TypeCache holds the substitutions already minted for one handler kind,
// plus that kind's topology map when it has one (email domains, IP
// networks). The lock spans lookup and production, so one original value can
// never end up with two substitutes regardless of row parallelism. Topology
// maps are only touched from produce, which makes the same lock cover them.
type TypeCache struct {
	mu     sync.Mutex
	values map[string]string
	topo   map[string]string
}

func newTypeCache() *TypeCache {
	return &TypeCache{
		values: make(map[string]string),
		topo:   make(map[string]string),
	}
}

// ProduceFunc mints the substitute for a value seen for the first time. It
// runs under the type lock and may read and grow the kind's topology map.
type ProduceFunc func(topo map[string]string) (string, *Warning)

// LookupOrProduce returns the substitute for norm, producing and caching it
// on first sight. A degraded production (input returned unchanged) is cached
// too, so its warning fires once per distinct value, not once per row.
func (tc *TypeCache) LookupOrProduce(norm string, produce ProduceFunc) (string, *Warning) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if sub, exists := tc.values[norm]; exists {
		return sub, nil
	}
	sub, warning := produce(tc.topo)
	tc.values[norm] = sub
	return sub, warning
}

// Size reports the number of distinct values cached so far.
func (tc *TypeCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.values)
}

// Registry groups the per-kind caches of one run. Handlers of the same kind
// share one cache, which is what makes substitution consistent across files.
type Registry struct {
	caches map[Kind]*TypeCache
}

func NewRegistry() *Registry {
	caches := make(map[Kind]*TypeCache, len(AllKinds))
	for _, kind := range AllKinds {
		caches[kind] = newTypeCache()
	}
	return &Registry{caches: caches}
}

func (r *Registry) Cache(kind Kind) *TypeCache {
	return r.caches[kind]
}

// CacheSizes reports the number of distinct values seen per kind.
func (r *Registry) CacheSizes() map[Kind]int {
	sizes := make(map[Kind]int, len(r.caches))
	for kind, cache := range r.caches {
		sizes[kind] = cache.Size()
	}
	return sizes
}
