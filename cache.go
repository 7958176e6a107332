package depot

import "fmt"

var _ Cache[string, any] = &SimpleCache[string, any]{}

// FactoryNewCache builds a keyed cache. A capacity of zero means unbounded.
func FactoryNewCache[K comparable, T any](cap int) *SimpleCache[K, T] {
	return &SimpleCache[K, T]{
		itemIndices: make(map[K]int),
		maxCapacity: cap,
	}
}

func (c *SimpleCache[K, T]) GetIndex(key K) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[K, T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[K, T]) Register(key K, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, fmt.Errorf("cache key already registered: %v", key)
	}
	if c.maxCapacity > 0 && len(c.items) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

func (c *SimpleCache[K, T]) Len() int {
	return len(c.items)
}

// Items returns the cached items in registration order.
func (c *SimpleCache[K, T]) Items() []T {
	return c.items
}

func (c *SimpleCache[K, T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[K]int)
}

type queryKey struct {
	include Signature
	exclude Signature
}

// queryCache keeps exactly one query per canonical (include, exclude) pair.
// It does not know the archetype set: the caller re-tests archetypes against
// a query it just created.
type queryCache struct {
	registry *Registry
	queries  *SimpleCache[queryKey, *query]
}

func newQueryCache(registry *Registry, capacity int) *queryCache {
	return &queryCache{
		registry: registry,
		queries:  FactoryNewCache[queryKey, *query](capacity),
	}
}

func (qc *queryCache) getOrCreate(include, exclude []*Kind) (*query, bool, error) {
	key := queryKey{
		include: qc.registry.Signature(include...),
		exclude: qc.registry.Signature(exclude...),
	}
	if idx, ok := qc.queries.GetIndex(key); ok {
		return *qc.queries.GetItem(idx), false, nil
	}
	q := newQuery(key, qc.registry.CanonicalOrder(include...), qc.registry.CanonicalOrder(exclude...))
	if _, err := qc.queries.Register(key, q); err != nil {
		return nil, false, err
	}
	return q, true, nil
}

func (qc *queryCache) onArchetypeCreated(arch *archetype) {
	for _, q := range qc.queries.Items() {
		q.tryAdd(arch)
	}
}
