package store

import "sync"

// Entity is anything a Collection can hold: identified by a numeric id
// and cloneable so snapshots never alias live state.
type Entity[T any] interface {
	EntityID() uint
	Clone() T
}

// Collection is an owned, ordered, in-memory entity list. It is the only
// way components touch shared state; callers never get a reference into
// the backing slice. Upserts replace in place so server push never
// reshuffles what the user is looking at.
type Collection[T Entity[T]] struct {
	mu    sync.RWMutex
	items []T
}

func NewCollection[T Entity[T]]() *Collection[T] {
	return &Collection[T]{}
}

// Upsert replaces the entity with the same id in place, or appends it.
// Returns true when the entity was newly added.
func (c *Collection[T]) Upsert(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.items {
		if existing.EntityID() == v.EntityID() {
			c.items[i] = v
			return false
		}
	}
	c.items = append(c.items, v)
	return true
}

// Remove deletes the entity with the given id, preserving order.
func (c *Collection[T]) Remove(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.items {
		if existing.EntityID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a clone of the entity with the given id.
func (c *Collection[T]) Get(id uint) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, existing := range c.items {
		if existing.EntityID() == id {
			return existing.Clone(), true
		}
	}
	var zero T
	return zero, false
}

// List returns clones of all entities in collection order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, existing := range c.items {
		out = append(out, existing.Clone())
	}
	return out
}

// Replace swaps the full contents, e.g. after a refetch.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]T, 0, len(items))
	for _, v := range items {
		c.items = append(c.items, v.Clone())
	}
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Snapshot captures clones of the entities with the given ids, for the
// optimistic apply / commit-or-revert pattern.
func (c *Collection[T]) Snapshot(ids ...uint) map[uint]T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := make(map[uint]T, len(ids))
	for _, id := range ids {
		for _, existing := range c.items {
			if existing.EntityID() == id {
				snap[id] = existing.Clone()
				break
			}
		}
	}
	return snap
}

// RestoreSnapshot puts the captured entities back, replacing in place.
func (c *Collection[T]) RestoreSnapshot(snap map[uint]T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, saved := range snap {
		restored := false
		for i, existing := range c.items {
			if existing.EntityID() == id {
				c.items[i] = saved.Clone()
				restored = true
				break
			}
		}
		if !restored {
			c.items = append(c.items, saved.Clone())
		}
	}
}
