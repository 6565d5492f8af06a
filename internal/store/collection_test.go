package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type thing struct {
	ID   uint
	Name string
}

func (t *thing) EntityID() uint { return t.ID }
func (t *thing) Clone() *thing {
	cp := *t
	return &cp
}

func TestCollection_Upsert(t *testing.T) {
	t.Run("Append when new", func(t *testing.T) {
		c := NewCollection[*thing]()

		created := c.Upsert(&thing{ID: 1, Name: "a"})

		assert.True(t, created)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Replace in place preserves order", func(t *testing.T) {
		c := NewCollection[*thing]()
		c.Upsert(&thing{ID: 1, Name: "a"})
		c.Upsert(&thing{ID: 2, Name: "b"})
		c.Upsert(&thing{ID: 3, Name: "c"})

		created := c.Upsert(&thing{ID: 2, Name: "b2"})

		assert.False(t, created)
		list := c.List()
		assert.Equal(t, []uint{1, 2, 3}, []uint{list[0].ID, list[1].ID, list[2].ID})
		assert.Equal(t, "b2", list[1].Name)
	})
}

func TestCollection_Remove(t *testing.T) {
	c := NewCollection[*thing]()
	c.Upsert(&thing{ID: 1})
	c.Upsert(&thing{ID: 2})

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())
}

func TestCollection_GetReturnsClone(t *testing.T) {
	c := NewCollection[*thing]()
	c.Upsert(&thing{ID: 1, Name: "a"})

	got, ok := c.Get(1)
	assert.True(t, ok)

	got.Name = "mutated"

	again, _ := c.Get(1)
	assert.Equal(t, "a", again.Name)
}

func TestCollection_SnapshotRestore(t *testing.T) {
	c := NewCollection[*thing]()
	c.Upsert(&thing{ID: 1, Name: "a"})
	c.Upsert(&thing{ID: 2, Name: "b"})

	snap := c.Snapshot(1, 2)

	// Optimistic mutation
	c.Upsert(&thing{ID: 1, Name: "a-optimistic"})
	c.Upsert(&thing{ID: 2, Name: "b-optimistic"})

	c.RestoreSnapshot(snap)

	one, _ := c.Get(1)
	two, _ := c.Get(2)
	assert.Equal(t, "a", one.Name)
	assert.Equal(t, "b", two.Name)
}

func TestCollection_RestoreSnapshotReappendsRemoved(t *testing.T) {
	c := NewCollection[*thing]()
	c.Upsert(&thing{ID: 1, Name: "a"})

	snap := c.Snapshot(1)
	c.Remove(1)

	c.RestoreSnapshot(snap)

	got, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", got.Name)
}

func TestCache(t *testing.T) {
	cache := NewCache()

	_, _, ok := cache.Get("orders")
	assert.False(t, ok)

	cache.Put("orders", []int{1, 2, 3})
	data, refreshed, ok := cache.Get("orders")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, data)
	assert.False(t, refreshed.IsZero())

	cache.Invalidate("orders")
	_, _, ok = cache.Get("orders")
	assert.False(t, ok)
}
