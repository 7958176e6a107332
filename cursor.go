package depot

import (
	iter_util "github.com/TheBitDrifter/util/iter"
)

var _ ColumnSource = &Cursor{}

func newCursor(q *query, w *world, optional []*Kind) *Cursor {
	return &Cursor{
		query:    q,
		world:    w,
		optional: optional,
	}
}

// Next advances to the following matched entity. The first call opens a
// safety window; the call that runs past the last entity closes it, flushing
// whatever was buffered in between if no other window is open.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.initialize()
	} else {
		c.viewIndex++
		c.entityIndex = 0
	}
	for c.viewIndex < len(c.views) {
		c.current = c.views[c.viewIndex]
		c.currentArch = c.current.Archetype.(*archetype)
		c.remaining = c.current.Len()

		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.viewIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.lockBit = c.world.locks.free()
	c.world.AddLock(c.lockBit)
	c.locked = true

	c.views = iter_util.Collect(c.query.Fetch(c.optional...))
	c.viewIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.initialized = true
}

// Reset abandons the iteration and closes its safety window. Breaking out of
// a Next loop early must be followed by Reset.
func (c *Cursor) Reset() {
	c.viewIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.views = nil
	c.current = View{}
	c.currentArch = nil
	c.initialized = false
	if c.locked {
		c.locked = false
		if err := c.world.RemoveLock(c.lockBit); err != nil {
			c.err = err
		}
	}
}

// Err returns the error of the flush that ran when the cursor last closed
// its window.
func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) Entity() Entity {
	return c.current.Entities[c.entityIndex-1]
}

func (c *Cursor) Archetype() Archetype {
	return c.current.Archetype
}

// Values returns the live row of k for the current entity.
func (c *Cursor) Values(k *Kind) (any, bool) {
	if c.currentArch == nil || c.entityIndex == 0 {
		return nil, false
	}
	return c.currentArch.row(c.entityIndex-1, k)
}

func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIndex
}

func (c *Cursor) TotalMatched() int {
	return c.query.Len()
}
