package depot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchetype(capacity int, kinds ...*Kind) *archetype {
	r := NewRegistry()
	kinds = r.CanonicalOrder(kinds...)
	return newArchetype(1, r.Signature(kinds...), kinds, capacity)
}

// TestArchetypeGrowth tests that allocation doubles capacity and keeps row data
func TestArchetypeGrowth(t *testing.T) {
	pos := NewKind("position", Int32, 2)
	tag := NewTag("player")
	arch := newTestArchetype(2, pos, tag)

	assert.NotContains(t, arch.columns, tag, "tags get no column")

	for i := 1; i <= 5; i++ {
		row := arch.allocate(Entity(i))
		assert.Equal(t, i-1, row)
		arch.write(row, pos, []int32{int32(i), int32(-i)})
	}

	assert.Equal(t, 5, arch.Len())
	assert.Equal(t, 8, arch.Cap())
	for i := 1; i <= 5; i++ {
		v, ok := arch.row(i-1, pos)
		require.True(t, ok)
		assert.Equal(t, []int32{int32(i), int32(-i)}, v)
	}
}

// TestArchetypeRemove tests swap-with-last compaction
func TestArchetypeRemove(t *testing.T) {
	mass := NewKind("mass", Float64)
	arch := newTestArchetype(4, mass)
	for i := 1; i <= 3; i++ {
		row := arch.allocate(Entity(i))
		arch.write(row, mass, []float64{float64(i * 10)})
	}

	moved, ok := arch.remove(0)
	require.True(t, ok)
	assert.Equal(t, Entity(3), moved)
	assert.Equal(t, 2, arch.Len())
	assert.Equal(t, Entity(3), arch.entities[0])
	v, _ := arch.row(0, mass)
	assert.Equal(t, []float64{30}, v)

	_, ok = arch.remove(1)
	assert.False(t, ok, "removing the last row relocates nothing")
	assert.Equal(t, 1, arch.Len())
}

func TestArchetypeRowOutOfRange(t *testing.T) {
	mass := NewKind("mass", Float64)
	arch := newTestArchetype(4, mass)
	arch.allocate(1)

	assert.Panics(t, func() { arch.row(1, mass) })
	assert.Panics(t, func() { arch.remove(-1) })
}

func TestArchetypeAccessors(t *testing.T) {
	pos := NewKind("position", Float32, 2)
	vel := NewKind("velocity", Float32, 2)
	arch := newTestArchetype(1, vel, pos)

	assert.True(t, arch.Has(pos))
	assert.False(t, arch.Has(NewTag("other")))
	assert.Equal(t, []*Kind{vel, pos}, arch.Kinds())
	assert.Equal(t, uint32(1), arch.ID())
	assert.Contains(t, arch.String(), "position")
}
