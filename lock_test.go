package depot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLockedStorageRejectsStructuralChanges tests the safety window guard
func TestLockedStorageRejectsStructuralChanges(t *testing.T) {
	k := newTestKinds()
	w := newTestWorld()
	e, _ := w.Create(Data{k.mass: 1})

	w.AddLock(3)
	require.True(t, w.Locked())

	calls := map[string]func() error{
		"create": func() error {
			_, err := w.Create(Data{k.mass: 1})
			return err
		},
		"create reserved":   func() error { return w.CreateReserved(w.Reserve(), Data{k.mass: 1}) },
		"remove":            func() error { return w.Remove(e) },
		"add components":    func() error { return w.AddComponents(e, Data{k.player: nil}) },
		"remove components": func() error { return w.RemoveComponents(e, k.mass) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.True(t, errors.Is(err, ErrIllegalMutation))
			var locked LockedStorageError
			assert.ErrorAs(t, err, &locked)
		})
	}

	assert.NoError(t, w.SetComponent(e, k.mass, 4), "in-place writes are allowed")
	_, err := w.Component(e, k.mass)
	assert.NoError(t, err)

	require.NoError(t, w.RemoveLock(3))
	assert.False(t, w.Locked())
	assert.NoError(t, w.Remove(e))
}

// TestLockBitsNest tests that the buffer flushes only when the last bit clears
func TestLockBitsNest(t *testing.T) {
	k := newTestKinds()
	w := newTestWorld()

	w.AddLock(SystemLockBit)
	w.AddLock(9)
	e := w.Commands().CreateEntity(Data{k.mass: 1})

	require.NoError(t, w.RemoveLock(9))
	assert.True(t, w.Locked())
	assert.False(t, w.Contains(e))

	require.NoError(t, w.RemoveLock(9), "removing an unset bit is harmless")
	assert.False(t, w.Contains(e))

	require.NoError(t, w.RemoveLock(SystemLockBit))
	assert.False(t, w.Locked())
	assert.True(t, w.Contains(e))
}

// TestScan tests deferred mutation through a scan window
func TestScan(t *testing.T) {
	k := newTestKinds()
	w := newTestWorld()
	for i := 0; i < 4; i++ {
		_, err := w.Create(Data{k.health: i})
		require.NoError(t, err)
	}
	q, err := w.Query([]*Kind{k.health})
	require.NoError(t, err)

	err = w.Scan(func() error {
		assert.True(t, w.Locked())
		for view := range q.Fetch() {
			health := Values[int32](view, k.health)
			for i, e := range view.Entities {
				if health[i]%2 == 0 {
					w.Commands().RemoveEntity(e)
				}
			}
			_, err := w.Create(Data{k.health: 9})
			assert.True(t, errors.Is(err, ErrIllegalMutation))
		}
		assert.Equal(t, 4, w.Len(), "nothing is removed while scanning")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, w.Locked())
	assert.Equal(t, 2, w.Len())
}

func TestScanReturnsCallbackError(t *testing.T) {
	w := newTestWorld()
	boom := errors.New("boom")

	err := w.Scan(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, w.Locked())
}

func TestScanInsideScan(t *testing.T) {
	k := newTestKinds()
	w := newTestWorld()
	var inner Entity

	err := w.Scan(func() error {
		return w.Scan(func() error {
			inner = w.Commands().CreateEntity(Data{k.mass: 1})
			return nil
		})
	})
	require.NoError(t, err)
	assert.True(t, w.Contains(inner))
}

func TestLockSetFree(t *testing.T) {
	var l lockSet
	assert.Equal(t, firstScanLockBit, l.free())
	l.add(firstScanLockBit)
	assert.True(t, l.has(firstScanLockBit))
	assert.False(t, l.has(SystemLockBit))
	assert.True(t, l.locked())
	assert.Equal(t, firstScanLockBit+1, l.free())
	assert.True(t, l.remove(firstScanLockBit))
	assert.False(t, l.locked())
}
