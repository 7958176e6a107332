package depot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSystem struct {
	name  string
	log   *[]string
	inits int
}

func (s *recordingSystem) Init(w World) error {
	s.inits++
	return nil
}

func (s *recordingSystem) Update(w World, dt float64) error {
	*s.log = append(*s.log, s.name)
	return nil
}

type failingSystem struct {
	err     error
	handled bool
	handle  bool
}

func (s *failingSystem) Update(w World, dt float64) error {
	return s.err
}

func (s *failingSystem) OnError(w World, err error) error {
	s.handled = true
	if s.handle {
		return nil
	}
	return err
}

// TestSystemOrder tests priority order with registration order breaking ties
func TestSystemOrder(t *testing.T) {
	w := newTestWorld()
	var log []string

	late := &recordingSystem{name: "late", log: &log}
	first := &recordingSystem{name: "first", log: &log}
	second := &recordingSystem{name: "second", log: &log}
	require.NoError(t, w.AddSystem(late, SystemOptions{Name: "late", Priority: 10}))
	require.NoError(t, w.AddSystem(first, SystemOptions{Name: "first", Priority: 1}))
	require.NoError(t, w.AddSystem(second, SystemOptions{Name: "second", Priority: 1}))

	require.NoError(t, w.Update(1))
	assert.Equal(t, []string{"first", "second", "late"}, log)
	assert.Equal(t, 1, late.inits)

	err := w.AddSystem(&recordingSystem{log: &log}, SystemOptions{Name: "late"})
	assert.Error(t, err, "names are unique")
}

func TestSystemDefaultsAndGroups(t *testing.T) {
	w := newTestWorld()
	var log []string

	require.NoError(t, w.AddSystem(&recordingSystem{name: "physics", log: &log}, SystemOptions{Group: "physics"}))
	require.NoError(t, w.AddSystem(&recordingSystem{name: "render", log: &log}, SystemOptions{Name: "render"}))
	assert.Error(t, w.AddSystem(&recordingSystem{name: "dup", log: &log}, SystemOptions{}),
		"the type name is the default name")

	require.NoError(t, w.Update(1, "physics"))
	assert.Equal(t, []string{"physics"}, log)

	log = nil
	require.NoError(t, w.Update(1, defaultGroup))
	assert.Equal(t, []string{"render"}, log)

	log = nil
	require.NoError(t, w.EnableSystem("render", false))
	require.NoError(t, w.Update(1))
	assert.Equal(t, []string{"physics"}, log)
	assert.Error(t, w.EnableSystem("missing", true))
}

// TestSystemChangesVisibleToNextSystem tests that each system's buffer is
// flushed before the next one runs
func TestSystemChangesVisibleToNextSystem(t *testing.T) {
	k := newTestKinds()
	w := newTestWorld()

	var spawned Entity
	var seen bool
	spawner := SystemFunc(func(w World, dt float64) error {
		assert.True(t, w.Locked())
		spawned = w.Commands().CreateEntity(Data{k.mass: 1})
		return nil
	})
	observer := SystemFunc(func(w World, dt float64) error {
		seen = w.Contains(spawned)
		return nil
	})
	require.NoError(t, w.AddSystem(spawner, SystemOptions{Name: "spawner", Priority: 0}))
	require.NoError(t, w.AddSystem(observer, SystemOptions{Name: "observer", Priority: 1}))

	require.NoError(t, w.Update(1))
	assert.True(t, seen)
	assert.False(t, w.Locked())
}

// TestSystemErrors tests error recovery through ErrorHandler
func TestSystemErrors(t *testing.T) {
	k := newTestKinds()
	boom := errors.New("boom")

	tests := []struct {
		name      string
		handle    bool
		wantErr   bool
		wantAfter bool
	}{
		{"handled error continues", true, false, true},
		{"unhandled error stops", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld()
			var reserved Entity
			failing := &failingSystem{err: boom, handle: tt.handle}
			ran := false
			after := SystemFunc(func(w World, dt float64) error {
				ran = true
				return nil
			})

			require.NoError(t, w.AddSystem(&bufferingFailure{inner: failing, kinds: k, reserved: &reserved}, SystemOptions{Name: "failing"}))
			require.NoError(t, w.AddSystem(after, SystemOptions{Name: "after", Priority: 1}))

			err := w.Update(1)
			if tt.wantErr {
				assert.ErrorIs(t, err, boom)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, failing.handled)
			assert.Equal(t, tt.wantAfter, ran)
			assert.False(t, w.Locked())
			assert.False(t, w.Contains(reserved), "a failing system's buffered changes are dropped")
			assert.Equal(t, 0, w.Len())
		})
	}
}

// bufferingFailure records a creation and then fails, delegating recovery to
// the wrapped failingSystem.
type bufferingFailure struct {
	inner    *failingSystem
	kinds    testKinds
	reserved *Entity
}

func (s *bufferingFailure) Update(w World, dt float64) error {
	*s.reserved = w.Commands().CreateEntity(Data{s.kinds.mass: 1})
	return s.inner.Update(w, dt)
}

func (s *bufferingFailure) OnError(w World, err error) error {
	return s.inner.OnError(w, err)
}

type failingInit struct{}

func (failingInit) Init(w World) error { return errors.New("no") }

func (failingInit) Update(w World, dt float64) error { return nil }

func TestSystemInitFailure(t *testing.T) {
	w := newTestWorld()
	assert.Error(t, w.AddSystem(failingInit{}, SystemOptions{}))
	assert.Empty(t, w.systems)
}
