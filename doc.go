/*
Package depot provides an archetype-based Entity-Component-System storage engine.

Entities carry dynamic sets of typed attributes called kinds. Entities with the
same set of kinds share an archetype, which stores every kind as one dense
column, so a query walks contiguous memory instead of chasing pointers.

Core Concepts:

  - Kind: a declared attribute with an element type and a shape, or a tag.
  - Entity: an opaque id placed in exactly one archetype.
  - Archetype: all entities of one composition, one column per kind.
  - Query: the archetypes holding every included kind and no excluded one.
  - CommandBuffer: structural changes recorded during a scan and applied later.

Basic Usage:

	w := depot.Factory.NewWorld(depot.DefaultConfig())

	position := depot.NewKind("position", depot.Float32, 2)
	velocity := depot.NewKind("velocity", depot.Float32, 2)

	w.Create(depot.Data{position: []float32{0, 0}, velocity: []float32{1, 2}})

	q, _ := w.Query([]*depot.Kind{position, velocity})
	w.Scan(func() error {
		for view := range q.Fetch() {
			pos := depot.Values[float32](view, position)
			vel := depot.Values[float32](view, velocity)
			for i := range pos {
				pos[i] += vel[i]
			}
		}
		return nil
	})

While a scan or system runs, the world is locked: Create, Remove, AddComponents
and RemoveComponents fail with ErrIllegalMutation. Record them on Commands()
instead; they are applied when the last lock is released.
*/
package depot
