package depot

import "fmt"

type archetypeID uint32

type archetype struct {
	id        archetypeID
	signature Signature
	kinds     []*Kind
	columns   map[*Kind]column
	entities  []Entity
	count     int
	capacity  int
}

var _ Archetype = &archetype{}

// newArchetype expects kinds already in canonical order.
func newArchetype(id archetypeID, sig Signature, kinds []*Kind, capacity int) *archetype {
	if capacity < 1 {
		capacity = 1
	}
	arch := &archetype{
		id:        id,
		signature: sig,
		kinds:     kinds,
		columns:   make(map[*Kind]column, len(kinds)),
		entities:  make([]Entity, capacity),
		capacity:  capacity,
	}
	for _, k := range kinds {
		if k.IsTag() {
			continue
		}
		arch.columns[k] = newColumn(k, capacity)
	}
	return arch
}

func (a *archetype) ID() uint32 {
	return uint32(a.id)
}

func (a *archetype) Signature() Signature {
	return a.signature
}

func (a *archetype) Kinds() []*Kind {
	return append([]*Kind(nil), a.kinds...)
}

func (a *archetype) Has(k *Kind) bool {
	for _, own := range a.kinds {
		if own == k {
			return true
		}
	}
	return false
}

func (a *archetype) Len() int {
	return a.count
}

func (a *archetype) Cap() int {
	return a.capacity
}

func (a *archetype) String() string {
	return fmt.Sprintf("archetype(%d)%v", a.id, a.kinds)
}

// allocate appends a row for entity and returns its index. Column contents of
// the new row are left for the caller to fill.
func (a *archetype) allocate(entity Entity) int {
	if a.count == a.capacity {
		a.grow(a.capacity * 2)
	}
	row := a.count
	a.entities[row] = entity
	a.count++
	return row
}

func (a *archetype) grow(capacity int) {
	entities := make([]Entity, capacity)
	copy(entities, a.entities[:a.count])
	a.entities = entities
	for _, col := range a.columns {
		col.grow(capacity)
	}
	a.capacity = capacity
}

// remove frees row by moving the last live row into it. It returns the
// entity that was relocated into row, or false when row was the last one.
func (a *archetype) remove(row int) (Entity, bool) {
	a.checkRow(row)
	last := a.count - 1
	moved, relocated := NilEntity, false
	if row != last {
		moved = a.entities[last]
		for _, col := range a.columns {
			col.copyRow(row, last)
		}
		a.entities[row] = moved
		relocated = true
	}
	a.entities[last] = NilEntity
	a.count--
	return moved, relocated
}

func (a *archetype) write(row int, k *Kind, encoded any) {
	a.checkRow(row)
	if col, ok := a.columns[k]; ok {
		col.write(row, encoded)
	}
}

func (a *archetype) row(row int, k *Kind) (any, bool) {
	a.checkRow(row)
	col, ok := a.columns[k]
	if !ok {
		return nil, false
	}
	return col.row(row), true
}

func (a *archetype) checkRow(row int) {
	if row < 0 || row >= a.count {
		panic(fmt.Sprintf("depot: row %d out of range for %v with %d rows", row, a, a.count))
	}
}
