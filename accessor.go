package depot

import "fmt"

// NewAccessor binds T to k. It fails when k is a tag or its element type is
// not T.
func NewAccessor[T Scalar](k *Kind) (Accessor[T], error) {
	if k.IsTag() {
		return Accessor[T]{}, SchemaMismatchError{Kind: k, Reason: "tags hold no values"}
	}
	if want := elemTypeOf[T](); k.Elem() != want {
		return Accessor[T]{}, SchemaMismatchError{
			Kind:   k,
			Reason: fmt.Sprintf("accessor element type %s, kind holds %s", want, k.Elem()),
		}
	}
	return Accessor[T]{kind: k}, nil
}

func (a Accessor[T]) Kind() *Kind {
	return a.kind
}

// GetFromCursor returns the live row of the entity at the cursor position.
// It panics when the current archetype lacks the kind.
func (a Accessor[T]) GetFromCursor(cursor *Cursor) []T {
	ok, row := a.GetFromCursorSafe(cursor)
	if !ok {
		panic(fmt.Sprintf("depot: %v is not stored in the cursor's archetype", a.kind))
	}
	return row
}

func (a Accessor[T]) GetFromCursorSafe(cursor *Cursor) (bool, []T) {
	vals, ok := cursor.Values(a.kind)
	if !ok {
		return false, nil
	}
	return true, vals.([]T)
}

// CheckCursor reports whether the archetype under the cursor stores the kind.
func (a Accessor[T]) CheckCursor(cursor *Cursor) bool {
	return cursor.currentArch != nil && a.Check(cursor.currentArch)
}

func (a Accessor[T]) GetFromEntity(w World, e Entity) ([]T, error) {
	vals, err := w.Component(e, a.kind)
	if err != nil {
		return nil, err
	}
	return vals.([]T), nil
}

// GetFromView returns the whole column of a fetched view, width values per
// entity.
func (a Accessor[T]) GetFromView(v View) []T {
	return Values[T](v, a.kind)
}

func (a Accessor[T]) Check(arch Archetype) bool {
	return arch.Has(a.kind)
}

// Get reads one component of e as a typed slice aliasing storage.
func Get[T Scalar](w World, e Entity, k *Kind) ([]T, error) {
	acc, err := NewAccessor[T](k)
	if err != nil {
		return nil, err
	}
	return acc.GetFromEntity(w, e)
}
