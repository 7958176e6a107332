package depot

import (
	"fmt"
	"reflect"
	"strings"
)

// ElemType is the scalar element type stored in a component column.
type ElemType uint8

const (
	ElemNone ElemType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

// Scalar is the set of Go types a column can hold.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

var elemNames = [...]string{
	ElemNone: "none",
	Bool:     "bool",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Uint8:    "uint8",
	Uint16:   "uint16",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Float32:  "float32",
	Float64:  "float64",
}

var elemReflectTypes = [...]reflect.Type{
	Bool:    reflect.TypeFor[bool](),
	Int8:    reflect.TypeFor[int8](),
	Int16:   reflect.TypeFor[int16](),
	Int32:   reflect.TypeFor[int32](),
	Int64:   reflect.TypeFor[int64](),
	Uint8:   reflect.TypeFor[uint8](),
	Uint16:  reflect.TypeFor[uint16](),
	Uint32:  reflect.TypeFor[uint32](),
	Uint64:  reflect.TypeFor[uint64](),
	Float32: reflect.TypeFor[float32](),
	Float64: reflect.TypeFor[float64](),
}

func (e ElemType) String() string {
	if int(e) < len(elemNames) {
		return elemNames[e]
	}
	return fmt.Sprintf("ElemType(%d)", uint8(e))
}

// ParseElemType maps a type name such as "float32" to its ElemType.
func ParseElemType(name string) (ElemType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ElemNone, nil
	}
	for i, n := range elemNames {
		if n == name {
			return ElemType(i), nil
		}
	}
	return ElemNone, fmt.Errorf("unknown element type %q", name)
}

func (e ElemType) reflectType() reflect.Type {
	return elemReflectTypes[e]
}

func elemTypeOf[T Scalar]() ElemType {
	t := reflect.TypeFor[T]()
	for i, rt := range elemReflectTypes {
		if rt == t {
			return ElemType(i)
		}
	}
	return ElemNone
}

// Kind is a declared component kind. The pointer is the identity token: two
// kinds with the same name are still different kinds.
type Kind struct {
	name  string
	elem  ElemType
	shape []int
	width int
}

// NewKind declares a data-bearing kind. Without a shape it holds a single
// scalar; without an element type it stores float32. Passing neither declares
// a tag. It panics on a non-positive dimension.
func NewKind(name string, elem ElemType, shape ...int) *Kind {
	k, err := DeclareKind(name, elem, shape...)
	if err != nil {
		panic(err)
	}
	return k
}

// NewTag declares a zero-width marker kind.
func NewTag(name string) *Kind {
	return &Kind{name: name}
}

// DeclareKind is NewKind returning the declaration error instead of panicking.
func DeclareKind(name string, elem ElemType, shape ...int) (*Kind, error) {
	if elem == ElemNone && len(shape) == 0 {
		return NewTag(name), nil
	}
	if int(elem) >= len(elemNames) {
		return nil, fmt.Errorf("kind %s: unknown element type %d", name, elem)
	}
	if elem == ElemNone {
		elem = Float32
	}
	if len(shape) == 0 {
		shape = []int{1}
	}
	width := 1
	for _, dim := range shape {
		if dim <= 0 {
			return nil, fmt.Errorf("kind %s: dimension %d must be positive", name, dim)
		}
		width *= dim
	}
	return &Kind{
		name:  name,
		elem:  elem,
		shape: append([]int(nil), shape...),
		width: width,
	}, nil
}

func (k *Kind) Name() string { return k.name }

func (k *Kind) Elem() ElemType { return k.elem }

func (k *Kind) Shape() []int { return append([]int(nil), k.shape...) }

// Width is the number of scalar elements one row of this kind occupies.
func (k *Kind) Width() int { return k.width }

func (k *Kind) IsTag() bool { return k.elem == ElemNone }

func (k *Kind) String() string {
	if k == nil {
		return "<nil kind>"
	}
	return k.name
}

type scalarClass uint8

const (
	classInvalid scalarClass = iota
	classBool
	classInt
	classUint
	classFloat
)

func classOf(k reflect.Kind) scalarClass {
	switch k {
	case reflect.Bool:
		return classBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classUint
	case reflect.Float32, reflect.Float64:
		return classFloat
	}
	return classInvalid
}

// castable follows same-kind casting: values may widen across classes toward
// float but never narrow from float to an integer or from a number to bool.
func castable(src, dst scalarClass) bool {
	switch dst {
	case classBool:
		return src == classBool
	case classInt:
		return src == classBool || src == classInt || src == classUint
	case classUint:
		return src == classBool || src == classUint
	case classFloat:
		return src != classInvalid
	}
	return false
}

// encode validates value against the kind's schema and returns it as a flat
// []T of Width() elements. Tags encode to nil.
func (k *Kind) encode(value any) (any, error) {
	if k.IsTag() {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, SchemaMismatchError{Kind: k, Reason: "nil value"}
	}

	var (
		shape  []int
		leaves []reflect.Value
	)
	if err := flatten(rv, 0, &shape, &leaves); err != nil {
		return nil, SchemaMismatchError{Kind: k, Reason: err.Error()}
	}
	if len(shape) > 0 && product(shape) != len(leaves) {
		return nil, SchemaMismatchError{Kind: k, Reason: "ragged value"}
	}
	if len(shape) > 0 && !sameShape(shape, k.shape) {
		return nil, SchemaMismatchError{
			Kind:   k,
			Reason: fmt.Sprintf("expects shape %v, got %v", k.shape, shape),
		}
	}

	dstType := k.elem.reflectType()
	dstClass := classOf(dstType.Kind())
	for _, leaf := range leaves {
		if !castable(classOf(leaf.Kind()), dstClass) {
			return nil, SchemaMismatchError{
				Kind:   k,
				Reason: fmt.Sprintf("expects %s, got incompatible %s", k.elem, leaf.Type()),
			}
		}
	}

	out := reflect.MakeSlice(reflect.SliceOf(dstType), k.width, k.width)
	if len(shape) == 0 {
		v := convertLeaf(leaves[0], dstType)
		for i := 0; i < k.width; i++ {
			out.Index(i).Set(v)
		}
		return out.Interface(), nil
	}
	for i, leaf := range leaves {
		out.Index(i).Set(convertLeaf(leaf, dstType))
	}
	return out.Interface(), nil
}

func flatten(rv reflect.Value, depth int, shape *[]int, leaves *[]reflect.Value) error {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("nil element")
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		if len(*shape) == depth {
			if len(*leaves) > 0 {
				return fmt.Errorf("ragged value at depth %d", depth)
			}
			*shape = append(*shape, n)
		} else if depth > len(*shape) || (*shape)[depth] != n {
			return fmt.Errorf("ragged value at depth %d", depth)
		}
		for i := 0; i < n; i++ {
			if err := flatten(rv.Index(i), depth+1, shape, leaves); err != nil {
				return err
			}
		}
		return nil
	}
	if len(*shape) != depth {
		return fmt.Errorf("ragged value at depth %d", depth)
	}
	if classOf(rv.Kind()) == classInvalid {
		return fmt.Errorf("unsupported value type %s", rv.Type())
	}
	*leaves = append(*leaves, rv)
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func convertLeaf(leaf reflect.Value, dst reflect.Type) reflect.Value {
	if leaf.Kind() == reflect.Bool && dst.Kind() != reflect.Bool {
		var n int64
		if leaf.Bool() {
			n = 1
		}
		return reflect.ValueOf(n).Convert(dst)
	}
	return leaf.Convert(dst)
}
