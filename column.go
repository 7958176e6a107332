package depot

// column is one dense array of fixed-width rows. Row r occupies
// data[r*width : (r+1)*width].
type column interface {
	grow(capacity int)
	copyRow(dst, src int)
	copyFrom(src column, srcRow, dstRow int)
	write(row int, encoded any)
	row(row int) any
	view(count int) any
	gatherInto(dst any, offset, count int)
	scatterFrom(src any, offset, count int)
}

type typedColumn[T Scalar] struct {
	data  []T
	width int
}

var _ column = &typedColumn[float32]{}

func newColumn(k *Kind, capacity int) column {
	switch k.elem {
	case Bool:
		return newTypedColumn[bool](k.width, capacity)
	case Int8:
		return newTypedColumn[int8](k.width, capacity)
	case Int16:
		return newTypedColumn[int16](k.width, capacity)
	case Int32:
		return newTypedColumn[int32](k.width, capacity)
	case Int64:
		return newTypedColumn[int64](k.width, capacity)
	case Uint8:
		return newTypedColumn[uint8](k.width, capacity)
	case Uint16:
		return newTypedColumn[uint16](k.width, capacity)
	case Uint32:
		return newTypedColumn[uint32](k.width, capacity)
	case Uint64:
		return newTypedColumn[uint64](k.width, capacity)
	case Float32:
		return newTypedColumn[float32](k.width, capacity)
	case Float64:
		return newTypedColumn[float64](k.width, capacity)
	}
	panic("depot: no column for kind " + k.String())
}

// newBuffer allocates a detached []T for rows*Width() elements of k.
func newBuffer(k *Kind, rows int) any {
	n := rows * k.width
	switch k.elem {
	case Bool:
		return make([]bool, n)
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Uint8:
		return make([]uint8, n)
	case Uint16:
		return make([]uint16, n)
	case Uint32:
		return make([]uint32, n)
	case Uint64:
		return make([]uint64, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	}
	panic("depot: no buffer for kind " + k.String())
}

func newTypedColumn[T Scalar](width, capacity int) *typedColumn[T] {
	return &typedColumn[T]{
		data:  make([]T, capacity*width),
		width: width,
	}
}

func (c *typedColumn[T]) grow(capacity int) {
	if capacity*c.width <= len(c.data) {
		return
	}
	data := make([]T, capacity*c.width)
	copy(data, c.data)
	c.data = data
}

func (c *typedColumn[T]) copyRow(dst, src int) {
	copy(c.data[dst*c.width:(dst+1)*c.width], c.data[src*c.width:(src+1)*c.width])
}

func (c *typedColumn[T]) copyFrom(src column, srcRow, dstRow int) {
	other := src.(*typedColumn[T])
	copy(c.data[dstRow*c.width:(dstRow+1)*c.width], other.data[srcRow*c.width:(srcRow+1)*c.width])
}

func (c *typedColumn[T]) write(row int, encoded any) {
	copy(c.data[row*c.width:(row+1)*c.width], encoded.([]T))
}

func (c *typedColumn[T]) row(row int) any {
	return c.data[row*c.width : (row+1)*c.width : (row+1)*c.width]
}

func (c *typedColumn[T]) view(count int) any {
	return c.data[: count*c.width : count*c.width]
}

func (c *typedColumn[T]) gatherInto(dst any, offset, count int) {
	copy(dst.([]T)[offset*c.width:], c.data[:count*c.width])
}

func (c *typedColumn[T]) scatterFrom(src any, offset, count int) {
	copy(c.data[:count*c.width], src.([]T)[offset*c.width:(offset+count)*c.width])
}
