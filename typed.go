package bedrock

import (
	"fmt"
	"unsafe"
)

// Of is a typed view over a Vector for the common case where the element
// type is known at compile time. The stride is unsafe.Sizeof(T); the view
// adds no state of its own and shares the underlying vector.
//
// Element transfer is bitwise, exactly like the raw container: a T holding
// pointers, slices or maps has those headers copied shallowly. Zero-size
// types (struct{}) are rejected at construction since the stride would be 0.
type Of[T any] struct {
	v *Vector
}

// NewOf creates an initialized, empty typed vector. An initialCapacity of 0
// means DefaultCapacity.
func NewOf[T any](initialCapacity int, opts ...Option) (*Of[T], error) {
	var zero T
	v, err := New(int(unsafe.Sizeof(zero)), initialCapacity, opts...)
	if err != nil {
		return nil, err
	}
	return &Of[T]{v: v}, nil
}

// ViewOf wraps an existing vector in a typed view. The vector's stride must
// equal unsafe.Sizeof(T).
func ViewOf[T any](v *Vector) (*Of[T], error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	var zero T
	if want := int(unsafe.Sizeof(zero)); v.stride != want {
		return nil, fmt.Errorf("%w: vector stride %d does not match element size %d", ErrInvalidArgument, v.stride, want)
	}
	return &Of[T]{v: v}, nil
}

// Raw returns the underlying type-erased vector.
func (c *Of[T]) Raw() *Vector { return c.v }

// Len returns the number of live elements.
func (c *Of[T]) Len() int { return c.v.Len() }

// Cap returns the number of element slots currently allocated.
func (c *Of[T]) Cap() int { return c.v.Cap() }

// Release frees the underlying vector's buffer.
func (c *Of[T]) Release() { c.v.Release() }

// Push appends val, growing the buffer if needed.
func (c *Of[T]) Push(val T) error {
	return c.v.Push(unsafe.Slice((*byte)(unsafe.Pointer(&val)), unsafe.Sizeof(val)))
}

// At returns a copy of the element at index.
func (c *Of[T]) At(index int) (T, error) {
	var zero T
	b, err := c.v.At(index)
	if err != nil {
		return zero, err
	}
	return *(*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// Set overwrites the element at index.
func (c *Of[T]) Set(index int, val T) error {
	b, err := c.v.At(index)
	if err != nil {
		return err
	}
	copy(b, unsafe.Slice((*byte)(unsafe.Pointer(&val)), unsafe.Sizeof(val)))
	return nil
}

// End returns a copy of the last element.
func (c *Of[T]) End() (T, error) {
	var zero T
	b, err := c.v.End()
	if err != nil {
		return zero, err
	}
	return *(*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// Pop removes and returns the last element.
func (c *Of[T]) Pop() (T, error) {
	var out T
	err := c.v.Pop(unsafe.Slice((*byte)(unsafe.Pointer(&out)), unsafe.Sizeof(out)))
	return out, err
}

// Slice returns the live elements as a []T aliasing vector memory. The
// slice is invalidated by the next mutating call, same as At on the raw
// container.
func (c *Of[T]) Slice() []T {
	if c.v.Len() == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(c.v.data))), c.v.length)
}

// ForEach visits elements in order with a mutable pointer into the buffer.
// Callback errors short-circuit iteration as on the raw container.
func (c *Of[T]) ForEach(fn func(val *T) error) error {
	if fn == nil {
		return fmt.Errorf("%w: nil callback", ErrInvalidArgument)
	}
	return c.v.ForEach(func(elem []byte) error {
		return fn((*T)(unsafe.Pointer(unsafe.SliceData(elem))))
	})
}

// Filter removes elements for which the predicate returns false, stable and
// in place.
func (c *Of[T]) Filter(fn func(val T) (bool, error)) error {
	if fn == nil {
		return fmt.Errorf("%w: nil predicate", ErrInvalidArgument)
	}
	return c.v.Filter(func(elem []byte) (bool, error) {
		return fn(*(*T)(unsafe.Pointer(unsafe.SliceData(elem))))
	})
}

// MapOf applies fn to every element of src in order and collects the
// outputs in a new typed vector. Partial-fill semantics on callback failure
// match Vector.Map: the returned vector holds the outputs produced so far.
func MapOf[T, U any](src *Of[T], fn func(T) (U, error)) (*Of[U], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil transform", ErrInvalidArgument)
	}
	var zero U
	dest, err := src.v.Map(int(unsafe.Sizeof(zero)), func(in, out []byte) error {
		u, err := fn(*(*T)(unsafe.Pointer(unsafe.SliceData(in))))
		if err != nil {
			return err
		}
		copy(out, unsafe.Slice((*byte)(unsafe.Pointer(&u)), unsafe.Sizeof(u)))
		return nil
	})
	if dest == nil {
		return nil, err
	}
	return &Of[U]{v: dest}, err
}
