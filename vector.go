package bedrock

import (
	"fmt"
	"math"
	"math/bits"
	"unsafe"

	"github.com/caveproject/bedrock/resource"
)

const (
	// GrowFactor is the multiplier applied to capacity when the buffer must
	// grow to accommodate new elements.
	GrowFactor = 2

	// DefaultCapacity is the capacity used when New is called with an
	// initial capacity of 0.
	DefaultCapacity = 256
)

// Vector is a runtime-generic dynamically resizable array: a contiguous list
// of same-size elements whose byte size is set at construction time.
//
// The bytes in [0, Len()*Stride()) are live elements; the remainder of the
// buffer up to Cap()*Stride() is unspecified. Slices and pointers returned by
// At, AtUnchecked, End and Bytes are invalidated by any call that may
// reallocate or shift elements.
//
// A Vector owns its buffer exclusively; no two vectors ever alias the same
// allocation. Call Release when the vector is no longer needed. A released
// vector must not be used again.
//
// Vector is not safe for concurrent use.
type Vector struct {
	data     []byte
	stride   int
	capacity int
	length   int
	ctrl     *resource.Controller
}

type options struct {
	controller *resource.Controller
}

// Option configures a Vector at construction time.
type Option func(*options)

// WithController charges the vector's buffer against a resource.Controller
// memory budget. When the budget is exhausted, growth fails with
// ErrOutOfMemory instead of allocating. A nil controller is untracked.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// New creates an initialized, empty vector whose elements are stride bytes
// wide. An initialCapacity of 0 means DefaultCapacity.
//
// Returns ErrInvalidArgument if stride <= 0 or initialCapacity < 0, and
// ErrOutOfMemory if the buffer cannot be allocated.
func New(stride, initialCapacity int, opts ...Option) (*Vector, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("%w: stride must be positive, got %d", ErrInvalidArgument, stride)
	}
	if initialCapacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, initialCapacity)
	}
	if initialCapacity == 0 {
		initialCapacity = DefaultCapacity
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	v := &Vector{stride: stride, ctrl: o.controller}
	data, err := v.alloc(initialCapacity)
	if err != nil {
		return nil, err
	}
	v.data = data
	v.capacity = initialCapacity

	return v, nil
}

// FromBytes creates a vector holding a copy of data, interpreted as
// len(data)/stride elements of stride bytes. len(data) must be a multiple of
// stride. The snapshot package uses this to reconstruct vectors from frames.
func FromBytes(stride int, data []byte, opts ...Option) (*Vector, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("%w: stride must be positive, got %d", ErrInvalidArgument, stride)
	}
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of stride %d", ErrInvalidArgument, len(data), stride)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	length := len(data) / stride
	v := &Vector{stride: stride, ctrl: o.controller}
	buf, err := v.alloc(length)
	if err != nil {
		return nil, err
	}
	copy(buf, data)
	v.data = buf
	v.capacity = length
	v.length = length
	return v, nil
}

// Len returns the number of live elements.
func (v *Vector) Len() int {
	if v == nil {
		return 0
	}
	return v.length
}

// Cap returns the number of element slots currently allocated.
func (v *Vector) Cap() int {
	if v == nil {
		return 0
	}
	return v.capacity
}

// Stride returns the element size in bytes, or 0 for a released vector.
func (v *Vector) Stride() int {
	if v == nil {
		return 0
	}
	return v.stride
}

// Bytes returns the live portion of the backing buffer. The slice aliases
// vector memory and is invalidated by the next mutating call.
func (v *Vector) Bytes() []byte {
	if v == nil || v.stride == 0 {
		return nil
	}
	return v.data[:v.length*v.stride]
}

// Reserve resizes the backing buffer to hold exactly capacity elements,
// preserving the live elements' bytes. It never shrinks below the current
// length; that fails with ErrInvalidArgument. On ErrOutOfMemory the vector
// keeps its prior buffer.
func (v *Vector) Reserve(capacity int) error {
	if err := v.check(); err != nil {
		return err
	}
	if capacity < v.length {
		return fmt.Errorf("%w: capacity %d below length %d", ErrInvalidArgument, capacity, v.length)
	}
	return v.reserveExact(capacity)
}

// Shrink releases slack capacity. Equivalent to Reserve(Len()).
func (v *Vector) Shrink() error {
	if err := v.check(); err != nil {
		return err
	}
	return v.reserveExact(v.length)
}

// Release frees the backing buffer and resets the vector to the
// uninitialized state. Calling Release on an already-released vector is a
// no-op. Any other use after Release fails with ErrInvalidArgument.
func (v *Vector) Release() {
	if v == nil || v.stride == 0 {
		return
	}
	v.ctrl.ReleaseMemory(int64(len(v.data)))
	v.data = nil
	v.stride = 0
	v.capacity = 0
	v.length = 0
}

// At returns the element at index as a sub-slice of the live buffer. The
// slice is valid only until the next mutating call. Writing through it
// mutates the element in place.
func (v *Vector) At(index int) ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if index < 0 || index >= v.length {
		return nil, &IndexError{Index: index, Len: v.length}
	}
	off := index * v.stride
	return v.data[off : off+v.stride : off+v.stride], nil
}

// AtUnchecked returns a pointer to the element at index with no bounds
// validation. Behavior is undefined if index is not in [0, Len()) or the
// vector is released. It exists as a zero-overhead escape hatch for hot
// loops that have already established the bound externally; everything else
// should use At.
func (v *Vector) AtUnchecked(index int) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(v.data)), index*v.stride)
}

// End returns the last element. Equivalent to At(Len()-1); fails with
// ErrIndexOutOfRange on an empty vector.
func (v *Vector) End() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.At(v.length - 1)
}

// Push appends one element, growing the buffer if needed. element must be
// exactly Stride() bytes. On error the vector is unchanged.
func (v *Vector) Push(element []byte) error {
	if err := v.check(); err != nil {
		return err
	}
	if len(element) != v.stride {
		return fmt.Errorf("%w: element is %d bytes, stride is %d", ErrInvalidArgument, len(element), v.stride)
	}
	if err := v.grow(v.length + 1); err != nil {
		return err
	}
	copy(v.data[v.length*v.stride:], element)
	v.length++
	return nil
}

// InsertAt inserts element at index, shifting all elements at or after index
// one slot toward the end with a single block move. index must be in
// [0, Len()); inserting at the end is Push.
func (v *Vector) InsertAt(element []byte, index int) error {
	if err := v.check(); err != nil {
		return err
	}
	if len(element) != v.stride {
		return fmt.Errorf("%w: element is %d bytes, stride is %d", ErrInvalidArgument, len(element), v.stride)
	}
	if index < 0 || index >= v.length {
		return &IndexError{Index: index, Len: v.length}
	}
	if err := v.grow(v.length + 1); err != nil {
		return err
	}
	s := v.stride
	copy(v.data[(index+1)*s:(v.length+1)*s], v.data[index*s:v.length*s])
	copy(v.data[index*s:], element)
	v.length++
	return nil
}

// Pop removes the last element. If dest is non-nil the element's bytes are
// copied into it first; dest must then be at least Stride() bytes. Bytes
// beyond the new length are not zeroed.
func (v *Vector) Pop(dest []byte) error {
	if err := v.check(); err != nil {
		return err
	}
	if v.length == 0 {
		return &IndexError{Index: -1, Len: 0}
	}
	if dest != nil {
		if len(dest) < v.stride {
			return fmt.Errorf("%w: dest is %d bytes, stride is %d", ErrInvalidArgument, len(dest), v.stride)
		}
		copy(dest, v.data[(v.length-1)*v.stride:v.length*v.stride])
	}
	v.length--
	return nil
}

// RemoveAt removes the element at index, optionally copying it into dest
// first, then closes the gap with a single block move. O(n) in the number of
// elements after index.
func (v *Vector) RemoveAt(dest []byte, index int) error {
	if err := v.check(); err != nil {
		return err
	}
	if index < 0 || index >= v.length {
		return &IndexError{Index: index, Len: v.length}
	}
	s := v.stride
	if dest != nil {
		if len(dest) < s {
			return fmt.Errorf("%w: dest is %d bytes, stride is %d", ErrInvalidArgument, len(dest), s)
		}
		copy(dest, v.data[index*s:(index+1)*s])
	}
	copy(v.data[index*s:], v.data[(index+1)*s:v.length*s])
	v.length--
	return nil
}

// Clear sets the length to 0 without touching capacity or buffer contents.
func (v *Vector) Clear() error {
	if err := v.check(); err != nil {
		return err
	}
	v.length = 0
	return nil
}

// Clone creates a new vector with the same stride, capacity and live bytes.
// The copy is bitwise: elements that contain pointers share what they point
// at. The clone is charged against the same resource controller, if any.
func (v *Vector) Clone() (*Vector, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	c := &Vector{stride: v.stride, ctrl: v.ctrl}
	data, err := c.alloc(v.capacity)
	if err != nil {
		return nil, err
	}
	copy(data, v.data[:v.length*v.stride])
	c.data = data
	c.capacity = v.capacity
	c.length = v.length
	return c, nil
}

// CopyAssign discards the vector's contents and replaces them with a bitwise
// copy of src's live elements, reusing the existing buffer when capacity
// allows. The strides are not required to match, but the copy is raw bytes:
// mismatched strides produce nonsensical element boundaries and are the
// caller's responsibility.
func (v *Vector) CopyAssign(src *Vector) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := src.check(); err != nil {
		return err
	}
	if v == src {
		return nil
	}

	// Capacity must cover src's live bytes and, to keep indexed access in
	// bounds when strides differ, at least src.length slots of our stride.
	srcBytes := src.length * src.stride
	capNeeded := src.length
	if n := (srcBytes + v.stride - 1) / v.stride; n > capNeeded {
		capNeeded = n
	}
	if capNeeded > v.capacity {
		if err := v.reserveExact(capNeeded); err != nil {
			return err
		}
	}
	copy(v.data, src.data[:srcBytes])
	v.length = src.length
	return nil
}

// Append concatenates other's live elements onto v. The strides must match.
// Appending a vector to itself doubles its contents.
func (v *Vector) Append(other *Vector) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := other.check(); err != nil {
		return err
	}
	if other.stride != v.stride {
		return fmt.Errorf("%w: stride mismatch %d vs %d", ErrInvalidArgument, v.stride, other.stride)
	}
	n := other.length
	if n == 0 {
		return nil
	}
	if err := v.grow(v.length + n); err != nil {
		return err
	}
	// After growth other.data is current even when other == v.
	copy(v.data[v.length*v.stride:], other.data[:n*other.stride])
	v.length += n
	return nil
}

// SplitAt moves the elements at or after index into a new vector and
// truncates v to index elements. index may equal Len(), yielding an empty
// tail. The tail inherits v's stride and resource controller.
func (v *Vector) SplitAt(index int) (*Vector, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if index < 0 || index > v.length {
		return nil, &IndexError{Index: index, Len: v.length + 1}
	}
	tailLen := v.length - index
	tail := &Vector{stride: v.stride, ctrl: v.ctrl}
	data, err := tail.alloc(tailLen)
	if err != nil {
		return nil, err
	}
	copy(data, v.data[index*v.stride:v.length*v.stride])
	tail.data = data
	tail.capacity = tailLen
	tail.length = tailLen
	v.length = index
	return tail, nil
}

// check validates the receiver is non-nil and initialized.
func (v *Vector) check() error {
	if v == nil {
		return fmt.Errorf("%w: nil vector", ErrInvalidArgument)
	}
	if v.stride == 0 {
		return fmt.Errorf("%w: vector is released or uninitialized", ErrInvalidArgument)
	}
	return nil
}

// grow ensures capacity for at least need elements using the growth policy
// max(capacity*GrowFactor, need). No-op if capacity already suffices.
func (v *Vector) grow(need int) error {
	if need <= v.capacity {
		return nil
	}
	newCap := v.capacity * GrowFactor
	if newCap < need {
		newCap = need
	}
	return v.reserveExact(newCap)
}

// reserveExact reallocates to exactly capacity slots, preserving live bytes.
// On failure the prior buffer is kept.
func (v *Vector) reserveExact(capacity int) error {
	if capacity == v.capacity {
		return nil
	}
	data, err := v.alloc(capacity)
	if err != nil {
		return err
	}
	copy(data, v.data[:v.length*v.stride])
	v.ctrl.ReleaseMemory(int64(len(v.data)))
	v.data = data
	v.capacity = capacity
	return nil
}

// alloc allocates a buffer for capacity elements of v.stride bytes, charging
// it against the resource controller. The caller updates v.data/v.capacity.
func (v *Vector) alloc(capacity int) ([]byte, error) {
	n, err := byteSize(capacity, v.stride)
	if err != nil {
		return nil, err
	}
	if !v.ctrl.TryAcquireMemory(int64(n)) {
		return nil, fmt.Errorf("%w: memory budget exhausted acquiring %d bytes", ErrOutOfMemory, n)
	}
	return make([]byte, n), nil
}

// byteSize computes capacity*stride, rejecting overflow as ErrOutOfMemory.
func byteSize(capacity, stride int) (int, error) {
	hi, lo := bits.Mul64(uint64(capacity), uint64(stride))
	if hi != 0 || lo > math.MaxInt {
		return 0, fmt.Errorf("%w: %d elements of %d bytes overflows", ErrOutOfMemory, capacity, stride)
	}
	return int(lo), nil
}
