package bedrock

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ForEach visits elements 0..Len()-1 in order, passing each as a mutable
// sub-slice of the live buffer. The callback may mutate the element in
// place. If the callback returns an error, iteration stops immediately and
// the error is returned wrapped in *CallbackError; already-visited elements
// retain whatever mutation the callback performed.
//
// The callback must not call mutating operations on v.
func (v *Vector) ForEach(fn func(elem []byte) error) error {
	if err := v.check(); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: nil callback", ErrInvalidArgument)
	}
	s := v.stride
	for i := 0; i < v.length; i++ {
		if err := fn(v.data[i*s : (i+1)*s : (i+1)*s]); err != nil {
			return &CallbackError{Err: err}
		}
	}
	return nil
}

// Filter visits elements in order and removes those for which the predicate
// returns false, preserving the relative order of kept elements. The filter
// is a single in-place compaction pass; each element is visited exactly once
// whether kept or dropped. The predicate must treat elem as read-only.
//
// If the predicate returns an error, it is returned wrapped in
// *CallbackError. Elements already dropped stay dropped; the element that
// caused the error and all unvisited elements are retained.
func (v *Vector) Filter(fn func(elem []byte) (bool, error)) error {
	if err := v.check(); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: nil predicate", ErrInvalidArgument)
	}
	s := v.stride
	w := 0
	for r := 0; r < v.length; r++ {
		elem := v.data[r*s : (r+1)*s : (r+1)*s]
		keep, err := fn(elem)
		if err != nil {
			// Close the gap over the dropped prefix so the errored element
			// and the unvisited tail survive at their compacted positions.
			if w != r {
				copy(v.data[w*s:], v.data[r*s:v.length*s])
			}
			v.length -= r - w
			return &CallbackError{Err: err}
		}
		if keep {
			if w != r {
				copy(v.data[w*s:(w+1)*s], elem)
			}
			w++
		}
	}
	v.length = w
	return nil
}

// Map applies fn to every element of v in order and collects the outputs in
// a new vector of element size outputStride, allocated with capacity Len().
// fn receives the source element and the destination slot and must write
// outputStride bytes into dst.
//
// On a callback error the destination is still returned: it is initialized
// and holds the outputs produced so far (its length reflects the count
// successfully transformed), alongside the error wrapped in *CallbackError.
// The caller owns the destination in both cases and must Release it.
func (v *Vector) Map(outputStride int, fn func(src, dst []byte) error) (*Vector, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: nil transform", ErrInvalidArgument)
	}
	if outputStride <= 0 {
		return nil, fmt.Errorf("%w: output stride must be positive, got %d", ErrInvalidArgument, outputStride)
	}

	dest := &Vector{stride: outputStride, ctrl: v.ctrl}
	data, err := dest.alloc(v.length)
	if err != nil {
		return nil, err
	}
	dest.data = data
	dest.capacity = v.length

	s, os := v.stride, outputStride
	for i := 0; i < v.length; i++ {
		src := v.data[i*s : (i+1)*s : (i+1)*s]
		dst := dest.data[i*os : (i+1)*os : (i+1)*os]
		if err := fn(src, dst); err != nil {
			return dest, &CallbackError{Err: err}
		}
		dest.length = i + 1
	}
	return dest, nil
}

// RemoveIndexes removes every element whose index is contained in set,
// preserving the relative order of survivors in a single compaction pass.
// Set members at or beyond Len() are ignored. Indexes are 32-bit; vectors
// longer than MaxUint32 elements cannot be trimmed this way.
func (v *Vector) RemoveIndexes(set *roaring.Bitmap) error {
	if err := v.check(); err != nil {
		return err
	}
	if set == nil || set.IsEmpty() {
		return nil
	}
	s := v.stride
	w := 0
	for r := 0; r < v.length; r++ {
		if set.Contains(uint32(r)) {
			continue
		}
		if w != r {
			copy(v.data[w*s:(w+1)*s], v.data[r*s:(r+1)*s])
		}
		w++
	}
	v.length = w
	return nil
}
