package bedrock

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caveproject/bedrock/resource"
)

func u64(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}

func pushAll(t *testing.T, v *Vector, vals ...uint64) {
	t.Helper()
	for _, x := range vals {
		require.NoError(t, v.Push(u64(x)))
	}
}

func elems(t *testing.T, v *Vector) []uint64 {
	t.Helper()
	out := make([]uint64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		b, err := v.At(i)
		require.NoError(t, err)
		out = append(out, binary.LittleEndian.Uint64(b))
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		stride  int
		cap     int
		wantCap int
		wantErr error
	}{
		{name: "explicit capacity", stride: 8, cap: 10, wantCap: 10},
		{name: "zero capacity means default", stride: 8, cap: 0, wantCap: DefaultCapacity},
		{name: "stride one", stride: 1, cap: 3, wantCap: 3},
		{name: "zero stride", stride: 0, cap: 10, wantErr: ErrInvalidArgument},
		{name: "negative stride", stride: -4, cap: 10, wantErr: ErrInvalidArgument},
		{name: "negative capacity", stride: 8, cap: -1, wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.stride, tt.cap)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer v.Release()

			assert.Equal(t, 0, v.Len())
			assert.Equal(t, tt.wantCap, v.Cap())
			assert.Equal(t, tt.stride, v.Stride())
		})
	}
}

func TestReserve(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 1, 2, 3)

	// Below length is rejected and nothing changes.
	err = v.Reserve(2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 4, v.Cap())
	assert.Equal(t, []uint64{1, 2, 3}, elems(t, v))

	// Capacity becomes exactly the request, bytes preserved.
	require.NoError(t, v.Reserve(100))
	assert.Equal(t, 100, v.Cap())
	assert.Equal(t, []uint64{1, 2, 3}, elems(t, v))

	require.NoError(t, v.Reserve(3))
	assert.Equal(t, 3, v.Cap())
	assert.Equal(t, []uint64{1, 2, 3}, elems(t, v))
}

func TestShrink(t *testing.T) {
	v, err := New(8, 64)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 7, 8)
	require.NoError(t, v.Shrink())
	assert.Equal(t, 2, v.Cap())
	assert.Equal(t, []uint64{7, 8}, elems(t, v))
}

func TestPushPopRoundTrip(t *testing.T) {
	v, err := New(8, 2)
	require.NoError(t, err)
	defer v.Release()

	in := []uint64{10, 20, 30, 40, 50, 60, 70}
	pushAll(t, v, in...)
	assert.Equal(t, len(in), v.Len())

	var got []uint64
	for v.Len() > 0 {
		dest := make([]byte, 8)
		require.NoError(t, v.Pop(dest))
		got = append(got, binary.LittleEndian.Uint64(dest))
	}

	// Popped sequence is the pushed sequence reversed.
	for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
		in[i], in[j] = in[j], in[i]
	}
	assert.Equal(t, in, got)
	assert.Equal(t, 0, v.Len())
}

func TestPushGrows(t *testing.T) {
	v, err := New(8, 1)
	require.NoError(t, err)
	defer v.Release()

	for i := uint64(0); i < 100; i++ {
		require.NoError(t, v.Push(u64(i)))
	}
	assert.Equal(t, 100, v.Len())
	assert.GreaterOrEqual(t, v.Cap(), 100)

	for i := 0; i < 100; i++ {
		b, err := v.At(i)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), binary.LittleEndian.Uint64(b))
	}
}

func TestPushStrideMismatch(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	assert.ErrorIs(t, v.Push([]byte{1, 2, 3}), ErrInvalidArgument)
	assert.Equal(t, 0, v.Len())
}

func TestPopDiscard(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 1, 2)
	require.NoError(t, v.Pop(nil))
	assert.Equal(t, []uint64{1}, elems(t, v))
}

func TestInsertRemoveIdempotent(t *testing.T) {
	orig := []uint64{1, 2, 3, 4, 5}

	for index := 0; index < len(orig); index++ {
		v, err := New(8, 8)
		require.NoError(t, err)
		pushAll(t, v, orig...)

		require.NoError(t, v.InsertAt(u64(99), index))
		b, err := v.At(index)
		require.NoError(t, err)
		assert.Equal(t, uint64(99), binary.LittleEndian.Uint64(b))
		assert.Equal(t, len(orig)+1, v.Len())

		dest := make([]byte, 8)
		require.NoError(t, v.RemoveAt(dest, index))
		assert.Equal(t, uint64(99), binary.LittleEndian.Uint64(dest))
		assert.Equal(t, orig, elems(t, v))

		v.Release()
	}
}

func TestInsertAtShiftsTail(t *testing.T) {
	v, err := New(8, 2) // force growth during insert
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 1, 3)
	require.NoError(t, v.InsertAt(u64(2), 1))
	assert.Equal(t, []uint64{1, 2, 3}, elems(t, v))
}

func TestRemoveAtWithoutDest(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 1, 2, 3)
	require.NoError(t, v.RemoveAt(nil, 0))
	assert.Equal(t, []uint64{2, 3}, elems(t, v))
}

func TestBoundaryErrors(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	// Empty vector.
	_, err = v.At(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = v.End()
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, v.Pop(nil), ErrIndexOutOfRange)
	assert.ErrorIs(t, v.RemoveAt(nil, 0), ErrIndexOutOfRange)
	assert.ErrorIs(t, v.InsertAt(u64(1), 0), ErrIndexOutOfRange)

	// Index equal to length.
	pushAll(t, v, 1, 2)
	_, err = v.At(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, v.RemoveAt(nil, 2), ErrIndexOutOfRange)
	assert.ErrorIs(t, v.InsertAt(u64(9), 2), ErrIndexOutOfRange)

	var idxErr *IndexError
	_, err = v.At(7)
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, 7, idxErr.Index)
	assert.Equal(t, 2, idxErr.Len)
}

func TestAtReturnsMutableView(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 5)
	b, err := v.At(0)
	require.NoError(t, err)
	binary.LittleEndian.PutUint64(b, 42)

	assert.Equal(t, []uint64{42}, elems(t, v))
}

func TestEnd(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 1, 2, 3)
	b, err := v.End()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(b))
}

func TestAtUnchecked(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 11, 22, 33)
	for i, want := range []uint64{11, 22, 33} {
		got := *(*uint64)(v.AtUnchecked(i))
		assert.Equal(t, want, got)
	}
}

func TestClear(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	defer v.Release()

	pushAll(t, v, 1, 2, 3)
	require.NoError(t, v.Clear())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 4, v.Cap())
}

func TestRelease(t *testing.T) {
	v, err := New(8, 4)
	require.NoError(t, err)
	pushAll(t, v, 1)

	v.Release()
	v.Release() // no-op on an already-released vector

	assert.ErrorIs(t, v.Push(u64(1)), ErrInvalidArgument)
	_, err = v.At(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, v.Clear(), ErrInvalidArgument)

	var nilVec *Vector
	assert.ErrorIs(t, nilVec.Push(u64(1)), ErrInvalidArgument)
	nilVec.Release()
}

func TestClone(t *testing.T) {
	v, err := New(8, 16)
	require.NoError(t, err)
	defer v.Release()
	pushAll(t, v, 1, 2, 3)

	c, err := v.Clone()
	require.NoError(t, err)
	defer c.Release()

	assert.Equal(t, v.Cap(), c.Cap())
	assert.Equal(t, elems(t, v), elems(t, c))

	// Distinct allocations: mutating the clone leaves the source alone.
	require.NoError(t, c.Push(u64(4)))
	b, err := c.At(0)
	require.NoError(t, err)
	binary.LittleEndian.PutUint64(b, 99)
	assert.Equal(t, []uint64{1, 2, 3}, elems(t, v))
}

func TestCopyAssign(t *testing.T) {
	src, err := New(8, 8)
	require.NoError(t, err)
	defer src.Release()
	pushAll(t, src, 4, 5, 6)

	t.Run("reuses capacity", func(t *testing.T) {
		dst, err := New(8, 16)
		require.NoError(t, err)
		defer dst.Release()
		pushAll(t, dst, 9)

		require.NoError(t, dst.CopyAssign(src))
		assert.Equal(t, []uint64{4, 5, 6}, elems(t, dst))
		assert.Equal(t, 16, dst.Cap())
	})

	t.Run("grows when too small", func(t *testing.T) {
		dst, err := New(8, 1)
		require.NoError(t, err)
		defer dst.Release()

		require.NoError(t, dst.CopyAssign(src))
		assert.Equal(t, []uint64{4, 5, 6}, elems(t, dst))
	})

	t.Run("self assign is a no-op", func(t *testing.T) {
		require.NoError(t, src.CopyAssign(src))
		assert.Equal(t, []uint64{4, 5, 6}, elems(t, src))
	})
}

func TestAppend(t *testing.T) {
	a, err := New(8, 2)
	require.NoError(t, err)
	defer a.Release()
	pushAll(t, a, 1, 2)

	b, err := New(8, 2)
	require.NoError(t, err)
	defer b.Release()
	pushAll(t, b, 3, 4)

	require.NoError(t, a.Append(b))
	assert.Equal(t, []uint64{1, 2, 3, 4}, elems(t, a))
	assert.Equal(t, []uint64{3, 4}, elems(t, b))

	// Self append doubles the contents.
	require.NoError(t, b.Append(b))
	assert.Equal(t, []uint64{3, 4, 3, 4}, elems(t, b))

	c, err := New(4, 2)
	require.NoError(t, err)
	defer c.Release()
	assert.ErrorIs(t, a.Append(c), ErrInvalidArgument)
}

func TestSplitAt(t *testing.T) {
	v, err := New(8, 8)
	require.NoError(t, err)
	defer v.Release()
	pushAll(t, v, 1, 2, 3, 4, 5)

	tail, err := v.SplitAt(2)
	require.NoError(t, err)
	defer tail.Release()

	assert.Equal(t, []uint64{1, 2}, elems(t, v))
	assert.Equal(t, []uint64{3, 4, 5}, elems(t, tail))

	empty, err := v.SplitAt(2)
	require.NoError(t, err)
	defer empty.Release()
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 8, empty.Stride())

	_, err = v.SplitAt(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFromBytes(t *testing.T) {
	data := append(u64(7), u64(8)...)
	v, err := FromBytes(8, data)
	require.NoError(t, err)
	defer v.Release()

	assert.Equal(t, []uint64{7, 8}, elems(t, v))

	// The vector owns a copy.
	data[0] = 0xFF
	assert.Equal(t, []uint64{7, 8}, elems(t, v))

	_, err = FromBytes(8, make([]byte, 12))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = FromBytes(0, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMemoryBudget(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 64})

	v, err := New(8, 4, WithController(ctrl)) // 32 bytes
	require.NoError(t, err)
	assert.Equal(t, int64(32), ctrl.MemoryUsage())

	pushAll(t, v, 1, 2, 3, 4)

	// Growing 4 -> 8 slots needs 64 fresh bytes before the old 32 are
	// returned; the budget cannot cover it.
	err = v.Push(u64(5))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, []uint64{1, 2, 3, 4}, elems(t, v))
	assert.Equal(t, int64(32), ctrl.MemoryUsage())

	v.Release()
	assert.Equal(t, int64(0), ctrl.MemoryUsage())
}

func TestByteSizeOverflow(t *testing.T) {
	_, err := byteSize(1<<40, 1<<40)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestErrorKinds(t *testing.T) {
	idx := &IndexError{Index: 3, Len: 2}
	assert.True(t, errors.Is(idx, ErrIndexOutOfRange))
	assert.Contains(t, idx.Error(), "index 3")

	cause := errors.New("boom")
	cb := &CallbackError{Err: cause}
	assert.True(t, errors.Is(cb, cause))
	assert.Contains(t, cb.Error(), "boom")
}
