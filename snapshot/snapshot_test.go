package snapshot

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caveproject/bedrock"
)

func testVector(t *testing.T, vals ...uint64) *bedrock.Vector {
	t.Helper()
	v, err := bedrock.New(8, len(vals)+1)
	require.NoError(t, err)
	for _, x := range vals {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, x)
		require.NoError(t, v.Push(b))
	}
	return v
}

func vectorElems(t *testing.T, v *bedrock.Vector) []uint64 {
	t.Helper()
	out := make([]uint64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		b, err := v.At(i)
		require.NoError(t, err)
		out = append(out, binary.LittleEndian.Uint64(b))
	}
	return out
}

func TestWriteRead(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			v := testVector(t, 1, 2, 3, 42, 1<<60)
			defer v.Release()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, v, WithCodec(codec)))

			got, err := Read(&buf)
			require.NoError(t, err)
			defer got.Release()

			assert.Equal(t, v.Stride(), got.Stride())
			assert.Equal(t, vectorElems(t, v), vectorElems(t, got))
		})
	}
}

func TestWriteReadEmpty(t *testing.T) {
	v := testVector(t)
	defer v.Release()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v, WithCodec(CodecZstd)))

	got, err := Read(&buf)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 8, got.Stride())
}

func TestReadBadMagic(t *testing.T) {
	data := make([]byte, 64)
	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestReadChecksumMismatch(t *testing.T) {
	v := testVector(t, 7, 8, 9)
	defer v.Release()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v))

	// Flip a payload byte.
	data := buf.Bytes()
	data[40] ^= 0xFF

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadTruncated(t *testing.T) {
	v := testVector(t, 7, 8, 9)
	defer v.Release()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v))

	_, err := Read(bytes.NewReader(buf.Bytes()[:10]))
	assert.Error(t, err)
}

func TestReadUnsupportedVersion(t *testing.T) {
	v := testVector(t, 1)
	defer v.Release()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v))

	data := buf.Bytes()
	ByteOrder.PutUint16(data[4:], Version+1)

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestWriteReleasedVector(t *testing.T) {
	v := testVector(t, 1)
	v.Release()

	var buf bytes.Buffer
	assert.Error(t, Write(&buf, v))
}

func TestCodecString(t *testing.T) {
	assert.Equal(t, "none", CodecNone.String())
	assert.Equal(t, "zstd", CodecZstd.String())
	assert.Equal(t, "lz4", CodecLZ4.String())
}
