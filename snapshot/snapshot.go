package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/caveproject/bedrock"
)

type writeOptions struct {
	codec Codec
}

// WriteOption configures Write.
type WriteOption func(*writeOptions)

// WithCodec selects the payload compression. Default is CodecNone.
func WithCodec(c Codec) WriteOption {
	return func(o *writeOptions) {
		o.codec = c
	}
}

// Write serializes v's live elements as a snapshot frame.
func Write(w io.Writer, v *bedrock.Vector, opts ...WriteOption) error {
	o := writeOptions{codec: CodecNone}
	for _, opt := range opts {
		opt(&o)
	}
	if v == nil || v.Stride() == 0 {
		return fmt.Errorf("snapshot: cannot write a released vector")
	}

	payload, err := compress(o.codec, v.Bytes())
	if err != nil {
		return err
	}

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Codec:       o.codec,
		Stride:      uint64(v.Stride()),
		Count:       uint64(v.Len()),
		PayloadSize: uint64(len(payload)),
	}

	cw := newChecksumWriter(w)
	if err := binary.Write(cw, ByteOrder, &header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := cw.Write(payload); err != nil {
		return fmt.Errorf("snapshot: write payload: %w", err)
	}
	if err := binary.Write(w, ByteOrder, cw.Sum()); err != nil {
		return fmt.Errorf("snapshot: write checksum: %w", err)
	}
	return nil
}

// Read parses a snapshot frame and reconstructs the vector. The returned
// vector is freshly allocated and owned by the caller; opts are applied to
// it (e.g. bedrock.WithController).
func Read(r io.Reader, opts ...bedrock.Option) (*bedrock.Vector, error) {
	cr := newChecksumReader(r)

	var header FileHeader
	if err := binary.Read(cr, ByteOrder, &header); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return nil, ErrBadMagic
	}
	if header.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}
	if header.Stride == 0 || header.Stride > math.MaxInt {
		return nil, fmt.Errorf("%w: stride %d", ErrCorrupt, header.Stride)
	}
	hi, rawSize := bits.Mul64(header.Stride, header.Count)
	if hi != 0 || rawSize > math.MaxInt {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrCorrupt, header.Count, header.Stride)
	}
	if header.PayloadSize > math.MaxInt {
		return nil, fmt.Errorf("%w: payload size %d", ErrCorrupt, header.PayloadSize)
	}

	payload := make([]byte, header.PayloadSize)
	if _, err := io.ReadFull(cr, payload); err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}

	// The trailing checksum is read outside the checksumming reader.
	var stored uint32
	if err := binary.Read(r, ByteOrder, &stored); err != nil {
		return nil, fmt.Errorf("snapshot: read checksum: %w", err)
	}
	if stored != cr.Sum() {
		return nil, ErrChecksumMismatch
	}

	data, err := decompress(header.Codec, payload, int(rawSize))
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) != rawSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrCorrupt, len(data), rawSize)
	}

	return bedrock.FromBytes(int(header.Stride), data, opts...)
}
