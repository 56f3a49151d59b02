package snapshot

import (
	"encoding/binary"
	"errors"
)

const (
	// MagicNumber identifies a vector snapshot frame ("BVS\x01" LE).
	MagicNumber uint32 = 0x01535642

	// Version is the current frame format version.
	Version uint16 = 1
)

// ByteOrder is the wire byte order for all header fields.
var ByteOrder = binary.LittleEndian

var (
	// ErrBadMagic is returned when the frame does not start with MagicNumber.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnsupportedVersion is returned for frames written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrChecksumMismatch is returned when the trailing CRC32 does not match
	// the header and payload bytes, indicating storage corruption.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")

	// ErrUnknownCodec is returned when the header names a compression codec
	// this build does not know.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")

	// ErrCorrupt is returned when frame fields are internally inconsistent,
	// e.g. the payload does not decompress to stride*count bytes.
	ErrCorrupt = errors.New("snapshot: corrupt frame")
)

// FileHeader is the fixed-size frame header.
type FileHeader struct {
	Magic       uint32
	Version     uint16
	Codec       Codec
	Reserved    uint8
	Stride      uint64
	Count       uint64
	PayloadSize uint64
}
