// Package snapshot serializes vectors to a checksummed binary frame.
//
// A frame is a fixed little-endian header (magic, version, codec, stride,
// element count, payload size), the raw live bytes of the vector (optionally
// zstd- or lz4-compressed), and a trailing CRC32 over header and payload.
// The codec is recorded in the header, so readers need no out-of-band
// configuration.
//
// Manager ties frames to a blobstore.Store and adds logging and optional IO
// throttling through a resource.Controller.
package snapshot
