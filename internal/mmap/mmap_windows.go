//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows falls back to reading the whole file. Snapshot frames are read
// once and parsed, so the zero-copy mapping is an optimization, not a
// requirement.
func osMap(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func osUnmap([]byte) error { return nil }
