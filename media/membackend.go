package media

import (
	"io"
)

// MemBackend represents an in-memory block backend
// mostly for testing purposes
type MemBackend struct {
	data []byte
}

// NewMemBackend creates a zero-filled backend of a given size
func NewMemBackend(size int) *MemBackend {
	mb := new(MemBackend)
	mb.data = make([]byte, size)
	return mb
}

// WriteAt grows the backend when writing past its end
func (mb *MemBackend) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if appendLen := end - len(mb.data); appendLen > 0 {
		mb.data = append(mb.data, make([]byte, appendLen)...)
	}
	copy(mb.data[off:end], p)
	return len(p), nil
}

func (mb *MemBackend) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(mb.data)) {
		return 0, io.EOF
	}
	n := copy(p, mb.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the current backend size
func (mb *MemBackend) Size() int64 {
	return int64(len(mb.data))
}

// Bytes exposes the backend contents
func (mb *MemBackend) Bytes() []byte {
	return mb.data
}
