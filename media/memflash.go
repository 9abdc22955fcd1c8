package media

import (
	"bytes"
	"fmt"
	"io"
)

// MemFlash simulates a raw flash chip in memory. Erased memory reads as
// 0xff, programming can only clear bits, and blocks can be marked bad.
type MemFlash struct {
	data   []byte
	geo    Geometry
	bad    map[int64]bool
	erases map[int64]int

	// ProgramErr and EraseErr, when set, are returned by every WriteAt and Erase
	ProgramErr error
	EraseErr   error
}

// NewMemFlash creates an erased flash of size bytes
func NewMemFlash(size int64, eraseSize int64, writeSize int64) *MemFlash {
	return &MemFlash{
		data:   bytes.Repeat([]byte{0xff}, int(size)),
		geo:    Geometry{Size: size, EraseSize: eraseSize, WriteSize: writeSize},
		bad:    make(map[int64]bool),
		erases: make(map[int64]int),
	}
}

func (mf *MemFlash) Geometry() Geometry {
	return mf.geo
}

func (mf *MemFlash) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= mf.geo.Size {
		return 0, io.EOF
	}
	n := copy(p, mf.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt programs p at off. Writes must be aligned to the write size.
func (mf *MemFlash) WriteAt(p []byte, off int64) (int, error) {
	if mf.ProgramErr != nil {
		return 0, mf.ProgramErr
	}
	if off < 0 || off+int64(len(p)) > mf.geo.Size {
		return 0, fmt.Errorf("program of %d bytes at 0x%x outside flash", len(p), off)
	}
	if off%mf.geo.WriteSize != 0 {
		return 0, fmt.Errorf("program at 0x%x is not page aligned", off)
	}
	for i, b := range p {
		mf.data[off+int64(i)] &= b
	}
	return len(p), nil
}

func (mf *MemFlash) Erase(off int64, length int64) error {
	if mf.EraseErr != nil {
		return mf.EraseErr
	}
	if off%mf.geo.EraseSize != 0 || length%mf.geo.EraseSize != 0 {
		return fmt.Errorf("erase of %d bytes at 0x%x is not block aligned", length, off)
	}
	if off < 0 || off+length > mf.geo.Size {
		return fmt.Errorf("erase of %d bytes at 0x%x outside flash", length, off)
	}
	for start := off; start < off+length; start += mf.geo.EraseSize {
		copy(mf.data[start:start+mf.geo.EraseSize], bytes.Repeat([]byte{0xff}, int(mf.geo.EraseSize)))
		mf.erases[start]++
	}
	return nil
}

func (mf *MemFlash) IsBad(off int64) (bool, error) {
	return mf.bad[mf.geo.blockStart(off)], nil
}

// MarkBad marks the erase block containing off as bad
func (mf *MemFlash) MarkBad(off int64) {
	mf.bad[mf.geo.blockStart(off)] = true
}

// EraseCount returns how many times the block containing off was erased
func (mf *MemFlash) EraseCount(off int64) int {
	return mf.erases[mf.geo.blockStart(off)]
}

// Bytes exposes the raw flash contents
func (mf *MemFlash) Bytes() []byte {
	return mf.data
}
