package media

import (
	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
)

const (
	// DefaultSectorSize is used when a block device does not report its own
	DefaultSectorSize = 512
)

// BlockDevice drives sector-addressed media such as eMMC or SD cards.
// Writes overwrite in place; there is no erase step.
type BlockDevice struct {
	backend Backend
	geo     Geometry
}

// NewBlockDevice creates a driver for size bytes of backend addressed in
// sectorSize units. A trailing partial sector is not addressable.
func NewBlockDevice(backend Backend, size int64, sectorSize int64) (*BlockDevice, error) {
	if sectorSize <= 0 {
		sectorSize = DefaultSectorSize
	}
	geo := Geometry{
		Size:      size - size%sectorSize,
		EraseSize: sectorSize,
		WriteSize: sectorSize,
	}
	if err := geo.validate(); err != nil {
		return nil, err
	}
	return &BlockDevice{backend: backend, geo: geo}, nil
}

func (d *BlockDevice) Kind() Kind {
	return KindBlockDevice
}

func (d *BlockDevice) Geometry() Geometry {
	return d.geo
}

// IsBadBlock is always false; block devices remap bad sectors themselves
func (d *BlockDevice) IsBadBlock(off int64) (bool, error) {
	if off < 0 || off >= d.geo.Size {
		return false, errors.Wrapf(errdefs.ErrInvalidArgument, "offset 0x%x outside device", off)
	}
	return false, nil
}

// sectors returns the sector-aligned byte span covering length bytes at off
func (d *BlockDevice) sectors(off int64, length int) (int64, int64) {
	ss := d.geo.EraseSize
	first := off - off%ss
	end := off + int64(length)
	if rem := end % ss; rem != 0 {
		end += ss - rem
	}
	return first, end
}

// Capacity is the length of the range
func (d *BlockDevice) Capacity(off int64, length int64) (int64, error) {
	if err := d.geo.checkRange(off, int(length)); err != nil {
		return 0, err
	}
	return length, nil
}

func (d *BlockDevice) ReadRegion(p []byte, off int64) error {
	return d.ReadRegionWithin(p, off, d.geo.Size)
}

func (d *BlockDevice) ReadRegionWithin(p []byte, off int64, end int64) error {
	if err := d.geo.checkWithin(off, len(p), end); err != nil {
		return err
	}
	first, end := d.sectors(off, len(p))
	log.Debugf("block read sectors [%d, %d)", first/d.geo.EraseSize, end/d.geo.EraseSize)

	if first == off && end == off+int64(len(p)) {
		return readFull(d.backend, p, off)
	}
	buf := make([]byte, end-first)
	if err := readFull(d.backend, buf, first); err != nil {
		return err
	}
	copy(p, buf[off-first:])
	return nil
}

// WriteRegion overwrites the sectors p spans. Partially covered edge
// sectors are read first so their other bytes survive.
func (d *BlockDevice) WriteRegion(p []byte, off int64) error {
	return d.WriteRegionWithin(p, off, d.geo.Size)
}

// WriteRegionWithin is WriteRegion for a p that must end before end.
// Edge sectors may extend past end; their bytes outside p are preserved.
func (d *BlockDevice) WriteRegionWithin(p []byte, off int64, end int64) error {
	if err := d.geo.checkWithin(off, len(p), end); err != nil {
		return err
	}
	first, end := d.sectors(off, len(p))
	log.Debugf("block write sectors [%d, %d)", first/d.geo.EraseSize, end/d.geo.EraseSize)

	if first == off && end == off+int64(len(p)) {
		return writeFull(d.backend, p, off)
	}
	buf := make([]byte, end-first)
	if err := readFull(d.backend, buf, first); err != nil {
		return err
	}
	copy(buf[off-first:], p)
	return writeFull(d.backend, buf, first)
}

// EraseRegion only validates the range
func (d *BlockDevice) EraseRegion(off int64, length int64) error {
	return d.geo.checkRange(off, int(length))
}
