package media

import (
	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/metric"
)

// NOR drives raw NOR flash: erase before program, no bad blocks
type NOR struct {
	flash Flash
	geo   Geometry
}

// NewNOR creates a raw NOR driver on top of a flash device
func NewNOR(flash Flash) (*NOR, error) {
	geo := flash.Geometry()
	if err := geo.validate(); err != nil {
		return nil, err
	}
	return &NOR{flash: flash, geo: geo}, nil
}

func (d *NOR) Kind() Kind {
	return KindRawNOR
}

func (d *NOR) Geometry() Geometry {
	return d.geo
}

// IsBadBlock is always false on NOR
func (d *NOR) IsBadBlock(off int64) (bool, error) {
	if off < 0 || off >= d.geo.Size {
		return false, errors.Wrapf(errdefs.ErrInvalidArgument, "offset 0x%x outside device", off)
	}
	return false, nil
}

// Capacity returns how many bytes WriteRegionWithin can store at off
// without erasing past off+length. NOR has no bad blocks.
func (d *NOR) Capacity(off int64, length int64) (int64, error) {
	if err := d.geo.checkRange(off, int(length)); err != nil {
		return 0, err
	}
	end := d.geo.blockStart(off + length)
	if end <= off {
		return 0, nil
	}
	return end - off, nil
}

func (d *NOR) ReadRegion(p []byte, off int64) error {
	return d.ReadRegionWithin(p, off, d.geo.Size)
}

func (d *NOR) ReadRegionWithin(p []byte, off int64, end int64) error {
	if err := d.geo.checkWithin(off, len(p), end); err != nil {
		return err
	}
	log.Debugf("nor read %d bytes at 0x%x", len(p), off)
	return readFull(d.flash, p, off)
}

// WriteRegion erases the blocks p spans and programs p. off must be
// erase block aligned; the rest of the last block is left erased.
func (d *NOR) WriteRegion(p []byte, off int64) error {
	return d.WriteRegionWithin(p, off, d.geo.Size)
}

// WriteRegionWithin is WriteRegion for a p that must end before end
func (d *NOR) WriteRegionWithin(p []byte, off int64, end int64) error {
	if err := d.geo.checkWithin(off, len(p), end); err != nil {
		return err
	}
	if off%d.geo.EraseSize != 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "nor write at 0x%x is not aligned to erase size 0x%x",
			off, d.geo.EraseSize)
	}
	log.Debugf("nor write %d bytes at 0x%x", len(p), off)

	blocks := (int64(len(p)) + d.geo.EraseSize - 1) / d.geo.EraseSize
	if off+blocks*d.geo.EraseSize > end {
		return errors.Wrapf(errdefs.ErrOutOfMemory, "erasing %d blocks at 0x%x runs past limit 0x%x", blocks, off, end)
	}
	if err := d.EraseRegion(off, blocks*d.geo.EraseSize); err != nil {
		return err
	}
	return writeFull(d.flash, p, off)
}

func (d *NOR) EraseRegion(off int64, length int64) error {
	if off%d.geo.EraseSize != 0 || length%d.geo.EraseSize != 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "erase of %d bytes at 0x%x is not block aligned", length, off)
	}
	if err := d.geo.checkRange(off, int(length)); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	if err := d.flash.Erase(off, length); err != nil {
		return errors.Wrapf(errdefs.ErrIO, "erase %d bytes at 0x%x: %s", length, off, err)
	}
	metric.EraseBlocks.Add(float64(length / d.geo.EraseSize))
	return nil
}
