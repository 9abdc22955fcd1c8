package media

import (
	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/metric"
)

// NAND drives raw NAND flash. Reads and writes walk the device one erase
// block at a time and step over blocks the device reports as bad, so the
// logical data of a region is laid out over the good blocks only.
type NAND struct {
	flash Flash
	geo   Geometry
}

// NewNAND creates a raw NAND driver on top of a flash device
func NewNAND(flash Flash) (*NAND, error) {
	geo := flash.Geometry()
	if err := geo.validate(); err != nil {
		return nil, err
	}
	return &NAND{flash: flash, geo: geo}, nil
}

func (d *NAND) Kind() Kind {
	return KindRawNAND
}

func (d *NAND) Geometry() Geometry {
	return d.geo
}

// IsBadBlock reports whether the erase block containing off is bad
func (d *NAND) IsBadBlock(off int64) (bool, error) {
	if off < 0 || off >= d.geo.Size {
		return false, errors.Wrapf(errdefs.ErrInvalidArgument, "offset 0x%x outside device", off)
	}
	bad, err := d.flash.IsBad(d.geo.blockStart(off))
	if err != nil {
		return false, errors.Wrapf(errdefs.ErrIO, "bad block check at 0x%x: %s", off, err)
	}
	return bad, nil
}

// walk maps length bytes of logical data starting at physical offset off
// onto good blocks below end. fn is called once per good block with the
// physical offset and the [lo, hi) span of the logical data it holds.
// Nothing is touched unless the whole span fits.
func (d *NAND) walk(off int64, length int, end int64, fn func(phys int64, lo int, hi int) error) error {
	if off < 0 || length < 0 || off > end || end > d.geo.Size {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "access at 0x%x limited by 0x%x outside device", off, end)
	}
	capacity, err := d.goodBytes(off, end)
	if err != nil {
		return err
	}
	if int64(length) > capacity {
		if end == d.geo.Size {
			return errors.Wrapf(errdefs.ErrIO, "ran out of good blocks: %d bytes at 0x%x, %d available",
				length, off, capacity)
		}
		return errors.Wrapf(errdefs.ErrOutOfMemory, "%d bytes at 0x%x do not fit the %d good bytes before 0x%x",
			length, off, capacity, end)
	}

	skipsLeft := d.geo.Blocks()
	phys := off
	done := 0
	for done < length {
		if phys >= end {
			return errors.Wrapf(errdefs.ErrIO, "ran out of good blocks with %d of %d bytes left", length-done, length)
		}

		start := d.geo.blockStart(phys)
		bad, err := d.IsBadBlock(start)
		if err != nil {
			return err
		}
		if bad {
			skipsLeft--
			if skipsLeft < 0 {
				return errors.Wrapf(errdefs.ErrIO, "bad block skip limit of %d reached", d.geo.Blocks())
			}
			log.Warningf("skipping bad block at 0x%x", start)
			metric.BadBlocksSkipped.Inc()
			phys = start + d.geo.EraseSize
			continue
		}

		n := int(start + d.geo.EraseSize - phys)
		if n > length-done {
			n = length - done
		}
		if err := fn(phys, done, done+n); err != nil {
			return err
		}
		done += n
		phys += int64(n)
	}
	return nil
}

// Capacity returns how many bytes WriteRegionWithin can store at off
// without touching media past off+length. Only whole good blocks below
// the limit count.
func (d *NAND) Capacity(off int64, length int64) (int64, error) {
	if off < 0 || length < 0 || off+length > d.geo.Size {
		return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "range 0x%x+0x%x outside device", off, length)
	}
	end := d.geo.blockStart(off + length)
	if end <= off {
		return 0, nil
	}
	return d.goodBytes(off, end)
}

// goodBytes counts the bytes of [off, end) that lie in good blocks
func (d *NAND) goodBytes(off int64, end int64) (int64, error) {
	var total int64
	for start := d.geo.blockStart(off); start < end; start += d.geo.EraseSize {
		bad, err := d.IsBadBlock(start)
		if err != nil {
			return 0, err
		}
		if bad {
			continue
		}
		lo, hi := start, start+d.geo.EraseSize
		if lo < off {
			lo = off
		}
		if hi > end {
			hi = end
		}
		total += hi - lo
	}
	return total, nil
}

// ReadRegion fills p with logical data starting at off, skipping bad blocks
func (d *NAND) ReadRegion(p []byte, off int64) error {
	return d.ReadRegionWithin(p, off, d.geo.Size)
}

// ReadRegionWithin is ReadRegion limited to good blocks below end
func (d *NAND) ReadRegionWithin(p []byte, off int64, end int64) error {
	log.Debugf("nand read %d bytes at 0x%x", len(p), off)
	return d.walk(off, len(p), end, func(phys int64, lo int, hi int) error {
		return readFull(d.flash, p[lo:hi], phys)
	})
}

// WriteRegion stores p as logical data starting at off. Every good block
// touched is erased right before it is programmed; the parts of a block
// not covered by p are read first and programmed back.
func (d *NAND) WriteRegion(p []byte, off int64) error {
	return d.WriteRegionWithin(p, off, d.geo.Size)
}

// WriteRegionWithin is WriteRegion limited to good blocks below end. It fails
// with ErrOutOfMemory before erasing anything when p does not fit.
func (d *NAND) WriteRegionWithin(p []byte, off int64, end int64) error {
	if off < 0 || end < off || end > d.geo.Size {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "write at 0x%x limited by 0x%x outside device", off, end)
	}
	// whole blocks are erased, so the block holding end is off limits
	if limit := d.geo.blockStart(end); limit < end {
		if limit < off {
			limit = off
		}
		end = limit
	}
	log.Debugf("nand write %d bytes at 0x%x", len(p), off)
	block := make([]byte, d.geo.EraseSize)
	return d.walk(off, len(p), end, func(phys int64, lo int, hi int) error {
		start := d.geo.blockStart(phys)
		within := int(phys - start)

		if within != 0 || hi-lo < len(block) {
			if err := readFull(d.flash, block, start); err != nil {
				return err
			}
		}
		copy(block[within:], p[lo:hi])

		if err := d.eraseBlock(start); err != nil {
			return err
		}
		return writeFull(d.flash, block, start)
	})
}

// EraseRegion erases the good blocks in [off, off+length). Both ends must be
// erase block aligned.
func (d *NAND) EraseRegion(off int64, length int64) error {
	if off%d.geo.EraseSize != 0 || length%d.geo.EraseSize != 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "erase of %d bytes at 0x%x is not block aligned", length, off)
	}
	if err := d.geo.checkRange(off, int(length)); err != nil {
		return err
	}
	for start := off; start < off+length; start += d.geo.EraseSize {
		bad, err := d.IsBadBlock(start)
		if err != nil {
			return err
		}
		if bad {
			log.Warningf("not erasing bad block at 0x%x", start)
			metric.BadBlocksSkipped.Inc()
			continue
		}
		if err := d.eraseBlock(start); err != nil {
			return err
		}
	}
	return nil
}

func (d *NAND) eraseBlock(start int64) error {
	if err := d.flash.Erase(start, d.geo.EraseSize); err != nil {
		return errors.Wrapf(errdefs.ErrIO, "erase block at 0x%x: %s", start, err)
	}
	metric.EraseBlocks.Inc()
	return nil
}
