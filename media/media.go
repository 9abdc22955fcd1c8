// Package media implements the physical media drivers the store reads and
// writes its container through: raw NAND (bad-block aware), raw NOR and
// sector-addressed block devices.
package media

import (
	"fmt"
	"io"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
)

var (
	log = logging.MustGetLogger("media")
)

// Kind selects a media driver variant
type Kind int

const (
	KindRawNAND Kind = iota + 1
	KindRawNOR
	KindBlockDevice
)

func (k Kind) String() string {
	switch k {
	case KindRawNAND:
		return "nand"
	case KindRawNOR:
		return "nor"
	case KindBlockDevice:
		return "block"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a configured media kind name into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nand", "rawnand":
		return KindRawNAND, nil
	case "nor", "rawnor":
		return KindRawNOR, nil
	case "block", "blockdevice", "emmc", "sd":
		return KindBlockDevice, nil
	}
	return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "unknown media kind %q", s)
}

// Geometry describes the addressable size and the erase/program units of a device
type Geometry struct {
	Size      int64
	EraseSize int64
	WriteSize int64
}

// Blocks returns the number of erase blocks on the device
func (g Geometry) Blocks() int64 {
	if g.EraseSize <= 0 {
		return 0
	}
	return g.Size / g.EraseSize
}

func (g Geometry) blockStart(off int64) int64 {
	return off - off%g.EraseSize
}

func (g Geometry) validate() error {
	if g.Size <= 0 || g.EraseSize <= 0 || g.WriteSize <= 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "bad geometry %+v", g)
	}
	if g.Size%g.EraseSize != 0 || g.EraseSize%g.WriteSize != 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "geometry %+v is not block aligned", g)
	}
	return nil
}

// checkRange validates a length-byte access at off against the device size
func (g Geometry) checkRange(off int64, length int) error {
	if off < 0 || length < 0 || off+int64(length) > g.Size {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "access of %d bytes at 0x%x outside device of %d bytes",
			length, off, g.Size)
	}
	return nil
}

// checkWithin validates a length-byte access at off that must end before end
func (g Geometry) checkWithin(off int64, length int, end int64) error {
	if err := g.checkRange(off, length); err != nil {
		return err
	}
	if end < off || end > g.Size {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "limit 0x%x is outside [0x%x, 0x%x]", end, off, g.Size)
	}
	if int64(length) > end-off {
		return errors.Wrapf(errdefs.ErrOutOfMemory, "%d bytes at 0x%x run past limit 0x%x", length, off, end)
	}
	return nil
}

// Driver is the capability set the store needs from a physical medium
type Driver interface {
	Kind() Kind
	Geometry() Geometry
	ReadRegion(p []byte, off int64) error
	WriteRegion(p []byte, off int64) error
	EraseRegion(off int64, length int64) error
	IsBadBlock(off int64) (bool, error)

	// ReadRegionWithin and WriteRegionWithin never touch media at or past
	// end and fail with ErrOutOfMemory when p does not fit before it
	ReadRegionWithin(p []byte, off int64, end int64) error
	WriteRegionWithin(p []byte, off int64, end int64) error
	// Capacity returns how many bytes of logical data [off, off+length) holds
	Capacity(off int64, length int64) (int64, error)
}

// Flash is a raw flash device. WriteAt programs already erased memory.
type Flash interface {
	io.ReaderAt
	io.WriterAt
	Erase(off int64, length int64) error
	IsBad(off int64) (bool, error)
	Geometry() Geometry
}

// Backend is a sector-addressed device (typically an eMMC/SD block device or an image file)
type Backend interface {
	io.ReaderAt
	io.WriterAt
}

func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrapf(errdefs.ErrIO, "read %d bytes at 0x%x: %s", len(p), off, err)
}

func writeFull(w io.WriterAt, p []byte, off int64) error {
	n, err := w.WriteAt(p, off)
	if err == nil && n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrShortWrite
	}
	return errors.Wrapf(errdefs.ErrIO, "write %d bytes at 0x%x: %s", len(p), off, err)
}
