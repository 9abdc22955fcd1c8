package media

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
)

// Descriptor tells Open which driver variant to build and where the device is
type Descriptor struct {
	Kind Kind
	Path string
	// SectorSize overrides the sector size of a block device, 0 means detect
	SectorSize int64
}

type mtdDevice interface {
	Flash
	io.Closer
	Kind() Kind
}

// Open builds the driver named by desc.Kind on the device at desc.Path.
// The returned closer releases the device.
func Open(desc Descriptor) (Driver, io.Closer, error) {
	switch desc.Kind {
	case KindRawNAND, KindRawNOR:
		dev, err := openMTD(desc.Path)
		if err != nil {
			return nil, nil, err
		}
		if dev.Kind() != desc.Kind {
			dev.Close()
			return nil, nil, errors.Wrapf(errdefs.ErrInvalidArgument, "%s is %s flash, configured as %s",
				desc.Path, dev.Kind(), desc.Kind)
		}
		var drv Driver
		if desc.Kind == KindRawNAND {
			drv, err = NewNAND(dev)
		} else {
			drv, err = NewNOR(dev)
		}
		if err != nil {
			dev.Close()
			return nil, nil, err
		}
		return drv, dev, nil

	case KindBlockDevice:
		f, size, sectorSize, err := OpenBlockDevice(desc.Path, desc.SectorSize)
		if err != nil {
			return nil, nil, err
		}
		drv, err := NewBlockDevice(f, size, sectorSize)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return drv, f, nil
	}
	return nil, nil, errors.Wrapf(errdefs.ErrInvalidArgument, "unsupported media kind %s", desc.Kind)
}

// OpenBlockDevice opens a block device or a disk image file read-write and
// returns it with its size and sector size
func OpenBlockDevice(path string, sectorSize int64) (*os.File, int64, int64, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, 0, 0, errors.Wrapf(errdefs.ErrIO, "open %s: %s", path, err)
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, 0, 0, errors.Wrapf(errdefs.ErrIO, "size of %s: %s", path, err)
	}
	if sectorSize <= 0 {
		if ss, ok := logicalSectorSize(f); ok {
			sectorSize = ss
		} else {
			sectorSize = DefaultSectorSize
		}
	}
	log.Infof("%s: block device, size %d, sector size %d", path, size, sectorSize)
	return f, size, sectorSize, nil
}
