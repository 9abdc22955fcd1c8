package storage

import (
	"github.com/pkg/errors"

	"github.com/viert/uidstore/container"
	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/index"
	"github.com/viert/uidstore/media"
)

// Format writes an empty container at the start of region, replacing
// whatever the region held
func Format(drv media.Driver, region Region) error {
	if err := checkRegion(drv, region); err != nil {
		return err
	}
	buf, err := container.Encode(index.New())
	if err != nil {
		return err
	}
	log.Noticef("formatting region 0x%x+0x%x on %s media", region.Offset, region.Size, drv.Kind())
	return drv.WriteRegionWithin(buf, region.Offset, region.end())
}

func checkRegion(drv media.Driver, region Region) error {
	geo := drv.Geometry()
	if region.Offset < 0 || region.Size < int64(container.HeaderSize) || region.Offset+region.Size > geo.Size {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "region 0x%x+0x%x does not fit %d byte media",
			region.Offset, region.Size, geo.Size)
	}
	return nil
}
