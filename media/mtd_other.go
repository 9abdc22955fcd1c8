//go:build !linux

package media

import (
	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
)

func openMTD(path string) (mtdDevice, error) {
	return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "%s: mtd devices are only supported on linux", path)
}
