//go:build !linux

package media

import (
	"os"
)

func logicalSectorSize(f *os.File) (int64, bool) {
	return 0, false
}
