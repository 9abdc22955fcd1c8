//go:build linux

package media

import (
	"os"

	"golang.org/x/sys/unix"
)

// logicalSectorSize asks a block device for its logical sector size.
// Regular files (disk images) do not answer.
func logicalSectorSize(f *os.File) (int64, bool) {
	ss, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil || ss <= 0 {
		return 0, false
	}
	return int64(ss), true
}
