//go:build linux

package media

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/viert/uidstore/errdefs"
)

// ioctl requests from <mtd/mtd-abi.h>
const (
	memGetInfo     = 0x80204d01 // _IOR('M', 1, struct mtd_info_user)
	memGetBadBlock = 0x40084d0b // _IOW('M', 11, __kernel_loff_t)
	memErase64     = 0x40104d14 // _IOW('M', 20, struct erase_info_user64)

	mtdNORFlash     = 3
	mtdNANDFlash    = 4
	mtdMLCNANDFlash = 8
)

type mtdInfoUser struct {
	Type      uint8
	_         [3]byte
	Flags     uint32
	Size      uint32
	EraseSize uint32
	WriteSize uint32
	OOBSize   uint32
	Padding   uint64
}

type eraseInfoUser64 struct {
	Start  uint64
	Length uint64
}

// MTD is a raw flash device behind a Linux MTD character device (/dev/mtdN)
type MTD struct {
	f    *os.File
	info mtdInfoUser
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) (uintptr, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return 0, errno
	}
	return r, nil
}

func openMTD(path string) (mtdDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(errdefs.ErrIO, "open %s: %s", path, err)
	}
	m := &MTD{f: f}
	if _, err := ioctl(f.Fd(), memGetInfo, unsafe.Pointer(&m.info)); err != nil {
		f.Close()
		return nil, errors.Wrapf(errdefs.ErrIO, "MEMGETINFO on %s: %s", path, err)
	}
	log.Infof("%s: mtd type %d, size 0x%x, erase size 0x%x, write size 0x%x",
		path, m.info.Type, m.info.Size, m.info.EraseSize, m.info.WriteSize)
	return m, nil
}

// Kind returns the driver variant matching the chip type the kernel reports
func (m *MTD) Kind() Kind {
	switch m.info.Type {
	case mtdNANDFlash, mtdMLCNANDFlash:
		return KindRawNAND
	case mtdNORFlash:
		return KindRawNOR
	}
	return 0
}

func (m *MTD) Geometry() Geometry {
	return Geometry{
		Size:      int64(m.info.Size),
		EraseSize: int64(m.info.EraseSize),
		WriteSize: int64(m.info.WriteSize),
	}
}

func (m *MTD) ReadAt(p []byte, off int64) (int, error) {
	return m.f.ReadAt(p, off)
}

func (m *MTD) WriteAt(p []byte, off int64) (int, error) {
	return m.f.WriteAt(p, off)
}

func (m *MTD) Erase(off int64, length int64) error {
	ei := eraseInfoUser64{Start: uint64(off), Length: uint64(length)}
	_, err := ioctl(m.f.Fd(), memErase64, unsafe.Pointer(&ei))
	return err
}

// IsBad asks the kernel about the block at off. Chips without a bad block
// table (NOR) answer EOPNOTSUPP, which means good.
func (m *MTD) IsBad(off int64) (bool, error) {
	loff := off
	r, err := ioctl(m.f.Fd(), memGetBadBlock, unsafe.Pointer(&loff))
	if err == unix.EOPNOTSUPP {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r > 0, nil
}

func (m *MTD) Close() error {
	return m.f.Close()
}
