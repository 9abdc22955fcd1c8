package container

import (
	"encoding/binary"
)

const (
	// StorageMagic opens every container ("USID" on disk)
	StorageMagic uint32 = 0x44495355
	// ItemMagic opens every item header ("ITEM" on disk)
	ItemMagic uint32 = 0x4d455449

	// crcOffset is where the checksummed span starts: right after magic and crc32
	crcOffset = 8
)

type storageHeader struct {
	Magic       uint32
	CRC32       uint32
	TotalLength uint32
	Reserved    [5]uint32
}

type itemHeader struct {
	Magic   uint32
	NameLen uint16
	DataLen uint16
}

var (
	// HeaderSize is the size of the container header in bytes
	HeaderSize = binary.Size(storageHeader{})
	// ItemHeaderSize is the size of an item header in bytes
	ItemHeaderSize = binary.Size(itemHeader{})

	binaryLayout = binary.LittleEndian
)
