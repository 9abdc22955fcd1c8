package container

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/index"
)

// Checksum computes the IEEE (zlib) CRC32 of the span a header covers,
// i.e. buf[8 : 8+totalLength]. buf must hold at least that many bytes.
func Checksum(buf []byte, totalLength uint32) uint32 {
	return crc32.ChecksumIEEE(buf[crcOffset : crcOffset+int(totalLength)])
}

// HasMagic reports whether buf starts with a container header magic
func HasMagic(buf []byte) bool {
	return len(buf) >= 4 && binaryLayout.Uint32(buf[0:4]) == StorageMagic
}

// TotalLength peeks the total_length field of a container header.
// The container occupies 8+TotalLength bytes.
func TotalLength(buf []byte) (uint32, error) {
	if !HasMagic(buf) {
		return 0, errors.Wrap(errdefs.ErrFormat, "storage header magic mismatch")
	}
	if len(buf) < HeaderSize {
		return 0, errors.Wrapf(errdefs.ErrTruncated, "%d bytes is less than a storage header", len(buf))
	}
	total := binaryLayout.Uint32(buf[8:12])
	if int(total) < HeaderSize-crcOffset {
		return 0, errors.Wrapf(errdefs.ErrFormat, "total length %d is smaller than the header", total)
	}
	return total, nil
}

// EncodedSize returns the exact number of bytes Encode produces for ix
func EncodedSize(ix *index.Index) int {
	size := HeaderSize
	for _, e := range ix.Entries() {
		size += ItemHeaderSize + len(e.Name) + len(e.Data)
	}
	return size
}

// Encode serializes ix in enumeration order. The output depends only on
// the index content.
func Encode(ix *index.Index) ([]byte, error) {
	size := EncodedSize(ix)
	buf := bytes.NewBuffer(make([]byte, 0, size))

	header := storageHeader{
		Magic:       StorageMagic,
		TotalLength: uint32(size - crcOffset),
	}
	if err := binary.Write(buf, binaryLayout, &header); err != nil {
		return nil, errors.Wrap(err, "write storage header")
	}

	for _, e := range ix.Entries() {
		if len(e.Name) > index.MaxNameLen || len(e.Data) > index.MaxDataLen {
			return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "entry %q does not fit an item header", e.Name)
		}
		ih := itemHeader{
			Magic:   ItemMagic,
			NameLen: uint16(len(e.Name)),
			DataLen: uint16(len(e.Data)),
		}
		if err := binary.Write(buf, binaryLayout, &ih); err != nil {
			return nil, errors.Wrapf(err, "write item header %q", e.Name)
		}
		buf.WriteString(e.Name)
		buf.Write(e.Data)
	}

	out := buf.Bytes()
	binaryLayout.PutUint32(out[4:8], Checksum(out, header.TotalLength))
	return out, nil
}

// Decode parses a container into a fresh index. buf may be longer than
// the container; bytes past 8+total_length are ignored.
func Decode(buf []byte) (*index.Index, error) {
	total, err := TotalLength(buf)
	if err != nil {
		return nil, err
	}
	end := crcOffset + int(total)
	if end > len(buf) {
		return nil, errors.Wrapf(errdefs.ErrTruncated, "container declares %d bytes, only %d available", end, len(buf))
	}

	var header storageHeader
	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binaryLayout, &header); err != nil {
		return nil, errors.Wrap(err, "read storage header")
	}
	if sum := Checksum(buf, total); sum != header.CRC32 {
		return nil, errors.Wrapf(errdefs.ErrIntegrity, "crc32 is 0x%08x, header says 0x%08x", sum, header.CRC32)
	}

	ix := index.New()
	pos := HeaderSize
	for pos < end {
		if pos+ItemHeaderSize > end {
			return nil, errors.Wrapf(errdefs.ErrTruncated, "item header at %d crosses container end %d", pos, end)
		}
		var ih itemHeader
		if err := binary.Read(bytes.NewReader(buf[pos:pos+ItemHeaderSize]), binaryLayout, &ih); err != nil {
			return nil, errors.Wrapf(err, "read item header at %d", pos)
		}
		if ih.Magic != ItemMagic {
			return nil, errors.Wrapf(errdefs.ErrFormat, "item magic mismatch at %d", pos)
		}
		pos += ItemHeaderSize

		nameEnd := pos + int(ih.NameLen)
		dataEnd := nameEnd + int(ih.DataLen)
		if dataEnd > end {
			return nil, errors.Wrapf(errdefs.ErrTruncated, "item at %d declares %d bytes past container end",
				pos-ItemHeaderSize, dataEnd-end)
		}

		data := make([]byte, ih.DataLen)
		copy(data, buf[nameEnd:dataEnd])
		if err := ix.Insert(string(buf[pos:nameEnd]), data); err != nil {
			return nil, err
		}
		pos = dataEnd
	}
	return ix, nil
}
