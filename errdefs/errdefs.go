package errdefs

import (
	"github.com/pkg/errors"
)

var (
	// ErrFormat is returned when a container or item magic does not match
	ErrFormat = errors.New("bad container format")
	// ErrIntegrity is returned when the container checksum does not match its contents
	ErrIntegrity = errors.New("container checksum mismatch")
	// ErrTruncated is returned when a declared length runs past the available bytes
	ErrTruncated = errors.New("container truncated")
	// ErrNotFound is returned when an entry name or ordinal does not exist
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidArgument is returned for bad offsets, lengths, sizes or alignment
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO is returned when the media fails to read, program or erase
	ErrIO = errors.New("media i/o error")
	// ErrOutOfMemory is returned when the store contents would not fit the storage region
	ErrOutOfMemory = errors.New("out of memory")
	// ErrNotLoaded is returned when a store is used before Init or after Deinit
	ErrNotLoaded = errors.New("store is not loaded")
)

func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncated)
}

// IsCorrupt reports whether err means the stored container can not be trusted
func IsCorrupt(err error) bool {
	return IsFormat(err) || IsIntegrity(err) || IsTruncated(err)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

func IsOutOfMemory(err error) bool {
	return errors.Is(err, ErrOutOfMemory)
}
