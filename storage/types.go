package storage

import (
	"fmt"
)

const (
	// DefaultLoadSize is how much Init reads before it knows the container size
	DefaultLoadSize = 4096
)

// State of a Store
type State int

const (
	StateUninitialized State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RecoveryPolicy decides what Init does with a container that is present
// but fails its integrity checks
type RecoveryPolicy int

const (
	// RecoverFail makes Init return the corruption error
	RecoverFail RecoveryPolicy = iota
	// RecoverEmpty makes Init log the corruption and start with an empty store
	RecoverEmpty
)

func (p RecoveryPolicy) String() string {
	if p == RecoverEmpty {
		return "empty"
	}
	return "fail"
}

// Region is the byte range of the media holding the container
type Region struct {
	Offset int64
	Size   int64
}

func (r Region) end() int64 {
	return r.Offset + r.Size
}

// EntryInfo describes an entry without its data
type EntryInfo struct {
	Name string
	Size int
}

// Options configure a Store
type Options struct {
	Region          Region
	LoadSize        int
	OnCorrupt       RecoveryPolicy
	VerifyAfterSave bool
}
