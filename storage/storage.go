package storage

import (
	"bytes"
	"sync"

	logging "github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/viert/uidstore/container"
	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/index"
	"github.com/viert/uidstore/media"
	"github.com/viert/uidstore/metric"
)

var (
	log = logging.MustGetLogger("uidstore")
)

// Store is the userid store: an index of named entries loaded from and
// saved to a region of a media driver. All methods are safe for concurrent
// use; mutations stay in memory until Save.
type Store struct {
	drv   media.Driver
	opts  Options
	ix    *index.Index
	state State
	dirty bool

	// capacity is how many container bytes the region's good blocks hold
	capacity int64
	locker   sync.RWMutex
}

// Stat is a snapshot of a store's state
type Stat struct {
	State       State
	Kind        media.Kind
	Region      Region
	Capacity    int64
	Entries     int
	EncodedSize int
	Dirty       bool
}

// New creates an uninitialized Store on top of a media driver.
// A zero Region.Size means everything from Region.Offset to the end of the media.
func New(drv media.Driver, opts Options) (*Store, error) {
	if opts.LoadSize <= 0 {
		opts.LoadSize = DefaultLoadSize
	}
	if opts.Region.Size == 0 {
		opts.Region.Size = drv.Geometry().Size - opts.Region.Offset
	}
	if err := checkRegion(drv, opts.Region); err != nil {
		return nil, err
	}
	return &Store{
		drv:   drv,
		opts:  opts,
		state: StateUninitialized,
	}, nil
}

// Init loads the container from the media. A region without a container
// magic is an empty store. A corrupt container is handled according to
// Options.OnCorrupt.
func (s *Store) Init() error {
	s.locker.Lock()
	defer s.locker.Unlock()

	ix, result, err := s.load()
	if err != nil {
		metric.StoreLoads.WithLabelValues("error").Inc()
		log.Errorf("error loading store at 0x%x: %s", s.opts.Region.Offset, err)
		return err
	}
	metric.StoreLoads.WithLabelValues(result).Inc()

	if s.ix != nil {
		s.ix.Reset()
	}
	s.ix = ix
	s.state = StateLoaded
	s.dirty = false
	log.Infof("store loaded (%s) with %d entries", result, ix.Count())
	return nil
}

func (s *Store) load() (*index.Index, string, error) {
	region := s.opts.Region
	if err := s.updateCapacity(); err != nil {
		return nil, "", err
	}
	loadSize := int64(s.opts.LoadSize)
	if loadSize > s.capacity {
		loadSize = s.capacity
	}

	buf := make([]byte, loadSize)
	if err := s.drv.ReadRegionWithin(buf, region.Offset, region.end()); err != nil {
		return nil, "", err
	}
	if !container.HasMagic(buf) {
		log.Infof("no container at 0x%x, starting with an empty store", region.Offset)
		return index.New(), "empty", nil
	}

	ix, err := s.decode(buf)
	if err != nil {
		if errdefs.IsCorrupt(err) && s.opts.OnCorrupt == RecoverEmpty {
			log.Warningf("discarding corrupt container at 0x%x: %s", region.Offset, err)
			return index.New(), "recovered", nil
		}
		return nil, "", err
	}
	return ix, "ok", nil
}

// decode decodes a container whose first bytes are in head, reading the
// whole container again when it is larger than head
func (s *Store) decode(head []byte) (*index.Index, error) {
	total, err := container.TotalLength(head)
	if err != nil {
		return nil, err
	}
	size := int64(total) + 8
	if size > s.capacity {
		return nil, errors.Wrapf(errdefs.ErrTruncated, "container of %d bytes exceeds the %d bytes the region holds",
			size, s.capacity)
	}
	if size <= int64(len(head)) {
		return container.Decode(head)
	}

	log.Debugf("container is %d bytes, reading past the first %d", size, len(head))
	buf := make([]byte, size)
	if err := s.drv.ReadRegionWithin(buf, s.opts.Region.Offset, s.opts.Region.end()); err != nil {
		return nil, err
	}
	return container.Decode(buf)
}

// Deinit drops every entry and returns the store to the uninitialized state
func (s *Store) Deinit() {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.ix != nil {
		s.ix.Reset()
	}
	s.ix = nil
	s.state = StateUninitialized
	s.dirty = false
}

func (s *Store) loaded() error {
	if s.state != StateLoaded {
		return errors.Wrapf(errdefs.ErrNotLoaded, "store is %s", s.state)
	}
	return nil
}

// Count returns the number of entries
func (s *Store) Count() (int, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	if err := s.loaded(); err != nil {
		return 0, err
	}
	return s.ix.Count(), nil
}

// NameAt returns the name of the entry at ordinal i, 0 <= i < Count()
func (s *Store) NameAt(i int) (string, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	if err := s.loaded(); err != nil {
		return "", err
	}
	return s.ix.NameAt(i)
}

// Names returns all entry names in enumeration order
func (s *Store) Names() ([]string, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	entries := s.ix.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// DataLength returns the size of the data stored under name
func (s *Store) DataLength(name string) (int, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	if err := s.loaded(); err != nil {
		return 0, err
	}
	return s.ix.DataLength(name)
}

// Read returns up to length bytes of name's data starting at offset
func (s *Store) Read(name string, offset int, length int) ([]byte, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	return s.ix.Read(name, offset, length)
}

// Write stores p at offset in name's data, creating the entry if needed.
// It fails with ErrOutOfMemory when the resulting container would not fit
// the region.
func (s *Store) Write(name string, offset int, p []byte) error {
	s.locker.Lock()
	defer s.locker.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}

	if offset < 0 || offset > index.MaxDataLen || len(p) > index.MaxDataLen-offset {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "write of %d bytes to %q at %d exceeds data limit %d",
			len(p), name, offset, index.MaxDataLen)
	}

	grow := offset + len(p)
	if cur, err := s.ix.DataLength(name); err == nil {
		grow -= cur
		if grow < 0 {
			grow = 0
		}
	} else {
		grow += container.ItemHeaderSize + len(name)
	}
	if size := container.EncodedSize(s.ix) + grow; int64(size) > s.capacity {
		return errors.Wrapf(errdefs.ErrOutOfMemory, "container would grow to %d bytes, region holds %d",
			size, s.capacity)
	}

	if err := s.ix.Write(name, offset, p); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Remove deletes an entry
func (s *Store) Remove(name string) error {
	s.locker.Lock()
	defer s.locker.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	if err := s.ix.Remove(name); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Save writes the encoded index to the media. The in-memory entries are
// not changed whether or not the write succeeds.
func (s *Store) Save() error {
	s.locker.Lock()
	defer s.locker.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}

	err := s.save()
	if err != nil {
		metric.StoreSaves.WithLabelValues("error").Inc()
		log.Errorf("error saving store at 0x%x: %s", s.opts.Region.Offset, err)
		return err
	}
	metric.StoreSaves.WithLabelValues("ok").Inc()
	s.dirty = false
	return nil
}

func (s *Store) save() error {
	buf, err := container.Encode(s.ix)
	if err != nil {
		return err
	}
	// blocks may have gone bad since Init
	if err := s.updateCapacity(); err != nil {
		return err
	}
	if int64(len(buf)) > s.capacity {
		return errors.Wrapf(errdefs.ErrOutOfMemory, "container of %d bytes exceeds the %d bytes the region holds",
			len(buf), s.capacity)
	}

	log.Debugf("saving %d entries, %d bytes at 0x%x", s.ix.Count(), len(buf), s.opts.Region.Offset)
	if err := s.drv.WriteRegionWithin(buf, s.opts.Region.Offset, s.opts.Region.end()); err != nil {
		return err
	}

	if s.opts.VerifyAfterSave {
		back := make([]byte, len(buf))
		if err := s.drv.ReadRegionWithin(back, s.opts.Region.Offset, s.opts.Region.end()); err != nil {
			return err
		}
		if !bytes.Equal(back, buf) {
			return errors.Wrapf(errdefs.ErrIO, "read back of %d bytes at 0x%x does not match", len(buf), s.opts.Region.Offset)
		}
	}
	return nil
}

func (s *Store) updateCapacity() error {
	capacity, err := s.drv.Capacity(s.opts.Region.Offset, s.opts.Region.Size)
	if err != nil {
		return err
	}
	if capacity < s.opts.Region.Size {
		log.Debugf("region 0x%x+0x%x holds %d bytes", s.opts.Region.Offset, s.opts.Region.Size, capacity)
	}
	s.capacity = capacity
	return nil
}

// List returns the name and data size of every entry in enumeration order
func (s *Store) List() ([]EntryInfo, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	entries := s.ix.Entries()
	out := make([]EntryInfo, len(entries))
	for i, e := range entries {
		out[i] = EntryInfo{Name: e.Name, Size: len(e.Data)}
	}
	return out, nil
}

// Dirty reports whether there are mutations not saved yet
func (s *Store) Dirty() bool {
	s.locker.RLock()
	defer s.locker.RUnlock()
	return s.dirty
}

// Stat returns a snapshot of the store's state
func (s *Store) Stat() Stat {
	s.locker.RLock()
	defer s.locker.RUnlock()

	st := Stat{
		State:    s.state,
		Kind:     s.drv.Kind(),
		Region:   s.opts.Region,
		Capacity: s.capacity,
		Dirty:    s.dirty,
	}
	if s.state == StateLoaded {
		st.Entries = s.ix.Count()
		st.EncodedSize = container.EncodedSize(s.ix)
	}
	return st
}
