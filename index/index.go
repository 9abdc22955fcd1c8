package index

import (
	"github.com/pkg/errors"

	"github.com/viert/uidstore/errdefs"
)

const (
	// MaxNameLen holds the maximum length of an entry name
	MaxNameLen = 0xffff
	// MaxDataLen holds the maximum length of an entry's data
	MaxDataLen = 0xffff
)

// Entry is a single named binary blob
type Entry struct {
	Name string
	Data []byte
}

// Index is an ordered collection of entries with unique names.
// Enumeration order is insertion order.
type Index struct {
	entries []*Entry
	byName  map[string]*Entry
}

// New creates an empty index
func New() *Index {
	return &Index{
		entries: make([]*Entry, 0),
		byName:  make(map[string]*Entry),
	}
}

// Find returns the entry with the given name
func (ix *Index) Find(name string) (*Entry, error) {
	e, ok := ix.byName[name]
	if !ok {
		return nil, errors.Wrapf(errdefs.ErrNotFound, "entry %q", name)
	}
	return e, nil
}

// Count returns the number of entries
func (ix *Index) Count() int {
	return len(ix.entries)
}

// NameAt returns the name of the entry at a given ordinal
func (ix *Index) NameAt(i int) (string, error) {
	if i < 0 || i >= len(ix.entries) {
		return "", errors.Wrapf(errdefs.ErrNotFound, "ordinal %d of %d", i, len(ix.entries))
	}
	return ix.entries[i].Name, nil
}

// DataLength returns the size of the data stored under name
func (ix *Index) DataLength(name string) (int, error) {
	e, err := ix.Find(name)
	if err != nil {
		return 0, err
	}
	return len(e.Data), nil
}

// Read returns a copy of up to length bytes of name's data starting at offset.
// Reading at or past the end returns an empty slice.
func (ix *Index) Read(name string, offset int, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "read %q at %d len %d", name, offset, length)
	}
	e, err := ix.Find(name)
	if err != nil {
		return nil, err
	}
	if offset >= len(e.Data) {
		return []byte{}, nil
	}
	n := len(e.Data) - offset
	if length < n {
		n = length
	}
	out := make([]byte, n)
	copy(out, e.Data[offset:offset+n])
	return out, nil
}

// Write stores p at offset in name's data, creating the entry when absent.
// Growing past the old end zero-fills any gap between the old end and offset.
func (ix *Index) Write(name string, offset int, p []byte) error {
	if len(name) > MaxNameLen {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "name length %d exceeds %d", len(name), MaxNameLen)
	}
	if offset < 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "write %q at negative offset %d", name, offset)
	}
	if offset > MaxDataLen || len(p) > MaxDataLen-offset {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "write of %d bytes to %q at %d exceeds data limit %d",
			len(p), name, offset, MaxDataLen)
	}
	end := offset + len(p)

	e, ok := ix.byName[name]
	if !ok {
		e = &Entry{Name: name, Data: []byte{}}
		ix.entries = append(ix.entries, e)
		ix.byName[name] = e
	}

	if end > len(e.Data) {
		grown := make([]byte, end)
		copy(grown, e.Data)
		e.Data = grown
	}
	copy(e.Data[offset:end], p)
	return nil
}

// Remove deletes the entry with the given name
func (ix *Index) Remove(name string) error {
	if _, ok := ix.byName[name]; !ok {
		return errors.Wrapf(errdefs.ErrNotFound, "entry %q", name)
	}
	delete(ix.byName, name)
	for i, e := range ix.entries {
		if e.Name == name {
			ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Reset drops all entries
func (ix *Index) Reset() {
	ix.entries = make([]*Entry, 0)
	ix.byName = make(map[string]*Entry)
}

// Insert appends a new entry holding data as is. It fails on duplicate names.
func (ix *Index) Insert(name string, data []byte) error {
	if _, ok := ix.byName[name]; ok {
		return errors.Wrapf(errdefs.ErrFormat, "duplicate entry %q", name)
	}
	if len(name) > MaxNameLen || len(data) > MaxDataLen {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "entry %q is too large", name)
	}
	e := &Entry{Name: name, Data: data}
	ix.entries = append(ix.entries, e)
	ix.byName[name] = e
	return nil
}

// Entries returns the entries in enumeration order.
// The slice is a copy, the entries are not.
func (ix *Index) Entries() []*Entry {
	out := make([]*Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Clone returns a deep copy of the index
func (ix *Index) Clone() *Index {
	c := New()
	for _, e := range ix.entries {
		data := make([]byte, len(e.Data))
		copy(data, e.Data)
		ce := &Entry{Name: e.Name, Data: data}
		c.entries = append(c.entries, ce)
		c.byName[ce.Name] = ce
	}
	return c
}
