// Package registry holds the in-memory record store.
//
// A Store is not safe for concurrent use. Callers must serialize access;
// in the server that is the job of the runtime mailbox.
package registry

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// IDScheme controls how Register assigns ids.
type IDScheme string

const (
	// IDSchemeCount assigns the current record count. After a removal the
	// next id may equal the id of a live record.
	IDSchemeCount IDScheme = "count"
	// IDSchemeMonotonic assigns a counter that is never reused.
	IDSchemeMonotonic IDScheme = "monotonic"
)

// ParseIDScheme maps a manifest value to a scheme. Empty means count.
func ParseIDScheme(s string) (IDScheme, error) {
	switch IDScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", IDSchemeCount:
		return IDSchemeCount, nil
	case IDSchemeMonotonic:
		return IDSchemeMonotonic, nil
	default:
		return "", errors.Newf("unknown id scheme %q", s)
	}
}

// Store is an ordered sequence of records.
type Store struct {
	scheme  IDScheme
	next    uint32
	records []Record
}

// NewStore returns an empty store using scheme.
func NewStore(scheme IDScheme) *Store {
	if scheme == "" {
		scheme = IDSchemeCount
	}
	return &Store{scheme: scheme}
}

func (s *Store) Scheme() IDScheme { return s.scheme }

func (s *Store) Len() int { return len(s.records) }

func (s *Store) nextID() uint32 {
	if s.scheme == IDSchemeMonotonic {
		id := s.next
		s.next++
		return id
	}
	return uint32(len(s.records))
}

// Register appends a record owned by caller and returns a copy of it.
func (s *Store) Register(caller Identity, name, link, description string) Record {
	r := Record{
		ID:          s.nextID(),
		Name:        name,
		Link:        link,
		Description: description,
		CreatedBy:   caller,
	}
	s.records = append(s.records, r)
	return r
}

func (s *Store) index(id uint32) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the record with id if caller owns it. A missing record and
// a record owned by someone else are reported the same way.
//
// The last record is moved into the freed slot, so the relative order of
// the remaining records is not preserved.
func (s *Store) Remove(caller Identity, id uint32) (Record, bool) {
	i := s.index(id)
	if i < 0 || s.records[i].CreatedBy != caller {
		return Record{}, false
	}
	r := s.records[i]
	last := len(s.records) - 1
	s.records[i] = s.records[last]
	s.records[last] = Record{}
	s.records = s.records[:last]
	return r, true
}

// Update applies the present fields of p to the record with id if caller owns it.
func (s *Store) Update(caller Identity, id uint32, p Patch) (Record, bool) {
	i := s.index(id)
	if i < 0 || s.records[i].CreatedBy != caller {
		return Record{}, false
	}
	p.apply(&s.records[i])
	return s.records[i], true
}

// GetByID returns the first record with id.
func (s *Store) GetByID(id uint32) (Record, bool) {
	i := s.index(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i], true
}

func (s *Store) GetByName(name string) []Record {
	return filter(s.records, NameEquals(name))
}

func (s *Store) GetByDescription(sub string) []Record {
	return filter(s.records, DescriptionContains(sub))
}

func (s *Store) GetByCreator(id Identity) []Record {
	return filter(s.records, CreatedBy(id))
}

func (s *Store) GetByPattern(sub string) []Record {
	return filter(s.records, Pattern(sub))
}

// All returns a copy of every record in store order.
func (s *Store) All() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
