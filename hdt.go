// Package hdt is an in-memory, read-only store for RDF graphs compressed
// in the Header-Dictionary-Triples binary format. A Store is built once
// from a byte source and thereafter answers triple-pattern queries
// directly against the compressed representation, with no decompression
// step and no mutation path.
package hdt

import (
	"github.com/KonradHoeffner/hdt/internal/dict"
	"github.com/KonradHoeffner/hdt/internal/triples"
)

// Store is an immutable, fully-resident HDT graph. The zero value is not
// usable; obtain a Store via Load or LoadFile.
type Store struct {
	header []byte
	dict   *dict.Dictionary
	bt     *triples.BT
	foq    *triples.FoQ
}

// Size reports the cardinality of each ID space and the triple count.
type Size struct {
	NumSubjects   int
	NumPredicates int
	NumObjects    int
	NumTriples    int
	NumShared     int
}

// Size returns the store's cardinalities.
func (s *Store) Size() Size {
	return Size{
		NumSubjects:   s.dict.NumSubjects(),
		NumPredicates: s.dict.NumPredicates(),
		NumObjects:    s.dict.NumObjects(),
		NumTriples:    int(s.bt.NumOcc),
		NumShared:     s.dict.NumShared(),
	}
}

// HeaderBytes returns the verbatim N-Triples header payload stored in the
// file. The core never parses these bytes; callers that need structured
// header metadata must parse them themselves. The returned slice must not
// be modified.
func (s *Store) HeaderBytes() []byte {
	return s.header
}

// TermOf resolves id in the given role back to its term bytes, or
// ErrIDOutOfRange if id is below 1 or above the role's maximum.
func (s *Store) TermOf(id int, role Role) ([]byte, error) {
	term, err := s.dict.TermOf(id, role.toDict())
	if err != nil {
		return nil, wrapSection(role.String(), err)
	}
	return term, nil
}

// IDOf resolves term to its id in the given role, or 0 if term is not
// present in that role's dictionary section.
func (s *Store) IDOf(term []byte, role Role) (int, error) {
	id, err := s.dict.IDOf(term, role.toDict())
	if err != nil {
		return 0, wrapSection(role.String(), err)
	}
	return id, nil
}
