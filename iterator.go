package hdt

import (
	"sort"

	"github.com/KonradHoeffner/hdt/internal/dict"
	"github.com/KonradHoeffner/hdt/internal/triples"
)

// IDIterator is a lazy, single-pass, non-restartable cursor over
// TripleIDs. Call Next until it returns false, then check Err for a
// fatal corruption discovered mid-iteration (spec.md §4.8, §7).
type IDIterator interface {
	Next() bool
	Triple() TripleID
	Err() error
}

// Iterator is the term-triple equivalent of IDIterator.
type Iterator interface {
	Next() bool
	Triple() Triple
	Err() error
}

// idIter adapts a pull closure to IDIterator. The closure returns
// ok=false exactly once iteration is exhausted; a non-nil err marks a
// fatal, non-recoverable condition discovered mid-walk.
type idIter struct {
	pull func() (TripleID, bool, error)
	cur  TripleID
	err  error
	done bool
}

func (it *idIter) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	t, ok, err := it.pull()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if !ok {
		it.done = true
		return false
	}
	it.cur = t
	return true
}

func (it *idIter) Triple() TripleID { return it.cur }
func (it *idIter) Err() error       { return it.err }

func emptyIDIter() *idIter {
	return &idIter{pull: func() (TripleID, bool, error) { return TripleID{}, false, nil }}
}

// termIter resolves an IDIterator's ids to term bytes via the store's
// dictionary.
type termIter struct {
	store *Store
	ids   IDIterator
	cur   Triple
	err   error
}

func (t *termIter) Next() bool {
	if t.err != nil {
		return false
	}
	if !t.ids.Next() {
		t.err = t.ids.Err()
		return false
	}
	id := t.ids.Triple()
	sTerm, err := t.store.dict.TermOf(id.S, dict.RoleSubject)
	if err != nil {
		t.err = wrapSection("subject", err)
		return false
	}
	pTerm, err := t.store.dict.TermOf(id.P, dict.RolePredicate)
	if err != nil {
		t.err = wrapSection("predicate", err)
		return false
	}
	oTerm, err := t.store.dict.TermOf(id.O, dict.RoleObject)
	if err != nil {
		t.err = wrapSection("object", err)
		return false
	}
	t.cur = Triple{S: sTerm, P: pTerm, O: oTerm}
	return true
}

func (t *termIter) Triple() Triple { return t.cur }
func (t *termIter) Err() error     { return t.err }

// TripleIDs returns a lazy cursor over id triples matching pattern
// (spec.md §4.8). A zero component is a wildcard.
func (s *Store) TripleIDs(pattern IDPattern) (IDIterator, error) {
	bt, foq := s.bt, s.foq
	sid, pid, oid := pattern.S, pattern.P, pattern.O

	switch {
	case sid != 0 && pid != 0 && oid != 0:
		return spoIter(bt, sid, pid, oid), nil
	case sid != 0 && pid != 0:
		return spIter(bt, sid, pid), nil
	case sid != 0 && oid != 0:
		return soIter(bt, sid, oid), nil
	case sid != 0:
		return sIter(bt, sid), nil
	case pid != 0 && oid != 0:
		return poIter(bt, foq, pid, oid), nil
	case pid != 0:
		return pIter(bt, foq, pid), nil
	case oid != 0:
		return oIter(bt, foq, oid), nil
	default:
		return allIter(bt), nil
	}
}

// Triples is the term-pattern equivalent of TripleIDs: a thin translation
// layer that consults the dictionary once per constant position. If any
// constant position fails to resolve, the returned iterator yields
// nothing and no error (spec.md §4.8 "Translation layer").
func (s *Store) Triples(p Pattern) (Iterator, error) {
	var idp IDPattern

	if p.S != nil {
		id, err := s.IDOf(p.S, Subject)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return &termIter{store: s, ids: emptyIDIter()}, nil
		}
		idp.S = id
	}
	if p.P != nil {
		id, err := s.IDOf(p.P, Predicate)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return &termIter{store: s, ids: emptyIDIter()}, nil
		}
		idp.P = id
	}
	if p.O != nil {
		id, err := s.IDOf(p.O, Object)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return &termIter{store: s, ids: emptyIDIter()}, nil
		}
		idp.O = id
	}

	ids, err := s.TripleIDs(idp)
	if err != nil {
		return nil, err
	}
	return &termIter{store: s, ids: ids}, nil
}

// findPredicateInSubject binary-searches the Y range of subject s for
// predicate p, returning its Y index or ok=false.
func findPredicateInSubject(bt *triples.BT, s, p int) (yIdx int, ok bool) {
	yLo, yHi, subjOK := bt.SubjectYRange(s)
	if !subjOK {
		return 0, false
	}
	n := yHi - yLo + 1
	i := sort.Search(n, func(i int) bool { return bt.Predicate(yLo+i) >= p })
	if i >= n || bt.Predicate(yLo+i) != p {
		return 0, false
	}
	return yLo + i, true
}

// findObjectInRange binary-searches Z positions [lo,hi] for object o.
func findObjectInRange(bt *triples.BT, lo, hi, o int) (k int, ok bool) {
	n := hi - lo + 1
	i := sort.Search(n, func(i int) bool { return bt.Object(lo+i) >= o })
	if i >= n || bt.Object(lo+i) != o {
		return 0, false
	}
	return lo + i, true
}

// spoIter: single lookup, yields 0 or 1 triple.
func spoIter(bt *triples.BT, s, p, o int) *idIter {
	yIdx, ok := findPredicateInSubject(bt, s, p)
	if !ok {
		return emptyIDIter()
	}
	zLo, zHi, ok := bt.YEntryZRange(yIdx)
	if !ok {
		return emptyIDIter()
	}
	k, ok := findObjectInRange(bt, zLo, zHi, o)
	if !ok {
		return emptyIDIter()
	}
	yielded := false
	return &idIter{pull: func() (TripleID, bool, error) {
		if yielded {
			return TripleID{}, false, nil
		}
		yielded = true
		return TripleID{S: s, P: p, O: bt.Object(k)}, true, nil
	}}
}

// spIter: enumerate the Z block for (s,p), O ascending.
func spIter(bt *triples.BT, s, p int) *idIter {
	yIdx, ok := findPredicateInSubject(bt, s, p)
	if !ok {
		return emptyIDIter()
	}
	zLo, zHi, ok := bt.YEntryZRange(yIdx)
	if !ok {
		return emptyIDIter()
	}
	k := zLo
	return &idIter{pull: func() (TripleID, bool, error) {
		if k > zHi {
			return TripleID{}, false, nil
		}
		t := TripleID{S: s, P: p, O: bt.Object(k)}
		k++
		return t, true, nil
	}}
}

// soIter: enumerate s's predicate block; binary-search o in each Z block.
// Yields P ascending; duplicates impossible since (s,p) pairs are unique.
func soIter(bt *triples.BT, s, o int) *idIter {
	yLo, yHi, ok := bt.SubjectYRange(s)
	if !ok {
		return emptyIDIter()
	}
	yIdx := yLo
	return &idIter{pull: func() (TripleID, bool, error) {
		for yIdx <= yHi {
			cur := yIdx
			yIdx++
			zLo, zHi, ok := bt.YEntryZRange(cur)
			if !ok {
				continue
			}
			if _, found := findObjectInRange(bt, zLo, zHi, o); found {
				return TripleID{S: s, P: bt.Predicate(cur), O: o}, true, nil
			}
		}
		return TripleID{}, false, nil
	}}
}

// sIter: enumerate s's full (P,O) adjacency, (P,O) ascending.
func sIter(bt *triples.BT, s int) *idIter {
	yLo, yHi, ok := bt.SubjectYRange(s)
	if !ok {
		return emptyIDIter()
	}
	yIdx := yLo
	zLo, zHi, zOK := 0, -1, false
	var curP int
	return &idIter{pull: func() (TripleID, bool, error) {
		for {
			if zOK && zLo <= zHi {
				o := bt.Object(zLo)
				zLo++
				return TripleID{S: s, P: curP, O: o}, true, nil
			}
			if yIdx > yHi {
				return TripleID{}, false, nil
			}
			curP = bt.Predicate(yIdx)
			zLo, zHi, zOK = bt.YEntryZRange(yIdx)
			yIdx++
		}
	}}
}

// poIter: locate the (P,O) run via Perm/B_op, S ascending within it.
func poIter(bt *triples.BT, foq *triples.FoQ, p, o int) *idIter {
	nz := foq.Perm.Len()
	j := sort.Search(nz, func(j int) bool {
		k := int(foq.Perm.Get(j))
		yIdx := bt.YIndexOfZPos(k)
		ob, pr := bt.Object(k), bt.Predicate(yIdx)
		if ob != o {
			return ob > o
		}
		return pr >= p
	})
	if j >= nz {
		return emptyIDIter()
	}
	k0 := int(foq.Perm.Get(j))
	yIdx0 := bt.YIndexOfZPos(k0)
	if bt.Object(k0) != o || bt.Predicate(yIdx0) != p {
		return emptyIDIter()
	}
	groupIdx := triples.GroupIndexOfPos(foq.Bop, j)
	lo, hi, ok := triples.GroupRange(foq.Bop, groupIdx)
	if !ok {
		return emptyIDIter()
	}
	jj := lo
	return &idIter{pull: func() (TripleID, bool, error) {
		if jj > hi {
			return TripleID{}, false, nil
		}
		k := int(foq.Perm.Get(jj))
		jj++
		yIdx := bt.YIndexOfZPos(k)
		s := bt.SubjectOfYIdx(yIdx)
		return TripleID{S: s, P: p, O: o}, true, nil
	}}
}

// pIter: walk the PS bucket of p; for each subject, enumerate its Z block.
func pIter(bt *triples.BT, foq *triples.FoQ, p int) *idIter {
	lo, hi, ok := foq.PredicateBucket(p)
	if !ok {
		return emptyIDIter()
	}
	idx := lo
	zLo, zHi, zOK, curS := 0, -1, false, 0
	return &idIter{pull: func() (TripleID, bool, error) {
		for {
			if zOK && zLo <= zHi {
				o := bt.Object(zLo)
				zLo++
				return TripleID{S: curS, P: p, O: o}, true, nil
			}
			if idx > hi {
				return TripleID{}, false, nil
			}
			curS = int(foq.PS.Get(idx))
			idx++
			yIdx, found := findPredicateInSubject(bt, curS, p)
			if !found {
				zOK = false
				continue
			}
			zLo, zHi, zOK = bt.YEntryZRange(yIdx)
		}
	}}
}

// oIter: walk perm runs for object o across all predicates, P ascending
// then S ascending.
func oIter(bt *triples.BT, foq *triples.FoQ, o int) *idIter {
	nz := foq.Perm.Len()
	lo := sort.Search(nz, func(j int) bool {
		k := int(foq.Perm.Get(j))
		return bt.Object(k) >= o
	})
	hi := sort.Search(nz, func(j int) bool {
		k := int(foq.Perm.Get(j))
		return bt.Object(k) > o
	})
	j := lo
	return &idIter{pull: func() (TripleID, bool, error) {
		if j >= hi {
			return TripleID{}, false, nil
		}
		k := int(foq.Perm.Get(j))
		j++
		yIdx := bt.YIndexOfZPos(k)
		return TripleID{S: bt.SubjectOfYIdx(yIdx), P: bt.Predicate(yIdx), O: o}, true, nil
	}}
}

// allIter: walk Y and Z in order, (S,P,O) ascending.
func allIter(bt *triples.BT) *idIter {
	s := 1
	numSubjects := bt.NumSubjects()
	yIdx, yHi, yOK := 0, -1, false
	zLo, zHi, zOK := 0, -1, false
	var curS, curP int
	return &idIter{pull: func() (TripleID, bool, error) {
		for {
			if zOK && zLo <= zHi {
				o := bt.Object(zLo)
				zLo++
				return TripleID{S: curS, P: curP, O: o}, true, nil
			}
			if yOK && yIdx <= yHi {
				curP = bt.Predicate(yIdx)
				zLo, zHi, zOK = bt.YEntryZRange(yIdx)
				yIdx++
				continue
			}
			if s > numSubjects {
				return TripleID{}, false, nil
			}
			var ok bool
			yIdx, yHi, ok = bt.SubjectYRange(s)
			yOK = ok
			curS = s
			s++
			if !ok {
				zOK = false
			}
		}
	}}
}
