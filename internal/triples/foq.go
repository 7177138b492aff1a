package triples

import (
	"sort"

	"github.com/KonradHoeffner/hdt/internal/bitseq"
	"github.com/KonradHoeffner/hdt/internal/packedarray"
)

// FoQ holds the two "Focused on Querying" indices derived from a BT at
// load time (spec.md §4.7): a predicate→subjects index and an object
// permutation, both held immutably alongside the BT they were built from.
type FoQ struct {
	PS   *packedarray.PackedArray // subjects, flattened in predicate order
	Bps  *bitseq.BitSeq           // marks end-of-bucket per predicate
	Perm *packedarray.PackedArray // perm[j] = Z-position of the j-th (O,P,S)-sorted entry
	Bop  *bitseq.BitSeq           // marks end-of-run per (object,predicate) group
}

// BuildFoQ derives PS/B_ps and perm/B_op from bt. numPredicates bounds the
// predicate ID space so empty trailing buckets are accounted for. Callers
// must run BT.ValidateIDRange first: it rejects any predicate id in
// [1,numPredicates] with zero subjects, which is what guarantees every
// bucket built here is non-empty and PredicateBucket's popcount invariant
// holds.
func BuildFoQ(bt *BT, numPredicates int) *FoQ {
	buckets := make([][]uint64, numPredicates+1) // 1-indexed by predicate id
	for yIdx := 0; yIdx < bt.Y.Len(); yIdx++ {
		p := bt.Predicate(yIdx)
		s := bt.SubjectOfYIdx(yIdx)
		buckets[p] = append(buckets[p], uint64(s))
	}

	var psVals []uint64
	var psBits []int
	for p := 1; p <= numPredicates; p++ {
		psVals = append(psVals, buckets[p]...)
		if len(buckets[p]) > 0 {
			psBits = append(psBits, len(psVals)-1)
		}
	}
	ps := packedarray.Build(psVals)
	bps := bitseq.New(bitsToWords(psBits, len(psVals)), len(psVals))

	nz := bt.Z.Len()
	pAt := make([]int, nz)
	sAt := make([]int, nz)
	for k := 0; k < nz; k++ {
		yIdx := bt.YIndexOfZPos(k)
		pAt[k] = bt.Predicate(yIdx)
		sAt[k] = bt.SubjectOfYIdx(yIdx)
	}

	order := make([]int, nz)
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		oa, ob := bt.Object(a), bt.Object(b)
		if oa != ob {
			return oa < ob
		}
		if pAt[a] != pAt[b] {
			return pAt[a] < pAt[b]
		}
		return sAt[a] < sAt[b]
	})

	permVals := make([]uint64, nz)
	var opBits []int
	for j, k := range order {
		permVals[j] = uint64(k)
		if j == nz-1 {
			opBits = append(opBits, j)
			continue
		}
		nk := order[j+1]
		if bt.Object(k) != bt.Object(nk) || pAt[k] != pAt[nk] {
			opBits = append(opBits, j)
		}
	}
	perm := packedarray.Build(permVals)
	bop := bitseq.New(bitsToWords(opBits, nz), nz)

	return &FoQ{PS: ps, Bps: bps, Perm: perm, Bop: bop}
}

// GroupRange returns the inclusive 0-based range of positions in the
// groupIdx-th (0-based) run delimited by boundary bit sequence b, or
// ok=false if groupIdx is out of range. Every boundary bit sequence in
// this package (B_y, B_z, B_ps, B_op) follows the same "1 marks the last
// position of the current run" convention, so this single implementation
// serves all of them.
func GroupRange(b *bitseq.BitSeq, groupIdx int) (lo, hi int, ok bool) {
	if groupIdx < 0 || groupIdx >= b.Ones() {
		return 0, 0, false
	}
	if groupIdx == 0 {
		lo = 0
	} else {
		lo = b.Select1(groupIdx) + 1
	}
	hi = b.Select1(groupIdx + 1)
	return lo, hi, true
}

// GroupIndexOfPos returns the 0-based index of the run containing
// position pos in boundary bit sequence b.
func GroupIndexOfPos(b *bitseq.BitSeq, pos int) int { return b.Rank1(pos) }

// PredicateBucket returns the 0-based PS range for predicate p (1-based),
// or ok=false if p is out of range. Every predicate in the dictionary's
// predicate section occurs in at least one triple, so buckets are never
// empty and the p-th set bit in B_ps always corresponds to predicate p.
func (f *FoQ) PredicateBucket(p int) (lo, hi int, ok bool) {
	ones := f.Bps.Ones()
	if p < 1 || p > ones {
		return 0, 0, false
	}
	if p == 1 {
		lo = 0
	} else {
		lo = f.Bps.Select1(p-1) + 1
	}
	hi = f.Bps.Select1(p)
	return lo, hi, true
}
