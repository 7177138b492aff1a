// Package triples implements the Bitmap-Triples encoding and its FoQ
// derived indices (spec.md §4.6, §4.7).
package triples

import (
	"bufio"
	"fmt"
	"io"

	"github.com/KonradHoeffner/hdt/internal/bitseq"
	"github.com/KonradHoeffner/hdt/internal/ciheader"
	"github.com/KonradHoeffner/hdt/internal/packedarray"
	"github.com/KonradHoeffner/hdt/internal/wireerr"
)

var ErrCorrupt = wireerr.ErrCorrupt

// OrderSPO is the only triple sort order code this store implements
// (spec.md §4.3 property table: order=1).
const OrderSPO = 1

// BT is the parsed Bitmap-Triples forest: subjects are implicit roots,
// By/Y encode the predicate level, Bz/Z encode the object level.
type BT struct {
	Order  uint64
	NumOcc uint64
	By     *bitseq.BitSeq
	Bz     *bitseq.BitSeq
	Y      *packedarray.PackedArray // predicate ids, length |Y|
	Z      *packedarray.PackedArray // object ids, length |Z| = NumOcc
}

// NumSubjects returns the number of distinct subjects (popcount(B_y)).
func (bt *BT) NumSubjects() int { return bt.By.Ones() }

// SubjectYRange returns the inclusive 0-based range of Y positions holding
// subject s's (1-based) predicates, or ok=false if s is out of range.
func (bt *BT) SubjectYRange(s int) (lo, hi int, ok bool) {
	return GroupRange(bt.By, s-1)
}

// YEntryZRange returns the inclusive 0-based range of Z positions holding
// the objects of the yIdx-th (0-based) (subject,predicate) pair.
func (bt *BT) YEntryZRange(yIdx int) (lo, hi int, ok bool) {
	return GroupRange(bt.Bz, yIdx)
}

// YIndexOfZPos returns the 0-based index into Y of the (subject,predicate)
// pair owning Z position k (the Z→Y back-link of spec.md §4.8).
func (bt *BT) YIndexOfZPos(k int) int { return GroupIndexOfPos(bt.Bz, k) }

// SubjectOfYIdx returns the 1-based subject owning Y position yIdx.
func (bt *BT) SubjectOfYIdx(yIdx int) int { return GroupIndexOfPos(bt.By, yIdx) + 1 }

// Predicate returns the predicate id stored at Y position yIdx.
func (bt *BT) Predicate(yIdx int) int { return int(bt.Y.Get(yIdx)) }

// Object returns the object id stored at Z position k.
func (bt *BT) Object(k int) int { return int(bt.Z.Get(k)) }

// validate checks the cross-structure invariants of spec.md §4.6.
func (bt *BT) validate() error {
	if bt.By.Ones() == 0 && bt.By.Len() != 0 {
		// A non-empty By with zero popcount can never terminate a subject
		// block; every subject must have at least one predicate.
		return fmt.Errorf("%w: B_y has no terminator bits", ErrCorrupt)
	}
	if bt.By.Len() != bt.Y.Len() {
		return fmt.Errorf("%w: len(B_y)=%d != len(Y)=%d", ErrCorrupt, bt.By.Len(), bt.Y.Len())
	}
	if bt.Bz.Len() != bt.Z.Len() {
		return fmt.Errorf("%w: len(B_z)=%d != len(Z)=%d", ErrCorrupt, bt.Bz.Len(), bt.Z.Len())
	}
	if bt.Bz.Ones() != bt.Y.Len() {
		return fmt.Errorf("%w: popcount(B_z)=%d != |Y|=%d", ErrCorrupt, bt.Bz.Ones(), bt.Y.Len())
	}
	if uint64(bt.Z.Len()) != bt.NumOcc {
		return fmt.Errorf("%w: |Z|=%d != numOcc=%d", ErrCorrupt, bt.Z.Len(), bt.NumOcc)
	}
	return bt.validateOrder()
}

// validateOrder checks that every subject's predicates, and every
// (subject,predicate) pair's objects, are strictly ascending with no
// duplicates (spec.md §7: non-ascending order and duplicate triples are
// both Corrupt conditions). Build's input is already sorted, so this only
// ever rejects something on a crafted/corrupt file parsed via Parse.
func (bt *BT) validateOrder() error {
	for s := 1; s <= bt.NumSubjects(); s++ {
		lo, hi, ok := bt.SubjectYRange(s)
		if !ok {
			continue
		}
		prevP := 0
		for yIdx := lo; yIdx <= hi; yIdx++ {
			p := bt.Predicate(yIdx)
			if p <= prevP {
				return fmt.Errorf("%w: predicates for subject %d not strictly ascending at Y[%d]", ErrCorrupt, s, yIdx)
			}
			prevP = p

			zlo, zhi, ok := bt.YEntryZRange(yIdx)
			if !ok {
				continue
			}
			prevO := 0
			for k := zlo; k <= zhi; k++ {
				o := bt.Object(k)
				if o <= prevO {
					return fmt.Errorf("%w: objects for subject %d, predicate %d not strictly ascending at Z[%d]", ErrCorrupt, s, p, k)
				}
				prevO = o
			}
		}
	}
	return nil
}

// Serialize writes the control-information block followed by B_y, B_z, Y, Z.
func (bt *BT) Serialize(w io.Writer) error {
	ci := ciheader.New(ciheader.Triples, "<http://purl.org/HDT/hdt#triplesBitmap>")
	ci.SetUint(ciheader.PropOrder, bt.Order)
	ci.SetUint(ciheader.PropNumOcc, bt.NumOcc)
	if err := ci.Serialize(w); err != nil {
		return err
	}
	if err := bt.By.Serialize(w); err != nil {
		return err
	}
	if err := bt.Bz.Serialize(w); err != nil {
		return err
	}
	if err := bt.Y.Serialize(w); err != nil {
		return err
	}
	return bt.Z.Serialize(w)
}

// Parse reads a Bitmap-Triples section previously written by Serialize.
func Parse(r *bufio.Reader) (*BT, error) {
	ci, err := ciheader.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("triples: control info: %w", err)
	}
	if ci.Kind != ciheader.Triples {
		return nil, fmt.Errorf("%w: expected triples control info, got %v", wireerr.ErrFormatUnsupported, ci.Kind)
	}
	order, _ := ci.Uint(ciheader.PropOrder)
	if order != OrderSPO {
		return nil, fmt.Errorf("%w: triple order %d (only SPO=1 supported)", wireerr.ErrFormatUnsupported, order)
	}
	numOcc, _ := ci.Uint(ciheader.PropNumOcc)

	by, err := bitseq.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("triples: B_y: %w", err)
	}
	bz, err := bitseq.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("triples: B_z: %w", err)
	}
	y, err := packedarray.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("triples: Y: %w", err)
	}
	z, err := packedarray.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("triples: Z: %w", err)
	}

	bt := &BT{Order: order, NumOcc: numOcc, By: by, Bz: bz, Y: y, Z: z}
	if err := bt.validate(); err != nil {
		return nil, err
	}
	return bt, nil
}

// Build constructs a BT from a sorted, duplicate-free slice of (s,p,o)
// 1-based ID triples. Triples must already be sorted ascending by (s,p,o).
func Build(spo [][3]int) (*BT, error) {
	if len(spo) == 0 {
		return &BT{
			Order:  OrderSPO,
			NumOcc: 0,
			By:     bitseq.New(make([]uint64, 1), 0),
			Bz:     bitseq.New(make([]uint64, 1), 0),
			Y:      packedarray.New(0, 0),
			Z:      packedarray.New(0, 0),
		}, nil
	}

	yVals := make([]uint64, 0, len(spo))
	zVals := make([]uint64, 0, len(spo))
	var byBits, bzBits []int // 0-based positions set to 1

	prevS, prevP := 0, 0
	yIdx := -1
	for i, t := range spo {
		s, p, o := t[0], t[1], t[2]
		if s < 1 || p < 1 || o < 1 {
			return nil, fmt.Errorf("%w: triple with non-positive component at index %d", ErrCorrupt, i)
		}
		if i == 0 || s != prevS || p != prevP {
			if yIdx >= 0 {
				bzBits = append(bzBits, len(zVals)-1)
			}
			if yIdx >= 0 && s != prevS {
				byBits = append(byBits, yIdx)
			}
			yVals = append(yVals, uint64(p))
			yIdx++
		}
		zVals = append(zVals, uint64(o))
		prevS, prevP = s, p
	}
	byBits = append(byBits, yIdx)
	bzBits = append(bzBits, len(zVals)-1)

	byWords := bitsToWords(byBits, len(yVals))
	bzWords := bitsToWords(bzBits, len(zVals))

	bt := &BT{
		Order:  OrderSPO,
		NumOcc: uint64(len(spo)),
		By:     bitseq.New(byWords, len(yVals)),
		Bz:     bitseq.New(bzWords, len(zVals)),
		Y:      packedarray.Build(yVals),
		Z:      packedarray.Build(zVals),
	}
	if err := bt.validate(); err != nil {
		return nil, err
	}
	return bt, nil
}

// ValidateIDRange checks that every predicate id in Y and every object id
// in Z fall within the dictionary's id spaces (spec.md §7: "Y or Z out of
// ID range" is a Corrupt condition), and that every predicate in
// [1,numPredicates] occurs at least once in Y -- a predicate with zero
// subjects is itself a Corrupt condition per spec.md §8's boundary case.
func (bt *BT) ValidateIDRange(numSubjects, numPredicates, numObjects int) error {
	seen := make([]bool, numPredicates+1)
	for i := 0; i < bt.Y.Len(); i++ {
		p := int(bt.Y.Get(i))
		if p < 1 || p > numPredicates {
			return fmt.Errorf("%w: predicate id %d at Y[%d] out of range [1,%d]", ErrCorrupt, p, i, numPredicates)
		}
		seen[p] = true
	}
	for p := 1; p <= numPredicates; p++ {
		if !seen[p] {
			return fmt.Errorf("%w: predicate id %d occurs in no triple", ErrCorrupt, p)
		}
	}
	for i := 0; i < bt.Z.Len(); i++ {
		o := int(bt.Z.Get(i))
		if o < 1 || o > numObjects {
			return fmt.Errorf("%w: object id %d at Z[%d] out of range [1,%d]", ErrCorrupt, o, i, numObjects)
		}
	}
	if bt.NumSubjects() > numSubjects {
		return fmt.Errorf("%w: BT implies %d subjects, dictionary has %d", ErrCorrupt, bt.NumSubjects(), numSubjects)
	}
	return nil
}

func bitsToWords(positions []int, n int) []uint64 {
	nWords := (n + 63) / 64
	if nWords == 0 {
		nWords = 1
	}
	words := make([]uint64, nWords)
	for _, pos := range positions {
		words[pos/64] |= uint64(1) << uint(pos%64)
	}
	return words
}
