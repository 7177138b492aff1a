package triples

import (
	"bufio"
	"bytes"
	"reflect"
	"testing"
)

func sampleSPO() [][3]int {
	return [][3]int{
		{1, 1, 10}, {1, 1, 20}, {1, 2, 5},
		{2, 1, 7},
		{3, 1, 1}, {3, 3, 2}, {3, 3, 9},
	}
}

func collect(bt *BT) [][3]int {
	var out [][3]int
	for s := 1; s <= bt.NumSubjects(); s++ {
		yLo, yHi, ok := bt.SubjectYRange(s)
		if !ok {
			continue
		}
		for yIdx := yLo; yIdx <= yHi; yIdx++ {
			p := bt.Predicate(yIdx)
			zLo, zHi, ok := bt.YEntryZRange(yIdx)
			if !ok {
				continue
			}
			for k := zLo; k <= zHi; k++ {
				out = append(out, [3]int{s, p, bt.Object(k)})
			}
		}
	}
	return out
}

func TestBuild_RoundtripsNavigation(t *testing.T) {
	in := sampleSPO()
	bt, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bt.NumSubjects() != 3 {
		t.Fatalf("NumSubjects = %d, want 3", bt.NumSubjects())
	}
	if bt.Y.Len() != 5 {
		t.Fatalf("len(Y) = %d, want 5", bt.Y.Len())
	}
	if bt.Z.Len() != len(in) {
		t.Fatalf("len(Z) = %d, want %d", bt.Z.Len(), len(in))
	}
	got := collect(bt)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("collect() = %v, want %v", got, in)
	}
}

func TestBuild_BackLinks(t *testing.T) {
	bt, err := Build(sampleSPO())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for k := 0; k < bt.Z.Len(); k++ {
		yIdx := bt.YIndexOfZPos(k)
		zLo, zHi, ok := bt.YEntryZRange(yIdx)
		if !ok || k < zLo || k > zHi {
			t.Fatalf("YIndexOfZPos(%d) = %d, whose Z-range [%d,%d] excludes k", k, yIdx, zLo, zHi)
		}
		s := bt.SubjectOfYIdx(yIdx)
		yLo, yHi, ok := bt.SubjectYRange(s)
		if !ok || yIdx < yLo || yIdx > yHi {
			t.Fatalf("SubjectOfYIdx(%d) = %d, whose Y-range [%d,%d] excludes yIdx", yIdx, s, yLo, yHi)
		}
	}
}

func TestBuild_Empty(t *testing.T) {
	bt, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if bt.NumSubjects() != 0 || bt.Y.Len() != 0 || bt.Z.Len() != 0 {
		t.Fatalf("expected empty BT, got subjects=%d |Y|=%d |Z|=%d", bt.NumSubjects(), bt.Y.Len(), bt.Z.Len())
	}
}

func TestSerializeParse_Roundtrip(t *testing.T) {
	bt, err := Build(sampleSPO())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := bt.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Parse(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(collect(got), sampleSPO()) {
		t.Fatalf("roundtrip mismatch: got %v", collect(got))
	}
	if got.NumOcc != uint64(len(sampleSPO())) {
		t.Fatalf("NumOcc = %d, want %d", got.NumOcc, len(sampleSPO()))
	}
}

func TestParse_RejectsNonSPOOrder(t *testing.T) {
	bt, err := Build(sampleSPO())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	bt.Order = 2
	var buf bytes.Buffer
	if err := bt.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := Parse(bufio.NewReader(&buf)); err == nil {
		t.Fatal("expected FormatUnsupported error for order != 1")
	}
}
