package triples

import (
	"sort"
	"testing"
)

func TestFoQ_PredicateBuckets(t *testing.T) {
	bt, err := Build(sampleSPO())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f := BuildFoQ(bt, 3)

	cases := map[int][]int{
		1: {1, 2, 3},
		2: {1},
		3: {3},
	}
	for p, want := range cases {
		lo, hi, ok := f.PredicateBucket(p)
		if !ok {
			t.Fatalf("PredicateBucket(%d): not ok", p)
		}
		var got []int
		for i := lo; i <= hi; i++ {
			got = append(got, int(f.PS.Get(i)))
		}
		if len(got) != len(want) {
			t.Fatalf("PredicateBucket(%d) = %v, want %v", p, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("PredicateBucket(%d) = %v, want %v", p, got, want)
			}
		}
	}
}

func TestFoQ_ObjectPermutationSortedByOPS(t *testing.T) {
	in := sampleSPO()
	bt, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f := BuildFoQ(bt, 3)

	type ops struct{ o, p, s int }
	want := make([]ops, len(in))
	for i, tr := range in {
		want[i] = ops{tr[2], tr[1], tr[0]}
	}
	sort.Slice(want, func(i, j int) bool {
		if want[i].o != want[j].o {
			return want[i].o < want[j].o
		}
		if want[i].p != want[j].p {
			return want[i].p < want[j].p
		}
		return want[i].s < want[j].s
	})

	if f.Perm.Len() != len(in) {
		t.Fatalf("len(Perm) = %d, want %d", f.Perm.Len(), len(in))
	}
	for j := 0; j < f.Perm.Len(); j++ {
		k := int(f.Perm.Get(j))
		yIdx := bt.YIndexOfZPos(k)
		got := ops{bt.Object(k), bt.Predicate(yIdx), bt.SubjectOfYIdx(yIdx)}
		if got != want[j] {
			t.Fatalf("perm position %d = %+v, want %+v", j, got, want[j])
		}
	}

	if f.Bop.Ones() == 0 {
		t.Fatal("B_op has no terminator bits")
	}
	if f.Bop.Bit(f.Bop.Len()-1) == 0 {
		t.Fatal("B_op must mark the final position as a group end")
	}
}
