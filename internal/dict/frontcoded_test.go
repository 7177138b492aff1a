package dict

import (
	"bufio"
	"bytes"
	"testing"
)

func strs(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestBuildExtract_Roundtrip(t *testing.T) {
	in := strs("apple", "application", "apply", "banana", "bandana", "zebra")
	s, err := BuildBlockSize(in, 3)
	if err != nil {
		t.Fatalf("BuildBlockSize: %v", err)
	}
	if s.NumStrings() != len(in) {
		t.Fatalf("NumStrings = %d, want %d", s.NumStrings(), len(in))
	}
	for i, want := range in {
		got, err := s.Extract(i + 1)
		if err != nil {
			t.Fatalf("Extract(%d): %v", i+1, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Extract(%d) = %q, want %q", i+1, got, want)
		}
	}
}

func TestLocate_FindsEveryEntry(t *testing.T) {
	in := strs("a", "aa", "ab", "b", "ba", "c", "carrot", "d")
	s, err := BuildBlockSize(in, 4)
	if err != nil {
		t.Fatalf("BuildBlockSize: %v", err)
	}
	for i, w := range in {
		id, err := s.Locate(w)
		if err != nil {
			t.Fatalf("Locate(%q): %v", w, err)
		}
		if id != i+1 {
			t.Fatalf("Locate(%q) = %d, want %d", w, id, i+1)
		}
	}
}

func TestLocate_Missing(t *testing.T) {
	in := strs("apple", "banana", "cherry")
	s, err := BuildBlockSize(in, 16)
	if err != nil {
		t.Fatalf("BuildBlockSize: %v", err)
	}
	for _, w := range []string{"", "aardvark", "bananas", "zzz"} {
		id, err := s.Locate([]byte(w))
		if err != nil {
			t.Fatalf("Locate(%q): %v", w, err)
		}
		if id != 0 {
			t.Fatalf("Locate(%q) = %d, want 0", w, id)
		}
	}
}

func TestBuild_RejectsNonAscending(t *testing.T) {
	if _, err := Build(strs("b", "a")); err == nil {
		t.Fatal("expected error for non-ascending input")
	}
}

func TestBuild_RejectsInteriorNUL(t *testing.T) {
	if _, err := Build([][]byte{[]byte("a\x00b")}); err == nil {
		t.Fatal("expected error for embedded NUL")
	}
}

func TestSerializeParse_Roundtrip(t *testing.T) {
	in := strs("alpha", "alphabet", "beta", "betray", "gamma")
	s, err := BuildBlockSize(in, 2)
	if err != nil {
		t.Fatalf("BuildBlockSize: %v", err)
	}
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := ParseSection(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.NumStrings() != s.NumStrings() {
		t.Fatalf("NumStrings mismatch: %d vs %d", got.NumStrings(), s.NumStrings())
	}
	for i, want := range in {
		gotStr, err := got.Extract(i + 1)
		if err != nil {
			t.Fatalf("Extract(%d): %v", i+1, err)
		}
		if !bytes.Equal(gotStr, want) {
			t.Fatalf("Extract(%d) after roundtrip = %q, want %q", i+1, gotStr, want)
		}
	}
}

func TestSerializeParse_Empty(t *testing.T) {
	s, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := ParseSection(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.NumStrings() != 0 {
		t.Fatalf("NumStrings = %d, want 0", got.NumStrings())
	}
}

func TestParse_CorruptPayloadCRC(t *testing.T) {
	s, err := BuildBlockSize(strs("one", "three", "two"), 2)
	if err != nil {
		t.Fatalf("BuildBlockSize: %v", err)
	}
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b := buf.Bytes()
	b[len(b)-1] ^= 0xFF
	if _, err := ParseSection(bufio.NewReader(bytes.NewReader(b))); err == nil {
		t.Fatal("expected section CRC error, got nil")
	}
}
