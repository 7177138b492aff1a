package varint

import (
	"bufio"
	"bytes"
	"testing"
	"testing/quick"
)

func TestRoundtrip_Quick(t *testing.T) {
	f := func(v uint64) bool {
		var buf [MaxLen64]byte
		n := Put(buf[:], v)

		got, m := Uvarint(buf[:n])
		if m != n || got != v {
			return false
		}

		r := bufio.NewReader(bytes.NewReader(buf[:n]))
		got2, err := Read(r)
		return err == nil && got2 == v
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestUvarint_ShortBuffer(t *testing.T) {
	// A continuation byte with nothing following is an incomplete varint.
	if _, n := Uvarint([]byte{0x80}); n != 0 {
		t.Fatalf("Uvarint(incomplete) => n=%d, want 0", n)
	}
}

func TestKnownEncodings(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
	}
	for _, c := range cases {
		var buf [MaxLen64]byte
		n := Put(buf[:], c.v)
		if !bytes.Equal(buf[:n], c.want) {
			t.Errorf("Put(%d) => % x, want % x", c.v, buf[:n], c.want)
		}
	}
}
