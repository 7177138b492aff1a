package rdf

import (
	"testing"
)

func TestNewURI(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"<>\"{}|^`\\", ""},
		{"\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0A\x0B\x0C\x0D\x0E\x0F", ""},
		{"\x10\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1A\x1B\x1C\x1D\x1E\x1F\x20", ""},
		{"æøå", "æøå"},
		{" http://example.org/resorce#123 ", "http://example.org/resorce#123"},
	}

	for _, test := range tests {
		if NewURI(test.in).String() != test.want {
			t.Errorf("NewURI(%q) => %q; want %q", test.in, NewURI(test.in), test.want)
		}
	}
}

func TestNewLiteral(t *testing.T) {
	tests := []struct {
		in interface{}
		dt URI
		s  string
	}{
		{false, XSDboolean, "false"},
		{true, XSDboolean, "true"},
		{"a string", XSDstring, "a string"},
		{int64(11), XSDlong, "11"},
		{int64(-7), XSDlong, "-7"},
		{0.99999, XSDdouble, "9.9999E-01"},
	}
	for _, test := range tests {
		l := NewLiteral(test.in)
		if l.DataType() != test.dt {
			t.Errorf("NewLiteral(%v).DataType() => %q; want %q", test.in, l.DataType(), test.dt)
		}
		if l.String() != test.s {
			t.Errorf("NewLiteral(%v).String() => %q; want %q", test.in, l.String(), test.s)
		}
	}
}

func TestNewLiteralCustomType(t *testing.T) {
	v := struct{ a, b string }{"hei", "hå"}
	l := NewLiteral(v)
	if l.DataType() != XSDstring {
		t.Errorf("NewLiteral(%v).DataType() => %s ; want %s ", v, l.DataType(), XSDstring)
	}
	want := `{hei hå}`
	if l.String() != want {
		t.Errorf("NewLiteral(%v).String() => %s ; want %s ", v, l.String(), want)
	}
}

func TestNewLangLiteral(t *testing.T) {
	l := NewLangLiteral("hei", "no")
	if l.String() != "hei" {
		t.Errorf("NewLangLiteral(\"hei\", \"no\").String() => %v ; want \"hei\"", l.String())
	}
	if l.Lang() != "no" {
		t.Errorf("NewLangLiteral(\"hei\", \"no\").Lang() => %v ; want \"no\"", l.Lang())
	}
	if l.DataType() != RDFlangString {
		t.Errorf("NewLangLiteral(\"hei\", \"no\").DataType() => %v ; want %v", l.DataType(), RDFlangString)
	}
}
