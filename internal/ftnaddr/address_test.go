package ftnaddr

import (
	"errors"
	"testing"
)

func TestParseValidAddress(t *testing.T) {
	cases := []struct {
		in   string
		want Address
	}{
		{"2:50/0", New4D(2, 50, 0, 0)},
		{"2:1024/255", New4D(2, 1024, 255, 0)},
		{"2:1024/255.0", New4D(2, 1024, 255, 0)},
		{"2:1024/255.768", New4D(2, 1024, 255, 768)},
		{"1:1024/255@Fidonet", Address{Zone: 1, Net: 1024, Node: 255, Domain: "Fidonet", HasDomain: true}},
		{"1:1024/255.768@Fidonet", Address{Zone: 1, Net: 1024, Node: 255, Point: 768, Domain: "Fidonet", HasDomain: true}},
		{"1:1024/255.768@Fid@net", Address{Zone: 1, Net: 1024, Node: 255, Point: 768, Domain: "Fid@net", HasDomain: true}},
		{"1:1024/255@", Address{Zone: 1, Net: 1024, Node: 255, Domain: "", HasDomain: true}},
		{"1:1024/255.768@", Address{Zone: 1, Net: 1024, Node: 255, Point: 768, Domain: "", HasDomain: true}},
	}

	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestFailOnInvalidAddress(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{":", ErrInvalidFormat},
		{"2", ErrInvalidFormat},
		{"2:", ErrInvalidFormat},
		{"123456:", ErrOverflow},
		{"2:aaaa", ErrInvalidFormat},
		{"2:1024", ErrInvalidFormat},
		{"2:1024/", ErrInvalidFormat},
		{"2:1024/123456", ErrOverflow},
		{"2:1024/-100", ErrInvalidFormat},
		{"2:1024//100", ErrInvalidFormat},
		{"2:1024/100.200.300", ErrInvalidFormat},
		{"2:1024/c.d", ErrInvalidFormat},
		{"a:b/c.d", ErrInvalidFormat},
	}

	for _, c := range cases {
		_, err := Parse(c.in)
		if !errors.Is(err, c.want) {
			t.Errorf("Parse(%q) error = %v, want %v", c.in, err, c.want)
		}
	}
}

func TestAddressIsEmpty(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Fatal("Empty() should be empty")
	}
	if New4D(2, 50, 0, 0).IsEmpty() {
		t.Fatal("address with a zone should not be empty")
	}
}
