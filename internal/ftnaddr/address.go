// Package ftnaddr implements the FRL-1002 address grammar and the
// small family of related textual formats (MSGID, net/node lists,
// FTN datetime) that the rest of corona builds on.
package ftnaddr

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when input does not match the expected grammar.
var ErrInvalidFormat = errors.New("ftnaddr: invalid format")

// ErrOverflow is returned when a numeric field exceeds its u16 range.
var ErrOverflow = errors.New("ftnaddr: number overflows uint16")

// Address is a Fidonet address per FRL-1002: zone:net/node.point@domain.
type Address struct {
	Zone   uint16
	Net    uint16
	Node   uint16
	Point  uint16
	Domain string
	// HasDomain distinguishes an address with no "@domain" part at all
	// from one with an explicit, possibly empty, domain ("@").
	HasDomain bool
}

// Empty reports the zero address, used to mean "unknown".
func Empty() Address {
	return Address{}
}

// New4D builds a zone:net/node.point address with no domain.
func New4D(zone, net, node, point uint16) Address {
	return Address{Zone: zone, Net: net, Node: node, Point: point}
}

// IsEmpty reports whether a is the all-zero address.
func (a Address) IsEmpty() bool {
	return a.Zone == 0 && a.Net == 0 && a.Node == 0 && a.Point == 0 && !a.HasDomain
}

// String renders the address back into zone:net/node[.point][@domain] form.
func (a Address) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(a.Zone)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(a.Net)))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(int(a.Node)))
	if a.Point != 0 {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(int(a.Point)))
	}
	if a.HasDomain {
		b.WriteByte('@')
		b.WriteString(a.Domain)
	}
	return b.String()
}

// addrTag tracks which field of the address the parser is currently filling.
type addrTag int

const (
	tagZone addrTag = iota
	tagNet
	tagNode
	tagPoint
	tagDomain
)

// Parse parses a single FTN address in 3D, 4D or 5D form.
//
// The parser is a single stateful pass over the input, mirroring the
// field-by-field grammar: zone ":" net "/" node [ "." point ] [ "@" domain ].
func Parse(s string) (Address, error) {
	a := Empty()
	tag := tagZone
	start := 0

	parseU16 := func(field string) (uint16, error) {
		if field == "" {
			return 0, ErrInvalidFormat
		}
		v, err := strconv.ParseUint(field, 10, 16)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
				return 0, ErrOverflow
			}
			return 0, ErrInvalidFormat
		}
		return uint16(v), nil
	}

	i := 0
	for {
		if i >= len(s) {
			switch tag {
			case tagNode:
				v, err := parseU16(s[start:])
				if err != nil {
					return Address{}, err
				}
				a.Node = v
			case tagPoint:
				v, err := parseU16(s[start:])
				if err != nil {
					return Address{}, err
				}
				a.Point = v
			case tagDomain:
				a.Domain = s[start:]
				a.HasDomain = true
			default:
				return Address{}, ErrInvalidFormat
			}
			break
		}

		c := s[i]

		switch {
		case tag == tagZone && c == ':':
			v, err := parseU16(s[start:i])
			if err != nil {
				return Address{}, err
			}
			a.Zone = v
			tag = tagNet
			start = i + 1
		case tag == tagNet && c == '/':
			v, err := parseU16(s[start:i])
			if err != nil {
				return Address{}, err
			}
			a.Net = v
			tag = tagNode
			start = i + 1
		case tag == tagNode && c == '.':
			v, err := parseU16(s[start:i])
			if err != nil {
				return Address{}, err
			}
			a.Node = v
			tag = tagPoint
			start = i + 1
		case tag == tagNode && c == '@':
			v, err := parseU16(s[start:i])
			if err != nil {
				return Address{}, err
			}
			a.Node = v
			tag = tagDomain
			start = i + 1
		case tag == tagPoint && c == '@':
			v, err := parseU16(s[start:i])
			if err != nil {
				return Address{}, err
			}
			a.Point = v
			tag = tagDomain
			start = i + 1
		}

		i++
	}

	return a, nil
}
