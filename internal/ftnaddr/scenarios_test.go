package ftnaddr

import (
	"testing"
	"time"

	. "github.com/franela/goblin"
)

// Covers the concrete scenarios from the specification's testable-properties
// section in the BDD style, one Describe per grammar.
func TestConcreteScenarios(t *testing.T) {
	g := Goblin(t)

	g.Describe("Parse", func() {
		g.It("round-trips a full 5D address", func() {
			a, err := Parse("2:5020/400.100@Fidonet")
			g.Assert(err).Equal(error(nil))
			g.Assert(a).Equal(Address{Zone: 2, Net: 5020, Node: 400, Point: 100, Domain: "Fidonet", HasDomain: true})
		})

		g.It("rejects a node field that overflows uint16", func() {
			_, err := Parse("2:1024/123456")
			g.Assert(err).Equal(ErrOverflow)
		})

		g.It("rejects a bare zone with no net/node", func() {
			_, err := Parse("2:")
			g.Assert(err).Equal(ErrInvalidFormat)
		})
	})

	g.Describe("ParseMessageID", func() {
		g.It("classifies a native FTN address MSGID", func() {
			id, err := ParseMessageID("2:1024/255 4a34c4dd")
			g.Assert(err).Equal(error(nil))
			g.Assert(id.Native).IsTrue()
			g.Assert(id.Serial).Equal(uint32(0x4A34C4DD))
		})

		g.It("keeps a non-FTN MSGID address verbatim as External", func() {
			id, err := ParseMessageID("<1234567890@host> 4A34C4DD")
			g.Assert(err).Equal(error(nil))
			g.Assert(id.Native).IsFalse()
			g.Assert(id.External).Equal("<1234567890@host>")
		})

		g.It("accepts an 8-digit hex serial", func() {
			_, err := ParseMessageID("2:1024/255 12345678")
			g.Assert(err).Equal(error(nil))
		})

		g.It("rejects a 9-digit serial", func() {
			_, err := ParseMessageID("2:1024/255 123456789")
			g.Assert(err).Equal(ErrInvalidFormat)
		})
	})

	g.Describe("ParseFTNDateTime", func() {
		g.It("windows a two-digit year >= 90 into the 1900s", func() {
			got, err := ParseFTNDateTime("12 Dec 93  14:42:12")
			g.Assert(err).Equal(error(nil))
			g.Assert(got).Equal(time.Date(1993, time.December, 12, 14, 42, 12, 0, time.UTC))
		})

		g.It("windows a two-digit year < 90 into the 2000s", func() {
			got, err := ParseFTNDateTime("01 Mar 20  01:43:10")
			g.Assert(err).Equal(error(nil))
			g.Assert(got).Equal(time.Date(2020, time.March, 1, 1, 43, 10, 0, time.UTC))
		})

		g.It("accepts a single-digit day with its leading space", func() {
			got, err := ParseFTNDateTime(" 3 Oct 07  23:00:29")
			g.Assert(err).Equal(error(nil))
			g.Assert(got).Equal(time.Date(2007, time.October, 3, 23, 0, 29, 0, time.UTC))
		})
	})
}
