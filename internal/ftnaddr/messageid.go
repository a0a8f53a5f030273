package ftnaddr

import (
	"strconv"
	"strings"
)

// MessageID is a parsed MSGID/REPLY kludge value: an address (native or
// external) plus a 32-bit hex serial.
type MessageID struct {
	// Native is true when Addr holds a parsed FTN address; otherwise
	// External holds the address-like prefix verbatim (e.g. an
	// internet-style "<id@host>" MSGID).
	Native   bool
	Addr     Address
	External string
	Serial   uint32
}

// ParseMessageID parses "origaddr serialno", splitting on the last space.
// Serial is 1-8 hex digits.
func ParseMessageID(s string) (MessageID, error) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return MessageID{}, ErrInvalidFormat
	}
	addr, ser := s[:i], s[i+1:]

	if len(ser) > 8 || len(ser) == 0 {
		return MessageID{}, ErrInvalidFormat
	}

	serial, err := strconv.ParseUint(ser, 16, 32)
	if err != nil {
		return MessageID{}, ErrInvalidFormat
	}

	if a, err := Parse(addr); err == nil {
		return MessageID{Native: true, Addr: a, Serial: uint32(serial)}, nil
	}

	return MessageID{Native: false, External: addr, Serial: uint32(serial)}, nil
}
