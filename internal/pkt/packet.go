// Package pkt decodes FTS-0001 binary packet files and the ZIP bundles
// that carry several of them at once.
package pkt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/flatline-bbs/corona/internal/ftnaddr"
)

// Address is the 4D address embedded in a packet header or message record.
type Address struct {
	Zone, Net, Node, Point uint16
}

// User is the raw (pre-codepage-decode) originator or recipient of a message.
type User struct {
	Address Address
	Name    []byte
}

// Message is one raw message record out of a packet, with text fields left
// as undecoded bytes — codepage decoding is the synthesizer's job.
type Message struct {
	Posted []byte
	From   User
	To     User
	Flags  uint16
	Subj   []byte
	Text   []byte
}

// Packet is a decoded FTS-0001 packet: header plus its ordered messages.
type Packet struct {
	Orig             Address
	Dest             Address
	Created          time.Time
	Password         string
	Rate             uint16
	Ver              uint16
	ProdCode         uint8
	SerialNo         uint8
	AuxNet           uint16
	CapWord          uint16
	HiProductCode    uint8
	MinorProductRev  uint8
	Messages         []Message
}

const postedDateLen = 19

// DateError reports an invalid packet creation date or time.
type DateError struct {
	Year, Month, Day, Hour, Minute, Second uint16
	Time                                   bool
}

func (e *DateError) Error() string {
	if e.Time {
		return fmt.Sprintf("pkt: invalid creation time %02d:%02d:%02d", e.Hour, e.Minute, e.Second)
	}
	return fmt.Sprintf("pkt: invalid creation date %04d-%02d-%02d", e.Year, e.Month, e.Day)
}

// Read decodes one FTS-0001 packet from r.
func Read(r io.Reader) (*Packet, error) {
	br := bufio.NewReader(r)

	origNode, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	destNode, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	year, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	month, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	month++
	day, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	hour, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	minute, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	second, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, &DateError{Year: year, Month: month, Day: day}
	}
	created := time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.UTC)
	if created.Month() != time.Month(month) || created.Day() != int(day) {
		return nil, &DateError{Year: year, Month: month, Day: day}
	}
	if hour > 23 || minute > 59 || second > 59 {
		return nil, &DateError{Hour: hour, Minute: minute, Second: second, Time: true}
	}

	rate, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	ver, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	origNet, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	destNet, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	prodCode, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	serialNo, err := br.ReadByte()
	if err != nil {
		return nil, err
	}

	passwordRaw := make([]byte, 8)
	if _, err := io.ReadFull(br, passwordRaw); err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(passwordRaw, 0); i >= 0 {
		passwordRaw = passwordRaw[:i]
	}
	password := string(passwordRaw)

	origZone, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	destZone, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	auxNet, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	if _, err := readU16BE(br); err != nil { // cap_word_copy, discarded
		return nil, err
	}

	hiProductCode, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	minorProductRev, err := br.ReadByte()
	if err != nil {
		return nil, err
	}

	capWord, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	if _, err := readU32LE(br); err != nil { // zone info, discarded
		return nil, err
	}

	origPoint, err := readU16LE(br)
	if err != nil {
		return nil, err
	}
	destPoint, err := readU16LE(br)
	if err != nil {
		return nil, err
	}

	if _, err := readU32LE(br); err != nil { // product specific data, discarded
		return nil, err
	}

	var messages []Message

	for {
		w, err := readU16LE(br)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if w == 0 { // end-of-packet marker
			break
		}

		if w != 2 {
			extra, err := io.ReadAll(br)
			if err != nil {
				return nil, err
			}
			if len(extra) == 0 {
				break
			}
			// Trailing bytes after a non-terminator, non-message marker:
			// there is nothing sane left to parse as a message record.
			return nil, fmt.Errorf("pkt: %d unexpected byte(s) of unknown data at end of packet", len(extra))
		}

		fromNode, err := readU16LE(br)
		if err != nil {
			return nil, err
		}
		toNode, err := readU16LE(br)
		if err != nil {
			return nil, err
		}
		fromNet, err := readU16LE(br)
		if err != nil {
			return nil, err
		}
		toNet, err := readU16LE(br)
		if err != nil {
			return nil, err
		}
		flags, err := readU16LE(br)
		if err != nil {
			return nil, err
		}
		if _, err := readU16LE(br); err != nil { // cost, ignored
			return nil, err
		}

		posted, err := readExclZero(br)
		if err != nil {
			return nil, err
		}

		var toName []byte

		if postedLen := len(posted); postedLen != postedDateLen {
			posted = nil

			for i := postedLen; i < postedDateLen; i++ {
				extra, err := br.ReadByte()
				if err != nil {
					return nil, err
				}
				if extra != 0 {
					toName = append(toName, extra) // oops, bring it back
					break
				}
			}
		}

		toNameRest, err := readExclZero(br)
		if err != nil {
			return nil, err
		}
		toName = append(toName, toNameRest...)

		fromName, err := readExclZero(br)
		if err != nil {
			return nil, err
		}
		subj, err := readExclZero(br)
		if err != nil {
			return nil, err
		}
		text, err := readExclZero(br)
		if err != nil {
			return nil, err
		}

		messages = append(messages, Message{
			Posted: posted,
			From: User{
				Address: Address{Zone: origZone, Net: fromNet, Node: fromNode, Point: 0},
				Name:    fromName,
			},
			To: User{
				Address: Address{Zone: destZone, Net: toNet, Node: toNode, Point: 0},
				Name:    toName,
			},
			Flags: flags,
			Subj:  subj,
			Text:  text,
		})
	}

	return &Packet{
		Orig:            Address{Zone: origZone, Net: origNet, Node: origNode, Point: origPoint},
		Dest:            Address{Zone: destZone, Net: destNet, Node: destNode, Point: destPoint},
		Created:         created,
		Password:        password,
		Rate:            rate,
		Ver:             ver,
		ProdCode:        prodCode,
		SerialNo:        serialNo,
		AuxNet:          auxNet,
		CapWord:         capWord,
		HiProductCode:   hiProductCode,
		MinorProductRev: minorProductRev,
		Messages:        messages,
	}, nil
}

// ToFTNAddr converts a raw packet address into an ftnaddr.Address.
func (a Address) ToFTNAddr() ftnaddr.Address {
	return ftnaddr.New4D(a.Zone, a.Net, a.Node, a.Point)
}

func readU16LE(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readU16BE(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readU32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// readExclZero reads up to and including the next NUL byte, returning the
// bytes before it. If the stream ends before a NUL is found, it returns
// whatever was read with no error.
func readExclZero(r *bufio.Reader) ([]byte, error) {
	data, err := r.ReadBytes(0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(data) > 0 && data[len(data)-1] == 0 {
		return data[:len(data)-1], nil
	}
	return data, nil
}
