// Package message tokenizes the textual body of an FTN packet message,
// reconciles its originator/destination addresses from several redundant
// sources, and assembles a normalized Message.
package message

import (
	"time"

	"github.com/flatline-bbs/corona/internal/charset"
	"github.com/flatline-bbs/corona/internal/ftnaddr"
	"github.com/flatline-bbs/corona/internal/pkt"
)

// Area identifies which message base a message belongs to: netmail, or a
// named echomail conference.
type Area struct {
	Netmail bool
	Name    string // set only when !Netmail
}

// NetmailArea is the Area value for point-to-point mail.
var NetmailArea = Area{Netmail: true}

// EchomailArea builds the Area value for a named conference.
func EchomailArea(name string) Area {
	return Area{Name: name}
}

// User is the originator or recipient of a message.
type User struct {
	Addr    ftnaddr.Address
	Name    string
	ExtAddr string // optional foreign gateway address (e.g. email reply target)
	HasExt  bool
}

// ControlLines is the structured view of a message's kludge lines.
type ControlLines struct {
	PID      string
	HasPID   bool
	TID      string
	HasTID   bool
	TZUTC    string
	HasTZUTC bool
	SeenBy   []ftnaddr.NetNodePair
	Path     []ftnaddr.NetNodePair
	Custom   []string // unrecognized kludges, verbatim including keyword prefix
}

// Message is one fully parsed, normalized FTN message.
type Message struct {
	Area        Area
	Posted      time.Time
	From        User
	To          User
	Flags       uint16
	MsgIDSerial uint32
	ReplySerial uint32
	HasReply    bool
	MsgIDAddr   string
	HasMsgAddr  bool
	ReplyAddr   string
	HasReplAddr bool
	Subj        string
	Body        string
	TearLine    string
	Origin      string
	Kludges     ControlLines
}

// FromPacket decodes every raw message in p into normalized Messages.
// A decode failure (bad codepage byte, fatally malformed record) aborts
// the whole packet; sub-field parse problems inside one message's body
// are logged by the caller-supplied warn function and do not abort.
func FromPacket(p *pkt.Packet, warn func(string)) ([]*Message, error) {
	msgs := make([]*Message, 0, len(p.Messages))

	for _, raw := range p.Messages {
		m, err := fromRaw(p, raw, warn)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	return msgs, nil
}

func fromRaw(p *pkt.Packet, raw pkt.Message, warn func(string)) (*Message, error) {
	posted, err := ftnaddr.ParseFTNDateTime(string(raw.Posted))
	if err != nil {
		warn("failed to parse posted date \"" + string(raw.Posted) + "\", falling back to packet create date")
		posted = p.Created
	}

	fromName, err := charset.DecodeStrict(raw.From.Name)
	if err != nil {
		return nil, err
	}
	toName, err := charset.DecodeStrict(raw.To.Name)
	if err != nil {
		return nil, err
	}
	subj, err := charset.DecodeStrict(raw.Subj)
	if err != nil {
		return nil, err
	}
	text, err := charset.DecodeStrict(raw.Text)
	if err != nil {
		return nil, err
	}
	text = crToLF(text)

	msg := &Message{
		Area:   NetmailArea,
		Posted: posted,
		From: User{
			Addr: raw.From.Address.ToFTNAddr(),
			Name: fromName,
		},
		To: User{
			Addr: raw.To.Address.ToFTNAddr(),
			Name: toName,
		},
		Flags: raw.Flags,
		Subj:  subj,
	}

	tokens := tokenize(text)
	reconcile(tokens, msg, warn)

	return msg, nil
}

func crToLF(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' {
			out = append(out, '\n')
		} else {
			out = append(out, s[i])
		}
	}
	return string(out)
}
