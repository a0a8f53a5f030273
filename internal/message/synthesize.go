package message

import (
	"strconv"
	"strings"

	"github.com/flatline-bbs/corona/internal/ftnaddr"
)

// reconcile walks the classified tokens, accumulating address candidates in
// priority order and assembling the message body, subject metadata and
// control lines. Sub-field parse failures are reported through warn and do
// not abort the message.
func reconcile(tokens []token, msg *Message, warn func(string)) {
	var nativeFrom, nativeTo, replyToFrom ftnaddr.Address
	var hasNativeFrom, hasNativeTo, hasReplyToFrom bool

	var body strings.Builder

	for _, t := range tokens {
		switch t.kind {
		case tkArea:
			msg.Area = EchomailArea(strings.TrimSpace(t.text))

		case tkMsgID:
			if id, err := ftnaddr.ParseMessageID(strings.TrimSpace(t.text)); err == nil {
				msg.MsgIDSerial = id.Serial
				if id.Native {
					nativeFrom = id.Addr
					hasNativeFrom = true
				} else {
					msg.MsgIDAddr = id.External
					msg.HasMsgAddr = true
				}
			} else {
				warn("MSGID parse fail: " + t.text)
			}

		case tkReply:
			if id, err := ftnaddr.ParseMessageID(strings.TrimSpace(t.text)); err == nil {
				msg.ReplySerial = id.Serial
				msg.HasReply = true
				if id.Native {
					nativeTo = id.Addr
					hasNativeTo = true
				} else {
					msg.ReplyAddr = id.External
					msg.HasReplAddr = true
				}
			} else {
				warn("REPLY parse fail: " + t.text)
			}

		case tkPid:
			msg.Kludges.PID = t.text
			msg.Kludges.HasPID = true

		case tkTid:
			msg.Kludges.TID = t.text
			msg.Kludges.HasTID = true

		case tkTzUtc:
			msg.Kludges.TZUTC = t.text
			msg.Kludges.HasTZUTC = true

		case tkTearLine:
			msg.TearLine += t.text[t.skip:]

		case tkOrigin:
			msg.Origin += t.text[t.skip:]

		case tkSeenBy:
			if pairs, err := ftnaddr.ParseNetNodePairs(strings.TrimSpace(t.text[t.skip:])); err == nil {
				msg.Kludges.SeenBy = append(msg.Kludges.SeenBy, pairs...)
			} else {
				warn("SEEN-BY parse fail: " + t.text)
			}

		case tkPath:
			if pairs, err := ftnaddr.ParseNetNodePairs(strings.TrimSpace(t.text)); err == nil {
				msg.Kludges.Path = append(msg.Kludges.Path, pairs...)
			} else {
				warn("PATH parse fail: " + t.text)
			}

		case tkKludge:
			if suffix, ok := stripPrefix(t.text, kwReplyAddr); ok {
				msg.From.ExtAddr = suffix
				msg.From.HasExt = true
			} else if suffix, ok := stripPrefix(t.text, kwReplyAddrV2); ok {
				msg.From.ExtAddr = suffix
				msg.From.HasExt = true
			} else {
				if suffix, ok := stripPrefix(t.text, kwReplyTo); ok {
					if a, _, err := parseReplyTo(strings.TrimSpace(suffix)); err == nil {
						replyToFrom = a
						hasReplyToFrom = true
					}
				} else if suffix, ok := stripPrefix(t.text, kwReplyToV2); ok {
					if a, _, err := parseReplyTo(strings.TrimSpace(suffix)); err == nil {
						replyToFrom = a
						hasReplyToFrom = true
					}
				}

				msg.Kludges.Custom = append(msg.Kludges.Custom, t.text)
			}

		case tkParagraph:
			body.WriteString(t.text)
			body.WriteByte('\n')
		}
	}

	msg.Body = strings.TrimSuffix(body.String(), "\n")

	// REPLYTO is a lower-priority fallback than a native MSGID address.
	if !hasNativeFrom && hasReplyToFrom {
		nativeFrom = replyToFrom
		hasNativeFrom = true
	}

	// last resort: parse the address from the last parenthesized group in
	// the origin line.
	if !hasNativeFrom && msg.Origin != "" {
		if a, ok := addrFromOrigin(msg.Origin); ok {
			nativeFrom = a
			hasNativeFrom = true
		}
	}

	if hasNativeFrom {
		msg.From.Addr = nativeFrom
	}

	if hasNativeTo {
		msg.To.Addr = nativeTo
	} else {
		msg.To.Addr = ftnaddr.Empty()
	}

	if !msg.HasReply && strings.ToLower(msg.To.Name) == "all" {
		msg.To.Addr = ftnaddr.Empty()
		msg.To.HasExt = false
		msg.To.ExtAddr = ""
	}

	if !msg.Area.Netmail {
		return
	}

	for _, s := range msg.Kludges.Custom {
		if len(s) <= 5 {
			continue
		}

		switch s[:5] {
		case kwIntl:
			parts := strings.Fields(strings.TrimSpace(s[len(kwIntl):]))
			if len(parts) < 2 {
				warn("INTL parse fail: " + s)
				continue
			}
			dest, errDest := ftnaddr.Parse(parts[0])
			orig, errOrig := ftnaddr.Parse(parts[1])
			if errDest != nil || errOrig != nil {
				warn("INTL parse fail: " + s)
				continue
			}
			msg.To.Addr.Zone = dest.Zone
			msg.To.Addr.Net = dest.Net
			msg.To.Addr.Node = dest.Node
			msg.From.Addr.Zone = orig.Zone
			msg.From.Addr.Net = orig.Net
			msg.From.Addr.Node = orig.Node

		case kwFmpt:
			if v, err := strconv.ParseUint(strings.TrimSpace(s[len(kwFmpt):]), 10, 16); err == nil {
				msg.From.Addr.Point = uint16(v)
			} else {
				warn("FMPT parse fail: " + s)
			}

		case kwTopt:
			if v, err := strconv.ParseUint(strings.TrimSpace(s[len(kwTopt):]), 10, 16); err == nil {
				msg.To.Addr.Point = uint16(v)
			} else {
				warn("TOPT parse fail: " + s)
			}
		}
	}
}

func stripPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

// parseReplyTo parses "address [display name]", splitting on the last space.
func parseReplyTo(s string) (ftnaddr.Address, string, error) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		a, err := ftnaddr.Parse(s)
		return a, "", err
	}
	a, err := ftnaddr.Parse(s[:i])
	if err != nil {
		return ftnaddr.Address{}, "", err
	}
	return a, s[i+1:], nil
}

// addrFromOrigin extracts the address from the last parenthesized group in
// an origin line, e.g. "... (2:50/128.0)".
func addrFromOrigin(origin string) (ftnaddr.Address, bool) {
	end := strings.LastIndexByte(origin, ')')
	if end < 0 {
		return ftnaddr.Address{}, false
	}
	start := strings.LastIndexByte(origin[:end], '(')
	if start < 0 || start+3 >= end {
		return ftnaddr.Address{}, false
	}
	a, err := ftnaddr.Parse(origin[start+1 : end])
	if err != nil {
		return ftnaddr.Address{}, false
	}
	return a, true
}
