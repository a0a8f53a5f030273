package message

import "strings"

type tokenKind int

const (
	tkArea tokenKind = iota
	tkMsgID
	tkReply
	tkPid
	tkTid
	tkTzUtc
	tkTearLine
	tkOrigin
	tkSeenBy
	tkPath
	tkKludge
	tkParagraph
)

// token pairs a classified kind with its raw (unstripped) text; skip is the
// keyword-prefix length to drop when the token's payload is extracted,
// mirroring the usize carried by TearLine/Origin/SeenBy in the reference.
type token struct {
	kind tokenKind
	skip int
	text string
}

const (
	soh = "\x01"

	kwMsgID = "MSGID: "
	kwReply = "REPLY: "
	kwPid   = "PID: "
	kwTid   = "TID: "
	kwTZUtc = "TZUTC: "
	kwPath  = "PATH: "

	kwReplyAddr   = "REPLYADDR: "
	kwReplyAddrV2 = "REPLYADDR "
	kwReplyTo     = "REPLYTO: "
	kwReplyToV2   = "REPLYTO "

	kwIntl = "INTL "
	kwFmpt = "FMPT "
	kwTopt = "TOPT "

	kwArea       = "AREA:"
	kwTearLine   = "--- "
	kwTearLineV2 = "---"
	kwOrigin     = " * Origin: "
	kwSeenBy     = "SEEN-BY: "
)

func isEmptyParagraph(t token) bool {
	return t.kind == tkParagraph && t.text == ""
}

// tokenize splits a message body into classified tokens: a forward pass
// splits on newline then on SOH, classifying each piece; a reverse pass
// demotes earlier Origin/TearLine/SeenBy tokens superseded by a later one.
func tokenize(text string) []token {
	var tokens []token

	for _, par := range strings.Split(text, "\n") {
		leading := classifyParagraph(par)

		subs := strings.Split(par, soh)
		for pos, sub := range subs {
			if pos == 0 {
				tokens = append(tokens, token{kind: leading.kind, skip: leading.skip, text: sub})
				continue
			}

			if len(tokens) > 0 && isEmptyParagraph(tokens[len(tokens)-1]) {
				tokens = tokens[:len(tokens)-1]
			}

			kind, skip := classifyKludge(sub)
			tokens = append(tokens, token{kind: kind, skip: 0, text: sub[skip:]})
		}
	}

	if len(tokens) > 0 && isEmptyParagraph(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}

	demoteSuperseded(tokens)
	classifyArea(tokens)

	return tokens
}

func classifyParagraph(par string) token {
	switch {
	case strings.HasPrefix(par, kwTearLine):
		return token{kind: tkTearLine, skip: len(kwTearLine)}
	case par == kwTearLineV2:
		return token{kind: tkTearLine, skip: len(kwTearLineV2)}
	case strings.HasPrefix(par, kwOrigin):
		return token{kind: tkOrigin, skip: len(kwOrigin)}
	case strings.HasPrefix(par, kwSeenBy):
		return token{kind: tkSeenBy, skip: len(kwSeenBy)}
	default:
		return token{kind: tkParagraph}
	}
}

func classifyKludge(sub string) (tokenKind, int) {
	switch {
	case strings.HasPrefix(sub, kwMsgID):
		return tkMsgID, len(kwMsgID)
	case strings.HasPrefix(sub, kwReply):
		return tkReply, len(kwReply)
	case strings.HasPrefix(sub, kwPid):
		return tkPid, len(kwPid)
	case strings.HasPrefix(sub, kwTid):
		return tkTid, len(kwTid)
	case strings.HasPrefix(sub, kwTZUtc):
		return tkTzUtc, len(kwTZUtc)
	case strings.HasPrefix(sub, kwPath):
		return tkPath, len(kwPath)
	default:
		return tkKludge, 0
	}
}

// demoteSuperseded walks tokens in reverse: the last Origin wins (earlier
// ones are demoted to body text), the last TearLine wins (earlier ones are
// demoted), and any SeenBy before the chosen Origin (i.e. after it when
// read forward) is demoted.
func demoteSuperseded(tokens []token) {
	hasTearLine := false
	hasOrigin := false

	for i := len(tokens) - 1; i >= 0; i-- {
		switch tokens[i].kind {
		case tkTearLine:
			if hasTearLine {
				tokens[i].kind = tkParagraph
			} else {
				hasTearLine = true
			}
		case tkOrigin:
			if hasOrigin {
				tokens[i].kind = tkParagraph
			} else {
				hasOrigin = true
			}
		case tkSeenBy:
			if hasOrigin {
				tokens[i].kind = tkParagraph
			}
		}
	}
}

// classifyArea reclassifies the first non-empty Paragraph token as Area
// when it carries the echomail AREA: marker.
func classifyArea(tokens []token) {
	for i := range tokens {
		if tokens[i].kind == tkParagraph && tokens[i].text != "" {
			if strings.HasPrefix(tokens[i].text, kwArea) {
				tokens[i].kind = tkArea
				tokens[i].text = tokens[i].text[len(kwArea):]
			}
			return
		}
	}
}
