package msgbase

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/flatline-bbs/corona/internal/ftnaddr"
	"github.com/flatline-bbs/corona/internal/message"
)

func openTestBase(t *testing.T) *Base {
	t.Helper()
	dir := t.TempDir()
	b, err := Open(filepath.Join(dir, "test.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func baseMsg() *message.Message {
	return &message.Message{
		Area:        message.NetmailArea,
		Posted:      time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC),
		From:        message.User{Name: "Alice", Addr: ftnaddr.New4D(2, 5020, 400, 0)},
		To:          message.User{Name: "Bob", Addr: ftnaddr.New4D(2, 5020, 400, 1)},
		Flags:       0,
		MsgIDSerial: 0x1,
		Subj:        "Test subject",
		Body:        "hello",
	}
}

func TestTossInsertsMessage(t *testing.T) {
	b := openTestBase(t)

	id, err := b.Toss(baseMsg())
	if err != nil {
		t.Fatalf("Toss: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive row id, got %d", id)
	}
}

func TestTossDuplicateRejected(t *testing.T) {
	b := openTestBase(t)

	msg := baseMsg()
	if _, err := b.Toss(msg); err != nil {
		t.Fatalf("first toss: %v", err)
	}

	_, err := b.Toss(msg)
	if err == nil {
		t.Fatal("expected duplicate error on second identical toss")
	}
	var dupe *DupeError
	if !errors.As(err, &dupe) {
		t.Fatalf("expected *DupeError, got %T: %v", err, err)
	}
}

func TestTossSeenBySetEqualityIgnoresOrder(t *testing.T) {
	b := openTestBase(t)

	m1 := baseMsg()
	m1.MsgIDSerial = 0x10
	m1.Kludges.SeenBy = []ftnaddr.NetNodePair{{Net: 1, Node: 1}, {Net: 2, Node: 2}}
	if _, err := b.Toss(m1); err != nil {
		t.Fatalf("toss 1: %v", err)
	}

	m2 := baseMsg()
	m2.MsgIDSerial = 0x11
	m2.Kludges.SeenBy = []ftnaddr.NetNodePair{{Net: 2, Node: 2}, {Net: 1, Node: 1}}
	if _, err := b.Toss(m2); err != nil {
		t.Fatalf("toss 2: %v", err)
	}

	var count int
	if err := b.db.Raw("select count(distinct id) from seen_bys").Row().Scan(&count); err != nil {
		t.Fatalf("count seen_bys: %v", err)
	}
	if count != 1 {
		t.Errorf("expected both messages to share one seen_by set, got %d distinct sets", count)
	}
}

func TestTossPathSequenceOrderMatters(t *testing.T) {
	b := openTestBase(t)

	m1 := baseMsg()
	m1.MsgIDSerial = 0x20
	m1.Kludges.Path = []ftnaddr.NetNodePair{{Net: 1, Node: 1}, {Net: 2, Node: 2}}
	if _, err := b.Toss(m1); err != nil {
		t.Fatalf("toss 1: %v", err)
	}

	m2 := baseMsg()
	m2.MsgIDSerial = 0x21
	m2.Kludges.Path = []ftnaddr.NetNodePair{{Net: 2, Node: 2}, {Net: 1, Node: 1}}
	if _, err := b.Toss(m2); err != nil {
		t.Fatalf("toss 2: %v", err)
	}

	var count int
	if err := b.db.Raw("select count(distinct id) from paths").Row().Scan(&count); err != nil {
		t.Fatalf("count paths: %v", err)
	}
	if count != 2 {
		t.Errorf("expected reversed path order to produce a distinct sequence, got %d distinct sequences", count)
	}
}

func TestTossReplyResolvesToOriginalAuthor(t *testing.T) {
	b := openTestBase(t)

	orig := baseMsg()
	orig.MsgIDSerial = 0x30
	orig.From = message.User{Name: "Alice", Addr: ftnaddr.New4D(2, 5020, 400, 0)}
	orig.To = message.User{Name: "Bob", Addr: ftnaddr.New4D(2, 5020, 400, 1)}
	if _, err := b.Toss(orig); err != nil {
		t.Fatalf("toss original: %v", err)
	}

	reply := baseMsg()
	reply.MsgIDSerial = 0x31
	reply.HasReply = true
	reply.ReplySerial = 0x30
	reply.From = message.User{Name: "Bob", Addr: ftnaddr.New4D(2, 5020, 400, 1)}
	reply.To = message.User{Name: "Alice", Addr: ftnaddr.Empty()}
	replyID, err := b.Toss(reply)
	if err != nil {
		t.Fatalf("toss reply: %v", err)
	}

	var toID, aliceID int64
	if err := b.db.Raw("select to_id from messages where id = ?", replyID).Row().Scan(&toID); err != nil {
		t.Fatalf("select to_id: %v", err)
	}
	if err := b.db.Raw("select id from users where name = 'Alice'").Row().Scan(&aliceID); err != nil {
		t.Fatalf("select alice id: %v", err)
	}
	if toID != aliceID {
		t.Errorf("reply to_id = %d, want Alice's user id %d", toID, aliceID)
	}
}
