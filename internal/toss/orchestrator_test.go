package toss

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func be16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func nulTerminated(s string) []byte {
	return append([]byte(s), 0)
}

// buildPacket assembles a minimal, valid FTS-0001 packet with one message.
func buildPacket(t *testing.T, fromName, toName, subj, body string) []byte {
	t.Helper()
	var b bytes.Buffer

	b.Write(le16(400))  // origNode
	b.Write(le16(401))  // destNode
	b.Write(le16(2026)) // year
	b.Write(le16(0))    // month (Jan, stored 0-based)
	b.Write(le16(5))    // day
	b.Write(le16(10))   // hour
	b.Write(le16(30))   // minute
	b.Write(le16(0))    // second
	b.Write(le16(0))    // rate
	b.Write(le16(2))    // ver
	b.Write(le16(5020)) // origNet
	b.Write(le16(5020)) // destNet
	b.WriteByte(0)      // prodCode
	b.WriteByte(0)      // serialNo
	b.Write(make([]byte, 8)) // password
	b.Write(le16(2))    // origZone
	b.Write(le16(2))    // destZone
	b.Write(le16(0))    // auxNet
	b.Write(be16(0))    // cap word copy
	b.WriteByte(0)      // hiProductCode
	b.WriteByte(0)      // minorProductRev
	b.Write(le16(0))    // capWord
	b.Write(le32(0))    // zone info
	b.Write(le16(0))    // origPoint
	b.Write(le16(0))    // destPoint
	b.Write(le32(0))    // product specific

	// one message record
	b.Write(le16(2)) // message marker
	b.Write(le16(401))  // fromNode
	b.Write(le16(400))  // toNode
	b.Write(le16(5020)) // fromNet
	b.Write(le16(5020)) // toNet
	b.Write(le16(0))    // flags
	b.Write(le16(0))    // cost
	b.Write(nulTerminated("05 Jan 26  10:30:00"))
	b.Write(nulTerminated(toName))
	b.Write(nulTerminated(fromName))
	b.Write(nulTerminated(subj))
	b.Write(nulTerminated(body))

	b.Write(le16(0)) // terminator

	return b.Bytes()
}

func TestRunTossesPacketIntoMessageBase(t *testing.T) {
	inbox := t.TempDir()
	mbaseDir := t.TempDir()

	data := buildPacket(t, "Alice", "Bob", "Hello", "Test message\r")
	if err := os.WriteFile(filepath.Join(inbox, "0001a2b3.pkt"), data, 0o644); err != nil {
		t.Fatalf("write packet: %v", err)
	}

	log := zap.NewNop()
	if err := Run(context.Background(), inbox, mbaseDir, log); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(inbox, "0001a2b3.pkt")); !os.IsNotExist(err) {
		t.Errorf("expected inbound packet to be consumed, stat err = %v", err)
	}

	if _, err := os.Stat(filepath.Join(mbaseDir, "netmail")); err != nil {
		t.Errorf("expected netmail message base to be created: %v", err)
	}
}

func TestRunQuarantinesUnreadablePacket(t *testing.T) {
	inbox := t.TempDir()
	mbaseDir := t.TempDir()

	junk := make([]byte, 128)
	if err := os.WriteFile(filepath.Join(inbox, "0001a2b3.pkt"), junk, 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	log := zap.NewNop()
	if err := Run(context.Background(), inbox, mbaseDir, log); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(inbox, "0001a2b3.pkt.bad")); err != nil {
		t.Errorf("expected quarantined .bad file: %v", err)
	}
}
