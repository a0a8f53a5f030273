// Package toss implements the inbound-directory scanner and dispatcher:
// it finds packets and bundles dropped by the mailer, tosses every message
// they carry into the right per-area message base, and disposes of the
// inbound file on success or quarantines it on failure.
package toss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flatline-bbs/corona/internal/message"
	"github.com/flatline-bbs/corona/internal/msgbase"
	"github.com/flatline-bbs/corona/internal/pkt"
	"go.uber.org/zap"
)

// Run scans inboundDir for packets and bundles, tossing every message they
// contain into msgbaseDir/<area>. Message bases opened along the way are
// cached for the duration of the run and closed before returning. ctx is
// checked between files so a SIGINT/SIGTERM stops the run without leaving
// an open message base behind; a file already in flight still finishes
// (its transaction commits atomically either way).
func Run(ctx context.Context, inboundDir, msgbaseDir string, log *zap.Logger) error {
	files, err := scanInbound(inboundDir)
	if err != nil {
		return fmt.Errorf("toss: scan inbound: %w", err)
	}

	bases := map[string]*msgbase.Base{}
	defer func() {
		for path, b := range bases {
			if err := b.Close(); err != nil {
				log.Warn("closing message base", zap.String("path", path), zap.Error(err))
			}
		}
	}()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			log.Info("shutdown requested, stopping toss run")
			return nil
		}

		log.Info("tossing", zap.String("path", f.path))

		var tossErr error
		switch f.kind {
		case kindPackage:
			tossErr = tossPackageFile(f.path, msgbaseDir, bases, log)
		case kindBundle:
			tossErr = tossBundleFile(f.path, msgbaseDir, bases, log)
		}

		if tossErr != nil {
			if err := badMail(f.path, tossErr, log); err != nil {
				return fmt.Errorf("toss: quarantine %s: %w", f.path, err)
			}
			continue
		}

		if err := os.Remove(f.path); err != nil {
			return fmt.Errorf("toss: remove %s: %w", f.path, err)
		}
	}

	for path, b := range bases {
		stats := b.Stats()
		log.Info("message base stats",
			zap.String("path", path),
			zap.Int64("open_connections", stats["open_connections"]),
			zap.Int64("in_use", stats["in_use"]),
			zap.Int64("idle", stats["idle"]),
		)
	}

	return nil
}

func tossPackageFile(path, msgbaseDir string, bases map[string]*msgbase.Base, log *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	p, err := pkt.Read(file)
	if err != nil {
		return err
	}

	msgs, err := message.FromPacket(p, warnFn(log, path))
	if err != nil {
		return err
	}

	return tossMessages(msgs, msgbaseDir, bases)
}

func tossBundleFile(path, msgbaseDir string, bases map[string]*msgbase.Base, log *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	packets, err := pkt.ReadBundle(file, info.Size())
	if err != nil {
		return err
	}

	for _, p := range packets {
		msgs, err := message.FromPacket(p, warnFn(log, path))
		if err != nil {
			return err
		}
		if err := tossMessages(msgs, msgbaseDir, bases); err != nil {
			return err
		}
	}

	return nil
}

func tossMessages(msgs []*message.Message, msgbaseDir string, bases map[string]*msgbase.Base) error {
	for _, msg := range msgs {
		var areaFile string
		if msg.Area.Netmail {
			areaFile = "netmail"
		} else {
			areaFile = strings.ToLower(msg.Area.Name)
		}

		dbPath := filepath.Join(msgbaseDir, areaFile)

		b, ok := bases[dbPath]
		if !ok {
			var err error
			b, err = msgbase.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open message base %s: %w", dbPath, err)
			}
			bases[dbPath] = b
		}

		if _, err := b.Toss(msg); err != nil {
			var dupe *msgbase.DupeError
			if isDupe(err, &dupe) {
				continue
			}
			return err
		}
	}

	return nil
}

func isDupe(err error, target **msgbase.DupeError) bool {
	d, ok := err.(*msgbase.DupeError)
	if !ok {
		return false
	}
	*target = d
	return true
}

func warnFn(log *zap.Logger, path string) func(string) {
	return func(msg string) {
		log.Warn(msg, zap.String("path", path))
	}
}

// badMail renames a failed inbound file to <name>.bad and logs why.
func badMail(path string, cause error, log *zap.Logger) error {
	log.Error("failed to toss, quarantining", zap.String("path", path), zap.Error(cause))
	return os.Rename(path, path+".bad")
}
