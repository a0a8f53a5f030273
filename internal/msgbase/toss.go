package msgbase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flatline-bbs/corona/internal/ftnaddr"
	"github.com/flatline-bbs/corona/internal/message"
	"gorm.io/gorm"
)

// DupeError reports that a message was not tossed because its
// (msgid_serial, posted) pair already exists in the base.
type DupeError struct {
	ExistingID int64
}

func (e *DupeError) Error() string {
	return fmt.Sprintf("duplicate of existing message #%d", e.ExistingID)
}

// Toss inserts msg into the base, deduplicating against every lookup table
// along the way. It returns the new message's row id, or a *DupeError if an
// identical (msgid_serial, posted) pair is already present.
func (b *Base) Toss(msg *message.Message) (int64, error) {
	var newID int64

	err := b.db.Transaction(func(tx *gorm.DB) error {
		var existing messageRow
		err := tx.Where(
			"msgid_serial = ? and posted = replace(?, 'T', ' ')",
			msg.MsgIDSerial, formatPosted(msg),
		).Take(&existing).Error
		if err == nil {
			return &DupeError{ExistingID: existing.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		subjID, err := getSubjID(tx, msg.Subj)
		if err != nil {
			return err
		}

		fromID, err := getUserID(tx, msg.From)
		if err != nil {
			return err
		}

		toID, err := resolveToID(tx, msg)
		if err != nil {
			return err
		}

		seenByID, err := getSeenByID(tx, msg.Kludges.SeenBy)
		if err != nil {
			return err
		}
		pathID, err := getPathID(tx, msg.Kludges.Path)
		if err != nil {
			return err
		}

		var pidID, tidID int64
		if msg.Kludges.HasPID {
			if pidID, err = getSoftwareID(tx, msg.Kludges.PID); err != nil {
				return err
			}
		}
		if msg.Kludges.HasTID {
			if tidID, err = getSoftwareID(tx, msg.Kludges.TID); err != nil {
				return err
			}
		}

		tearLineID, err := getTearLineID(tx, msg.TearLine)
		if err != nil {
			return err
		}
		originID, err := getOriginID(tx, msg.Origin)
		if err != nil {
			return err
		}

		res := tx.Exec(`
			insert into messages (
				posted, tzutc, msgid_serial, reply_serial, msgid_address,
				reply_address, from_id, to_id, flags, subject_id, body,
				tear_line_id, origin_id, pid_id, tid_id, seen_by_id, path_id
			) values (
				replace(?, 'T', ' '),
				nullif(trim(?), ''),
				?,
				nullif(?, 0),
				nullif(trim(?), ''),
				nullif(trim(?), ''),
				?, ?, ?,
				nullif(?, 0),
				?,
				nullif(?, 0),
				nullif(?, 0),
				nullif(?, 0),
				nullif(?, 0),
				nullif(?, 0),
				nullif(?, 0)
			)`,
			formatPosted(msg),
			msg.Kludges.TZUTC,
			msg.MsgIDSerial,
			msg.ReplySerial,
			msg.MsgIDAddr,
			msg.ReplyAddr,
			fromID, toID, msg.Flags,
			subjID,
			msg.Body,
			tearLineID,
			originID,
			pidID,
			tidID,
			seenByID,
			pathID,
		)
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Raw("select last_insert_rowid()").Row().Scan(&newID); err != nil {
			return err
		}

		for _, kl := range msg.Kludges.Custom {
			if err := tx.Exec("insert into kludges (message_id, kludge) values (?, ?)", newID, kl).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		var dupe *DupeError
		if errors.As(err, &dupe) {
			return -1, dupe
		}
		return 0, err
	}

	return newID, nil
}

func formatPosted(msg *message.Message) string {
	return msg.Posted.Format("2006-01-02T15:04:05")
}

func getUserID(tx *gorm.DB, u message.User) (int64, error) {
	var ext string
	if u.HasExt {
		ext = u.ExtAddr
	}

	sel := `
		select id from users where
			coalesce(name, '') = coalesce(nullif(trim(?), ''), '<empty>')
			and coalesce(zone, 0) = ?
			and coalesce(net, 0) = ?
			and coalesce(node, 0) = ?
			and coalesce(point, 0) = ?
			and coalesce(domain, '') = trim(?)
			and coalesce(foreign_address, '') = trim(?)
	`
	ins := `
		insert into users (name, zone, net, node, point, domain, foreign_address)
		values (
			coalesce(nullif(trim(?), ''), '<empty>'),
			nullif(?, 0), nullif(?, 0), nullif(?, 0), nullif(?, 0),
			nullif(trim(?), ''), nullif(trim(?), '')
		)
	`
	args := []interface{}{u.Name, u.Addr.Zone, u.Addr.Net, u.Addr.Node, u.Addr.Point, u.Addr.Domain, ext}
	return selectOrInsertScalar(tx, sel, args, ins, args)
}

// resolveToID implements the special reply-address resolution: when the
// message carries a reply serial, the real recipient is whoever authored
// the message it replies to, identified by matching msgid_serial and a
// trimmed name match. Falls back to the ordinary to-user lookup.
func resolveToID(tx *gorm.DB, msg *message.Message) (int64, error) {
	if msg.HasReply {
		var row messageRow
		err := tx.Model(&messageRow{}).
			Select("messages.*").
			Joins("join users on users.id = messages.from_id").
			Where("messages.msgid_serial = ? and users.name = trim(?)", msg.ReplySerial, msg.To.Name).
			Take(&row).Error
		if err == nil && row.FromID > 0 {
			return row.FromID, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	return getUserID(tx, msg.To)
}

func getSoftwareID(tx *gorm.DB, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil
	}
	return selectOrInsertScalar(tx,
		"select id from software where name = trim(?)", []interface{}{name},
		"insert into software (name) values (trim(?))", []interface{}{name},
	)
}

func getSubjID(tx *gorm.DB, subj string) (int64, error) {
	if strings.TrimSpace(subj) == "" {
		return 0, nil
	}
	return selectOrInsertScalar(tx,
		"select id from subjects where subject = trim(?)", []interface{}{subj},
		"insert into subjects (subject) values (trim(?))", []interface{}{subj},
	)
}

func getTearLineID(tx *gorm.DB, tl string) (int64, error) {
	if strings.TrimSpace(tl) == "" {
		return 0, nil
	}
	return selectOrInsertScalar(tx,
		"select id from tear_lines where tear_line = trim(?)", []interface{}{tl},
		"insert into tear_lines (tear_line) values (trim(?))", []interface{}{tl},
	)
}

func getOriginID(tx *gorm.DB, origin string) (int64, error) {
	if strings.TrimSpace(origin) == "" {
		return 0, nil
	}
	return selectOrInsertScalar(tx,
		"select id from origins where origin = trim(?)", []interface{}{origin},
		"insert into origins (origin) values (trim(?))", []interface{}{origin},
	)
}

// pairsToJSONArray renders [[net,node],...], sorted by (net,node) first when
// sortPairs is set. getSeenByID and getPathID both pass false; getSeenByID
// sorts the set inside its SQL instead.
func pairsToJSONArray(pairs []ftnaddr.NetNodePair, sortPairs bool) string {
	cp := make([]ftnaddr.NetNodePair, len(pairs))
	copy(cp, pairs)
	if sortPairs {
		for i := 1; i < len(cp); i++ {
			for j := i; j > 0 && less(cp[j], cp[j-1]); j-- {
				cp[j], cp[j-1] = cp[j-1], cp[j]
			}
		}
	}

	var b strings.Builder
	b.WriteByte('[')
	for i, p := range cp {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "[%d,%d]", p.Net, p.Node)
	}
	b.WriteByte(']')
	return b.String()
}

func less(a, b ftnaddr.NetNodePair) bool {
	if a.Net != b.Net {
		return a.Net < b.Net
	}
	return a.Node < b.Node
}

// getSeenByID deduplicates a SEEN-BY set: two sets are equal regardless of
// the order their entries appeared in the original message, since SEEN-BY
// lines only ever record a set of systems that have relayed the message.
func getSeenByID(tx *gorm.DB, pairs []ftnaddr.NetNodePair) (int64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	arr := pairsToJSONArray(pairs, false)

	sel := `
		select v.id
		from (
			select s.id, json_group_array(json_array(s.net, s.node)) as arr
			from (select id, net, node from seen_bys order by id, net, node) s
			group by s.id
		) v
		where v.arr = (
			select json_group_array(json_array(net, node))
			from (
				select json_extract(v.value, '$[0]') as net, json_extract(v.value, '$[1]') as node
				from json_each(json(?)) v
				order by net, node
			) a
		)
	`
	ins := `
		insert into seen_bys (id, net, node)
		select v.id, v.net, v.node
		from (
			select
				(select coalesce(max(s.id), 0) + 1 from seen_bys s) as id,
				json_extract(v.value, '$[0]') as net,
				json_extract(v.value, '$[1]') as node
			from json_each(?) v
		) v
		order by v.net, v.node
	`
	get := "select max(id) from seen_bys"

	return selectOrInsertGrouped(tx, sel, []interface{}{arr}, ins, []interface{}{arr}, get)
}

// getPathID deduplicates a PATH sequence: order matters here, since PATH
// records the actual relay sequence a message traveled.
func getPathID(tx *gorm.DB, pairs []ftnaddr.NetNodePair) (int64, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	arr := pairsToJSONArray(pairs, false)

	sel := `
		select v.id
		from (
			select p.id, json_group_array(json_array(p.net, p.node)) as arr
			from (select id, net, node from paths order by id, position) p
			group by p.id
		) v
		where v.arr = json(?)
	`
	ins := `
		insert into paths (id, position, net, node)
		select v.id, row_number() over (), v.net, v.node
		from (
			select
				(select coalesce(max(p.id), 0) + 1 from paths p) as id,
				json_extract(v.value, '$[0]') as net,
				json_extract(v.value, '$[1]') as node
			from json_each(?) v
		) v
	`
	get := "select max(id) from paths"

	return selectOrInsertGrouped(tx, sel, []interface{}{arr}, ins, []interface{}{arr}, get)
}
