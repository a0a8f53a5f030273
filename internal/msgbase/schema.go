package msgbase

import "gorm.io/gorm"

// prepareDatabase creates the schema if it does not already exist. Run once
// per Open, inside its own transaction; safe to call against an existing,
// already-populated base.
func prepareDatabase(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schemaStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var schemaStatements = []string{
	`create table if not exists users (
		id                  integer primary key autoincrement,
		name                text not null,
		zone                integer,
		net                 integer,
		node                integer,
		point               integer,
		domain              text,
		foreign_address     text
	)`,

	`create table if not exists subjects (
		id              integer primary key autoincrement,
		subject         text not null
	)`,

	`create table if not exists seen_bys (
		id              integer not null,
		net             integer not null,
		node            integer not null
	)`,

	`create index if not exists seen_by_index on seen_bys (id, net, node)`,

	`create table if not exists paths (
		id              integer not null,
		position        integer not null,
		net             integer not null,
		node            integer not null
	)`,

	`create unique index if not exists path_index on paths (id, position)`,

	`create table if not exists software (
		id              integer primary key autoincrement,
		name            text not null
	)`,

	`create table if not exists tear_lines (
		id              integer primary key autoincrement,
		tear_line       text not null
	)`,

	`create table if not exists origins (
		id              integer primary key autoincrement,
		origin          text not null
	)`,

	`create table if not exists messages (
		id              integer primary key autoincrement,
		posted          text not null,
		tzutc           text,
		tossed          text default (current_timestamp),
		msgid_serial    integer not null,
		reply_serial    integer,
		msgid_address   text,
		reply_address   text,
		from_id         integer not null references users (id),
		to_id           integer not null references users (id),
		flags           integer not null,
		subject_id      integer references subjects (id),
		body            text,
		tear_line_id    integer references tear_lines (id),
		origin_id       integer references origins (id),
		pid_id          integer references software (id),
		tid_id          integer references software (id),
		seen_by_id      integer,
		path_id         integer
	)`,

	`create unique index if not exists no_dupes on messages (msgid_serial, posted)`,
	`create index if not exists reply_serial_index on messages (reply_serial)`,
	`create index if not exists subject_id_index on messages (subject_id)`,
	`create index if not exists posted_index on messages (posted)`,

	`create table if not exists kludges (
		message_id      integer not null references messages (id),
		kludge          text not null
	)`,

	`create index if not exists kludge_index on kludges (message_id)`,
}
