package msgbase

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// selectOrInsertScalar runs sel; if it finds a row, returns its id. If it
// finds none, runs ins and returns the row gorm just assigned via
// last_insert_rowid(). Mirrors the two-statement dedup used for every
// autoincrement lookup table (users, subjects, tear_lines, origins,
// software).
func selectOrInsertScalar(tx *gorm.DB, sel string, selArgs []interface{}, ins string, insArgs []interface{}) (int64, error) {
	var id int64
	err := tx.Raw(sel, selArgs...).Row().Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if err := tx.Exec(ins, insArgs...).Error; err != nil {
		return 0, err
	}

	var newID int64
	if err := tx.Raw("select last_insert_rowid()").Row().Scan(&newID); err != nil {
		return 0, err
	}
	return newID, nil
}

// selectOrInsertGrouped is the variant used for synthesized-group ids
// (seen_bys, paths): the id is not autoincrement, so on insert a fresh id is
// allocated as max(id)+1 by ins itself, and get recovers it afterward via
// select max(id).
func selectOrInsertGrouped(tx *gorm.DB, sel string, selArgs []interface{}, ins string, insArgs []interface{}, get string) (int64, error) {
	var id int64
	err := tx.Raw(sel, selArgs...).Row().Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if err := tx.Exec(ins, insArgs...).Error; err != nil {
		return 0, err
	}

	var newID int64
	if err := tx.Raw(get).Row().Scan(&newID); err != nil {
		return 0, err
	}
	return newID, nil
}
