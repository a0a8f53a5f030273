// Package msgbase implements the per-area SQLite message base: one file per
// netmail or echomail conference, deduplicated inserts, and the redundant
// lookup tables (users, subjects, tear lines, origins, software, seen-by
// sets, path sequences) that keep a message row itself small.
package msgbase

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// Base is one opened message base file.
type Base struct {
	db   *gorm.DB
	path string
}

// Open opens (creating if necessary) the SQLite file at path, applies the
// schema and the PRAGMAs the base runs under.
func Open(path string) (*Base, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("msgbase: open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("msgbase: %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.Exec("PRAGMA page_size = 8192").Error; err != nil {
		return nil, fmt.Errorf("msgbase: %s: %w", path, err)
	}

	if err := prepareDatabase(db); err != nil {
		return nil, fmt.Errorf("msgbase: %s: prepare schema: %w", path, err)
	}

	for pragma, value := range map[string]string{
		"foreign_keys": "ON",
		"temp_store":   "MEMORY",
		"journal_mode": "WAL",
		"synchronous":  "NORMAL",
	} {
		if err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", pragma, value)).Error; err != nil {
			return nil, fmt.Errorf("msgbase: %s: pragma %s: %w", path, pragma, err)
		}
	}

	return &Base{db: db, path: path}, nil
}

// Close releases the underlying connection.
func (b *Base) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats reports connection pool counters, for diagnostics.
func (b *Base) Stats() map[string]int64 {
	sqlDB, err := b.db.DB()
	if err != nil {
		return map[string]int64{}
	}
	s := sqlDB.Stats()
	return map[string]int64{
		"open_connections": int64(s.OpenConnections),
		"in_use":           int64(s.InUse),
		"idle":             int64(s.Idle),
	}
}
