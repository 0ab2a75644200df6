package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const RunHistorySchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		server TEXT NOT NULL,
		kb_number INTEGER NOT NULL,
		architecture TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL,
		updates_matched INTEGER NOT NULL,
		computers_reported INTEGER NOT NULL,
		installed_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
`

var bootQueries = []string{
	RunHistorySchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	db, err := sql.Open("sqlite", settings.DbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", settings.DbPath, err)
	}

	// One connection keeps writes serialized and makes :memory: databases
	// behave under database/sql pooling.
	db.SetMaxOpenConns(1)

	for _, query := range bootQueries {
		if _, err := db.Exec(query); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}
