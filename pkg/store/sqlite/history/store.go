package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/patch-atlas/pkg/models/store"
)

// Store records and lists finished report runs.
type Store interface {
	Add(ctx context.Context, run store.RunRecord) error
	List(ctx context.Context, limit int) ([]store.RunRecord, error)
}

type historyStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &historyStore{db: db}, nil
}

func (h *historyStore) Add(ctx context.Context, run store.RunRecord) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO report_runs (
			server, kb_number, architecture, format,
			updates_matched, computers_reported, installed_count, failed_count,
			started_at, completed_at, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Server,
		run.KBNumber,
		run.Architecture,
		run.Format,
		run.UpdatesMatched,
		run.ComputersReported,
		run.InstalledCount,
		run.FailedCount,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.CompletedAt.UTC().Format(time.RFC3339),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

func (h *historyStore) List(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, server, kb_number, architecture, format,
			updates_matched, computers_reported, installed_count, failed_count,
			started_at, completed_at, error
		FROM report_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []store.RunRecord
	for rows.Next() {
		var (
			rec                    store.RunRecord
			startedAt, completedAt string
		)
		err := rows.Scan(
			&rec.ID, &rec.Server, &rec.KBNumber, &rec.Architecture, &rec.Format,
			&rec.UpdatesMatched, &rec.ComputersReported, &rec.InstalledCount, &rec.FailedCount,
			&startedAt, &completedAt, &rec.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}

		if rec.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		if rec.CompletedAt, err = time.Parse(time.RFC3339, completedAt); err != nil {
			return nil, fmt.Errorf("parse completed_at %q: %w", completedAt, err)
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}
