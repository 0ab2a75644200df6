package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/patch-atlas/pkg/models/store"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func TestHistoryStore_AddAndList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	started := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)
	rec := store.RunRecord{
		Server:            "wsus01",
		KBNumber:          123456,
		Architecture:      "x64",
		Format:            "CSV",
		UpdatesMatched:    2,
		ComputersReported: 14,
		InstalledCount:    12,
		FailedCount:       1,
		StartedAt:         started,
		CompletedAt:       started.Add(45 * time.Second),
	}

	require.NoError(t, f.store.Add(ctx, rec))

	got, err := f.store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "wsus01", got[0].Server)
	assert.Equal(t, 123456, got[0].KBNumber)
	assert.Equal(t, "x64", got[0].Architecture)
	assert.Equal(t, 14, got[0].ComputersReported)
	assert.True(t, got[0].StartedAt.Equal(started))
	assert.NotZero(t, got[0].ID)
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	for i, server := range []string{"old", "mid", "new"} {
		require.NoError(t, f.store.Add(ctx, store.RunRecord{
			Server:      server,
			KBNumber:    1,
			Format:      "CSV",
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := f.store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Server)
	assert.Equal(t, "mid", got[1].Server)
}

func TestHistoryStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}

func TestHistoryStore_ListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, server, kb_number").
		WillReturnError(sql.ErrConnDone)

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = s.List(context.Background(), 5)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
