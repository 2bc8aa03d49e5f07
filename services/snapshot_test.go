package services

import (
	"context"
	"testing"
	"time"

	"pizzeria-telegram/config"
	"pizzeria-telegram/db"
	"pizzeria-telegram/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

const (
	pgUser     = "pizzeria"
	pgPassword = "pizzeria"
	pgDatabase = "pizzeria"
)

// setupPostgres starts a throwaway Postgres, points db.Pool at it and applies the
// embedded migrations. Everything is torn down when the test ends.
func setupPostgres(ctx context.Context, t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	require.NoError(t, db.Init(ctx, config.DBConfig{
		Host:     host,
		Port:     port.Int(),
		User:     pgUser,
		Password: pgPassword,
		Database: pgDatabase,
	}))
	t.Cleanup(db.Close)

	log := zaptest.NewLogger(t)
	require.NoError(t, migrations.Apply(ctx, db.Pool, log))
	require.NoError(t, migrations.Apply(ctx, db.Pool, log), "migrations are re-runnable")
}

func TestPGSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres snapshot test in short mode")
	}
	ctx := context.Background()
	setupPostgres(ctx, t)

	t.Run("round trip", func(t *testing.T) {
		const chatID int64 = -424242
		var snaps PGSnapshots

		got, err := snaps.Load(ctx, chatID)
		require.NoError(t, err)
		assert.Nil(t, got, "missing row is not an error")

		want := SessionSnapshot{Email: "a@b.c", Name: "a", Items: []SnapshotLine{{ID: 1, Qty: 2}}}
		require.NoError(t, snaps.Save(ctx, chatID, want))
		want.Items = append(want.Items, SnapshotLine{ID: 4, Qty: 1})
		require.NoError(t, snaps.Save(ctx, chatID, want))

		got, err = snaps.Load(ctx, chatID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)

		var rows int
		require.NoError(t, db.Pool.QueryRow(ctx,
			`SELECT count(*) FROM session_snapshots WHERE chat_id = $1`, chatID).Scan(&rows))
		assert.Equal(t, 1, rows, "second save upserts")

		require.NoError(t, snaps.Delete(ctx, chatID))
		got, err = snaps.Load(ctx, chatID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("store restores after restart", func(t *testing.T) {
		const chatID int64 = 777
		st := NewStore(manualOptions, PGSnapshots{}, zaptest.NewLogger(t))
		s := st.Get(chatID)
		require.NoError(t, s.Login("mario@example.com", "pw"))
		s.AddItem(mustItem(t, 3))
		s.AddItem(mustItem(t, 3))
		st.Close()

		restarted := NewStore(manualOptions, PGSnapshots{}, zaptest.NewLogger(t))
		defer restarted.Close()
		state := restarted.Get(chatID).State()
		require.NotNil(t, state.User)
		assert.Equal(t, "mario", state.User.Name)
		require.Len(t, state.Lines, 1)
		assert.Equal(t, 3, state.Lines[0].Item.ID)
		assert.Equal(t, 2, state.Lines[0].Quantity)

		restarted.Get(chatID).Logout()
		got, err := GetSessionSnapshot(ctx, chatID)
		require.NoError(t, err)
		assert.Nil(t, got, "logout deletes the snapshot")
	})
}
