package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.OpenMigrated(store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var (
	_ stats.Repository = (*store.MemoryKV)(nil)
	_ stats.Repository = (*store.SQLiteKV)(nil)
)

func TestKV(t *testing.T) {
	impls := map[string]func(t *testing.T) stats.Repository{
		"memory": func(t *testing.T) stats.Repository { return store.NewMemoryKV() },
		"sqlite": func(t *testing.T) stats.Repository { return store.NewSQLiteKV(newTestDB(t)) },
	}

	for name, newKV := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := newKV(t)

			_, ok, err := kv.Get(ctx, "p1", "gameStats")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, kv.Put(ctx, "p1", "gameStats", []byte(`{"totalWins":1}`)))
			require.NoError(t, kv.Put(ctx, "p2", "gameStats", []byte(`{"totalWins":2}`)))

			v, ok, err := kv.Get(ctx, "p1", "gameStats")
			require.NoError(t, err)
			require.True(t, ok)
			require.JSONEq(t, `{"totalWins":1}`, string(v))

			// last writer wins
			require.NoError(t, kv.Put(ctx, "p1", "gameStats", []byte(`{"totalWins":3}`)))
			v, _, err = kv.Get(ctx, "p1", "gameStats")
			require.NoError(t, err)
			require.JSONEq(t, `{"totalWins":3}`, string(v))

			require.NoError(t, kv.Delete(ctx, "p1", "gameStats"))
			require.NoError(t, kv.Delete(ctx, "p1", "gameStats"))
			_, ok, err = kv.Get(ctx, "p1", "gameStats")
			require.NoError(t, err)
			require.False(t, ok)

			_, ok, err = kv.Get(ctx, "p2", "gameStats")
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	in := []byte("abc")
	require.NoError(t, kv.Put(ctx, "p", "k", in))
	in[0] = 'x'

	out, _, err := kv.Get(ctx, "p", "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(out))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, store.Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	require.Equal(t, 3, n)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := store.NewSessions(time.Hour)
	defer s.Close()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	sess := game.New("cat", "pet")
	require.NoError(t, s.Save(ctx, &store.Round{Owner: "p1", Mode: store.ModeClassic, Session: sess}))
	require.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "p1", got.Owner)
	require.Same(t, sess, got.Session)

	s.Delete(ctx, sess.ID)
	_, err = s.Get(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.Error(t, s.Save(ctx, &store.Round{Owner: "p1"}))
}

func TestSessionsExpire(t *testing.T) {
	ctx := context.Background()
	s := store.NewSessions(20 * time.Millisecond)
	defer s.Close()

	sess := game.New("cat", "pet")
	require.NoError(t, s.Save(ctx, &store.Round{Owner: "p1", Session: sess}))
	time.Sleep(60 * time.Millisecond)

	_, err := s.Get(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRounds(t *testing.T) {
	ctx := context.Background()
	rounds := store.NewRounds(newTestDB(t))

	first := game.New("cat", "pet")
	first.Lang = "en"
	require.NoError(t, rounds.Start(ctx, "p1", first))

	second := game.New("dog", "barks")
	second.Lang = "en"
	second.StartedAt = first.StartedAt.Add(time.Minute)
	require.NoError(t, rounds.Start(ctx, "p1", second))

	for _, l := range []string{"c", "a", "t"} {
		_, err := first.Guess(l)
		require.NoError(t, err)
	}
	require.NoError(t, rounds.Finish(ctx, "p1", first, 160))

	rows, err := rounds.Recent(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, second.ID, rows[0].ID)
	require.Equal(t, "in_progress", rows[0].Status)
	require.Empty(t, rows[0].Word)

	require.Equal(t, first.ID, rows[1].ID)
	require.Equal(t, "won", rows[1].Status)
	require.Equal(t, "cat", rows[1].Word)
	require.Equal(t, 160, rows[1].Points)
	require.NotEmpty(t, rows[1].FinishedAt)

	require.NoError(t, rounds.Claim(ctx, "p1", "u1"))
	rows, err = rounds.Recent(ctx, "p1", 10)
	require.NoError(t, err)
	require.Empty(t, rows)
	rows, err = rounds.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestRoundProgress(t *testing.T) {
	ctx := context.Background()
	rounds := store.NewRounds(newTestDB(t))

	_, err := rounds.LoadProgress(ctx, "p1", "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	s := game.New("cat", "pet")
	s.Lang = "en"
	require.NoError(t, rounds.Start(ctx, "p1", s))

	p, err := rounds.LoadProgress(ctx, "p1", s.ID)
	require.NoError(t, err)
	require.Equal(t, game.StatusInProgress, p.Status)
	require.Empty(t, p.Guessed)
	require.True(t, s.StartedAt.Truncate(time.Second).Equal(p.StartedAt))

	for _, l := range []string{"x", "c"} {
		_, err := s.Guess(l)
		require.NoError(t, err)
	}
	s.HintsRemaining--
	require.NoError(t, rounds.SaveProgress(ctx, "p1", s))

	p, err = rounds.LoadProgress(ctx, "p1", s.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "c"}, p.Guessed)
	require.Equal(t, 1, p.HintsUsed)

	// another owner sees nothing
	_, err = rounds.LoadProgress(ctx, "p2", s.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	for _, l := range []string{"a", "t"} {
		_, err := s.Guess(l)
		require.NoError(t, err)
	}
	require.NoError(t, rounds.Finish(ctx, "p1", s, 150))
	// a finished round no longer takes progress
	require.NoError(t, rounds.SaveProgress(ctx, "p1", &game.Session{ID: s.ID}))

	p, err = rounds.LoadProgress(ctx, "p1", s.ID)
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, p.Status)
	require.Equal(t, []string{"x", "c", "a", "t"}, p.Guessed)
}
