package daily

import (
	"context"
	"database/sql"
)

type Result struct {
	PlayerID     string `json:"playerId"`
	Date         string `json:"date"`
	Lang         string `json:"lang"`
	WordIndex    int    `json:"wordIndex"`
	Won          bool   `json:"won"`
	WrongGuesses int    `json:"wrongGuesses"`
	ElapsedMs    int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date, lang string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=? AND lang=?",
		playerID, date, lang,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same player, date and
// language is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, date, lang, word_index, won, wrong_guesses, elapsed_ms)
		VALUES(?,?,?,?,?,?,?)`,
		r.PlayerID, r.Date, r.Lang, r.WordIndex, r.Won, r.WrongGuesses, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard line. Owner ids stay server side; accounts show
// their username and guests an empty name.
type LBRow struct {
	Rank         int    `json:"rank"`
	PlayerID     string `json:"-"`
	Name         string `json:"name,omitempty"`
	WrongGuesses int    `json:"wrongGuesses"`
	ElapsedMs    int    `json:"elapsedMs"`
}

// Leaderboard returns the winners of a date, fewest wrong guesses first,
// then fastest.
func (s *Store) Leaderboard(ctx context.Context, date, lang string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.player_id, COALESCE(u.username, ''), d.wrong_guesses, d.elapsed_ms
		FROM daily_results d
		LEFT JOIN users u ON d.player_id = 'user:' || u.id
		WHERE d.date=? AND d.lang=? AND d.won=1
		ORDER BY d.wrong_guesses ASC, d.elapsed_ms ASC, d.created_at ASC
		LIMIT ?`, date, lang, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.WrongGuesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		r.Rank = len(out) + 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim moves daily results of from to to, skipping dates to already played.
func (s *Store) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET player_id=? WHERE player_id=?`, to, from)
	return err
}
