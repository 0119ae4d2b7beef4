package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// RoundRow is one line of a player's round history.
type RoundRow struct {
	ID           string `json:"id"`
	Lang         string `json:"lang"`
	Word         string `json:"word,omitempty"` // only for finished rounds
	Status       string `json:"status"`
	WrongGuesses int    `json:"wrongGuesses"`
	HintsUsed    int    `json:"hintsUsed"`
	Points       int    `json:"points"`
	StartedAt    string `json:"startedAt"`
	FinishedAt   string `json:"finishedAt,omitempty"`
}

// Rounds records round history in the rounds table.
type Rounds struct{ db *sql.DB }

func NewRounds(db *sql.DB) *Rounds { return &Rounds{db: db} }

// Start inserts the history row for a new round.
func (r *Rounds) Start(ctx context.Context, owner string, s *game.Session) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO rounds (id, owner_id, lang, word, status, started_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, owner, s.Lang, s.Word, string(s.Status), s.StartedAt.Format(time.RFC3339),
	)
	return err
}

// Finish stores the final state of a round.
func (r *Rounds) Finish(ctx context.Context, owner string, s *game.Session, points int) error {
	guessed, err := json.Marshal(s.Guessed)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
        UPDATE rounds
        SET status=?, guessed=?, wrong_guesses=?, hints_used=?, points=?, finished_at=?
        WHERE id=? AND owner_id=?`,
		string(s.Status), string(guessed), s.WrongGuesses, game.HintsPerRound-s.HintsRemaining, points,
		time.Now().UTC().Format(time.RFC3339), s.ID, owner,
	)
	return err
}

// Progress is what the history row remembers of a round.
type Progress struct {
	Status    game.Status
	Guessed   []string
	HintsUsed int
	StartedAt time.Time
}

// SaveProgress records the letters and hints used so far in a running round.
func (r *Rounds) SaveProgress(ctx context.Context, owner string, s *game.Session) error {
	guessed, err := json.Marshal(s.Guessed)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
        UPDATE rounds
        SET guessed=?, wrong_guesses=?, hints_used=?
        WHERE id=? AND owner_id=? AND status='in_progress'`,
		string(guessed), s.WrongGuesses, game.HintsPerRound-s.HintsRemaining, s.ID, owner,
	)
	return err
}

// LoadProgress returns the recorded progress of round id, or ErrNotFound.
func (r *Rounds) LoadProgress(ctx context.Context, owner, id string) (Progress, error) {
	var (
		p       Progress
		status  string
		guessed string
		started string
	)
	err := r.db.QueryRowContext(ctx, `
        SELECT status, guessed, hints_used, started_at
        FROM rounds
        WHERE id=? AND owner_id=?`, id, owner,
	).Scan(&status, &guessed, &p.HintsUsed, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return Progress{}, ErrNotFound
	} else if err != nil {
		return Progress{}, err
	}
	p.Status = game.Status(status)
	if err := json.Unmarshal([]byte(guessed), &p.Guessed); err != nil {
		return Progress{}, fmt.Errorf("decode guessed letters of %s: %w", id, err)
	}
	if p.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return Progress{}, fmt.Errorf("decode start of %s: %w", id, err)
	}
	return p, nil
}

// Recent returns the newest rounds of owner, newest first.
func (r *Rounds) Recent(ctx context.Context, owner string, limit int) ([]RoundRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, lang, word, status, wrong_guesses, hints_used, points, started_at, COALESCE(finished_at, '')
        FROM rounds
        WHERE owner_id=?
        ORDER BY started_at DESC, rowid DESC
        LIMIT ?`, owner, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoundRow, 0, limit)
	for rows.Next() {
		var rr RoundRow
		if err := rows.Scan(&rr.ID, &rr.Lang, &rr.Word, &rr.Status, &rr.WrongGuesses,
			&rr.HintsUsed, &rr.Points, &rr.StartedAt, &rr.FinishedAt); err != nil {
			return nil, err
		}
		if rr.Status == string(game.StatusInProgress) {
			rr.Word = ""
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// Claim moves every round of from to to.
func (r *Rounds) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `UPDATE rounds SET owner_id=? WHERE owner_id=?`, to, from)
	return err
}
