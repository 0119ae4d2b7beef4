// internal/play/play.go
//
// Controller threads one player's round and ledger together.
// Responsibilities:
//   - Start rounds from a word source.
//   - Apply guesses and report the round outcome to the ledger exactly once,
//     on the transition to won or lost.
//   - Pay for hints from the ledger.
//   - Surface achievements unlocked by either.

package play

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/words"
)

// Source supplies words to guess.
type Source interface {
	Random(lang string) (words.Entry, error)
}

// Turn is the outcome of a guess or hint.
type Turn struct {
	Correct  bool                // the guessed letter is in the word
	Status   game.Status         // round status after the turn
	Points   int                 // points awarded by this turn (wins only)
	Unlocked []stats.Achievement // achievements unlocked by this turn
}

// Controller owns no state of its own beyond the ledger it was given.
type Controller struct {
	src    Source
	ledger *stats.Ledger
}

// New returns a controller for the player owning ledger.
func New(src Source, ledger *stats.Ledger) *Controller {
	return &Controller{src: src, ledger: ledger}
}

// Ledger returns the player's ledger.
func (c *Controller) Ledger() *stats.Ledger { return c.ledger }

// NewRound draws a word for lang and starts a round with it.
func (c *Controller) NewRound(lang string) (*game.Session, error) {
	e, err := c.src.Random(lang)
	if err != nil {
		return nil, err
	}
	return Begin(lang, e), nil
}

// Begin starts a round for a given entry.
func Begin(lang string, e words.Entry) *game.Session {
	s := game.New(e.Word, e.Hint)
	s.Lang = lang
	return s
}

// Guess applies letter to s. Rule rejections come back as the game package's
// sentinel errors with s unchanged. When the outcome of a finishing guess
// cannot be recorded, s is put back as it was so the guess can be retried.
func (c *Controller) Guess(ctx context.Context, s *game.Session, letter string) (Turn, error) {
	before := *s
	before.Guessed = append([]string(nil), s.Guessed...)

	correct, err := s.Guess(letter)
	if err != nil {
		return Turn{Status: s.Status}, err
	}
	t := Turn{Correct: correct, Status: s.Status, Unlocked: []stats.Achievement{}}

	switch s.Status {
	case game.StatusWon:
		t.Points, err = c.ledger.RecordWin(ctx, s.WrongGuesses)
	case game.StatusLost:
		err = c.ledger.RecordLoss(ctx)
	default:
		return t, nil
	}
	if err != nil {
		*s = before
		return Turn{Status: s.Status}, fmt.Errorf("record outcome: %w", err)
	}
	log.Debug().
		Str("gameId", s.ID).
		Str("player", c.ledger.Owner()).
		Str("status", string(s.Status)).
		Int("wrongGuesses", s.WrongGuesses).
		Int("points", t.Points).
		Msg("round finished")

	return c.unlock(ctx, t)
}

// Hint pays for one hint of s from the ledger.
func (c *Controller) Hint(ctx context.Context, s *game.Session) (Turn, error) {
	if err := s.UseHint(ctx, c.ledger); err != nil {
		return Turn{Status: s.Status}, err
	}
	return c.unlock(ctx, Turn{Status: s.Status, Unlocked: []stats.Achievement{}})
}

// unlock attaches newly unlocked achievements to t. The turn itself is
// already recorded, so a failed save only defers them to a later turn.
func (c *Controller) unlock(ctx context.Context, t Turn) (Turn, error) {
	fresh, err := c.ledger.CheckNewlyUnlocked(ctx)
	if err != nil {
		log.Warn().Err(err).Str("player", c.ledger.Owner()).Msg("check achievements")
		return t, nil
	}
	for _, a := range fresh {
		log.Info().Str("player", c.ledger.Owner()).Str("achievement", a.ID).Msg("achievement unlocked")
	}
	t.Unlocked = fresh
	return t, nil
}
