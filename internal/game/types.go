// internal/game/types.go
//
// Core type definitions for the hangman game engine.
// Defines:
//   - Status: coarse state of a round (in_progress/won/lost).
//   - Session: state for a single in-progress or finished round.
//   - Wallet: the points account a hint is paid from.

package game

import (
	"context"
	"errors"
	"time"
)

const (
	MaxWrongGuesses = 6  // wrong guesses that end a round
	HintsPerRound   = 3  // hint allowance granted at the start of a round
	HintCost        = 50 // points charged per hint
)

// Status represents the state of a round. Won and Lost are terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Rejections. None of them change session state.
var (
	ErrRoundOver          = errors.New("round is over")
	ErrAlreadyGuessed     = errors.New("letter already guessed")
	ErrInvalidLetter      = errors.New("invalid letter")
	ErrNoHintsLeft        = errors.New("no hints left")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// Session holds the state of a single hangman round.
type Session struct {
	ID             string    // Unique round identifier (random hex string).
	Lang           string    // Language the word was drawn from.
	Word           string    // The target word (always lowercase).
	Hint           string    // Clue shown alongside the masked word.
	Guessed        []string  // Letters guessed so far, in order, each once.
	WrongGuesses   int       // Guesses that missed the word.
	MaxWrong       int       // Wrong guesses allowed before the round is lost.
	HintsRemaining int       // Hints still available this round.
	Status         Status    // in_progress, won or lost.
	StartedAt      time.Time // When the round started.
}

// Wallet is the points account hints are paid from.
type Wallet interface {
	// Points returns the current balance.
	Points() int
	// SpendHint deducts cost and records a used hint.
	SpendHint(ctx context.Context, cost int) error
}
