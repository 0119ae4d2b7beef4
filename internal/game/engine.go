// internal/game/engine.go
//
// Core game engine for a single hangman round.
// Responsibilities:
//   - Start rounds with fresh state (6 wrong guesses, 3 hints).
//   - Validate and apply letter guesses.
//   - Track state transitions: in_progress → won/lost.
//   - Charge hints against a Wallet.
//
// Notes:
//   - Words and letters are compared rune by rune so non-Latin alphabets work.
//   - A win is checked before a loss; a guess that completes the word is
//     always a win.

package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// New constructs a new round for word/hint.
func New(word, hint string) *Session {
	s := &Session{ID: randomID()}
	s.Start(word, hint)
	return s
}

// Start resets every field of the round to its initial value.
func (s *Session) Start(word, hint string) {
	s.Word = strings.ToLower(strings.TrimSpace(word))
	s.Hint = hint
	s.Guessed = []string{}
	s.WrongGuesses = 0
	s.MaxWrong = MaxWrongGuesses
	s.HintsRemaining = HintsPerRound
	s.Status = StatusInProgress
	s.StartedAt = time.Now().UTC()
}

// Guess applies a single letter to the round.
// Returns whether the letter occurs in the word. Rejected guesses
// (ErrRoundOver, ErrAlreadyGuessed, ErrInvalidLetter) leave the round untouched.
func (s *Session) Guess(letter string) (bool, error) {
	if s.Status != StatusInProgress {
		return false, ErrRoundOver
	}
	letter, ok := normalizeLetter(letter)
	if !ok {
		return false, ErrInvalidLetter
	}
	if s.HasGuessed(letter) {
		return false, ErrAlreadyGuessed
	}

	s.Guessed = append(s.Guessed, letter)
	correct := s.inWord(letter)
	if !correct {
		s.WrongGuesses++
	}

	if s.allRevealed() {
		s.Status = StatusWon
	} else if s.WrongGuesses >= s.MaxWrong {
		s.Status = StatusLost
	}
	return correct, nil
}

// UseHint charges HintCost to w and consumes one hint from the allowance.
// The hint does not reveal a letter.
func (s *Session) UseHint(ctx context.Context, w Wallet) error {
	if s.Status != StatusInProgress {
		return ErrRoundOver
	}
	if s.HintsRemaining <= 0 {
		return ErrNoHintsLeft
	}
	if w.Points() < HintCost {
		return ErrInsufficientPoints
	}
	if err := w.SpendHint(ctx, HintCost); err != nil {
		return err
	}
	s.HintsRemaining--
	return nil
}

// HasGuessed reports whether letter was already guessed.
func (s *Session) HasGuessed(letter string) bool {
	letter = strings.ToLower(letter)
	for _, g := range s.Guessed {
		if g == letter {
			return true
		}
	}
	return false
}

// Finished reports whether the round reached a terminal state.
func (s *Session) Finished() bool { return s.Status != StatusInProgress }

// Won reports whether the round was won.
func (s *Session) Won() bool { return s.Status == StatusWon }

// Remaining returns how many more wrong guesses the round tolerates.
func (s *Session) Remaining() int { return s.MaxWrong - s.WrongGuesses }

// Masked renders the word with unguessed letters as "_", space separated.
func (s *Session) Masked() string {
	parts := make([]string, 0, utf8.RuneCountInString(s.Word))
	for _, r := range s.Word {
		c := string(r)
		if s.HasGuessed(c) {
			parts = append(parts, c)
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

// CorrectLetters lists guessed letters found in the word, comma separated.
func (s *Session) CorrectLetters() string {
	return strings.Join(s.filterGuessed(true), ", ")
}

// WrongLetters lists guessed letters missing from the word, comma separated.
func (s *Session) WrongLetters() string {
	return strings.Join(s.filterGuessed(false), ", ")
}

func (s *Session) filterGuessed(inWord bool) []string {
	out := []string{}
	for _, g := range s.Guessed {
		if s.inWord(g) == inWord {
			out = append(out, g)
		}
	}
	return out
}

func (s *Session) inWord(letter string) bool {
	return strings.Contains(s.Word, letter)
}

// allRevealed reports whether every distinct letter of the word was guessed.
func (s *Session) allRevealed() bool {
	for _, r := range s.Word {
		if !s.HasGuessed(string(r)) {
			return false
		}
	}
	return true
}

// normalizeLetter lowercases a guess and checks it is a single letter.
func normalizeLetter(in string) (string, bool) {
	in = strings.TrimSpace(in)
	if utf8.RuneCountInString(in) != 1 {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(in)
	if !unicode.IsLetter(r) {
		return "", false
	}
	return string(unicode.ToLower(r)), true
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
