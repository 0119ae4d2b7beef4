package game_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/game"
)

type fakeWallet struct {
	points int
	spent  int
	err    error
}

func (w *fakeWallet) Points() int { return w.points }

func (w *fakeWallet) SpendHint(_ context.Context, cost int) error {
	if w.err != nil {
		return w.err
	}
	w.points -= cost
	w.spent++
	return nil
}

func TestNew(t *testing.T) {
	s := game.New("  CaT ", "pet")

	require.NotEmpty(t, s.ID)
	require.Equal(t, "cat", s.Word)
	require.Equal(t, "pet", s.Hint)
	require.Empty(t, s.Guessed)
	require.Equal(t, 0, s.WrongGuesses)
	require.Equal(t, game.MaxWrongGuesses, s.MaxWrong)
	require.Equal(t, game.HintsPerRound, s.HintsRemaining)
	require.Equal(t, game.StatusInProgress, s.Status)
	require.Equal(t, "_ _ _", s.Masked())
}

func TestStartResets(t *testing.T) {
	s := game.New("cat", "pet")
	_, err := s.Guess("x")
	require.NoError(t, err)
	s.HintsRemaining = 0

	s.Start("dog", "barks")

	require.Equal(t, "dog", s.Word)
	require.Empty(t, s.Guessed)
	require.Equal(t, 0, s.WrongGuesses)
	require.Equal(t, game.HintsPerRound, s.HintsRemaining)
	require.Equal(t, game.StatusInProgress, s.Status)
}

func TestGuessWinScenario(t *testing.T) {
	s := game.New("cat", "pet")

	steps := []struct {
		letter string
		masked string
		status game.Status
	}{
		{"a", "_ a _", game.StatusInProgress},
		{"c", "c a _", game.StatusInProgress},
		{"t", "c a t", game.StatusWon},
	}
	for _, step := range steps {
		correct, err := s.Guess(step.letter)
		require.NoError(t, err)
		require.True(t, correct)
		require.Equal(t, step.masked, s.Masked())
		require.Equal(t, step.status, s.Status)
	}
	require.Equal(t, "a, c, t", s.CorrectLetters())
	require.Equal(t, "", s.WrongLetters())
	require.True(t, s.Won())
}

func TestGuessLossScenario(t *testing.T) {
	s := game.New("cat", "pet")

	for i, l := range []string{"b", "d", "e", "f", "g", "h"} {
		correct, err := s.Guess(l)
		require.NoError(t, err)
		require.False(t, correct)
		require.Equal(t, i+1, s.WrongGuesses)
	}
	require.Equal(t, game.StatusLost, s.Status)
	require.Equal(t, 6, s.WrongGuesses)
	require.Equal(t, 0, s.Remaining())
	require.Equal(t, "b, d, e, f, g, h", s.WrongLetters())

	_, err := s.Guess("c")
	require.ErrorIs(t, err, game.ErrRoundOver)
	require.Equal(t, 6, s.WrongGuesses)
	require.Equal(t, game.StatusLost, s.Status)
}

func TestGuessRejections(t *testing.T) {
	t.Run("repeated letter is a no-op", func(t *testing.T) {
		s := game.New("cat", "pet")
		_, err := s.Guess("x")
		require.NoError(t, err)

		_, err = s.Guess("X")
		require.ErrorIs(t, err, game.ErrAlreadyGuessed)
		require.Equal(t, 1, s.WrongGuesses)
		require.Equal(t, []string{"x"}, s.Guessed)
		require.Equal(t, game.StatusInProgress, s.Status)
	})

	t.Run("invalid letters", func(t *testing.T) {
		s := game.New("cat", "pet")
		for _, in := range []string{"", "ab", "1", "!", " "} {
			_, err := s.Guess(in)
			require.ErrorIs(t, err, game.ErrInvalidLetter, "input %q", in)
		}
		require.Empty(t, s.Guessed)
	})

	t.Run("won round absorbs guesses", func(t *testing.T) {
		s := game.New("a", "first letter")
		_, err := s.Guess("a")
		require.NoError(t, err)
		require.Equal(t, game.StatusWon, s.Status)

		_, err = s.Guess("b")
		require.ErrorIs(t, err, game.ErrRoundOver)
		require.Equal(t, []string{"a"}, s.Guessed)
		require.Equal(t, 0, s.WrongGuesses)
	})
}

func TestGuessNormalizesCase(t *testing.T) {
	s := game.New("cat", "pet")
	correct, err := s.Guess("C")
	require.NoError(t, err)
	require.True(t, correct)
	require.Equal(t, []string{"c"}, s.Guessed)
	require.Equal(t, "c _ _", s.Masked())
}

func TestGuessRepeatedLettersInWord(t *testing.T) {
	s := game.New("level", "reads the same backwards")
	for _, l := range []string{"l", "e"} {
		_, err := s.Guess(l)
		require.NoError(t, err)
	}
	require.Equal(t, "l e _ e l", s.Masked())

	_, err := s.Guess("v")
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, s.Status)
}

func TestGuessWinPriority(t *testing.T) {
	// Five wrong guesses, then the last missing letter: the round is won
	// even though the cap is one away.
	s := game.New("ab", "two letters")
	_, err := s.Guess("a")
	require.NoError(t, err)
	for _, l := range []string{"c", "d", "e", "f", "g"} {
		_, err := s.Guess(l)
		require.NoError(t, err)
	}
	require.Equal(t, 5, s.WrongGuesses)

	_, err = s.Guess("b")
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, s.Status)

	// A round whose word is revealed while at the cap still counts as won.
	s = game.New("ab", "two letters")
	s.WrongGuesses = s.MaxWrong
	s.Guessed = []string{"a"}
	_, err = s.Guess("b")
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, s.Status)
}

func TestGuessArabic(t *testing.T) {
	s := game.New("قلم", "أداة للكتابة")
	for _, l := range []string{"ق", "ل"} {
		correct, err := s.Guess(l)
		require.NoError(t, err)
		require.True(t, correct)
	}
	require.Equal(t, "ق ل _", s.Masked())

	_, err := s.Guess("م")
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, s.Status)
}

func TestWrongGuessesNeverExceedCap(t *testing.T) {
	s := game.New("q", "rare letter")
	for _, l := range "abcdefghijklmnoprstuvwxyz" {
		_, _ = s.Guess(string(l))
		require.LessOrEqual(t, s.WrongGuesses, s.MaxWrong)
	}
	require.Equal(t, game.StatusLost, s.Status)
}

func TestUseHint(t *testing.T) {
	t.Run("success charges the wallet", func(t *testing.T) {
		s := game.New("cat", "pet")
		w := &fakeWallet{points: 120}

		require.NoError(t, s.UseHint(context.Background(), w))
		require.Equal(t, 70, w.points)
		require.Equal(t, 1, w.spent)
		require.Equal(t, game.HintsPerRound-1, s.HintsRemaining)
		require.Equal(t, "_ _ _", s.Masked())
	})

	t.Run("insufficient points", func(t *testing.T) {
		s := game.New("cat", "pet")
		w := &fakeWallet{points: game.HintCost - 1}

		require.ErrorIs(t, s.UseHint(context.Background(), w), game.ErrInsufficientPoints)
		require.Equal(t, game.HintsPerRound, s.HintsRemaining)
		require.Equal(t, 0, w.spent)
	})

	t.Run("allowance runs out", func(t *testing.T) {
		s := game.New("cat", "pet")
		w := &fakeWallet{points: 1000}
		for i := 0; i < game.HintsPerRound; i++ {
			require.NoError(t, s.UseHint(context.Background(), w))
		}
		require.ErrorIs(t, s.UseHint(context.Background(), w), game.ErrNoHintsLeft)
		require.Equal(t, 850, w.points)
	})

	t.Run("finished round", func(t *testing.T) {
		s := game.New("a", "first letter")
		_, _ = s.Guess("a")
		w := &fakeWallet{points: 1000}

		require.ErrorIs(t, s.UseHint(context.Background(), w), game.ErrRoundOver)
		require.Equal(t, 1000, w.points)
	})

	t.Run("wallet failure keeps allowance", func(t *testing.T) {
		s := game.New("cat", "pet")
		boom := errors.New("disk full")
		w := &fakeWallet{points: 1000, err: boom}

		require.ErrorIs(t, s.UseHint(context.Background(), w), boom)
		require.Equal(t, game.HintsPerRound, s.HintsRemaining)
	})
}
