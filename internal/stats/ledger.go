// internal/stats/ledger.go
//
// Cumulative statistics and achievements for one player.
// Responsibilities:
//   - Load/save the stats snapshot and the unlocked-achievement set from
//     durable key/value slots (see Repository).
//   - Record round outcomes, hint use and point changes; every mutation is
//     persisted before it returns, and undone in memory when that fails.
//   - Diff the achievement catalog against the persisted unlocked set.
//
// Notes:
//   - A Ledger is not safe for concurrent use; callers serialise access per
//     player. Different Ledger values for the same owner are last-writer-wins.

package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Persisted slot names.
const (
	KeyStats    = "gameStats"
	KeyUnlocked = "unlockedAchievements"
)

const (
	winBasePoints  = 100
	bonusPerMiss   = 10
	bonusMaxMisses = 6
	pointsPerLevel = 500
)

// Stats is the persisted cumulative record of a player.
type Stats struct {
	TotalWins     int `json:"totalWins"`
	TotalLosses   int `json:"totalLosses"`
	TotalPoints   int `json:"totalPoints"`
	CurrentStreak int `json:"currentStreak"`
	MaxStreak     int `json:"maxStreak"`
	HintsUsed     int `json:"hintsUsed"`
	GamesPlayed   int `json:"gamesPlayed"`
	PerfectGames  int `json:"perfectGames"`
}

// Repository stores opaque values under (owner, key).
// Implementations live in the store package.
type Repository interface {
	// Get returns ok=false when the slot does not exist.
	Get(ctx context.Context, owner, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, owner, key string, value []byte) error
	Delete(ctx context.Context, owner, key string) error
}

// Ledger is one player's statistics and unlocked achievements.
type Ledger struct {
	repo     Repository
	owner    string
	stats    Stats
	unlocked []string
}

// Load reads the ledger of owner. Missing slots yield a zero ledger.
func Load(ctx context.Context, repo Repository, owner string) (*Ledger, error) {
	l := &Ledger{repo: repo, owner: owner, unlocked: []string{}}

	raw, ok, err := repo.Get(ctx, owner, KeyStats)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	if ok {
		if err := json.Unmarshal(raw, &l.stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}

	raw, ok, err = repo.Get(ctx, owner, KeyUnlocked)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	if ok {
		if err := json.Unmarshal(raw, &l.unlocked); err != nil {
			return nil, fmt.Errorf("decode achievements: %w", err)
		}
	}
	return l, nil
}

// Owner returns the player the ledger belongs to.
func (l *Ledger) Owner() string { return l.owner }

// Snapshot returns a copy of the current stats.
func (l *Ledger) Snapshot() Stats { return l.stats }

// Points returns the current points balance.
func (l *Ledger) Points() int { return l.stats.TotalPoints }

// Unlocked returns the ids of every achievement ever unlocked.
func (l *Ledger) Unlocked() []string {
	return append([]string(nil), l.unlocked...)
}

// WinPoints is the award for a win with the given number of wrong guesses.
func WinPoints(wrongGuesses int) int {
	return winBasePoints + max(0, (bonusMaxMisses-wrongGuesses)*bonusPerMiss)
}

// RecordWin books a won round and returns the points awarded.
func (l *Ledger) RecordWin(ctx context.Context, wrongGuesses int) (int, error) {
	prev := l.stats
	l.stats.TotalWins++
	l.stats.GamesPlayed++
	l.stats.CurrentStreak++
	l.stats.MaxStreak = max(l.stats.MaxStreak, l.stats.CurrentStreak)

	points := WinPoints(wrongGuesses)
	l.addPoints(points)
	if wrongGuesses == 0 {
		l.stats.PerfectGames++
	}
	if err := l.commit(ctx, prev); err != nil {
		return 0, err
	}
	return points, nil
}

// RecordLoss books a lost round and breaks the streak.
func (l *Ledger) RecordLoss(ctx context.Context) error {
	prev := l.stats
	l.stats.TotalLosses++
	l.stats.GamesPlayed++
	l.stats.CurrentStreak = 0
	return l.commit(ctx, prev)
}

// RecordHintUsed counts one used hint.
func (l *Ledger) RecordHintUsed(ctx context.Context) error {
	prev := l.stats
	l.stats.HintsUsed++
	return l.commit(ctx, prev)
}

// AddPoints adjusts the balance by delta and returns the new balance.
// The balance never drops below zero.
func (l *Ledger) AddPoints(ctx context.Context, delta int) (int, error) {
	prev := l.stats
	l.addPoints(delta)
	return l.stats.TotalPoints, l.commit(ctx, prev)
}

// SpendHint pays for a hint: deducts cost and counts the hint in one save.
func (l *Ledger) SpendHint(ctx context.Context, cost int) error {
	prev := l.stats
	l.addPoints(-cost)
	l.stats.HintsUsed++
	return l.commit(ctx, prev)
}

func (l *Ledger) addPoints(delta int) {
	l.stats.TotalPoints = max(0, l.stats.TotalPoints+delta)
}

// EvaluateUnlocked returns the achievements whose predicate currently holds.
func (l *Ledger) EvaluateUnlocked() []Achievement {
	return Evaluate(l.stats)
}

// CheckNewlyUnlocked returns achievements that hold now but were never
// unlocked before, and adds them to the persisted set. Ids are never removed.
func (l *Ledger) CheckNewlyUnlocked(ctx context.Context) ([]Achievement, error) {
	seen := make(map[string]struct{}, len(l.unlocked))
	for _, id := range l.unlocked {
		seen[id] = struct{}{}
	}

	fresh := []Achievement{}
	for _, a := range l.EvaluateUnlocked() {
		if _, ok := seen[a.ID]; !ok {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return fresh, nil
	}

	next := append([]string(nil), l.unlocked...)
	for _, a := range fresh {
		next = append(next, a.ID)
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	if err := l.repo.Put(ctx, l.owner, KeyUnlocked, raw); err != nil {
		return nil, fmt.Errorf("save achievements: %w", err)
	}
	l.unlocked = next
	return fresh, nil
}

// Reset zeroes every counter and forgets all unlocked achievements.
func (l *Ledger) Reset(ctx context.Context) error {
	l.stats = Stats{}
	l.unlocked = []string{}
	if err := l.repo.Delete(ctx, l.owner, KeyStats); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	if err := l.repo.Delete(ctx, l.owner, KeyUnlocked); err != nil {
		return fmt.Errorf("reset achievements: %w", err)
	}
	return nil
}

// WinRate is the rounded percentage of won rounds, 0 before any round.
func (l *Ledger) WinRate() int {
	if l.stats.GamesPlayed == 0 {
		return 0
	}
	return int(math.Round(float64(l.stats.TotalWins) / float64(l.stats.GamesPlayed) * 100))
}

// Level starts at 1 and goes up every 500 points.
func (l *Ledger) Level() int {
	return l.stats.TotalPoints/pointsPerLevel + 1
}

// commit persists the stats, or puts prev back when that fails.
func (l *Ledger) commit(ctx context.Context, prev Stats) error {
	if err := l.save(ctx); err != nil {
		l.stats = prev
		return err
	}
	return nil
}

func (l *Ledger) save(ctx context.Context) error {
	raw, err := json.Marshal(l.stats)
	if err != nil {
		return err
	}
	if err := l.repo.Put(ctx, l.owner, KeyStats, raw); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// Transfer moves the ledger of from to to, unless to already has one.
// Used when an anonymous player signs in. Reports whether anything moved.
func Transfer(ctx context.Context, repo Repository, from, to string) (bool, error) {
	if from == "" || to == "" || from == to {
		return false, nil
	}
	if _, exists, err := repo.Get(ctx, to, KeyStats); err != nil || exists {
		return false, err
	}
	moved := false
	for _, key := range []string{KeyStats, KeyUnlocked} {
		raw, ok, err := repo.Get(ctx, from, key)
		if err != nil {
			return moved, err
		}
		if !ok {
			continue
		}
		if err := repo.Put(ctx, to, key, raw); err != nil {
			return moved, err
		}
		if err := repo.Delete(ctx, from, key); err != nil {
			return moved, err
		}
		moved = true
	}
	return moved, nil
}
