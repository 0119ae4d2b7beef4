// internal/store/sessions.go
//
// Active rounds, held in memory and dropped after a period of inactivity.
// Backed by ttlcache; every successful Get extends the entry's lifetime.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/robalobadob/hangman/internal/game"
)

// ErrNotFound is returned for unknown or expired rounds.
var ErrNotFound = errors.New("not found")

// Mode distinguishes free play from the daily challenge.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Round is an active game session and who it belongs to.
type Round struct {
	Owner     string
	Mode      Mode
	Date      string // daily rounds only: YYYY-MM-DD
	WordIndex int    // daily rounds only
	Session   *game.Session
}

// Sessions stores active rounds keyed by Session.ID.
type Sessions struct {
	cache *ttlcache.Cache[string, *Round]
}

// NewSessions creates a store whose rounds expire after ttl without access.
// Call Close to stop the expiry loop.
func NewSessions(ttl time.Duration) *Sessions {
	c := ttlcache.New[string, *Round](
		ttlcache.WithTTL[string, *Round](ttl),
	)
	go c.Start()
	return &Sessions{cache: c}
}

// Save adds or replaces a round.
func (s *Sessions) Save(_ context.Context, r *Round) error {
	if r == nil || r.Session == nil || r.Session.ID == "" {
		return errors.New("round without session id")
	}
	s.cache.Set(r.Session.ID, r, ttlcache.DefaultTTL)
	return nil
}

// Get looks up a round by id.
func (s *Sessions) Get(_ context.Context, id string) (*Round, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, ErrNotFound
	}
	return item.Value(), nil
}

// Delete forgets a round.
func (s *Sessions) Delete(_ context.Context, id string) {
	s.cache.Delete(id)
}

// Len returns the number of active rounds.
func (s *Sessions) Len() int { return s.cache.Len() }

// Close stops the expiry loop.
func (s *Sessions) Close() { s.cache.Stop() }
