// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's round for a language
//   - POST /daily/guess       → submit a letter for today's round
//   - GET  /daily/leaderboard → top 20 winners for today (or a given date)
//
// Every player gets the same word per date and language, picked by
// HMAC(salt, date|lang). One result per player, date and language is kept;
// the in-progress round lives in the session store under an id derived from
// the same triple, so /daily/new resumes it instead of dealing a new one.
// Every accepted turn is also written to the rounds table, which outlives
// the session and lets an expired round be replayed.

package httpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hangman/internal/daily"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/play"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Post("/guess", s.handleDailyGuess)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// today returns today's date key, the word index and the entry for lang.
func (s *Server) today(lang string) (date string, idx int, e words.Entry, err error) {
	now := s.now()
	date = daily.DateKey(now)
	n := s.words.Len(lang)
	if n == 0 {
		return date, 0, words.Entry{}, words.ErrUnknownLang
	}
	idx = daily.WordIndex(now, lang, s.cfg.DailySalt, n)
	e, err = s.words.At(lang, idx)
	return date, idx, e, err
}

func dailyGameID(player, date, lang string) string {
	sum := sha256.Sum256([]byte("daily|" + player + "|" + date + "|" + lang))
	return hex.EncodeToString(sum[:12])
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewReq struct {
	Lang string `json:"lang"`
}

// dailyNewRes is returned by /daily/new. Game is nil once today's round has
// been recorded.
type dailyNewRes struct {
	Date   string    `json:"date"`
	Lang   string    `json:"lang"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

// handleDailyNew creates or resumes today's round.
//   - A stored result for today → Played=true.
//   - Otherwise the in-memory round is reused, replayed from the rounds
//     table when its session expired, or dealt fresh.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	lang := langOrDefault(req.Lang)
	ctx := r.Context()
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	date, idx, entry, err := s.today(lang)
	if errors.Is(err, words.ErrUnknownLang) {
		writeError(w, http.StatusBadRequest, "unknown_language")
		return
	} else if err != nil {
		s.internalError(w, r, err, "daily word")
		return
	}

	played, err := s.daily.AlreadyPlayed(ctx, player, date, lang)
	if err != nil {
		s.internalError(w, r, err, "daily lookup")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Lang: lang, Played: true})
		return
	}

	id := dailyGameID(player, date, lang)
	if rd, err := s.sessions.Get(ctx, id); err == nil && rd.Owner == player {
		v := viewOf(rd)
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Lang: lang, Game: &v})
		return
	}

	rd := &store.Round{Owner: player, Mode: store.ModeDaily, Date: date, WordIndex: idx}
	progress, err := s.rounds.LoadProgress(ctx, player, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rd.Session = play.Begin(lang, entry)
		rd.Session.ID = id
		err = s.begin(ctx, rd)
	case err != nil:
		s.internalError(w, r, err, "daily progress")
		return
	default:
		rd.Session = replay(lang, entry, id, progress)
		if rd.Session.Finished() {
			// the outcome reached the ledger but not the results table
			if err := s.recordDaily(ctx, rd); err != nil {
				s.internalError(w, r, err, "record daily result")
				return
			}
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Lang: lang, Played: true})
			return
		}
		err = s.sessions.Save(ctx, rd)
	}
	if err != nil {
		s.internalError(w, r, err, "save round")
		return
	}
	v := viewOf(rd)
	writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Lang: lang, Game: &v})
}

// replay rebuilds a daily round whose session expired from its recorded
// progress. The clock keeps running from the original start.
func replay(lang string, e words.Entry, id string, p store.Progress) *game.Session {
	sess := play.Begin(lang, e)
	sess.ID = id
	sess.StartedAt = p.StartedAt
	for _, l := range p.Guessed {
		_, _ = sess.Guess(l)
	}
	sess.HintsRemaining = max(0, sess.HintsRemaining-p.HintsUsed)
	return sess
}

// -----------------------------------------------------------------------------
// /daily/guess

// handleDailyGuess is /game/guess restricted to daily rounds.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.turn(w, r, req.GameID, store.ModeDaily, func(ctx context.Context, c *play.Controller, sess *game.Session) (play.Turn, error) {
		return c.Guess(ctx, sess, req.Letter)
	})
}

// recordDaily stores the result of a finished daily round.
func (s *Server) recordDaily(ctx context.Context, rd *store.Round) error {
	sess := rd.Session
	return s.daily.InsertResult(ctx, daily.Result{
		PlayerID:     rd.Owner,
		Date:         rd.Date,
		Lang:         sess.Lang,
		WordIndex:    rd.WordIndex,
		Won:          sess.Won(),
		WrongGuesses: sess.WrongGuesses,
		ElapsedMs:    int(s.now().Sub(sess.StartedAt).Milliseconds()),
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Lang string        `json:"lang"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	lang := langOrDefault(r.URL.Query().Get("lang"))
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, lang, 20)
	if err != nil {
		s.internalError(w, r, err, "leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Lang: lang, Top: rows})
}
