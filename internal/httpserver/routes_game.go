// internal/httpserver/routes_game.go
//
// Classic rounds and the player's ledger:
//   - POST /game/new, GET /game/{id}, POST /game/guess, POST /game/hint
//   - GET /stats/me, POST /stats/reset, GET /achievements, GET /games/mine
//
// Rule rejections (repeated letter, finished round, no hints, too few points)
// are answered with 200 and accepted=false; only malformed requests and
// unknown rounds are HTTP errors.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/play"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/guess", s.handleGuess)
	r.Post("/game/hint", s.handleHint)

	r.Get("/stats/me", s.handleStats)
	r.Post("/stats/reset", s.handleReset)
	r.Get("/achievements", s.handleAchievements)
	r.Get("/games/mine", s.handleMyGames)
}

// ------------------------------- views -------------------------------------

type gameView struct {
	GameID         string      `json:"gameId"`
	Mode           store.Mode  `json:"mode"`
	Date           string      `json:"date,omitempty"`
	Lang           string      `json:"lang"`
	Masked         string      `json:"masked"`
	Hint           string      `json:"hint"`
	Guessed        []string    `json:"guessed"`
	Correct        string      `json:"correct"`
	Wrong          string      `json:"wrong"`
	WrongGuesses   int         `json:"wrongGuesses"`
	MaxWrong       int         `json:"maxWrong"`
	HintsRemaining int         `json:"hintsRemaining"`
	Status         game.Status `json:"status"`
	Word           string      `json:"word,omitempty"` // revealed once the round is over
}

func viewOf(rd *store.Round) gameView {
	sess := rd.Session
	v := gameView{
		GameID:         sess.ID,
		Mode:           rd.Mode,
		Date:           rd.Date,
		Lang:           sess.Lang,
		Masked:         sess.Masked(),
		Hint:           sess.Hint,
		Guessed:        append([]string{}, sess.Guessed...),
		Correct:        sess.CorrectLetters(),
		Wrong:          sess.WrongLetters(),
		WrongGuesses:   sess.WrongGuesses,
		MaxWrong:       sess.MaxWrong,
		HintsRemaining: sess.HintsRemaining,
		Status:         sess.Status,
	}
	if sess.Finished() {
		v.Word = sess.Word
	}
	return v
}

type statsView struct {
	stats.Stats
	WinRate int `json:"winRate"`
	Level   int `json:"level"`
}

func statsOf(l *stats.Ledger) statsView {
	return statsView{Stats: l.Snapshot(), WinRate: l.WinRate(), Level: l.Level()}
}

type achievementView struct {
	ID       string `json:"id"`
	Icon     string `json:"icon"`
	Unlocked bool   `json:"unlocked"`
}

func achievementsOf(as []stats.Achievement) []achievementView {
	out := make([]achievementView, 0, len(as))
	for _, a := range as {
		out = append(out, achievementView{ID: a.ID, Icon: a.Icon, Unlocked: true})
	}
	return out
}

type turnRes struct {
	Accepted bool              `json:"accepted"`
	Reason   string            `json:"reason,omitempty"`
	Correct  bool              `json:"correct"`
	Points   int               `json:"points"`
	Unlocked []achievementView `json:"unlocked"`
	Game     gameView          `json:"game"`
	Stats    statsView         `json:"stats"`
}

// rejection maps rule errors to their wire reason; "" for anything else.
func rejection(err error) string {
	switch {
	case errors.Is(err, game.ErrRoundOver):
		return "round_over"
	case errors.Is(err, game.ErrAlreadyGuessed):
		return "already_guessed"
	case errors.Is(err, game.ErrInvalidLetter):
		return "invalid_letter"
	case errors.Is(err, game.ErrNoHintsLeft):
		return "no_hints_left"
	case errors.Is(err, game.ErrInsufficientPoints):
		return "insufficient_points"
	}
	return ""
}

// ------------------------------- rounds ------------------------------------

type newGameReq struct {
	Lang string `json:"lang"`
}

type newGameRes struct {
	Game  gameView  `json:"game"`
	Stats statsView `json:"stats"`
}

// handleNewGame draws a random word and starts a classic round.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	ctx := r.Context()
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	ledger, err := stats.Load(ctx, s.ledgers, player)
	if err != nil {
		s.internalError(w, r, err, "load ledger")
		return
	}
	sess, err := play.New(s.words, ledger).NewRound(langOrDefault(req.Lang))
	if errors.Is(err, words.ErrUnknownLang) {
		writeError(w, http.StatusBadRequest, "unknown_language")
		return
	} else if err != nil {
		s.internalError(w, r, err, "new round")
		return
	}

	rd := &store.Round{Owner: player, Mode: store.ModeClassic, Session: sess}
	if err := s.begin(ctx, rd); err != nil {
		s.internalError(w, r, err, "save round")
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{Game: viewOf(rd), Stats: statsOf(ledger)})
}

// begin stores a fresh round and its history row.
func (s *Server) begin(ctx context.Context, rd *store.Round) error {
	if err := s.rounds.Start(ctx, rd.Owner, rd.Session); err != nil {
		// a daily round is replayed from its row; a classic one only loses history
		if rd.Mode == store.ModeDaily {
			return fmt.Errorf("record daily round: %w", err)
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("gameId", rd.Session.ID).Msg("record round start")
	}
	return s.sessions.Save(ctx, rd)
}

// handleGetGame returns the current view of one of the player's rounds.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	rd, ok := s.ownRound(w, r, player, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": viewOf(rd)})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Letter string `json:"letter"`
}

// handleGuess applies one letter to a classic or daily round.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.turn(w, r, req.GameID, "", func(ctx context.Context, c *play.Controller, sess *game.Session) (play.Turn, error) {
		return c.Guess(ctx, sess, req.Letter)
	})
}

type hintReq struct {
	GameID string `json:"gameId"`
}

// handleHint buys a hint for the round from the player's points.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req hintReq
	if err := decode(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.turn(w, r, req.GameID, "", func(ctx context.Context, c *play.Controller, sess *game.Session) (play.Turn, error) {
		return c.Hint(ctx, sess)
	})
}

type turnFunc func(ctx context.Context, c *play.Controller, sess *game.Session) (play.Turn, error)

// turn runs fn against one of the player's rounds under the player's lock.
// A non-empty mode restricts the round kind.
func (s *Server) turn(w http.ResponseWriter, r *http.Request, gameID string, mode store.Mode, fn turnFunc) {
	ctx := r.Context()
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	rd, ok := s.ownRound(w, r, player, gameID)
	if !ok {
		return
	}
	if mode != "" && rd.Mode != mode {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	ledger, err := stats.Load(ctx, s.ledgers, player)
	if err != nil {
		s.internalError(w, r, err, "load ledger")
		return
	}

	wasOver := rd.Session.Finished()
	t, err := fn(ctx, play.New(s.words, ledger), rd.Session)
	if reason := rejection(err); reason != "" {
		writeJSON(w, http.StatusOK, turnRes{
			Accepted: false,
			Reason:   reason,
			Unlocked: []achievementView{},
			Game:     viewOf(rd),
			Stats:    statsOf(ledger),
		})
		return
	} else if err != nil {
		s.internalError(w, r, err, "apply turn")
		return
	}

	if !wasOver && rd.Session.Finished() {
		s.finish(ctx, rd, t.Points)
	} else if err := s.rounds.SaveProgress(ctx, rd.Owner, rd.Session); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("gameId", rd.Session.ID).Msg("record round progress")
	}
	writeJSON(w, http.StatusOK, turnRes{
		Accepted: true,
		Correct:  t.Correct,
		Points:   t.Points,
		Unlocked: achievementsOf(t.Unlocked),
		Game:     viewOf(rd),
		Stats:    statsOf(ledger),
	})
}

// finish persists the outcome of a round that just ended.
func (s *Server) finish(ctx context.Context, rd *store.Round, points int) {
	logger := zerolog.Ctx(ctx)
	if err := s.rounds.Finish(ctx, rd.Owner, rd.Session, points); err != nil {
		logger.Warn().Err(err).Str("gameId", rd.Session.ID).Msg("record round finish")
	}
	if rd.Mode == store.ModeDaily {
		if err := s.recordDaily(ctx, rd); err != nil {
			logger.Error().Err(err).Str("gameId", rd.Session.ID).Msg("record daily result")
		}
	}
}

// ownRound looks up gameID and checks it belongs to player. On failure it
// writes 404 and returns false.
func (s *Server) ownRound(w http.ResponseWriter, r *http.Request, player, gameID string) (*store.Round, bool) {
	rd, err := s.sessions.Get(r.Context(), gameID)
	if err != nil || rd.Owner != player {
		writeError(w, http.StatusNotFound, "game_not_found")
		return nil, false
	}
	return rd, true
}

// -------------------------------- ledger -----------------------------------

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	ledger, err := stats.Load(r.Context(), s.ledgers, player)
	if err != nil {
		s.internalError(w, r, err, "load ledger")
		return
	}
	writeJSON(w, http.StatusOK, statsOf(ledger))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	ledger, err := stats.Load(r.Context(), s.ledgers, player)
	if err != nil {
		s.internalError(w, r, err, "load ledger")
		return
	}
	if err := ledger.Reset(r.Context()); err != nil {
		s.internalError(w, r, err, "reset ledger")
		return
	}
	hlog.FromRequest(r).Info().Str("player", player).Msg("ledger reset")
	writeJSON(w, http.StatusOK, statsOf(ledger))
}

// handleAchievements lists the whole catalog with the player's unlock flags.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	defer s.locks.lock(player)()

	ledger, err := stats.Load(r.Context(), s.ledgers, player)
	if err != nil {
		s.internalError(w, r, err, "load ledger")
		return
	}
	unlocked := make(map[string]bool)
	for _, id := range ledger.Unlocked() {
		unlocked[id] = true
	}
	out := make([]achievementView, 0, len(stats.Catalog))
	for _, a := range stats.Catalog {
		out = append(out, achievementView{ID: a.ID, Icon: a.Icon, Unlocked: unlocked[a.ID]})
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": out, "unlockedCount": len(ledger.Unlocked())})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	rows, err := s.rounds.Recent(r.Context(), player, 50)
	if err != nil {
		s.internalError(w, r, err, "list rounds")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": rows})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	hlog.FromRequest(r).Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal_error")
}
