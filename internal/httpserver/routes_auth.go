// internal/httpserver/routes_auth.go
//
// Account endpoints:
//   - POST /auth/signup, POST /auth/login: set the token cookie and adopt the
//     guest's ledger, round history and daily results. Throttled per client IP.
//   - POST /auth/logout: clear the token cookie.
//   - GET  /auth/me: the signed-in user (401 for guests).

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/ratelimit"
	"github.com/robalobadob/hangman/internal/stats"
)

func (s *Server) mountAuth() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware(ratelimit.IPKey))
			}
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
		})
		r.Post("/logout", s.handleLogout)
		r.With(s.auth.Required(s.cookies)).Get("/me", s.handleMe)
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userRes struct {
	User *auth.User `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Signup(r.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_input", "message": err.Error()})
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken")
		return
	case err != nil:
		s.internalError(w, r, err, "signup")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusCreated, userRes{User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Login(r.Context(), in.Username, in.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	} else if err != nil {
		s.internalError(w, r, err, "login")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, userRes{User: u})
}

// signIn sets the token cookie and moves the guest's progress to u.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	token, exp, err := s.auth.Sign(u)
	if err != nil {
		s.internalError(w, r, err, "sign token")
		return false
	}
	s.cookies.Set(w, token, exp)

	guest := s.guestID(r)
	if guest == "" {
		return true
	}
	from, to := guestOwner(guest), userOwner(u.ID)
	ctx := r.Context()
	logger := hlog.FromRequest(r).With().Str("from", from).Str("to", to).Logger()

	// always guest then user; the two namespaces never overlap
	unlockGuest := s.locks.lock(from)
	defer unlockGuest()
	defer s.locks.lock(to)()

	moved, err := stats.Transfer(ctx, s.ledgers, from, to)
	if err != nil {
		logger.Error().Err(err).Msg("transfer ledger")
	} else if moved {
		logger.Info().Msg("guest ledger adopted")
	}
	if err := s.rounds.Claim(ctx, from, to); err != nil {
		logger.Warn().Err(err).Msg("claim rounds")
	}
	if err := s.daily.Claim(ctx, from, to); err != nil {
		logger.Warn().Err(err).Msg("claim daily results")
	}
	return true
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	u, err := s.auth.FindByID(r.Context(), me.ID)
	if errors.Is(err, auth.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	} else if err != nil {
		s.internalError(w, r, err, "find user")
		return
	}
	writeJSON(w, http.StatusOK, userRes{User: u})
}
