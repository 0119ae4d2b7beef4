// internal/httpserver/server.go
//
// HTTP server wiring for the Hangman backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, timeouts, panic recovery,
//     JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words", "/words/alphabet".
//   - Player identity: signed-in user (JWT) or anonymous cookie id.
//   - Per-player serialisation of game and ledger operations.
//
// Route groups live in routes_game.go, routes_auth.go and routes_daily.go.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/daily"
	"github.com/robalobadob/hangman/internal/ratelimit"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

const (
	anonCookieName  = "hangman_anon"
	tokenCookieName = "hangman_token"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Config   config.Config
	Words    *words.Source
	Ledgers  stats.Repository
	Sessions *store.Sessions
	Rounds   *store.Rounds
	Daily    *daily.Store
	Auth     *auth.Service
	// AuthLimiter throttles signup and login; nil disables it.
	AuthLimiter *ratelimit.Limiter
}

// Server bundles the router and its dependencies.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	words    *words.Source
	ledgers  stats.Repository
	sessions *store.Sessions
	rounds   *store.Rounds
	daily    *daily.Store
	auth     *auth.Service
	limiter  *ratelimit.Limiter
	cookies  auth.Cookies
	locks    *playerLocks
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		words:    d.Words,
		ledgers:  d.Ledgers,
		sessions: d.Sessions,
		rounds:   d.Rounds,
		daily:    d.Daily,
		auth:     d.Auth,
		limiter:  d.AuthLimiter,
		cookies:  auth.Cookies{Name: tokenCookieName, Secure: d.Config.IsProduction()},
		locks:    newPlayerLocks(),
		now:      time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "hangman-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "POST /game/hint", "/stats/me", "/achievements", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"words": s.words.Stats(), "activeRounds": s.sessions.Len()})
	})
	s.r.Get("/words/alphabet", s.handleAlphabet)

	// Game, stats and daily endpoints: OPTIONAL AUTH (guests play under an anonymous id)
	s.r.Group(func(r chi.Router) {
		r.Use(s.auth.Optional(s.cookies))
		s.mountGame(r)
		s.mountDaily(r)
	})

	s.mountAuth()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("requestId", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ players ------------------------------------

// Owner ids put users and guests in separate namespaces, so a guest id can
// never name an account.
func userOwner(id string) string  { return "user:" + id }
func guestOwner(id string) string { return "anon:" + id }

// playerID returns the owner id of the signed-in user, or of the guest named
// by the anonymous cookie. Guests without a valid cookie get a fresh id.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := auth.FromContext(r.Context()); me != nil {
		return userOwner(me.ID)
	}
	if id := s.guestID(r); id != "" {
		return guestOwner(id)
	}
	id := uuid.NewString()
	token, err := s.auth.SignGuest(id)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign guest cookie")
		return guestOwner(id)
	}
	sameSite := http.SameSiteLaxMode
	if s.cfg.IsProduction() {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: sameSite,
		Expires:  s.now().Add(180 * 24 * time.Hour),
	})
	return guestOwner(id)
}

// guestID returns the id carried by a valid anonymous cookie, or "".
func (s *Server) guestID(r *http.Request) string {
	c, err := r.Cookie(anonCookieName)
	if err != nil {
		return ""
	}
	id, err := s.auth.ParseGuest(c.Value)
	if err != nil {
		hlog.FromRequest(r).Debug().Msg("ignoring invalid guest cookie")
		return ""
	}
	return id
}

// playerLocks serialises requests of the same player.
type playerLocks struct {
	mu sync.Mutex
	m  map[string]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{m: make(map[string]*playerLock)}
}

// lock blocks until id is free and returns the matching unlock.
func (l *playerLocks) lock(id string) func() {
	l.mu.Lock()
	e := l.m[id]
	if e == nil {
		e = &playerLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

// ------------------------------- words -------------------------------------

func (s *Server) handleAlphabet(w http.ResponseWriter, r *http.Request) {
	lang := langOrDefault(r.URL.Query().Get("lang"))
	letters, err := words.Alphabet(lang)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_language")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lang": lang, "letters": letters})
}

func langOrDefault(lang string) string {
	if lang == "" {
		return words.DefaultLang
	}
	return lang
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
