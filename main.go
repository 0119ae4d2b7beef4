package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/daily"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/ratelimit"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)
	log.Info().Msg(cfg.NonSensitiveString())

	db, err := store.OpenMigrated(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	src := words.Load(cfg.WordsDir)
	log.Info().Interface("words", src.Stats()).Msg("word lists loaded")

	sessions := store.NewSessions(cfg.SessionTTL)
	defer sessions.Close()

	var limiter *ratelimit.Limiter
	if cfg.AuthPerMinute > 0 {
		var stop func()
		limiter, stop = ratelimit.New(cfg.AuthPerMinute, 5)
		defer stop()
	}

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Words:    src,
		Ledgers:  store.NewSQLiteKV(db),
		Sessions: sessions,
		Rounds:   store.NewRounds(db),
		Daily:    daily.NewStore(db),
		Auth:     auth.NewService(db, cfg.JWTSecret, cfg.JWTExpiresDays),

		AuthLimiter: limiter,
	})

	log.Info().Str("port", cfg.Port).Msg("starting hangman server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
