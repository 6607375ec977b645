// Command server runs the jamstand API: email code login, game and
// devlog management backed by a hosted record store, Slack account
// linking, and static hosting of uploaded game builds.
package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/jamstand/internal/email"
	airtablerepo "github.com/sakif/jamstand/internal/repository/airtable"
	"github.com/sakif/jamstand/internal/server"
)

func main() {
	// .env is a development convenience; in production the variables
	// come from the process environment and the file is absent.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := server.Config{
		Port:           envInt("PORT", 8080),
		AirtableAPIKey: os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID: os.Getenv("AIRTABLE_BASE_ID"),
		Tables:         tablesFromEnv(),

		LoopsAPIKey:          os.Getenv("LOOPS_API_KEY"),
		LoopsTransactionalID: os.Getenv("LOOPS_TRANSACTIONAL_ID"),
		SMTP: email.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},

		SlackClientID:     os.Getenv("SLACK_CLIENT_ID"),
		SlackClientSecret: os.Getenv("SLACK_CLIENT_SECRET"),
		SlackRedirectURL:  os.Getenv("SLACK_REDIRECT_URL"),
		StateSecret:       os.Getenv("STATE_SECRET"),

		HackatimeURL: os.Getenv("HACKATIME_URL"),
		GamesDir:     envStr("GAMES_DIR", "games"),
		AdminToken:   os.Getenv("ADMIN_TOKEN"),
	}

	if cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" {
		logger.Error("AIRTABLE_API_KEY and AIRTABLE_BASE_ID are required")
		os.Exit(1)
	}
	if cfg.StateSecret == "" {
		logger.Warn("STATE_SECRET not set, slack connect flow is disabled in practice")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := srv.Start(); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func tablesFromEnv() airtablerepo.Tables {
	t := airtablerepo.DefaultTables()
	t.Users = envStr("AIRTABLE_USERS_TABLE", t.Users)
	t.OTP = envStr("AIRTABLE_OTP_TABLE", t.OTP)
	t.Games = envStr("AIRTABLE_GAMES_TABLE", t.Games)
	t.Posts = envStr("AIRTABLE_POSTS_TABLE", t.Posts)
	t.RSVP = envStr("AIRTABLE_RSVP_TABLE", t.RSVP)
	t.Plays = envStr("AIRTABLE_PLAYS_TABLE", t.Plays)
	t.History = envStr("AIRTABLE_HISTORY_TABLE", t.History)
	return t
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-numeric env value", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return n
}
