// Package server wires handlers, middleware, and routes together and
// owns the listen/shutdown lifecycle. It is the composition root:
// every dependency chain (store client → repository → service →
// handler) is assembled in New, nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/jamstand/internal/airtable"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/email"
	"github.com/sakif/jamstand/internal/handler"
	"github.com/sakif/jamstand/internal/middleware"
	"github.com/sakif/jamstand/internal/ratelimit"
	airtablerepo "github.com/sakif/jamstand/internal/repository/airtable"
	"github.com/sakif/jamstand/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port int

	// Record store credentials.
	AirtableAPIKey string
	AirtableBaseID string
	Tables         airtablerepo.Tables

	// Outgoing login mail. Loops is used when its key is set, SMTP when
	// its host is set; with neither, codes only land in the store.
	LoopsAPIKey          string
	LoopsTransactionalID string
	SMTP                 email.SMTPConfig

	// Slack OAuth for connecting accounts.
	SlackClientID     string
	SlackClientSecret string
	SlackRedirectURL  string
	StateSecret       string

	// Coding-time tracker base URL; empty means the public instance.
	HackatimeURL string

	// GamesDir is where uploaded web builds are unpacked and served.
	GamesDir string

	// AdminToken guards the build removal endpoint. Empty disables it.
	AdminToken string
}

// Server is the HTTP server and the dependencies it owns.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	limiter *ratelimit.Limiter
	stop    chan struct{}
}

// New assembles the full dependency graph and the route table.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.GamesDir == "" {
		cfg.GamesDir = "games"
	}
	if err := os.MkdirAll(cfg.GamesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating games dir: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		limiter: ratelimit.New(time.Hour),
		stop:    make(chan struct{}),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	cfg := s.config

	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Store client and repositories.
	client := airtable.New(cfg.AirtableAPIKey, cfg.AirtableBaseID)
	users := airtablerepo.NewUserRepository(client, cfg.Tables.Users)
	otps := airtablerepo.NewOTPRepository(client, cfg.Tables.OTP)
	games := airtablerepo.NewGameRepository(client, cfg.Tables.Games, cfg.Tables.Posts)
	posts := airtablerepo.NewPostRepository(client, cfg.Tables.Posts, cfg.Tables.Games, cfg.Tables.Users)
	rsvps := airtablerepo.NewRSVPRepository(client, cfg.Tables.RSVP)
	plays := airtablerepo.NewPlayRepository(client, cfg.Tables.Plays)
	history := airtablerepo.NewHistoryRepository(client, cfg.Tables.History)

	// Services.
	authService := service.NewAuthService(users, otps, s.sender(), s.limiter, s.logger)
	userService := service.NewUserService(users, s.logger)
	gameService := service.NewGameService(games, s.logger)
	postService := service.NewPostService(posts, games, s.logger)
	rsvpService := service.NewRSVPService(rsvps, s.logger)
	playService := service.NewPlayService(plays, games, s.logger)
	syncService := service.NewSyncService(history, s.logger)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(userService)
	gameHandler := handler.NewGameHandler(gameService)
	postHandler := handler.NewPostHandler(postService)
	rsvpHandler := handler.NewRSVPHandler(rsvpService, playService)
	syncHandler := handler.NewSyncHandler(syncService)
	slackProvider := auth.NewSlackProvider(cfg.SlackClientID, cfg.SlackClientSecret, cfg.SlackRedirectURL)
	slackHandler := handler.NewSlackHandler(slackProvider, auth.NewStateSigner(cfg.StateSecret), userService)
	hackatimeHandler := handler.NewHackatimeHandler(cfg.HackatimeURL)
	uploadHandler := handler.NewUploadHandler(cfg.GamesDir, cfg.AdminToken, s.logger)
	playGameHandler := handler.NewPlayGameHandler(cfg.GamesDir)

	requireAuth := auth.RequireAuth(authService)

	s.router.Route("/api", func(r chi.Router) {
		// Public.
		r.Post("/newLogin", authHandler.RequestCode)
		r.Post("/tryOTP", authHandler.VerifyCode)
		r.Get("/GetAllPosts", postHandler.Feed)
		r.Get("/slack/oauthCallback", slackHandler.Callback)

		// Everything else needs a session token.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			// Read endpoints accept POST with the token in the body,
			// like the clients that predate header auth, and GET with
			// an Authorization header.
			r.Post("/getMyProfile", profileHandler.Get)
			r.Get("/getMyProfile", profileHandler.Get)
			r.Post("/updateMyProfile", profileHandler.Update)
			r.Post("/CompleteOnboarding", profileHandler.CompleteOnboarding)

			r.Post("/GetMyGames", gameHandler.ListMine)
			r.Get("/GetMyGames", gameHandler.ListMine)
			r.Post("/CreateNewGame", gameHandler.Create)
			r.Post("/updateGame", gameHandler.Update)
			r.Post("/deleteGame", gameHandler.Delete)

			r.Post("/createPost", postHandler.Create)
			r.Post("/deletePost", postHandler.Delete)

			r.Post("/CreateRSVP", rsvpHandler.Create)
			r.Post("/GetRSVPs", rsvpHandler.List)
			r.Get("/GetRSVPs", rsvpHandler.List)
			r.Post("/CreatePlay", rsvpHandler.CreatePlay)

			r.Get("/slack/oauthStart", slackHandler.Start)
			r.Get("/hackatimeProjects", hackatimeHandler.Projects)

			r.Post("/gameUpload", uploadHandler.Upload)
			r.Post("/SyncUserWithYSWSDB", syncHandler.Submit)
		})
	})

	// Hosted game builds.
	s.router.Get("/play/{gameId}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
	})
	s.router.Get("/play/{gameId}/*", playGameHandler.Serve)
	s.router.Get("/removeGame/{gameId}", uploadHandler.Remove)
}

// sender picks the configured mail transport.
func (s *Server) sender() email.Sender {
	switch {
	case s.config.LoopsAPIKey != "":
		return email.NewLoopsSender(s.config.LoopsAPIKey, s.config.LoopsTransactionalID)
	case s.config.SMTP.Host != "":
		return email.NewSMTPSender(s.config.SMTP)
	default:
		s.logger.Warn("no mail transport configured, login codes will not be delivered")
		return email.Noop{}
	}
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds.
func (s *Server) Start() error {
	s.limiter.Start(10*time.Minute, s.stop)
	defer close(s.stop)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  time.Minute, // uploads can be large
		WriteTimeout: time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.Int("port", s.config.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
