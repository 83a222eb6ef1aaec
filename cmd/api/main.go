package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airdemo/internal/ai"
	"airdemo/internal/auth"
	"airdemo/internal/config"
	"airdemo/internal/httpserver"
	"airdemo/internal/invite"
	"airdemo/internal/logger"
	"airdemo/internal/mail"
	"airdemo/internal/metrics"
	"airdemo/internal/seed"
	"airdemo/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalw("config", "error", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	if cfg.Database.URL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.JWT.Secret == "" {
		lg.Fatalw("JWT_SECRET is empty")
	}
	db, err := store.Open(cfg.Database, lg)
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authn := auth.NewService(st, auth.NewTokens(cfg.JWT))
	seedDefaultAdmin(ctx, cfg, st, authn, lg)

	router := httpserver.NewRouter(httpserver.Deps{
		Config:   cfg,
		Store:    st,
		Auth:     authn,
		Invites:  invite.NewService(st, authn, mail.New(cfg.SMTP, lg), lg, invite.Options{AppURL: cfg.AppURL, TTL: cfg.InviteTTL}),
		Chat:     chatBackend(cfg, lg),
		Vision:   visionBackend(cfg, lg),
		Recorder: ai.NewRecorder(st),
		Metrics:  metrics.New(),
	}, lg)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatalw("server stopped", "error", err)
	}
	lg.Infow("shut down")
}

// seedDefaultAdmin makes sure the admin role exists and, when a password is
// configured, that ADMIN_EMAIL can sign in as admin.
func seedDefaultAdmin(ctx context.Context, cfg *config.Config, st *store.Store, authn *auth.Service, lg *zap.SugaredLogger) {
	if _, err := st.EnsureAdminRole(ctx); err != nil {
		lg.Fatalw("admin role", "error", err)
	}
	if cfg.AdminPassword == "" {
		return
	}
	_, created, err := seed.CreateAdmin(ctx, st, authn, cfg.AdminEmail, cfg.AdminPassword, "Admin")
	if err != nil {
		lg.Fatalw("seed admin failed", "error", err)
	}
	if created {
		lg.Infow("seeded default admin", "email", cfg.AdminEmail)
	}
}

func chatBackend(cfg *config.Config, lg *zap.SugaredLogger) ai.Chat {
	if cfg.AI.ChatEndpoint != "" {
		lg.Infow("chat backend", "endpoint", cfg.AI.ChatEndpoint)
		return ai.NewHTTPChat(cfg.AI.ChatEndpoint)
	}
	lg.Infow("chat backend", "endpoint", "canned")
	return ai.CannedChat{}
}

func visionBackend(cfg *config.Config, lg *zap.SugaredLogger) ai.Vision {
	if cfg.AI.VisionEnabled() {
		lg.Infow("vision backend", "base_url", cfg.AI.VisionBase, "model", cfg.AI.VisionModel)
		return ai.NewOpenAIVision(cfg.AI.VisionAPIKey, cfg.AI.VisionBase, cfg.AI.VisionModel)
	}
	lg.Infow("vision backend", "base_url", "mock")
	return ai.NewMockVision()
}
