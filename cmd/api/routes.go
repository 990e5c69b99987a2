package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/auth"
	"github.com/nomadshift/backend/internal/config"
	"github.com/nomadshift/backend/internal/handlers"
	"github.com/nomadshift/backend/internal/repository"
	"github.com/nomadshift/backend/internal/rewrite"
	"github.com/nomadshift/backend/internal/router"
	"github.com/nomadshift/backend/internal/services"
)

type app struct {
	handler  http.Handler
	sessions *auth.Repository
}

// buildApp wires repositories, services and handlers into the /api router.
func buildApp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*app, error) {
	validator, err := services.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile request schemas: %w", err)
	}

	authRepo := auth.NewRepository(pool)
	profileRepo := repository.NewProfileRepo(pool)
	jobRepo := repository.NewJobRepo(pool)
	appRepo := repository.NewApplicationRepo(pool)
	reviewRepo := repository.NewReviewRepo(pool)
	chatRepo := repository.NewChatRepo(pool)

	authSvc := auth.NewService(authRepo, auth.NewHTTPIdentityProvider(cfg.Auth.IdentityURL), cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger)
	profileSvc := services.NewProfileService(pool, profileRepo, authRepo, logger)
	jobSvc := services.NewJobService(pool, jobRepo, appRepo, profileRepo, chatRepo, logger)
	reviewSvc := services.NewReviewService(pool, jobRepo, reviewRepo, profileRepo, logger)
	chatSvc := services.NewChatService(chatRepo, profileRepo, jobRepo, logger)

	gen, err := rewrite.New(ctx, rewrite.Config{
		Provider:      cfg.AI.Provider,
		Model:         cfg.AI.Model,
		GeminiAPIKey:  cfg.AI.GeminiAPIKey,
		OllamaBaseURL: cfg.AI.OllamaBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("ai generator: %w", err)
	}
	logger.Info("AI rewrite configured", "generator", gen.Name(), "timeout", cfg.AI.Timeout)

	h := router.Handlers{
		Auth:     auth.NewHandler(authSvc, validator, cfg.Auth.CookieSecure, logger),
		Profiles: &handlers.ProfileHandler{Profiles: profileSvc, Decoder: validator, Logger: logger},
		Jobs:     &handlers.JobHandler{Jobs: jobSvc, Decoder: validator, Logger: logger},
		Reviews:  &handlers.ReviewHandler{Reviews: reviewSvc, Decoder: validator, Logger: logger},
		Chat:     &handlers.ChatHandler{Chat: chatSvc, Decoder: validator, Logger: logger},
		AI:       &handlers.AIHandler{Rewriter: rewrite.NewService(gen, cfg.AI.Timeout, logger), Decoder: validator, Logger: logger},
	}

	return &app{
		handler:  router.New(h, authSvc, profileSvc, logger),
		sessions: authRepo,
	}, nil
}

var (
	_ services.JobStore         = (*repository.JobRepo)(nil)
	_ services.ApplicationStore = (*repository.ApplicationRepo)(nil)
	_ services.ProfileStore     = (*repository.ProfileRepo)(nil)
	_ services.ReviewStore      = (*repository.ReviewRepo)(nil)
	_ services.ChatStore        = (*repository.ChatRepo)(nil)
	_ services.RoomCreator      = (*repository.ChatRepo)(nil)
	_ services.UserRoleStore    = (*auth.Repository)(nil)
	_ auth.Store                = (*auth.Repository)(nil)
)
