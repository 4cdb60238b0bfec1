package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-backend/internal/assist"
	"novel-backend/internal/chapters"
	"novel-backend/internal/critiques"
	"novel-backend/internal/llm"
	"novel-backend/internal/llm/registry"
	"novel-backend/internal/services/health"
	"novel-backend/internal/shared/config"
	"novel-backend/internal/shared/server"
	"novel-backend/internal/shared/storage/db"
	"novel-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	LLM              *llm.Router
	ChaptersRepo     chapters.Repo
	CritiquesRepo    critiques.Repo
	ChaptersService  *chapters.Service
	CritiquesService *critiques.Service
	AssistService    *assist.Service
	HealthService    *health.Service
}

// Build connects storage, builds the provider router and wires handlers.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if cfg.CritiqueBatchConcurrency <= 0 {
		cfg.CritiqueBatchConcurrency = 3
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router, err := registry.Build(ctx, registry.Options{
		DefaultProvider: cfg.LLMDefaultProvider,
		ProvidersFile:   cfg.LLMProvidersFile,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		OpenAIModel:     cfg.LLMModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		Timeout:         cfg.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm router: %w", err)
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		LLM:    router,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.HealthService,
		ChapterHandler:  chapters.NewHandler(app.ChaptersService),
		CritiqueHandler: critiques.NewHandler(app.CritiquesService),
		AssistHandler:   assist.NewHandler(app.AssistService),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":              cfg.Env,
		"postgres":         sqlDB != nil,
		"default_provider": router.Default(),
		"providers":        router.Names(),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{
				"reason": "database unavailable",
				"error":  err.Error(),
			})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.ChaptersRepo = &chapters.PGRepo{DB: app.DB}
		app.CritiquesRepo = &critiques.PGRepo{DB: app.DB}
	} else {
		app.ChaptersRepo = chapters.NewMemoryRepo()
		app.CritiquesRepo = critiques.NewMemoryRepo()
	}

	app.ChaptersService = chapters.NewService(app.ChaptersRepo)

	critiqueSvc := critiques.NewService(app.CritiquesRepo, app.ChaptersService, app.LLM)
	critiqueSvc.MaxAge = app.Config.CritiqueMaxAge
	critiqueSvc.Concurrency = app.Config.CritiqueBatchConcurrency
	app.CritiquesService = critiqueSvc

	app.AssistService = assist.NewService(app.ChaptersService, app.LLM)
	app.HealthService = health.NewService(app.DB, app.LLM)

	if app.ChaptersService == nil || app.CritiquesService == nil || app.AssistService == nil {
		return errors.New("failed to initialize services")
	}
	return nil
}
