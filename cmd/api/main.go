package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/content-platform/internal/api/http"
	"github.com/spec-kit/content-platform/internal/api/http/handlers"
	"github.com/spec-kit/content-platform/internal/auth"
	"github.com/spec-kit/content-platform/internal/cache"
	"github.com/spec-kit/content-platform/internal/config"
	"github.com/spec-kit/content-platform/internal/events"
	"github.com/spec-kit/content-platform/internal/observability"
	"github.com/spec-kit/content-platform/internal/persistence"
	"github.com/spec-kit/content-platform/internal/repository"
	"github.com/spec-kit/content-platform/internal/secret"
	"github.com/spec-kit/content-platform/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	signingKey, err := secret.NewStore(cfg.Auth.JWTSecret, cfg.Auth.KeyFile).Load()
	if err != nil {
		logger.Fatal("failed to provision signing key", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	storyRepo := repository.NewStoryRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	itemRepo := repository.NewItemRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	listingCache := cache.NewStoryCache(redis.Client, cfg.Cache.LatestTTL(), logger)
	listingCache.RegisterInvalidation(dispatcher)

	tokenMgr := auth.NewTokenManager(signingKey, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(userRepo, tokenMgr, cfg.Auth.BcryptCost)
	storyService := service.NewStoryService(service.StoryDependencies{
		StoryRepo:    storyRepo,
		ListingCache: listingCache,
		Dispatcher:   dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CategoryRepo: categoryRepo,
		ItemRepo:     itemRepo,
	})

	authMiddleware := auth.NewMiddleware(tokenMgr)
	storyOwnership := auth.NewStoryOwnership(storyRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Stories:        handlers.NewStoriesHandler(storyService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: authMiddleware,
		StoryOwnership: storyOwnership,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
