package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-platform/internal/api/http/handlers"
	"github.com/spec-kit/content-platform/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Stories        *handlers.StoriesHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.Middleware
	StoryOwnership *auth.StoryOwnership
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Require, cfg.Users.ChangePassword)

	stories := app.Group("/stories")
	stories.Get("/latest", cfg.Stories.ListLatest)
	stories.Post("", cfg.AuthMiddleware.Require, cfg.Stories.Create)
	stories.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Stories.Get)

	owned := stories.Group("/:id", cfg.AuthMiddleware.Require, cfg.StoryOwnership.Handle)
	owned.Get("/draft", cfg.Stories.GetDraft)
	owned.Patch("/draft", cfg.Stories.SaveDraft)
	owned.Post("/publish", cfg.Stories.Publish)
	owned.Patch("", cfg.Stories.Update)
	owned.Delete("", cfg.Stories.Delete)

	app.Get("/authors/:id/stories", cfg.AuthMiddleware.Optional, cfg.Stories.ListByAuthor)

	catalogs := app.Group("/catalogs/:kind")
	catalogs.Get("/categories", cfg.Catalog.ListRoots)
	catalogs.Post("/categories", cfg.AuthMiddleware.Require, cfg.Catalog.CreateCategory)

	app.Post("/categories/batch-delete", cfg.AuthMiddleware.Require, cfg.Catalog.BatchDeleteCategories)
	categories := app.Group("/categories/:id")
	categories.Get("", cfg.Catalog.GetCategory)
	categories.Patch("", cfg.AuthMiddleware.Require, cfg.Catalog.UpdateCategory)
	categories.Delete("", cfg.AuthMiddleware.Require, cfg.Catalog.DeleteCategory)
	categories.Post("/items", cfg.AuthMiddleware.Require, cfg.Catalog.CreateItem)

	app.Post("/items/batch-delete", cfg.AuthMiddleware.Require, cfg.Catalog.BatchDeleteItems)
	items := app.Group("/items/:id")
	items.Patch("", cfg.AuthMiddleware.Require, cfg.Catalog.UpdateItem)
	items.Delete("", cfg.AuthMiddleware.Require, cfg.Catalog.DeleteItem)
}
