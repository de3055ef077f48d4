package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Catalogo-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC *usecase.CategoryUseCase
	ProductUC  *usecase.ProductUseCase
	SyncUC     *catalogsync.SyncUseCase
	// JWTSecret vacío deja POST /api/sync sin autenticación.
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(metrics.Middleware())

	allowHeaders := "Content-Type"
	if deps.JWTSecret != "" {
		allowHeaders = "Content-Type,Authorization"
	}
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: allowHeaders,
	}))

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	api.Get("/categories", categoryHandler.List)
	api.Options("/categories", Preflight)
	api.All("/categories", MethodNotAllowed)

	productHandler := NewProductHandler(deps.ProductUC)
	api.Get("/products", productHandler.List)
	api.Options("/products", Preflight)
	api.All("/products", MethodNotAllowed)

	syncHandler := NewSyncHandler(deps.SyncUC)
	api.Get("/sync", syncHandler.Status)
	if deps.JWTSecret != "" {
		api.Post("/sync", AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin), syncHandler.Sync)
	} else {
		api.Post("/sync", syncHandler.Sync)
	}
	api.Options("/sync", Preflight)
	api.All("/sync", MethodNotAllowed)
}
