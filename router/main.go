package router

import (
	"time"

	"github.com/coldenflo/ICeducation/database"
	"github.com/coldenflo/ICeducation/handlers"
	auth_handlers "github.com/coldenflo/ICeducation/handlers/auth"
	notify_handlers "github.com/coldenflo/ICeducation/handlers/notify"
	reference_handlers "github.com/coldenflo/ICeducation/handlers/reference"
	university_handlers "github.com/coldenflo/ICeducation/handlers/university"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils"
	"github.com/coldenflo/ICeducation/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Dependencies are the long-lived services the routes are built from
type Dependencies struct {
	KV         database.KeyValue
	Seed       database.SeedData
	Catalogue  *services.CatalogueStore
	Sessions   *services.SessionService
	Notify     *services.NotifyService
	BruteForce *middleware.BruteForceProtection // nil without Redis
	Logger     *zap.Logger
	Security   middleware.SecurityConfig
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	authMiddleware := middleware.NewAuthMiddleware(deps.Sessions)

	authHandler := auth_handlers.NewAuthHandler(deps.Catalogue, deps.Sessions, deps.BruteForce, deps.Logger)
	universityHandler := university_handlers.NewUniversityHandler(deps.Catalogue, deps.Logger)
	referenceHandler := reference_handlers.NewReferenceHandler(deps.Seed.Documents, deps.Seed.Services)
	notifyHandler := notify_handlers.NewNotifyHandler(deps.Notify, deps.Logger)

	if deps.Security.RateLimitWindow == 0 {
		deps.Security.RateLimitWindow = time.Minute
	}
	middleware.SetupSecurity(app, deps.Security)

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, handlers.HealthDeps{
		KV:        deps.KV,
		Catalogue: deps.Catalogue,
	}))

	// Website form relay, outside /api/v1 for the existing widgets
	app.Post("/api/notify", notifyHandler.Notify)
	app.Get("/api/test", notifyHandler.Test)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", deps.BruteForce.CheckLock(), authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Universities routes
	universities := api.Group("/universities")
	universities.Get("/", universityHandler.ListUniversities)
	universities.Get("/:slugOrId", universityHandler.GetUniversity)
	universities.Post("/", authMiddleware.RequireAdmin(), middleware.AdminAuditLog(deps.Logger, "university_create"), universityHandler.CreateUniversity)
	universities.Post("/form", authMiddleware.RequireAdmin(), middleware.AdminAuditLog(deps.Logger, "university_create_form"), universityHandler.CreateFromForm)
	universities.Put("/:id", authMiddleware.RequireAdmin(), middleware.AdminAuditLog(deps.Logger, "university_update"), universityHandler.UpdateUniversity)
	universities.Delete("/:id", authMiddleware.RequireAdmin(), middleware.AdminAuditLog(deps.Logger, "university_delete"), universityHandler.DeleteUniversity)

	// Reference data (public, read-only)
	api.Get("/documents", referenceHandler.ListDocuments)
	api.Get("/services", referenceHandler.ListServices)
}
