package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mokili-id/mokili_id/internal/auth"
	"github.com/mokili-id/mokili_id/internal/config"
	"github.com/mokili-id/mokili_id/internal/middleware"
	"github.com/mokili-id/mokili_id/internal/notification"
	"github.com/mokili-id/mokili_id/internal/profile"
	"github.com/mokili-id/mokili_id/internal/provider"
	"github.com/mokili-id/mokili_id/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce real backends outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Adapters
	var store profile.Store
	if d.DB != nil {
		store = profile.NewPostgresStore(d.DB)
	} else {
		store = profile.NewMemoryStore()
	}

	var idp provider.Provider
	if d.Cfg.ProviderBaseURL != "" {
		idp = provider.NewHTTPClient(d.Cfg.ProviderBaseURL, d.Cfg.ProviderAPIKey)
	} else {
		// Dev fallback: a fake provider with no accounts. Seeded in tests.
		idp = provider.NewMemory()
	}

	codec, err := token.NewCodec(d.Cfg.JWTSecret)
	if err != nil {
		return err
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	authSvc := auth.NewService(idp, store, codec, notifier)
	authHandler := auth.NewHandler(authSvc, d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.PinLoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	protected := api.Group("", middleware.SessionToken())
	protected.Get("/me", authHandler.Me)

	return nil
}
