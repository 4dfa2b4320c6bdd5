package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/facepk/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facepk/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facepk/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
	"github.com/saturnino-fabrica-de-software/facepk/internal/ws"
)

type Dependencies struct {
	Game *service.GameService
	// MaxUploadMB caps request bodies and uploaded files
	MaxUploadMB int
	// RateLimitPerMinute applies per client IP to rounds and dataset
	// mutations; 0 disables limiting
	RateLimitPerMinute int
	// Live, when set, serves the spectator feed at /v1/live. Game should
	// publish to the same hub.
	Live *ws.Hub
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	cancelHub   context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	bodyLimit := handler.DefaultMaxUploadBytes
	if deps != nil && deps.MaxUploadMB > 0 {
		bodyLimit = deps.MaxUploadMB * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "facepk",
		BodyLimit:    bodyLimit,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger, "/health", "/ready"))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var readiness handler.Readiness
	if r.deps != nil && r.deps.Game != nil {
		readiness = r.deps.Game
	}
	healthHandler := handler.NewHealthHandler(readiness)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil || r.deps.Game == nil {
		return
	}

	uploadLimit := int64(r.app.Config().BodyLimit)
	gameHandler := handler.NewGameHandler(r.deps.Game, uploadLimit, r.logger)
	datasetHandler := handler.NewDatasetHandler(r.deps.Game, uploadLimit, r.logger)

	limit := func(c *fiber.Ctx) error { return c.Next() }
	if r.deps.RateLimitPerMinute > 0 {
		r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Max:    r.deps.RateLimitPerMinute,
			Window: time.Minute,
		})
		limit = r.rateLimiter.Handler()
	}

	v1 := r.app.Group("/v1")

	// Game routes
	v1.Get("/members", gameHandler.Members)
	v1.Post("/rounds", limit, gameHandler.Play)
	v1.Get("/verdict", gameHandler.Verdict)
	v1.Get("/scoreboard", gameHandler.Scoreboard)

	// Live spectator feed
	if r.deps.Live != nil {
		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.deps.Live.Run(hubCtx)

		v1.Get("/live", ws.UpgradeMiddleware(), ws.Handler(r.deps.Live))
	}

	// Dataset routes
	v1.Get("/dataset", datasetHandler.Status)
	v1.Post("/dataset/reload", limit, datasetHandler.Reload)
	v1.Post("/dataset/import", limit, datasetHandler.Import)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop WebSocket hub
	if r.cancelHub != nil {
		r.cancelHub()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
