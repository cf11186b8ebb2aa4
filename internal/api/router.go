package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/maheshrc27/autopost/internal/api/handlers"
	"github.com/maheshrc27/autopost/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	AutoPost       *handlers.AutoPostHandler
	Post           *handlers.PostHandler
	ApiKeys        *handlers.ApiKeyHandler
	Credential     *handlers.CredentialHandler
	Auth           fiber.Handler
	FunctionSecret string
	FrontendURL    string
}

func NewApp(h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error(err.Error())
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	functions := app.Group("/functions/v1", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,OPTIONS",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}), middleware.FunctionSecret(h.FunctionSecret))
	functions.Post("/auto-post", h.AutoPost.Trigger)

	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins:     h.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}), h.Auth)

	api.Post("/posts/create", h.Post.CreatePost)
	api.Get("/posts", h.Post.ListPosts)
	api.Post("/posts/cancel", h.Post.CancelPost)
	api.Post("/posts/retry", h.Post.RetryPost)
	api.Get("/posts/logs", h.Post.PostLogs)

	api.Put("/credentials", h.Credential.SaveCredential)

	api.Post("/api_key/new", h.ApiKeys.IssueKey)
	api.Get("/api_key/list", h.ApiKeys.ListKeys)
	api.Post("/api_key/remove", h.ApiKeys.RevokeKey)

	return app
}
