package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/api"
	"github.com/maheshrc27/autopost/internal/api/handlers"
	"github.com/maheshrc27/autopost/internal/api/middleware"
	job "github.com/maheshrc27/autopost/internal/jobs"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	metrics.Register()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	clientTokenRepo := repository.NewClientTokenRepository(db)
	statusLogRepo := repository.NewPostStatusLogRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	r2Service, err := service.NewR2Service(context.Background(), *cfg)
	if err != nil {
		log.Fatalf("Failed to configure media storage: %v", err)
	}

	credentialService := service.NewCredentialService(*cfg, clientTokenRepo)
	ayrshareService := service.NewAyrshareService(*cfg)
	statusLogService := service.NewStatusLogService(statusLogRepo, scheduledPostRepo)
	scheduledPostService := service.NewScheduledPostService(scheduledPostRepo, r2Service)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	autoPostJob := job.NewAutoPostJob(*cfg, scheduledPostRepo, credentialService, ayrshareService, statusLogService)
	enqueuer := queue.NewEnqueuer(client)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	app := api.NewApp(api.Handlers{
		AutoPost:       handlers.NewAutoPostHandler(autoPostJob),
		Post:           handlers.NewPostHandler(scheduledPostService, statusLogService, enqueuer),
		ApiKeys:        handlers.NewApiKeyHandler(apiKeyService),
		Credential:     handlers.NewCredentialHandler(credentialService),
		Auth:           authMiddleware.AuthMiddleware(),
		FunctionSecret: cfg.Delivery.FunctionSecret,
		FrontendURL:    cfg.FrontendURL,
	})

	// cron jobs
	c := cron.New()
	if err := c.AddFunc(cfg.Delivery.CronSpec, autoPostJob.RunScheduled); err != nil {
		log.Fatalf("Invalid delivery schedule %q: %v", cfg.Delivery.CronSpec, err)
	}
	c.Start()
	defer c.Stop()

	//queue
	queueW := queue.NewQueue(autoPostJob)

	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 1,
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeAutoPostRun, queueW.HandleAutoPostTask)

	slog.Info("Starting the Asynq server...")
	if err := server.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, server)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	server.Shutdown()

	log.Println("Server shutdown complete.")
}
