package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/api/handlers"
	"github.com/quizsquirrel/social-api/internal/api/middleware"
	"github.com/quizsquirrel/social-api/internal/cache"
	job "github.com/quizsquirrel/social-api/internal/jobs"
	"github.com/quizsquirrel/social-api/internal/queue"
	"github.com/quizsquirrel/social-api/internal/repository"
	"github.com/quizsquirrel/social-api/internal/service"
	"github.com/quizsquirrel/social-api/pkg/crypto"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cipher, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize token cipher: %v", err)
	}
	if err := cipher.ValidateEncryption(); err != nil {
		log.Fatalf("Token cipher self-test failed: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	stateCache := cache.NewMemory(10 * time.Minute)

	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	socialPostRepo := repository.NewSocialPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	mediaService := service.NewMediaService(*cfg)
	tumblrService := service.NewTumblrService(*cfg, stateCache, connectionRepo, cipher)
	facebookService := service.NewFacebookService(*cfg, stateCache, connectionRepo, cipher)
	connectionService := service.NewConnectionService(*cfg, connectionRepo, cipher)
	publishService := service.NewPublishService(*cfg, connectionRepo, socialPostRepo, quizRepo,
		userRepo, notificationRepo, cipher, mediaService, service.DefaultClientFactory)
	syncService := service.NewSyncService(*cfg, connectionRepo, socialPostRepo, cipher, service.DefaultClientFactory)

	// If the encryption key changed since the last run, every stored token is
	// unreadable; deactivate connections now instead of erroring per request.
	if err := connectionService.VerifyStoredCredentials(context.Background()); err != nil {
		log.Printf("Stored credential check failed: %v", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(tumblrService, facebookService, *cfg)
	app.Get("/auth/:platform", authMiddleware.AuthMiddleware(), auth.Connect)
	app.Get("/auth/:platform/callback", authMiddleware.AuthMiddleware(), auth.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	connection := handlers.NewConnectionHandler(connectionService, *cfg)
	api.Get("/connections", connection.ListConnections)
	api.Post("/connections/remove", connection.RemoveConnection)
	api.Get("/connections/facebook/pages", auth.PendingPages)
	api.Post("/connections/facebook/select_page", auth.SelectPage)

	publish := handlers.NewPublishHandler(publishService, syncService, client, *cfg)
	api.Post("/publish/:platform", publish.Publish)
	api.Get("/posts", publish.ListPosts)
	api.Post("/posts/remove", publish.RemovePost)
	api.Post("/posts/sync", publish.SyncPost)
	api.Post("/posts/sync_all", publish.SyncAll)

	admin := app.Group("/api/admin")
	admin.Use(authMiddleware.AdminMiddleware())
	admin.Post("/connections/deactivate_all", connection.DeactivateAllConnections)

	// cron jobs
	engagementSyncJob := job.NewEngagementSyncJob(connectionRepo, client)

	//queue
	queueW := queue.NewQueue(syncService)

	c := cron.New()
	c.AddFunc("@every 06h00m00s", engagementSyncJob.SyncEngagement)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSyncEngagement, queueW.HandleSyncEngagementTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
