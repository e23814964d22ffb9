package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"recipe-challenge-system/handlers"
	"recipe-challenge-system/middleware"
	"recipe-challenge-system/models"
	"recipe-challenge-system/services"
	"recipe-challenge-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// All traffic must come through the gateway — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-Email, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.RecipeLike{},
		&models.Challenge{},
		&models.RecipeSubmission{},
		&models.GlobalLeaderboardEntry{},
		&models.FeaturedWinner{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	leaderboardService := services.NewLeaderboardService(db)
	challengeService := services.NewChallengeService(db, leaderboardService)
	recipeService := services.NewRecipeService(db, leaderboardService)
	scheduler := services.NewLifecycleScheduler(db, leaderboardService)

	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("RECIPE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("RECIPE_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewProfileSyncWorker(db, identityServiceURL, "/api/v1/public/profiles", serviceToken)
	syncWorker.Start(ctx)

	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start lifecycle scheduler:", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("scheduler shutdown error: %v", err)
		}
	}()

	handlers.SetupChallengeRoutes(app, challengeService, leaderboardService)
	handlers.SetupRecipeRoutes(app, recipeService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Println("Profile sync worker running")
	log.Println("Daily challenge rotation scheduled")
	log.Printf("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
