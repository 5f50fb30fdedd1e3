package main

import (
	"context"
	"log"

	_ "obrafin/api/swagger" // swagger docs
	"obrafin/internal/config"
	"obrafin/internal/database"
	"obrafin/internal/google"
	"obrafin/internal/handler"
	"obrafin/internal/middleware"
	"obrafin/internal/server"
	"obrafin/internal/websocket"
	"obrafin/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Obrafin API
// @version         1.0
// @description     Financial control of construction projects: expenses, contracts, payroll, ledgers and reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.LoadEnvFile("configs/.env"); err != nil {
		log.Println("Error loading configs/.env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to database successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	var sheets google.Client = google.Unconfigured{}
	if cfg.Google.Configured() {
		client, err := google.NewClient(ctx, cfg.Google)
		if err != nil {
			log.Printf("Google integration disabled: %v", err)
		} else {
			sheets = client
			log.Println("Google Drive/Sheets client ready.")
		}
	} else {
		log.Println("No Google credentials configured; spreadsheet routes will fail with 502.")
	}

	router := gin.Default()
	router.Use(middleware.ErrorLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server.Register(router, db, server.Options{
		Tokens:  token.New(cfg.JWTSecret, cfg.JWTTTL),
		Google:  sheets,
		Hub:     wsHub,
		Session: handler.SessionCookie{TTL: cfg.JWTTTL, Secure: cfg.CookieSecure},
	})

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
