package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/lbin817/MSE/config"
	"github.com/lbin817/MSE/handlers"
	"github.com/lbin817/MSE/middleware"
	"github.com/lbin817/MSE/routes"
	"github.com/lbin817/MSE/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ledgerStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer ledgerStore.Close()

	added, err := store.Seed(context.Background(), ledgerStore, config.DefaultTeams())
	if err != nil {
		log.Fatal("Failed to seed teams:", err)
	}
	if added > 0 {
		log.Printf("🆕 Seeded %d new teams", added)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory:", err)
	}

	wsHandler := handlers.NewWSHandler()

	router := gin.Default()

	allowedOrigins := []string{cfg.FrontendURL}
	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range allowedOrigins {
		log.Printf("   - %s", origin)
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		duration := time.Since(start)
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.IPAllowlist(cfg.AllowedIPs))
	router.Use(middleware.RateLimiter(100, time.Minute))

	v1 := router.Group("/api/v1")
	{
		routes.SetupPublicRoutes(v1, ledgerStore, cfg)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			routes.SetupAdminRoutes(admin, ledgerStore, cfg, wsHandler)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// openStore picks the backend: Postgres when DATABASE_URL is set, the
// in-memory store otherwise (local development only — nothing survives a
// restart).
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Println("💻 DATABASE_URL not set, using in-memory store")
		return store.NewMemStore(), nil
	}

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return store.NewPostgresStore(db), nil
}
