// cmd/api/main.go
// SmokeRing API server entry point.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smokering/smokering-backend/internal/auth"
	"github.com/smokering/smokering-backend/internal/common/database"
	"github.com/smokering/smokering-backend/internal/common/storage"
	"github.com/smokering/smokering-backend/internal/config"
	"github.com/smokering/smokering-backend/internal/humidor"
	"github.com/smokering/smokering-backend/internal/live"
	"github.com/smokering/smokering-backend/internal/posts"
	"github.com/smokering/smokering-backend/internal/profile"
	"github.com/smokering/smokering-backend/internal/reviews"
	"github.com/smokering/smokering-backend/internal/scanner"
	"github.com/smokering/smokering-backend/internal/venues"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := runMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Redis is optional: without it sign-in throttling and venue caching
	// are disabled, everything else works.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable, continuing without it: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	sqlxDB := sqlx.NewDb(db, "postgres")

	uploader, err := storage.NewUploader(storage.Config{
		UseS3:          cfg.UseS3,
		S3Bucket:       cfg.S3Bucket,
		AWSRegion:      cfg.AWSRegion,
		LocalUploadDir: cfg.LocalUploadDir,
		BaseURL:        cfg.BaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize uploader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Auth
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, &auth.Config{
		JWTSecret:            cfg.JWTSecret,
		AccessTokenExpiry:    cfg.AccessTokenExpiry,
		RefreshTokenExpiry:   cfg.RefreshTokenExpiry,
		BCryptCost:           cfg.BCryptCost,
		SigninAttemptsMax:    cfg.SigninAttemptsMax,
		SigninAttemptsWindow: cfg.SigninAttemptsWindow,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)

	// Profiles and the follow graph
	profileRepo := profile.NewRepository(sqlxDB)
	profileService := profile.NewService(profileRepo, uploader)
	profileHandler := profile.NewHandler(profileService)

	// Live feed event fan-out
	hub := live.NewHub(profileRepo)
	go hub.Run(ctx)

	// Posts, likes and comments
	postsRepo := posts.NewPostgresRepository(db)
	postsService := posts.NewService(postsRepo, hub)
	postsHandler := posts.NewHandler(postsService, uploader)

	// Humidor inventory
	humidorRepo := humidor.NewRepository(sqlxDB)
	humidorService := humidor.NewService(humidorRepo)
	humidorHandler := humidor.NewHandler(humidorService)

	// Cigar reviews
	reviewsRepo := reviews.NewRepository(sqlxDB)
	reviewsService := reviews.NewService(reviewsRepo)
	reviewsHandler := reviews.NewHandler(reviewsService, uploader)

	// Venue search (optional, needs a Places API key)
	var placesClient venues.PlacesClient
	if cfg.PlacesAPIKey != "" {
		placesClient, err = venues.NewGooglePlacesClient(ctx, cfg.PlacesAPIKey)
		if err != nil {
			log.Printf("Places client unavailable, venue search disabled: %v", err)
		}
	}
	venuesService := venues.NewService(placesClient, redisClient, cfg.VenueCacheTTL)
	venuesHandler := venues.NewHandler(venuesService)

	// Cigar scanner (optional, needs a Vision API key)
	var visionClient scanner.VisionClient
	if cfg.VisionAPIKey != "" {
		visionClient, err = scanner.NewGoogleVisionClient(ctx, cfg.VisionAPIKey)
		if err != nil {
			log.Printf("Vision client unavailable, scanner disabled: %v", err)
		}
	}
	scannerService := scanner.NewService(visionClient, reviewsRepo)
	scannerHandler := scanner.NewHandler(scannerService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	authHandler.RegisterRoutes(router, authMiddleware)
	posts.RegisterRoutes(router, postsHandler, authMiddleware)
	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	humidor.RegisterRoutes(router, humidorHandler, authMiddleware)
	reviews.RegisterRoutes(router, reviewsHandler, authMiddleware)
	scanner.RegisterRoutes(router, scannerHandler, authMiddleware)

	// The venues feature ships its own chi router
	router.PathPrefix("/api/v1/venues").Handler(
		http.StripPrefix("/api/v1/venues", venuesHandler.Router()))

	router.Handle("/ws/feed", authMiddleware.Authenticate(live.ServeWS(hub))).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", healthHandler).Methods("GET")

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("SmokeRing API listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
