package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photo-location-service/config"
	"photo-location-service/gateway"
	"photo-location-service/gemini"
	"photo-location-service/handlers"
	"photo-location-service/llm"
	"photo-location-service/metrics"
	"photo-location-service/middleware"
	"photo-location-service/quota"
	"photo-location-service/store"
	"photo-location-service/version"
	"photo-location-service/zhipu"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.APIKey() == "" {
		log.Fatalf("API key for provider %q is required (set GEMINI_API_KEY or ZHIPU_API_KEY)", cfg.LLMProvider)
	}
	if cfg.AdminPassword != "" && cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required when ADMIN_PASSWORD is set")
	}

	metrics.Register()

	var client llm.Client
	switch cfg.LLMProvider {
	case "zhipu":
		client = zhipu.NewClient(cfg.ZhipuAPIKey, cfg.RequestTimeout)
	case "gemini":
		client = gemini.NewClient(cfg.GeminiAPIKey, cfg.RequestTimeout)
	default:
		log.Fatalf("Unknown LLM_PROVIDER %q (use gemini or zhipu)", cfg.LLMProvider)
	}

	tracker := quota.NewTracker(cfg.MaxTotalTokens, cfg.MaxDailyTokens)
	images := store.NewImageStore(cfg.ImageMaxAge)
	shares := store.NewShareStore(cfg.ShareTTL)
	gw := gateway.New(client, cfg.Models(), cfg.FallbackBackoff, cfg.PlaceNameLanguage)
	auth := middleware.NewAdminAuth(cfg.JWTSecret)

	h := handlers.New(cfg, tracker, images, shares, gw, auth, client.SourceName())

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))

	h.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Periodic sweep of aged images and expired shares.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removedImages := images.SweepExpired()
				removedShares := shares.SweepExpired()
				metrics.SweepRemovedTotal.WithLabelValues("images").Add(float64(removedImages))
				metrics.SweepRemovedTotal.WithLabelValues("shares").Add(float64(removedShares))
				if removedImages > 0 || removedShares > 0 {
					log.WithFields(log.Fields{
						"images": removedImages,
						"shares": removedShares,
					}).Info("swept expired entries")
				}
			case <-sweepDone:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":     cfg.Port,
			"provider": cfg.LLMProvider,
			"version":  version.Version,
		}).Info("starting photo location service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}
