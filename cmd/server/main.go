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
	"github.com/jcall/wanderstay/internal/api"
	"github.com/jcall/wanderstay/internal/api/middleware"
	"github.com/jcall/wanderstay/internal/config"
	"github.com/jcall/wanderstay/internal/repository/postgres"
	"github.com/jcall/wanderstay/internal/service"
	"github.com/jcall/wanderstay/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories and services
	repos := postgres.NewRepositories(db)
	services := service.NewServices(repos)

	// Session store: persistent, with an in-process fallback so a broken
	// session backend never takes the app down. Fallback sessions are lost
	// on restart.
	sessionStore, err := session.NewGormStore(db)
	if err != nil {
		log.Printf("WARN [main] session store init failed: %v", err)
		log.Printf("WARN [main] using memory store, sessions won't persist between restarts")
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, cfg.SessionSecret)

	// Rate limiter: redis-backed when configured, in-process otherwise
	var counters middleware.CounterStore = middleware.NewMemoryCounterStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("WARN [main] redis unavailable, using in-process rate limiting: %v", err)
		} else {
			counters = middleware.NewRedisCounterStore(client)
		}
	}
	limiter := middleware.NewRateLimiter(counters)

	// Initialize router
	router := api.NewRouter(services, sessions, limiter, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
