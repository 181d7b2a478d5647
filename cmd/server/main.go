package main // Entry point package

import (
	"context" // bounds schema migration
	"log"     // Logging library
	"time"    // migration timeout

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/cinema-admission/internal/config"     // Internal config loader
	"github.com/iliyamo/cinema-admission/internal/database"   // MySQL connection helpers
	"github.com/iliyamo/cinema-admission/internal/handler"    // HTTP handlers
	"github.com/iliyamo/cinema-admission/internal/middleware" // rate limit and cache
	"github.com/iliyamo/cinema-admission/internal/queue"      // admission.evaluated consumer
	"github.com/iliyamo/cinema-admission/internal/repository" // audit store
	"github.com/iliyamo/cinema-admission/internal/router"     // Internal router setup
	queue_publisher "github.com/iliyamo/cinema-admission/internal/service"
)

func main() {
	config.LoadDotEnv()  // Pick up .env in development
	cfg := config.Load() // Load environment config
	e := echo.New()      // Create Echo instance

	health := &handler.HealthHandler{}
	var store handler.CheckStore // stays nil without a database
	if cfg.DatabaseEnabled() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Fatalf("database: ensure schema: %v", err)
		}
		cancel()
		health.DB = db
		store = repository.NewAdmissionRepo(db)
		log.Printf("database: audit store enabled (%s:%s/%s)", cfg.DBHost, cfg.DBPort, cfg.DBName)
	} else {
		log.Printf("database: DB_HOST not set, audit store disabled")
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	e.Use(middleware.IdentifyOperator(cfg.JWTSecret)) // user-keyed rate buckets need the caller
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	publisher := queue_publisher.Publisher{URL: cfg.AMQPURL}
	admission := handler.NewAdmissionHandler(store, publisher.PublishAdmissionEvaluated, cfg.Locale)

	router.RegisterRoutes(e, health)
	router.RegisterAdmission(e, admission, cfg.JWTSecret)
	router.RegisterAccessLog(e, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	if cfg.ConsumeQueue {
		go queue.StartAdmissionConsumer(cfg.AMQPURL, "logs")
	}

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
