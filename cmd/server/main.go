package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examtrack-backend/internal/config"
	"examtrack-backend/internal/database"
	"examtrack-backend/internal/handlers"
	"examtrack-backend/internal/middleware"
	"examtrack-backend/internal/repository"
	"examtrack-backend/internal/router"
	"examtrack-backend/internal/services"
	"examtrack-backend/internal/websocket"
	"examtrack-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting ExamTrack Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	reportRepo := repository.NewReportRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, profileRepo, jwtAuth)
	examService := services.NewExamService(cfg.ExamDir, redisClients.Queue, time.Duration(cfg.CatalogCacheTTL)*time.Second)

	// Warm the exam catalog so the first request is not a cold scan
	if exams, err := examService.Catalog(context.Background()); err != nil {
		log.Printf("✗ Exam catalog scan failed: %v", err)
	} else {
		log.Printf("✓ Exam catalog loaded (%d exams)", len(exams))
	}

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	examHandler := handlers.NewExamHandler(examService)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, profileRepo, examService, redisClients.Queue)
	studentHandler := handlers.NewStudentHandler(profileRepo)
	reportHandler := handlers.NewReportHandler(reportRepo, redisClients.Queue)

	// ──── Step 5: Start Report Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, reportRepo, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	reminderScheduler := services.NewReminderScheduler(profileRepo, redisClients.Queue)
	reminderScheduler.Start()
	log.Println("✓ Streak reminder scheduler started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		examHandler,
		sessionHandler,
		studentHandler,
		reportHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ ExamTrack Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
