package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"examtrack-backend/internal/handlers"
	"examtrack-backend/internal/middleware"
	"examtrack-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	examHandler *handlers.ExamHandler,
	sessionHandler *handlers.SessionHandler,
	studentHandler *handlers.StudentHandler,
	reportHandler *handlers.ReportHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// ──── Exam Catalog Routes ────
		r.Route("/exams", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", examHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/refresh", examHandler.Refresh)
			})
		})

		// ──── Quiz Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", sessionHandler.Start)
			r.Get("/history", sessionHandler.History)
			r.Get("/{id}", sessionHandler.Get)
			r.Post("/{id}/answer", sessionHandler.Answer)
			r.Post("/{id}/complete", sessionHandler.Complete)
		})

		// ──── Student Profile Routes ────
		r.Route("/student", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/profile", studentHandler.Profile)
			r.Put("/profile", studentHandler.UpdateProfile)
			r.Get("/streak", studentHandler.Streak)
			r.Post("/reset-stats", studentHandler.ResetStats)
			r.Get("/wrong-questions", studentHandler.WrongQuestions)
		})

		// ──── Question Report Routes ────
		r.Route("/reports", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", reportHandler.Submit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", reportHandler.List)
				r.Post("/{id}/resolve", reportHandler.Resolve)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
