package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/pulsehr/attendance-backend-go/internal/config"
	"github.com/pulsehr/attendance-backend-go/internal/handler/http/middleware"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "pulsehr-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punch", attendanceHandler.Punch)
				r.Get("/today", attendanceHandler.GetToday)
				r.Get("/report", attendanceHandler.GetMonthlyReport)
				r.Get("/summary", attendanceHandler.GetSummary)

				// Roster-wide views
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/snapshot", attendanceHandler.GetDailySnapshot)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/stream", notificationHandler.Stream)
			})
		})
	})

	return r
}
