package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/config"
	appHTTP "github.com/pulsehr/attendance-backend-go/internal/handler/http"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/clock"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/cron"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/database"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/geocode"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/jwt"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/sse"
	"github.com/pulsehr/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/pulsehr/attendance-backend-go/internal/service/attendance"
	notificationService "github.com/pulsehr/attendance-backend-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	policy, err := cfg.WindowPolicy()
	if err != nil {
		fmt.Println("Error building attendance policy:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), int32(cfg.Database.MaxConns))
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	punchRepo := postgresql.NewPunchRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	leaveLookup := postgresql.NewLeaveLookup(db)
	alertRepo := postgresql.NewAlertRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	hub := sse.NewHub()
	alertService := notificationService.NewAlertService(alertRepo, hub, notificationService.Config{
		BatchSize:     cfg.Alerts.BatchSize,
		FlushInterval: cfg.Alerts.FlushInterval,
		WorkerCount:   cfg.Alerts.WorkerCount,
		QueueSize:     cfg.Alerts.QueueSize,
	})
	defer alertService.Stop()

	var geocoder geocode.Resolver = geocode.Noop{}
	if cfg.Geocode.BaseURL != "" {
		geocoder = geocode.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.Timeout)
	}

	attendanceSvc := attendanceService.NewAttendanceService(
		punchRepo,
		rosterRepo,
		leaveLookup,
		alertService,
		geocoder,
		policy,
		clock.System(),
	)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("shortfall-sweep", cfg.Alerts.SweepInterval, attendanceSvc.SweepShortfalls)
	scheduler.AddJob("mark-absent-sweep", cfg.Alerts.SweepInterval, attendanceSvc.SweepMarkAbsent)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	notificationHandler := appHTTP.NewNotificationHandler(alertService, alertRepo)

	router := appHTTP.NewRouter(cfg, jwtService, attendanceHandler, notificationHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
