package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/nyumbani/visits-api/internal/http/handlers"
	"github.com/nyumbani/visits-api/internal/platform/cache"
	"github.com/nyumbani/visits-api/internal/platform/mailer"
	"github.com/nyumbani/visits-api/internal/repo/postgres"
	"github.com/nyumbani/visits-api/internal/service"
	"github.com/nyumbani/visits-api/pkg/config"
	"github.com/nyumbani/visits-api/pkg/database"
	"github.com/nyumbani/visits-api/pkg/events"
	"github.com/nyumbani/visits-api/pkg/logger"
	mw "github.com/nyumbani/visits-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Audit trail for the visit lifecycle. Replicas share the queue group so
	// each event is logged once across the deployment.
	for _, topic := range []string{
		events.VisitCreated, events.VisitConfirmed, events.VisitCompleted,
		events.VisitCancelled, events.VisitDeleted,
	} {
		if err := eventBus.QueueSubscribe(topic, "visits-api-audit", func(msg *events.Message) {
			logger.Info("visit event", "topic", msg.Topic, "payload", string(msg.Data))
		}); err != nil {
			logger.Warn("failed to subscribe to visit events", "topic", topic, "error", err)
		}
	}

	idempotencyStore, err := cache.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer idempotencyStore.Close()

	visitRepo := postgres.NewVisitRepo(pool)
	propertyRepo := postgres.NewPropertyRepo(pool)
	userRepo := postgres.NewUserRepo(pool)

	visitService := service.NewVisitService(visitRepo, propertyRepo, eventBus)

	mail := pickMailer(cfg)

	h := handlers.NewVisitsHandler(visitService, propertyRepo, userRepo, mail, cfg.Auth.JWTSecret)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Component("visits-api"))
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.Health)
	r.Use(mw.Idempotency(idempotencyStore, cfg.Redis.IdempotencyTTL))

	r.Mount("/v1", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down visits api...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting visits api", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// pickMailer chooses the delivery backend: dev logger by default, MailerSend
// when an API key is configured, SMTP (Mailpit locally) otherwise.
func pickMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.DevMailer{}
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
}
