package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/consulthub/consulthub-api/internal/app"
	"github.com/consulthub/consulthub-api/internal/chat"
	"github.com/consulthub/consulthub-api/internal/http/handlers"
	"github.com/consulthub/consulthub-api/internal/notify"
	"github.com/consulthub/consulthub-api/internal/payments"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/pkg/config"
	"github.com/consulthub/consulthub-api/pkg/database"
	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
	mw "github.com/consulthub/consulthub-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Apply schema migrations
	migrator, err := app.NewMigrator(pool)
	if err != nil {
		logger.Error("Failed to initialize migrator", "error", err)
		os.Exit(1)
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
	migrator.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Connect to Redis (idempotency cache)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	rateCardRepo := postgres.NewRateCardRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	earningsRepo := postgres.NewEarningsRepository(pool)

	// External collaborators
	tokens := rtc.NewTokenBuilder(cfg.RTC.AppID, cfg.RTC.AppCertificate)
	orders := payments.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	payouts := payments.NewStripePayouts(cfg.Stripe.SecretKey)

	// Initialize services
	authService := service.NewAuthService(userRepo, rateCardRepo, cfg)
	bookingService := service.NewBookingService(bookingRepo, rateCardRepo, userRepo, earningsRepo, eventBus)
	sessionService := service.NewSessionService(bookingRepo, rateCardRepo, userRepo, tokens)
	earningsService := service.NewEarningsService(earningsRepo, rateCardRepo, payouts, eventBus)

	// Chat: hub plus the bus bridge that fans messages into rooms
	hub := chat.NewHub()
	bridge := chat.NewBridge(hub)
	if err := bridge.Start(eventBus); err != nil {
		logger.Error("Failed to start chat bridge", "error", err)
		os.Exit(1)
	}
	defer bridge.Stop()
	chatHandler := chat.NewHandler(hub, sessionService, messageRepo, eventBus, cfg.Auth.JWTSecret)

	// Notification worker
	mailer := notify.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	notifier := notify.NewNotifier(mailer, cfg.Email.DevMode)
	if err := notifier.Start(eventBus); err != nil {
		logger.Error("Failed to start notifier", "error", err)
		os.Exit(1)
	}
	defer notifier.Stop()

	// Initialize handlers
	h := handlers.New(authService, bookingService, sessionService, earningsService,
		rateCardRepo, messageRepo, orders, tokens, eventBus, cfg)

	idempotency := mw.Idempotency(mw.NewRedisStore(redisClient), handlers.CurrentUserID)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/consultants", func(r chi.Router) {
		r.Get("/", h.ListConsultants)
		r.With(h.RequireJWT("consultant")).Patch("/me/rates", h.UpdateMyRates)
		r.Get("/{id}", h.GetConsultant)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(h.RequireJWT(""))
		r.Post("/quote", h.QuoteBooking)
		r.With(idempotency).Post("/", h.CreateBooking)
		r.Get("/", h.ListBookings)
		r.Get("/{id}", h.GetBooking)
		r.Delete("/{id}", h.CancelBooking)
		r.Patch("/{id}/complete", h.CompleteBooking)
		r.Get("/{id}/session", h.GetSession)
		r.Post("/{id}/session/token", h.GetSessionToken)
		r.Get("/{id}/messages", h.ListMessages)
	})

	r.With(h.RequireJWT("")).Post("/rtc/token", h.CreateRTCToken)

	r.Route("/payments", func(r chi.Router) {
		r.With(h.RequireJWT("")).Post("/orders", h.CreatePaymentOrder)
		r.With(h.RequireJWT("")).Get("/wallet", h.GetWallet)
		r.With(h.RequireJWT("consultant")).Get("/earnings", h.GetEarnings)
		r.With(h.RequireJWT("consultant")).Post("/payouts", h.RequestPayout)
	})

	// Token auth rides the query string; the handler validates it.
	r.Get("/ws/bookings/{id}/chat", chatHandler.Serve)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}()

	logger.Info("API listening", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
